package tui

import (
	"context"
	"fmt"
	"io"

	"cadastro/internal/form"
)

// Dialogs renders form.Dialogs modals as prompts.
type Dialogs struct {
	driver PromptDriver
	out    io.Writer
}

func NewDialogs(driver PromptDriver, out io.Writer) *Dialogs {
	return &Dialogs{driver: driver, out: out}
}

// Confirm offers Cancel first so an accidental Enter never proceeds. An
// aborted prompt counts as Cancel.
func (d *Dialogs) Confirm(ctx context.Context, c form.Confirmation) bool {
	idx, err := d.driver.Select(ctx, SelectConfig{
		Message: fmt.Sprintf("%s: %s", c.Title, c.Message),
		Options: []string{c.Cancel, c.Proceed},
	})
	return err == nil && idx == 1
}

func (d *Dialogs) Alert(_ context.Context, title, message string) {
	_, _ = fmt.Fprintln(d.out, errorAlert(title+": "+message))
}
