package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/lo"

	"cadastro/internal/authform"
	"cadastro/internal/form"
	"cadastro/internal/listing"
	"cadastro/internal/session"
)

var errQuit = errors.New("tui: quit")

// App runs the screen loop until the user quits.
type App struct {
	driver  PromptDriver
	out     io.Writer
	session *session.Session
	nav     *Navigator
	auth    *authform.Controller
	form    *form.Controller
	list    *listing.Controller
	logger  *slog.Logger

	dispose form.Disposer
}

// Deps are the collaborators of App. Form and List must have been built
// with the same Navigator.
type Deps struct {
	Driver  PromptDriver
	Out     io.Writer
	Session *session.Session
	Nav     *Navigator
	Auth    *authform.Controller
	Form    *form.Controller
	List    *listing.Controller
	Logger  *slog.Logger
}

func NewApp(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		driver:  d.Driver,
		out:     d.Out,
		session: d.Session,
		nav:     d.Nav,
		auth:    d.Auth,
		form:    d.Form,
		list:    d.List,
		logger:  logger,
	}
}

// Run shows the auth screen until someone signs in, then the form. It
// returns nil when the user quits or presses Ctrl+C.
func (a *App) Run(ctx context.Context) error {
	unsubscribe := a.session.OnAuthStateChange(a.onAuthStateChange)
	defer unsubscribe()
	defer a.teardown()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch screen := a.nav.Current(); screen {
		case ScreenAuth:
			err = a.authScreen(ctx)
		case ScreenForm:
			err = a.formScreen(ctx)
		case ScreenList:
			err = a.listScreen(ctx)
		default:
			return fmt.Errorf("unknown screen %s", screen)
		}
		if errors.Is(err, errQuit) || errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) onAuthStateChange(user *session.User) {
	if user == nil {
		a.nav.Reset(ScreenAuth)
		return
	}
	a.logger.Info("signed in", "user_id", user.ID)
	if a.nav.Current() == ScreenAuth {
		a.nav.Reset(ScreenForm)
	}
}

func (a *App) teardown() {
	if a.dispose != nil {
		a.dispose()
	}
	a.form.Close()
	a.auth.Close()
}

type action struct {
	label string
	run   func(ctx context.Context) error
}

func (a *App) choose(ctx context.Context, message string, actions []action) error {
	idx, err := a.driver.Select(ctx, SelectConfig{
		Message:  message,
		Options:  lo.Map(actions, func(act action, _ int) string { return act.label }),
		PageSize: len(actions),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(actions) {
		return nil
	}
	return actions[idx].run(ctx)
}

func (a *App) println(lines ...string) {
	for _, l := range lines {
		_, _ = fmt.Fprintln(a.out, l)
	}
}

func (a *App) banners(errMsg, successMsg string) {
	if errMsg != "" {
		a.println(errorAlert(errMsg))
	}
	if successMsg != "" {
		a.println(successAlert(successMsg))
	}
}

func quit(context.Context) error { return errQuit }
