// Package listing shows stored registrations and hands them to the form
// for editing.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"cadastro/internal/form"
	"cadastro/internal/records/models"
)

//go:generate mockgen -source=controller.go -destination=mocks/mocks.go -package=mocks

const (
	msgLoadFailedPrefix   = "Erro ao carregar usuários: "
	msgDeleteFailedPrefix = "Erro ao deletar usuário: "
	msgPermissionDenied   = "Permissão negada. Verifique se sua sessão ainda é válida."
	msgUnavailable        = "Serviço de cadastro indisponível. Verifique sua conexão."
)

var confirmDelete = form.Confirmation{
	Title:   "Deletar usuário",
	Message: "Deseja deletar este usuário?",
	Cancel:  "Cancelar",
	Proceed: "Deletar",
}

var ErrUnknownItem = errors.New("listing: unknown item")

// Store reads and removes registrations.
type Store interface {
	List(ctx context.Context, collection string) ([]models.DocumentView, error)
	Delete(ctx context.Context, collection, docID string) error
}

// Editor receives the record to edit.
type Editor interface {
	LoadRecord(docID string, r form.Record)
}

// Navigator opens the form screen.
type Navigator interface {
	ToForm()
}

// Item is one card of the list.
type Item struct {
	ID       string
	Nome     string
	Idade    string
	Cargo    string
	Telefone string
	Record   form.Record
}

func itemFrom(doc models.DocumentView, _ int) Item {
	r := form.RecordFromDocument(doc.Data)
	return Item{
		ID:       doc.ID,
		Nome:     r.Nome,
		Idade:    r.Idade,
		Cargo:    r.Cargo,
		Telefone: form.FormatPhone(r.Telefone),
		Record:   r,
	}
}

type Controller struct {
	store   Store
	editor  Editor
	nav     Navigator
	dialogs form.Dialogs
	logger  *slog.Logger

	mu    sync.Mutex
	items []Item
	err   string
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func New(store Store, editor Editor, nav Navigator, dialogs form.Dialogs, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		editor:  editor,
		nav:     nav,
		dialogs: dialogs,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Items returns the cards of the last successful Refresh, newest first.
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

// Error is the banner text of the last failed call, or "".
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Refresh reloads the list. On failure the previous items are kept.
func (c *Controller) Refresh(ctx context.Context) error {
	docs, err := c.store.List(ctx, form.Collection)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.WarnContext(ctx, "list registrations failed", "error", err)
		c.err = failureMessage(msgLoadFailedPrefix, err)
		return err
	}
	c.items = lo.Map(docs, itemFrom)
	c.err = ""
	return nil
}

// Delete removes docID after confirmation. It reports whether the item
// was deleted.
func (c *Controller) Delete(ctx context.Context, docID string) (bool, error) {
	if _, ok := c.find(docID); !ok {
		return false, ErrUnknownItem
	}
	if !c.dialogs.Confirm(ctx, confirmDelete) {
		return false, nil
	}

	if err := c.store.Delete(ctx, form.Collection, docID); err != nil {
		c.logger.WarnContext(ctx, "delete registration failed", "doc_id", docID, "error", err)
		c.mu.Lock()
		c.err = failureMessage(msgDeleteFailedPrefix, err)
		c.mu.Unlock()
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = lo.Reject(c.items, func(it Item, _ int) bool { return it.ID == docID })
	c.err = ""
	return true, nil
}

// Edit loads docID into the form and opens it.
func (c *Controller) Edit(docID string) error {
	item, ok := c.find(docID)
	if !ok {
		return ErrUnknownItem
	}
	c.editor.LoadRecord(item.ID, item.Record)
	c.nav.ToForm()
	return nil
}

func (c *Controller) find(docID string) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Find(c.items, func(it Item) bool { return it.ID == docID })
}

func failureMessage(prefix string, err error) string {
	switch models.KindOf(err) {
	case models.KindPermissionDenied:
		return msgPermissionDenied
	case models.KindUnavailable:
		return msgUnavailable
	}
	var me *models.Error
	if errors.As(err, &me) && me.Message != "" {
		return prefix + me.Message
	}
	return prefix + err.Error()
}
