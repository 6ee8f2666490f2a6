package form

import "context"

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Records is the document store as the form sees it.
type Records interface {
	Insert(ctx context.Context, collection string, payload any) (string, error)
	Update(ctx context.Context, collection, docID string, payload any) error
}

// Identity signs the current user out.
type Identity interface {
	SignOut(ctx context.Context) error
}

// Navigator moves between screens. Calls may arrive from a timer
// goroutine.
type Navigator interface {
	ToList()
	Back()
	ToLogin()
}

// Confirmation describes a two-option modal.
type Confirmation struct {
	Title   string
	Message string
	Cancel  string
	Proceed string
}

// Dialogs shows blocking modals. Confirm reports whether the user chose
// Proceed; a dismissed dialog counts as Cancel.
type Dialogs interface {
	Confirm(ctx context.Context, c Confirmation) bool
	Alert(ctx context.Context, title, message string)
}
