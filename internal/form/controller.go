// Package form holds the registration form: field rules, postal lookup,
// and submission to the document store.
package form

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"cadastro/internal/postal"
)

// NavigationDelay is how long the success message stays up before the
// list screen opens.
const NavigationDelay = 2 * time.Second

var (
	// ErrBusy rejects a submit or lookup while the previous one runs.
	ErrBusy = errors.New("form: operation in progress")
	// ErrInvalidForm means at least one field failed its rule.
	ErrInvalidForm = errors.New("form: invalid fields")
	// ErrIncompleteAddress means the lookup never filled the address.
	ErrIncompleteAddress = errors.New("form: incomplete address")
	// ErrInvalidPostalCode means the CEP failed its rule before lookup.
	ErrInvalidPostalCode = errors.New("form: invalid postal code")
)

// Disposer cancels a pending deferred action. Calling it more than once
// is harmless.
type Disposer func()

// AfterFunc runs f after d and returns a function that stops it.
type AfterFunc func(d time.Duration, f func()) (stop func())

func realAfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// State is a snapshot of the form for rendering.
type State struct {
	Record          Record
	Errors          map[Field]string
	GeneralError    string
	SuccessMessage  string
	Submitting      bool
	LookingUp       bool
	SubmitAttempted bool
	EditingID       string
}

// Controller is safe for concurrent use. The lock is never held across a
// collaborator call.
type Controller struct {
	records  Records
	postal   postal.Lookuper
	identity Identity
	nav      Navigator
	dialogs  Dialogs
	after    AfterFunc
	logger   *slog.Logger

	mu              sync.Mutex
	record          Record
	errors          map[Field]string
	generalError    string
	successMessage  string
	submitting      bool
	lookingUp       bool
	submitAttempted bool
	editingID       string
	stopNav         func()
	navSeq          uint64
	closed          bool
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithAfterFunc replaces the timer used for deferred navigation.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Controller) { c.after = f }
}

func New(records Records, lookup postal.Lookuper, identity Identity, nav Navigator, dialogs Dialogs, opts ...Option) *Controller {
	c := &Controller{
		records:  records,
		postal:   lookup,
		identity: identity,
		nav:      nav,
		dialogs:  dialogs,
		after:    realAfterFunc,
		logger:   slog.Default(),
		errors:   make(map[Field]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Record:          c.record,
		Errors:          lo.Assign(c.errors),
		GeneralError:    c.generalError,
		SuccessMessage:  c.successMessage,
		Submitting:      c.submitting,
		LookingUp:       c.lookingUp,
		SubmitAttempted: c.submitAttempted,
		EditingID:       c.editingID,
	}
}

// UpdateField stores value, revalidates that field and clears the banner.
func (c *Controller) UpdateField(field Field, value string) {
	value = normalizeInput(field, value)
	fieldErr := ValidateField(field, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.record.set(field, value)
	c.errors[field] = fieldErr
	c.generalError = ""
}

// ValidateForm replaces every field error and reports whether all passed.
func (c *Controller) ValidateForm() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Controller) validateLocked() bool {
	c.errors = ValidateRecord(c.record)
	return lo.EveryBy(lo.Values(c.errors), func(msg string) bool { return msg == "" })
}

// CanLookup reports whether the lookup action should be enabled.
func (c *Controller) CanLookup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.lookingUp && len(c.record.CEP) == 8 && c.errors[FieldCEP] == ""
}

// CanSubmit reports whether the submit action should be enabled.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.record
	return !c.submitting && r.Rua != "" && r.Numero != "" && r.Cidade != "" && r.Estado != ""
}

// RequiredHint reports whether field should be flagged in the UI.
func (c *Controller) RequiredHint(field Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (c.submitAttempted && c.record.Get(field) == "") || c.errors[field] != ""
}

// LoadRecord switches the form to editing docID, prefilled with r.
func (c *Controller) LoadRecord(docID string, r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.record = r
	c.editingID = docID
}

// LookupPostalCode fills the address from the entered CEP. Outcomes are
// reported through State; the returned error is for callers that care.
func (c *Controller) LookupPostalCode(ctx context.Context) error {
	c.mu.Lock()
	if c.lookingUp {
		c.mu.Unlock()
		return ErrBusy
	}
	cep := c.record.CEP
	if msg := ValidateField(FieldCEP, cep); msg != "" {
		c.errors[FieldCEP] = msg
		c.generalError = msg
		c.mu.Unlock()
		return ErrInvalidPostalCode
	}
	c.lookingUp = true
	c.mu.Unlock()

	addr, err := c.postal.Lookup(ctx, cep)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookingUp = false

	switch {
	case errors.Is(err, postal.ErrNotFound) || (err == nil && (addr == nil || addr.Street == "")):
		c.generalError = msgCEPNotFound
		c.errors[FieldCEP] = msgCEPNotFoundField
		return postal.ErrNotFound
	case err != nil:
		c.logger.WarnContext(ctx, "postal lookup failed", "cep", cep, "error", err)
		c.generalError = msgCEPFailedPrefix + lookupReason(err)
		c.errors[FieldCEP] = msgCEPFailedField
		return err
	}

	c.record.Rua = addr.Street
	c.record.Bairro = addr.Neighborhood
	c.record.Cidade = addr.City
	c.record.Estado = addr.State
	for _, f := range addressFields {
		c.errors[f] = ValidateField(f, c.record.Get(f))
	}
	c.generalError = ""
	return nil
}

// addressFields are the fields a successful lookup overwrites.
var addressFields = []Field{FieldRua, FieldBairro, FieldCidade, FieldEstado}

func lookupReason(err error) string {
	var pe *postal.Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return msgConnectionFailure
}

// Submit validates and stores the form. On success the form is reset and
// the list screen opens after NavigationDelay unless the returned
// Disposer (or Close) runs first.
func (c *Controller) Submit(ctx context.Context) (Disposer, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.submitAttempted = true
	if !c.validateLocked() {
		c.generalError = msgFixErrors
		c.mu.Unlock()
		return nil, ErrInvalidForm
	}
	if !c.record.hasAddress() {
		c.generalError = msgAddressIncomplete
		c.mu.Unlock()
		return nil, ErrIncompleteAddress
	}
	c.submitting = true
	editingID := c.editingID
	payload := buildPayload(c.record, editingID != "")
	c.mu.Unlock()

	var err error
	if editingID != "" {
		err = c.records.Update(ctx, Collection, editingID, payload)
	} else {
		_, err = c.records.Insert(ctx, Collection, payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		c.logger.WarnContext(ctx, "registration not saved", "editing", editingID != "", "error", err)
		c.generalError = submitFailureMessage(err)
		return nil, err
	}

	c.resetLocked()
	c.successMessage = msgCreated
	if editingID != "" {
		c.successMessage = msgUpdated
	}
	return c.scheduleNavigationLocked(), nil
}

// ClearForm empties the form after confirmation.
func (c *Controller) ClearForm(ctx context.Context) {
	if !c.dialogs.Confirm(ctx, confirmClear) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Cancel leaves the screen after confirmation.
func (c *Controller) Cancel(ctx context.Context) {
	if !c.dialogs.Confirm(ctx, confirmCancel) {
		return
	}
	c.nav.Back()
}

// Logout signs out after confirmation. A failed sign-out is reported but
// the login screen still opens.
func (c *Controller) Logout(ctx context.Context) {
	if !c.dialogs.Confirm(ctx, confirmLogout) {
		return
	}
	if err := c.identity.SignOut(ctx); err != nil {
		c.logger.WarnContext(ctx, "sign-out failed", "error", err)
		c.dialogs.Alert(ctx, msgLogoutFailedTitle, msgLogoutFailed)
	}

	// the next person to sign in starts from an empty form
	c.mu.Lock()
	c.cancelNavigationLocked()
	c.resetLocked()
	c.successMessage = ""
	c.mu.Unlock()

	c.nav.ToLogin()
}

// Close cancels any pending navigation. The controller must not be used
// afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelNavigationLocked()
}

func (c *Controller) resetLocked() {
	c.record = Record{}
	c.errors = make(map[Field]string)
	c.generalError = ""
	c.submitAttempted = false
	c.editingID = ""
}

func (c *Controller) scheduleNavigationLocked() Disposer {
	c.cancelNavigationLocked()
	seq := c.navSeq
	c.stopNav = c.after(NavigationDelay, func() {
		c.mu.Lock()
		if c.closed || c.navSeq != seq {
			c.mu.Unlock()
			return
		}
		c.successMessage = ""
		c.stopNav = nil
		c.mu.Unlock()
		c.nav.ToList()
	})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.navSeq == seq {
			c.cancelNavigationLocked()
		}
	}
}

// cancelNavigationLocked stops the timer and invalidates any callback
// that already fired but has not taken the lock yet.
func (c *Controller) cancelNavigationLocked() {
	if c.stopNav != nil {
		c.stopNav()
		c.stopNav = nil
	}
	c.navSeq++
}
