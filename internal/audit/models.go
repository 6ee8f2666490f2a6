package audit

import (
	"context"
	"time"

	id "cadastro/pkg/domain"
)

// EventType names an auditable action.
type EventType string

const (
	EventUserCreated   EventType = "user_created"
	EventSignedIn      EventType = "signed_in"
	EventSignInFailed  EventType = "sign_in_failed"
	EventSignedOut     EventType = "signed_out"
	EventRecordCreated EventType = "record_created"
	EventRecordUpdated EventType = "record_updated"
	EventRecordDeleted EventType = "record_deleted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    id.UserID `json:"user_id"`
	Subject   string    `json:"subject,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
}

// Store persists events and answers per-user queries.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// Sink receives a copy of every event for shipping elsewhere.
type Sink interface {
	Write(ctx context.Context, event Event) error
}
