package models

import (
	"bytes"
	"encoding/json"
	"time"

	id "cadastro/pkg/domain"
	dErrors "cadastro/pkg/domain-errors"
)

// Document is one stored record. Data is schemaless JSON; known
// collections are additionally checked against a schema on write.
type Document struct {
	ID         id.DocumentID
	Collection string
	OwnerID    id.UserID
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// DocumentView is the wire shape of a stored document.
type DocumentView struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

func (d *Document) View() DocumentView {
	return DocumentView{ID: d.ID.String(), Data: d.Data, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// WriteRequest is the body of insert and update calls.
type WriteRequest struct {
	Data map[string]any `json:"data"`
}

// InsertResponse carries the ID assigned by the store.
type InsertResponse struct {
	ID string `json:"id"`
}

// serverTimestampJSON is the sentinel the store replaces with its own clock.
var serverTimestampJSON = []byte(`{".sv":"timestamp"}`)

// Timestamp is either a concrete instant or a request for the store to
// assign one at write time.
type Timestamp struct {
	Time   time.Time
	server bool
}

// ServerTimestamp asks the store to fill in the write time.
func ServerTimestamp() Timestamp {
	return Timestamp{server: true}
}

func (t Timestamp) IsServer() bool { return t.server }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.server {
		return serverTimestampJSON, nil
	}
	return json.Marshal(t.Time)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.ReplaceAll(b, []byte(" "), nil), serverTimestampJSON) {
		*t = ServerTimestamp()
		return nil
	}
	t.server = false
	return json.Unmarshal(b, &t.Time)
}

// IsServerTimestamp reports whether a decoded JSON value is the sentinel.
func IsServerTimestamp(v any) bool {
	m, ok := v.(map[string]any)
	return ok && len(m) == 1 && m[".sv"] == "timestamp"
}

func (r *WriteRequest) Normalize() {}

func (r *WriteRequest) Validate() error {
	if len(r.Data) == 0 {
		return dErrors.New(dErrors.CodeValidation, "data is required")
	}
	return nil
}
