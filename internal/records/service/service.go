package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cadastro/internal/audit"
	"cadastro/internal/platform/metrics"
	"cadastro/internal/records/models"
	"cadastro/internal/records/validation"
	"cadastro/pkg/attrs"
	id "cadastro/pkg/domain"
	dErrors "cadastro/pkg/domain-errors"
	"cadastro/pkg/platform/sentinel"
	"cadastro/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Store persists documents. Collection scoping is the store's job; owner
// scoping is enforced here.
type Store interface {
	Insert(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, collection string, docID id.DocumentID) (*models.Document, error)
	ListByOwner(ctx context.Context, collection string, ownerID id.UserID) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, collection string, docID id.DocumentID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const tracerName = "cadastro/records"

// Service is the hosted document store. Every document belongs to the user
// who created it; other users can neither read nor change it.
type Service struct {
	store   Store
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert stores data as a new document owned by ownerID. Server timestamp
// placeholders in data are replaced with the request time.
func (s *Service) Insert(ctx context.Context, ownerID id.UserID, collection string, data map[string]any) (docID id.DocumentID, err error) {
	ctx, span := s.startSpan(ctx, "Insert", collection)
	defer func() { endSpan(span, err) }()

	if err := s.checkWrite(ownerID, collection, data); err != nil {
		return id.DocumentID{}, err
	}
	if err := validation.CheckDocument(collection, data); err != nil {
		return id.DocumentID{}, err
	}

	now := requestcontext.Now(ctx)
	doc := &models.Document{
		ID:         id.NewDocumentID(),
		Collection: collection,
		OwnerID:    ownerID,
		Data:       resolveServerTimestamps(data, now),
		CreatedAt:  now,
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		return id.DocumentID{}, translateStoreError(err, "failed to insert document")
	}

	s.recordWrite(collection, "insert")
	s.logAudit(ctx, audit.EventRecordCreated, "user_id", ownerID, "document_id", doc.ID, "collection", collection)
	return doc.ID, nil
}

// Get returns one of the caller's documents.
func (s *Service) Get(ctx context.Context, ownerID id.UserID, collection string, docID id.DocumentID) (doc *models.Document, err error) {
	ctx, span := s.startSpan(ctx, "Get", collection)
	defer func() { endSpan(span, err) }()

	if err := s.checkAccess(ownerID, collection); err != nil {
		return nil, err
	}
	return s.loadOwned(ctx, ownerID, collection, docID)
}

// List returns the caller's documents in a collection, newest first.
func (s *Service) List(ctx context.Context, ownerID id.UserID, collection string) (docs []*models.Document, err error) {
	ctx, span := s.startSpan(ctx, "List", collection)
	defer func() { endSpan(span, err) }()

	if err := s.checkAccess(ownerID, collection); err != nil {
		return nil, err
	}
	docs, err = s.store.ListByOwner(ctx, collection, ownerID)
	if err != nil {
		return nil, translateStoreError(err, "failed to list documents")
	}
	span.SetAttributes(attribute.Int("records.count", len(docs)))
	return docs, nil
}

// Update merges data into an existing document: top-level keys present in
// data replace the stored ones, absent keys are kept.
func (s *Service) Update(ctx context.Context, ownerID id.UserID, collection string, docID id.DocumentID, data map[string]any) (doc *models.Document, err error) {
	ctx, span := s.startSpan(ctx, "Update", collection)
	defer func() { endSpan(span, err) }()

	if err := s.checkWrite(ownerID, collection, data); err != nil {
		return nil, err
	}
	existing, err := s.loadOwned(ctx, ownerID, collection, docID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	merged := lo.Assign(existing.Data, resolveServerTimestamps(data, now))
	if err := validation.CheckDocument(collection, merged); err != nil {
		return nil, err
	}
	existing.Data = merged
	existing.UpdatedAt = &now

	if err := s.store.Update(ctx, existing); err != nil {
		return nil, translateStoreError(err, "failed to update document")
	}

	s.recordWrite(collection, "update")
	s.logAudit(ctx, audit.EventRecordUpdated, "user_id", ownerID, "document_id", docID, "collection", collection)
	return existing, nil
}

// Delete removes one of the caller's documents.
func (s *Service) Delete(ctx context.Context, ownerID id.UserID, collection string, docID id.DocumentID) (err error) {
	ctx, span := s.startSpan(ctx, "Delete", collection)
	defer func() { endSpan(span, err) }()

	if err := s.checkAccess(ownerID, collection); err != nil {
		return err
	}
	if _, err := s.loadOwned(ctx, ownerID, collection, docID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, collection, docID); err != nil {
		return translateStoreError(err, "failed to delete document")
	}

	s.recordWrite(collection, "delete")
	s.logAudit(ctx, audit.EventRecordDeleted, "user_id", ownerID, "document_id", docID, "collection", collection)
	return nil
}

func (s *Service) checkAccess(ownerID id.UserID, collection string) error {
	if ownerID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return validation.CheckCollection(collection)
}

func (s *Service) checkWrite(ownerID id.UserID, collection string, data map[string]any) error {
	if err := s.checkAccess(ownerID, collection); err != nil {
		return err
	}
	if len(data) == 0 {
		return dErrors.New(dErrors.CodeValidation, "document data is required")
	}
	return nil
}

func (s *Service) loadOwned(ctx context.Context, ownerID id.UserID, collection string, docID id.DocumentID) (*models.Document, error) {
	doc, err := s.store.Get(ctx, collection, docID)
	if err != nil {
		return nil, translateStoreError(err, "failed to load document")
	}
	if doc.OwnerID != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "document belongs to another user")
	}
	return doc, nil
}

func (s *Service) recordWrite(collection, op string) {
	if s.metrics != nil {
		s.metrics.IncrementRecordWrite(collection, op)
	}
}

func (s *Service) startSpan(ctx context.Context, op, collection string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "records."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("records.collection", collection)),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func translateStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "document not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "document already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// resolveServerTimestamps returns a copy of data with every top-level
// server timestamp placeholder replaced by now.
func resolveServerTimestamps(data map[string]any, now time.Time) map[string]any {
	return lo.MapValues(data, func(v any, _ string) any {
		if models.IsServerTimestamp(v) {
			return now.UTC().Format(time.RFC3339Nano)
		}
		return v
	})
}

func (s *Service) logAudit(ctx context.Context, event audit.EventType, attributes ...any) {
	args := append(append([]any{}, attributes...), "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditor == nil {
		return
	}
	userID, _ := id.ParseUserID(attrs.ExtractString(attributes, "user_id"))
	if err := s.auditor.Emit(ctx, audit.Event{
		Type:    event,
		UserID:  userID,
		Subject: attrs.ExtractString(attributes, "collection") + "/" + attrs.ExtractString(attributes, "document_id"),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "error", err, "event", string(event))
	}
}
