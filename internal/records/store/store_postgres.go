package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"cadastro/internal/platform/postgres"
	"cadastro/internal/records/models"
	id "cadastro/pkg/domain"
	"cadastro/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

var documentColumns = []string{"id", "collection", "owner_id", "data", "created_at", "updated_at"}

// PostgresStore keeps documents in a single JSONB table keyed by
// collection.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, doc *models.Document) error {
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encode document data: %w", err)
	}

	query, args, err := postgres.QB.
		Insert("documents").
		Columns(documentColumns...).
		Values(uuid.UUID(doc.ID), doc.Collection, uuid.UUID(doc.OwnerID), string(data), doc.CreatedAt, doc.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert document query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection string, docID id.DocumentID) (*models.Document, error) {
	query, args, err := postgres.QB.
		Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"collection": collection, "id": uuid.UUID(docID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get document query: %w", err)
	}

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, collection string, ownerID id.UserID) ([]*models.Document, error) {
	query, args, err := postgres.QB.
		Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"collection": collection, "owner_id": uuid.UUID(ownerID)}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list documents query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) Update(ctx context.Context, doc *models.Document) error {
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encode document data: %w", err)
	}

	query, args, err := postgres.QB.
		Update("documents").
		Set("data", string(data)).
		Set("updated_at", doc.UpdatedAt).
		Where(sq.Eq{"collection": doc.Collection, "id": uuid.UUID(doc.ID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update document query: %w", err)
	}
	return s.execAffectingOne(ctx, "update document", query, args)
}

func (s *PostgresStore) Delete(ctx context.Context, collection string, docID id.DocumentID) error {
	query, args, err := postgres.QB.
		Delete("documents").
		Where(sq.Eq{"collection": collection, "id": uuid.UUID(docID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete document query: %w", err)
	}
	return s.execAffectingOne(ctx, "delete document", query, args)
}

func (s *PostgresStore) execAffectingOne(ctx context.Context, op, query string, args []any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc       models.Document
		docID     uuid.UUID
		ownerID   uuid.UUID
		raw       []byte
		updatedAt sql.NullTime
	)
	if err := row.Scan(&docID, &doc.Collection, &ownerID, &raw, &doc.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return nil, fmt.Errorf("decode document data: %w", err)
	}
	doc.ID = id.DocumentID(docID)
	doc.OwnerID = id.UserID(ownerID)
	if updatedAt.Valid {
		at := updatedAt.Time
		doc.UpdatedAt = &at
	}
	return &doc, nil
}

