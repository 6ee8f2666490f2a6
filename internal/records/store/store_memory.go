package store

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"

	"cadastro/internal/records/models"
	id "cadastro/pkg/domain"
	"cadastro/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[id.DocumentID]*models.Document
}

func New() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]map[id.DocumentID]*models.Document)}
}

func (s *InMemoryStore) Insert(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.docs[doc.Collection]
	if !ok {
		coll = make(map[id.DocumentID]*models.Document)
		s.docs[doc.Collection] = coll
	}
	if _, exists := coll[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	coll[doc.ID] = cloneDocument(doc)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, collection string, docID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[collection][docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, collection string, ownerID id.UserID) ([]*models.Document, error) {
	s.mu.RLock()
	owned := lo.FilterMap(lo.Values(s.docs[collection]), func(doc *models.Document, _ int) (*models.Document, bool) {
		if doc.OwnerID != ownerID {
			return nil, false
		}
		return cloneDocument(doc), true
	})
	s.mu.RUnlock()

	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (s *InMemoryStore) Update(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.Collection][doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.docs[doc.Collection][doc.ID] = cloneDocument(doc)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, collection string, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collection][docID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs[collection], docID)
	return nil
}

func cloneDocument(doc *models.Document) *models.Document {
	c := *doc
	c.Data = cloneData(doc.Data)
	if doc.UpdatedAt != nil {
		at := *doc.UpdatedAt
		c.UpdatedAt = &at
	}
	return &c
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	return lo.MapValues(data, func(v any, _ string) any {
		switch tv := v.(type) {
		case map[string]any:
			return cloneData(tv)
		case []any:
			return append([]any(nil), tv...)
		default:
			return v
		}
	})
}
