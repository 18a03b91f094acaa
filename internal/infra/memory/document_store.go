package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"grader-content-api/internal/domain"
)

// DocumentStore is an in-memory implementation of app.DocumentStore.
// Collections are keyed by their path string.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		collections: make(map[string]map[string]json.RawMessage),
	}
}

func (s *DocumentStore) List(_ context.Context, collection domain.Path) ([]domain.Document, error) {
	if err := collection.ValidateCollection(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.collections[collection.String()]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Document{ID: id, Data: slices.Clone(docs[id])})
	}
	return out, nil
}

func (s *DocumentStore) Get(_ context.Context, doc domain.Path) (domain.Document, error) {
	if err := doc.ValidateDocument(); err != nil {
		return domain.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[doc.Parent().String()][doc.ID()]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return domain.Document{ID: doc.ID(), Data: slices.Clone(data)}, nil
}

func (s *DocumentStore) Set(_ context.Context, doc domain.Path, data json.RawMessage) error {
	if err := doc.ValidateDocument(); err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("document %s: body is not valid JSON", doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := doc.Parent().String()
	col, ok := s.collections[key]
	if !ok {
		col = make(map[string]json.RawMessage)
		s.collections[key] = col
	}
	col[doc.ID()] = slices.Clone(data)
	return nil
}
