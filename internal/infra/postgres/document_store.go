package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"grader-content-api/internal/domain"
)

// DocumentStore keeps documents as JSONB rows keyed by (collection path, id).
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) List(ctx context.Context, collection domain.Path) ([]domain.Document, error) {
	if err := collection.ValidateCollection(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, data FROM documents WHERE collection=$1 ORDER BY id`,
		collection.String())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var doc domain.Document
		var raw []byte
		if err := rows.Scan(&doc.ID, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Data = raw
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentStore) Get(ctx context.Context, doc domain.Path) (domain.Document, error) {
	if err := doc.ValidateDocument(); err != nil {
		return domain.Document{}, err
	}
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND id=$2`,
		doc.Parent().String(), doc.ID()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("load document: %w", err)
	}
	return domain.Document{ID: doc.ID(), Data: raw}, nil
}

func (s *DocumentStore) Set(ctx context.Context, doc domain.Path, data json.RawMessage) error {
	if err := doc.ValidateDocument(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (collection, id) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
		doc.Parent().String(), doc.ID(), string(data))
	if err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
