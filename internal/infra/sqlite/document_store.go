// Package sqlite stores documents in a single SQLite file for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"grader-content-api/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	PRIMARY KEY (collection, id)
) WITHOUT ROWID;
`

// DocumentStore is a SQLite-backed app.DocumentStore.
type DocumentStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DocumentStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &DocumentStore{db: db}, nil
}

func (s *DocumentStore) Close() error {
	return s.db.Close()
}

func (s *DocumentStore) List(ctx context.Context, collection domain.Path) ([]domain.Document, error) {
	if err := collection.ValidateCollection(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY id`,
		collection.String())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, domain.Document{ID: id, Data: json.RawMessage(data)})
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
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		doc.Parent().String(), doc.ID()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("load document: %w", err)
	}
	return domain.Document{ID: doc.ID(), Data: json.RawMessage(data)}, nil
}

func (s *DocumentStore) Set(ctx context.Context, doc domain.Path, data json.RawMessage) error {
	if err := doc.ValidateDocument(); err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("document %s: body is not valid JSON", doc)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET
		   data = excluded.data,
		   updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		doc.Parent().String(), doc.ID(), string(data))
	if err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
