// Package firestore adapts a Google Cloud Firestore database to the document
// store. Paths map one to one onto Firestore collection and document paths.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"grader-content-api/internal/domain"
)

// DocumentStore reads and writes documents through a Firestore client.
type DocumentStore struct {
	client *firestore.Client
}

// Open connects to projectID. credentialsFile is the service-account JSON
// key; it may be empty only when FIRESTORE_EMULATOR_HOST is set.
func Open(ctx context.Context, projectID, credentialsFile string, emulator bool) (*DocumentStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id is empty")
	}
	var opts []option.ClientOption
	switch {
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	case !emulator:
		return nil, fmt.Errorf("firestore credentials file is required (set firestore.credentials_file or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &DocumentStore{client: client}, nil
}

// NewDocumentStore wraps an existing client.
func NewDocumentStore(client *firestore.Client) *DocumentStore {
	return &DocumentStore{client: client}
}

func (s *DocumentStore) Close() error {
	return s.client.Close()
}

func (s *DocumentStore) List(ctx context.Context, collection domain.Path) ([]domain.Document, error) {
	if err := collection.ValidateCollection(); err != nil {
		return nil, err
	}
	iter := s.client.Collection(collection.String()).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	docs := make([]domain.Document, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		data, err := json.Marshal(snap.Data())
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", snap.Ref.Path, err)
		}
		docs = append(docs, domain.Document{ID: snap.Ref.ID, Data: data})
	}
	return docs, nil
}

func (s *DocumentStore) Get(ctx context.Context, doc domain.Path) (domain.Document, error) {
	if err := doc.ValidateDocument(); err != nil {
		return domain.Document{}, err
	}
	snap, err := s.client.Doc(doc.String()).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("get %s: %w", doc, err)
	}
	data, err := json.Marshal(snap.Data())
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode %s: %w", doc, err)
	}
	return domain.Document{ID: snap.Ref.ID, Data: data}, nil
}

func (s *DocumentStore) Set(ctx context.Context, doc domain.Path, data json.RawMessage) error {
	if err := doc.ValidateDocument(); err != nil {
		return err
	}
	fields, err := decodeFields(data)
	if err != nil {
		return fmt.Errorf("document %s: %w", doc, err)
	}
	if _, err := s.client.Doc(doc.String()).Set(ctx, fields); err != nil {
		return fmt.Errorf("set %s: %w", doc, err)
	}
	return nil
}

// decodeFields turns a JSON object into Firestore field values. Integral
// numbers become int64 so they read back as integers rather than doubles.
func decodeFields(data json.RawMessage) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("body must be a JSON object")
	}
	return normalize(raw).(map[string]interface{}), nil
}

func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case []interface{}:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if n, err := t.Int64(); err == nil {
				return n
			}
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}
