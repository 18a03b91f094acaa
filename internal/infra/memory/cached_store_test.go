package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"grader-content-api/internal/domain"
)

func TestCachedStoreCachesGets(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{DocumentStore: NewDocumentStore()}
	path := domain.QuizPath("5", "math", "basics", "quiz1")
	if err := backing.Set(ctx, path, json.RawMessage(`{"name":"Quiz"}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := NewCachedStore(backing, time.Minute)

	if _, err := repo.Get(ctx, path); err != nil {
		t.Fatalf("get: %v", err)
	}
	if backing.gets != 1 {
		t.Fatalf("expected backing get once, got %d", backing.gets)
	}

	if _, err := repo.Get(ctx, path); err != nil {
		t.Fatalf("get 2: %v", err)
	}
	if backing.gets != 1 {
		t.Fatalf("expected cache hit, backing gets %d", backing.gets)
	}
}

func TestCachedStoreCachesMisses(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{DocumentStore: NewDocumentStore()}
	repo := NewCachedStore(backing, time.Minute)
	path := domain.QuizPath("5", "math", "basics", "nope")

	for i := 0; i < 2; i++ {
		if _, err := repo.Get(ctx, path); !errors.Is(err, domain.ErrDocumentNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if backing.gets != 1 {
		t.Fatalf("expected miss to be cached, backing gets %d", backing.gets)
	}
}

func TestCachedStoreExpires(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{DocumentStore: NewDocumentStore()}
	repo := NewCachedStore(backing, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	col := domain.SubjectsPath("5")
	if _, err := repo.List(ctx, col); err != nil {
		t.Fatalf("list: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.List(ctx, col); err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if backing.lists != 2 {
		t.Fatalf("expected reload after expiry, backing lists %d", backing.lists)
	}
}

func TestCachedStoreSetInvalidates(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{DocumentStore: NewDocumentStore()}
	repo := NewCachedStore(backing, time.Minute)
	col := domain.SubjectsPath("5")

	docs, err := repo.List(ctx, col)
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected empty list, got %v %v", docs, err)
	}
	if err := repo.Set(ctx, col.Doc("math"), json.RawMessage(`{}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	docs, err = repo.List(ctx, col)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "math" {
		t.Fatalf("expected fresh list after set, got %+v", docs)
	}
}

func TestCachedStoreZeroTTLDisablesCaching(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{DocumentStore: NewDocumentStore()}
	repo := NewCachedStore(backing, 0)
	col := domain.SubjectsPath("5")

	_, _ = repo.List(ctx, col)
	_, _ = repo.List(ctx, col)
	if backing.lists != 2 {
		t.Fatalf("expected no caching with zero ttl, backing lists %d", backing.lists)
	}
}

type countingStore struct {
	*DocumentStore
	gets  int
	lists int
}

func (s *countingStore) Get(ctx context.Context, doc domain.Path) (domain.Document, error) {
	s.gets++
	return s.DocumentStore.Get(ctx, doc)
}

func (s *countingStore) List(ctx context.Context, collection domain.Path) ([]domain.Document, error) {
	s.lists++
	return s.DocumentStore.List(ctx, collection)
}

func TestCachedStoreSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	repo := NewCachedStore(NewDocumentStore(), time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	chapters := domain.ChaptersPath("5", "math")
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("missing-%d", i)
		if _, err := repo.Get(ctx, chapters.Doc(id)); !errors.Is(err, domain.ErrDocumentNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if _, err := repo.List(ctx, domain.QuizzesPath("5", "math", id)); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if len(repo.docs) != 1000 || len(repo.lists) != 1000 {
		t.Fatalf("expected entries cached, docs=%d lists=%d", len(repo.docs), len(repo.lists))
	}

	now = now.Add(time.Hour)
	if _, err := repo.Get(ctx, chapters.Doc("one-more")); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(repo.docs) != 1 || len(repo.lists) != 0 {
		t.Fatalf("expected expired entries swept, docs=%d lists=%d", len(repo.docs), len(repo.lists))
	}
}

func TestCachedStoreDropsExpiredEntryOnLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewCachedStore(NewDocumentStore(), time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	col := domain.SubjectsPath("5")
	if _, err := repo.List(ctx, col); err != nil {
		t.Fatalf("list: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, ok := repo.cachedList(col.String()); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if _, ok := repo.lists[col.String()]; ok {
		t.Fatalf("expected expired entry removed")
	}
}

func TestCachedStoreBoundsEntries(t *testing.T) {
	ctx := context.Background()
	repo := NewCachedStore(NewDocumentStore(), time.Hour)
	repo.maxEntries = 3

	chapters := domain.ChaptersPath("5", "math")
	for i := 0; i < 10; i++ {
		_, _ = repo.Get(ctx, chapters.Doc(fmt.Sprintf("missing-%d", i)))
		_, _ = repo.List(ctx, domain.QuizzesPath("5", "math", fmt.Sprintf("missing-%d", i)))
	}
	if len(repo.docs) > 3 || len(repo.lists) > 3 {
		t.Fatalf("expected at most 3 entries each, docs=%d lists=%d", len(repo.docs), len(repo.lists))
	}
}

func TestCachedStoreZeroTTLStoresNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewCachedStore(NewDocumentStore(), 0)
	_, _ = repo.Get(ctx, domain.QuizPath("5", "math", "basics", "nope"))
	_, _ = repo.List(ctx, domain.SubjectsPath("5"))
	if len(repo.docs) != 0 || len(repo.lists) != 0 {
		t.Fatalf("expected empty cache, docs=%d lists=%d", len(repo.docs), len(repo.lists))
	}
}
