package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"grader-content-api/internal/app"
	"grader-content-api/internal/domain"
)

// missingMarker is cached for documents the backing store does not have.
const missingMarker = "-"

// DocumentCache caches store reads in Redis and falls back to the backing
// store on a miss. Keys:
//
//	content:doc:{path}   JSON document, or "-" when the document is absent
//	content:list:{path}  JSON array of documents
//
// Redis errors never fail a read; the backing store is used instead.
type DocumentCache struct {
	client  *redis.Client
	backing app.DocumentStore
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
	rndMu   sync.Mutex
}

func NewDocumentCache(client *redis.Client, backing app.DocumentStore, ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *DocumentCache) Get(ctx context.Context, doc domain.Path) (domain.Document, error) {
	key := docKey(doc)
	if found, hit := c.cachedDoc(ctx, key); hit {
		return found.result()
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if found, hit := c.cachedDoc(ctx, key); hit {
			return found, nil
		}
		loaded, err := c.backing.Get(ctx, doc)
		entry := docEntry{doc: loaded}
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrDocumentNotFound):
			entry.missing = true
		default:
			return nil, err
		}
		c.store(ctx, key, entry.encode())
		return entry, nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return result.(docEntry).result()
}

func (c *DocumentCache) List(ctx context.Context, collection domain.Path) ([]domain.Document, error) {
	key := listKey(collection)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var docs []domain.Document
		if err := json.Unmarshal(raw, &docs); err == nil {
			return docs, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("redis list read failed", "key", key, "error", err)
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		docs, err := c.backing.List(ctx, collection)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(docs); err == nil {
			c.store(ctx, key, string(raw))
		}
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Document), nil
}

// Set writes through and evicts the document and its parent listing.
func (c *DocumentCache) Set(ctx context.Context, doc domain.Path, data json.RawMessage) error {
	if err := c.backing.Set(ctx, doc, data); err != nil {
		return err
	}
	if err := c.client.Del(ctx, docKey(doc), listKey(doc.Parent())).Err(); err != nil {
		slog.Warn("redis evict failed", "path", doc.String(), "error", err)
	}
	return nil
}

// Ping checks Redis and the backing store.
func (c *DocumentCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return err
	}
	if p, ok := c.backing.(app.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *DocumentCache) cachedDoc(ctx context.Context, key string) (docEntry, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis read failed", "key", key, "error", err)
		}
		return docEntry{}, false
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		return docEntry{}, false
	}
	return entry, true
}

func (c *DocumentCache) store(ctx context.Context, key, value string) {
	ttl := c.ttlWithJitter()
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("redis write failed", "key", key, "error", err)
	}
}

func docKey(p domain.Path) string {
	return "content:doc:" + p.String()
}

func listKey(p domain.Path) string {
	return "content:list:" + p.String()
}

type docEntry struct {
	doc     domain.Document
	missing bool
}

func (e docEntry) encode() string {
	if e.missing {
		return missingMarker
	}
	raw, err := json.Marshal(e.doc)
	if err != nil {
		return missingMarker
	}
	return string(raw)
}

func decodeEntry(raw string) (docEntry, error) {
	if raw == missingMarker {
		return docEntry{missing: true}, nil
	}
	var doc domain.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return docEntry{}, err
	}
	return docEntry{doc: doc}, nil
}

func (e docEntry) result() (domain.Document, error) {
	if e.missing {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return e.doc, nil
}

func (c *DocumentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
