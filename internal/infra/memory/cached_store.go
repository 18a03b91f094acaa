package memory

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"grader-content-api/internal/app"
	"grader-content-api/internal/domain"
)

// DefaultMaxEntries bounds each of the document and listing maps.
const DefaultMaxEntries = 10000

// CachedStore caches reads of a backing store with a TTL to avoid repeated
// round trips. Writes go through to the backing store and drop the affected
// entries. Expired entries are swept at most once per TTL, and each map holds
// at most maxEntries keys; a full map evicts an arbitrary entry.
type CachedStore struct {
	backing    app.DocumentStore
	ttl        time.Duration
	maxEntries int
	clock      func() time.Time
	sf         singleflight.Group
	rnd        *rand.Rand
	rndMu      sync.Mutex

	mu        sync.RWMutex
	docs      map[string]cachedDoc
	lists     map[string]cachedList
	nextSweep time.Time
}

type cachedDoc struct {
	doc       domain.Document
	missing   bool
	expiresAt time.Time
}

type cachedList struct {
	docs      []domain.Document
	expiresAt time.Time
}

func NewCachedStore(backing app.DocumentStore, ttl time.Duration) *CachedStore {
	return &CachedStore{
		backing:    backing,
		ttl:        ttl,
		maxEntries: DefaultMaxEntries,
		clock:      time.Now,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		docs:       make(map[string]cachedDoc),
		lists:      make(map[string]cachedList),
	}
}

func (c *CachedStore) Get(ctx context.Context, doc domain.Path) (domain.Document, error) {
	key := doc.String()
	if entry, ok := c.cachedDoc(key); ok {
		return entry.result()
	}

	result, err, _ := c.sf.Do("doc:"+key, func() (interface{}, error) {
		if entry, ok := c.cachedDoc(key); ok {
			return entry, nil
		}
		now := c.clock()
		found, err := c.backing.Get(ctx, doc)
		entry := cachedDoc{doc: found, expiresAt: now.Add(c.ttlWithJitter())}
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrDocumentNotFound):
			entry.missing = true
		default:
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.sweepLocked(now)
			evictIfFull(c.docs, c.maxEntries)
			c.docs[key] = entry
			c.mu.Unlock()
		}
		return entry, nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return result.(cachedDoc).result()
}

func (c *CachedStore) List(ctx context.Context, collection domain.Path) ([]domain.Document, error) {
	key := collection.String()
	if entry, ok := c.cachedList(key); ok {
		return cloneDocs(entry.docs), nil
	}

	result, err, _ := c.sf.Do("list:"+key, func() (interface{}, error) {
		if entry, ok := c.cachedList(key); ok {
			return entry.docs, nil
		}
		now := c.clock()
		docs, err := c.backing.List(ctx, collection)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.sweepLocked(now)
			evictIfFull(c.lists, c.maxEntries)
			c.lists[key] = cachedList{docs: docs, expiresAt: now.Add(c.ttlWithJitter())}
			c.mu.Unlock()
		}
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneDocs(result.([]domain.Document)), nil
}

func (c *CachedStore) Set(ctx context.Context, doc domain.Path, data json.RawMessage) error {
	if err := c.backing.Set(ctx, doc, data); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.docs, doc.String())
	delete(c.lists, doc.Parent().String())
	c.mu.Unlock()
	return nil
}

// Ping forwards to the backing store when it supports pinging.
func (c *CachedStore) Ping(ctx context.Context) error {
	if p, ok := c.backing.(app.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *CachedStore) cachedDoc(key string) (cachedDoc, bool) {
	now := c.clock()
	c.mu.RLock()
	entry, ok := c.docs[key]
	c.mu.RUnlock()
	if !ok {
		return cachedDoc{}, false
	}
	if !entry.expiresAt.After(now) {
		c.mu.Lock()
		if e, ok := c.docs[key]; ok && !e.expiresAt.After(now) {
			delete(c.docs, key)
		}
		c.mu.Unlock()
		return cachedDoc{}, false
	}
	return entry, true
}

func (c *CachedStore) cachedList(key string) (cachedList, bool) {
	now := c.clock()
	c.mu.RLock()
	entry, ok := c.lists[key]
	c.mu.RUnlock()
	if !ok {
		return cachedList{}, false
	}
	if !entry.expiresAt.After(now) {
		c.mu.Lock()
		if e, ok := c.lists[key]; ok && !e.expiresAt.After(now) {
			delete(c.lists, key)
		}
		c.mu.Unlock()
		return cachedList{}, false
	}
	return entry, true
}

// sweepLocked drops every expired entry once per TTL. c.mu must be held.
func (c *CachedStore) sweepLocked(now time.Time) {
	if now.Before(c.nextSweep) {
		return
	}
	for k, e := range c.docs {
		if !e.expiresAt.After(now) {
			delete(c.docs, k)
		}
	}
	for k, e := range c.lists {
		if !e.expiresAt.After(now) {
			delete(c.lists, k)
		}
	}
	c.nextSweep = now.Add(c.ttl)
}

func evictIfFull[V any](m map[string]V, limit int) {
	if limit <= 0 {
		return
	}
	for k := range m {
		if len(m) < limit {
			return
		}
		delete(m, k)
	}
}

func (e cachedDoc) result() (domain.Document, error) {
	if e.missing {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return domain.Document{ID: e.doc.ID, Data: slices.Clone(e.doc.Data)}, nil
}

func cloneDocs(docs []domain.Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, d := range docs {
		out[i] = domain.Document{ID: d.ID, Data: slices.Clone(d.Data)}
	}
	return out
}

func (c *CachedStore) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
