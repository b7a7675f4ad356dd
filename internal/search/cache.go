package search

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

// Persister is the durable layer behind the in-memory cache. *store.DB
// satisfies it.
type Persister interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
}

// Cache is a lock-protected search-result cache keyed by the exact query
// string (no normalization). One instance is shared by every concurrent
// track in a batch; last write wins since values for the same key are
// equivalent. Misses never fail: persistence problems degrade to a miss.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]domain.SearchCandidate

	persist Persister // optional write-through layer
	ttl     time.Duration
	log     *logger.Logger
}

func NewCache(persist Persister, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		entries: make(map[string][]domain.SearchCandidate),
		persist: persist,
		ttl:     ttl,
		log:     log.WithComponent("search-cache"),
	}
}

// Get returns the cached candidate list for key. The second return reports
// whether the key was present at all; a present key may hold an empty list.
func (c *Cache) Get(key string) ([]domain.SearchCandidate, bool) {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, true
	}

	if c.persist == nil {
		return nil, false
	}

	data, err := c.persist.GetCache(key)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var candidates []domain.SearchCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		c.log.Warn("discarding corrupt cache entry", "key", key, "error", err)
		return nil, false
	}

	c.mu.Lock()
	c.entries[key] = candidates
	c.mu.Unlock()
	return candidates, true
}

// Put stores candidates under key, writing through to the persister when one
// is configured. Empty results are cached in memory only, so a later run
// still gets a fresh chance.
func (c *Cache) Put(key string, candidates []domain.SearchCandidate) {
	c.mu.Lock()
	c.entries[key] = candidates
	c.mu.Unlock()

	if c.persist == nil || len(candidates) == 0 {
		return
	}

	data, err := json.Marshal(candidates)
	if err != nil {
		c.log.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.persist.SetCache(key, data, c.ttl); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}
