// Package search finds candidate audio sources for a track across platforms
// using a tiered escalation strategy with content and duration filtering.
package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/cesargomez89/tunegrab/internal/constants"
	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/logger"
)

// Backend runs one platform search spec, e.g. "ytsearch5:artist title".
type Backend interface {
	Search(ctx context.Context, spec string, platform domain.Platform) ([]domain.SearchCandidate, error)
}

// tier is one step of the escalation: narrow before wide, primary platform
// before secondary.
type tier struct {
	prefix   string
	count    int
	platform domain.Platform
}

var tiers = []tier{
	{"ytsearch", constants.NarrowResultCount, domain.PlatformYouTube},
	{"ytsearch", constants.WideResultCount, domain.PlatformYouTube},
	{"scsearch", constants.NarrowResultCount, domain.PlatformSoundCloud},
	{"scsearch", constants.WideResultCount, domain.PlatformSoundCloud},
}

func (t tier) spec(query string) string {
	return t.prefix + strconv.Itoa(t.count) + ":" + query
}

// Engine is the source search engine. The cache is shared across all
// concurrent users of the engine.
type Engine struct {
	backend Backend
	cache   *Cache
	log     *logger.Logger
}

func NewEngine(backend Backend, cache *Cache, log *logger.Logger) *Engine {
	return &Engine{
		backend: backend,
		cache:   cache,
		log:     log.WithComponent("search"),
	}
}

// Search runs the tiered strategy for a track query, stopping at the first
// tier that yields at least one candidate surviving the filters. Survivors
// are sorted by popularity, descending. An empty result is not an error.
func (e *Engine) Search(ctx context.Context, query domain.TrackQuery) ([]domain.SearchCandidate, error) {
	key := query.String()
	if cached, ok := e.cache.Get(key); ok {
		e.log.Debug("search cache hit", "query", key)
		return cached, nil
	}

	for _, t := range tiers {
		candidates, err := e.backend.Search(ctx, t.spec(key), t.platform)
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", t.spec(key), err)
		}

		usable := Filter(candidates)
		if len(usable) == 0 {
			continue
		}

		Rank(usable)
		e.cache.Put(key, usable)
		return usable, nil
	}

	e.cache.Put(key, nil)
	return nil, nil
}

// SearchPlatform runs narrow-then-wide on a single platform, bypassing the
// cache. The orchestrator's fallback chain uses it to retry the secondary
// platform after a failed fetch.
func (e *Engine) SearchPlatform(ctx context.Context, query domain.TrackQuery, platform domain.Platform) ([]domain.SearchCandidate, error) {
	prefix := "ytsearch"
	if platform == domain.PlatformSoundCloud {
		prefix = "scsearch"
	}

	for _, count := range []int{constants.NarrowResultCount, constants.WideResultCount} {
		spec := prefix + strconv.Itoa(count) + ":" + query.String()
		candidates, err := e.backend.Search(ctx, spec, platform)
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", spec, err)
		}

		usable := Filter(candidates)
		if len(usable) > 0 {
			Rank(usable)
			return usable, nil
		}
	}
	return nil, nil
}

// Rank sorts candidates descending by view count.
func Rank(candidates []domain.SearchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ViewCount > candidates[j].ViewCount
	})
}
