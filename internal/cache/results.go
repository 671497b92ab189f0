package cache

import (
	"sync"

	"mediadeck/internal/models"
	"mediadeck/pkg/logger"
)

// QueryKind identifies one logical listing query, e.g. the home catalog or a
// specific search.
type QueryKind string

// HomeQuery is the kind for the default catalog listing.
const HomeQuery QueryKind = "home"

// SearchQuery returns the kind for a search listing.
func SearchQuery(query string) QueryKind {
	return QueryKind("search:" + query)
}

// Persister is the storage collaborator behind the result cache. Persistence
// failures are never fatal; the cache degrades to memory-only for the session.
type Persister interface {
	SaveRows(kind string, rows []models.AggregatedRow, signature string) error
	LoadRows(kind string) (rows []models.AggregatedRow, signature string, err error)
	DeleteRows(kind string) error
}

type resultEntry struct {
	rows      []models.AggregatedRow
	signature string
}

// ResultCache stores the last aggregated rows per query kind alongside the
// configuration signature that produced them. A cached entry is usable only
// under exact signature equality with the current configuration; a mismatch
// is treated as a miss and the stale entry is evicted immediately rather than
// left for a future overwrite.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[QueryKind]resultEntry
	store   Persister
	logger  logger.Logger
}

// NewResultCache creates a ResultCache. store may be nil for a memory-only cache.
func NewResultCache(store Persister, log logger.Logger) *ResultCache {
	return &ResultCache{
		entries: make(map[QueryKind]resultEntry),
		store:   store,
		logger:  log,
	}
}

// Get returns the cached rows for kind if they were produced under the given
// signature. On signature mismatch the stale entry is evicted immediately,
// persisted copy included, and a miss is reported.
func (c *ResultCache) Get(kind QueryKind, signature string) ([]models.AggregatedRow, bool) {
	c.mu.Lock()
	entry, ok := c.entries[kind]
	stale := ok && entry.signature != signature
	if stale {
		delete(c.entries, kind)
		ok = false
	}
	c.mu.Unlock()

	if stale {
		c.evictPersisted(kind)
	}
	if !ok {
		return nil, false
	}
	return entry.rows, true
}

// evictPersisted drops the persisted copy of a stale entry. Like Put, a
// storage failure is logged and the cache degrades to memory-only semantics.
func (c *ResultCache) evictPersisted(kind QueryKind) {
	if c.store == nil {
		return
	}
	if err := c.store.DeleteRows(string(kind)); err != nil {
		c.logger.Warnf("[ResultCache] failed to delete persisted rows for %s: %v", kind, err)
	}
}

// Put stores rows for kind under the given signature and writes them through
// to the persistent store.
func (c *ResultCache) Put(kind QueryKind, rows []models.AggregatedRow, signature string) {
	c.mu.Lock()
	c.entries[kind] = resultEntry{rows: rows, signature: signature}
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.SaveRows(string(kind), rows, signature); err != nil {
		c.logger.Warnf("[ResultCache] failed to persist rows for %s: %v", kind, err)
	}
}

// Warm loads the persisted rows for kind into memory, typically on startup.
func (c *ResultCache) Warm(kind QueryKind) {
	if c.store == nil {
		return
	}
	rows, signature, err := c.store.LoadRows(string(kind))
	if err != nil {
		c.logger.Debugf("[ResultCache] no persisted rows for %s: %v", kind, err)
		return
	}
	if len(rows) == 0 {
		return
	}

	c.mu.Lock()
	c.entries[kind] = resultEntry{rows: rows, signature: signature}
	c.mu.Unlock()
}

// Snapshot returns all cached rows that are valid under the given signature.
// Stale entries encountered along the way are evicted, persisted copies
// included.
func (c *ResultCache) Snapshot(signature string) []models.AggregatedRow {
	c.mu.Lock()
	var out []models.AggregatedRow
	var stale []QueryKind
	for kind, entry := range c.entries {
		if entry.signature != signature {
			delete(c.entries, kind)
			stale = append(stale, kind)
			continue
		}
		out = append(out, entry.rows...)
	}
	c.mu.Unlock()

	for _, kind := range stale {
		c.evictPersisted(kind)
	}
	return out
}
