package shopdesk

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/shopdesk/locale"
)

type pageKey struct {
	slug   string
	locale locale.Locale
}

type cachedPage struct {
	view    PageView
	fetched time.Time
}

// PageCache is an in-memory cache of published page views keyed by slug and
// locale, with a TTL. Any content write invalidates it.
type PageCache struct {
	mu    sync.RWMutex
	pages map[pageKey]cachedPage
	// gen is bumped by Invalidate; loads started under an older gen are
	// returned but not stored.
	gen   uint64
	ttl   time.Duration
	load  func(ctx context.Context, slug string, loc locale.Locale) (PageView, error)
	now   func() time.Time
}

// NewPageCache creates a PageCache that loads misses through load.
func NewPageCache(ttl time.Duration, load func(ctx context.Context, slug string, loc locale.Locale) (PageView, error)) *PageCache {
	return &PageCache{
		pages: make(map[pageKey]cachedPage),
		ttl:   ttl,
		load:  load,
		now:   time.Now,
	}
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.pages = make(map[pageKey]cachedPage)
	c.gen++
	c.mu.Unlock()
}

// Get returns the page view for slug in loc. It tries a read lock first and
// only takes the write lock to store a fresh load. Errors are not cached, and
// a load that overlaps an Invalidate is not cached either.
func (c *PageCache) Get(ctx context.Context, slug string, loc locale.Locale) (PageView, error) {
	key := pageKey{slug: slug, locale: loc}
	c.mu.RLock()
	entry, ok := c.pages[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetched) < c.ttl {
		return entry.view, nil
	}

	view, err := c.load(ctx, slug, loc)
	if err != nil {
		return PageView{}, err
	}
	c.mu.Lock()
	if c.gen == gen {
		c.pages[key] = cachedPage{view: view, fetched: c.now()}
	}
	c.mu.Unlock()
	return view, nil
}

// Len returns the number of cached entries.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
