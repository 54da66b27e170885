// Package query keeps one paginated, de-duplicated list of recommendations per
// Key and keeps those lists consistent across archive and unarchive actions.
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/recdash/recdash/pkg/debounce"
	"github.com/recdash/recdash/pkg/recommendations"
)

const (
	DefaultStaleTime     = 5 * time.Minute
	DefaultGCTime        = 10 * time.Minute
	DefaultRefetchDelay  = 100 * time.Millisecond
	DefaultFetchTimeout  = 30 * time.Second
	DefaultTagsStaleTime = 10 * time.Minute

	// maxRefetchAttempts bounds how often one refetch starts over because
	// the list changed while its pages were loading.
	maxRefetchAttempts = 3
)

// errDropped marks a fetch whose result arrived for an entry that has since been replaced.
var errDropped = errors.New("query: result dropped for a replaced entry")

// Fetcher loads one page of a list. *recommendations.Service implements it.
type Fetcher interface {
	GetRecommendations(ctx context.Context, f recommendations.Filter) (*recommendations.Page, error)
	AvailableTags(ctx context.Context) (recommendations.AvailableTags, error)
}

type Options struct {
	StaleTime     time.Duration
	GCTime        time.Duration
	RefetchDelay  time.Duration
	FetchTimeout  time.Duration
	TagsStaleTime time.Duration
	Clock         clockwork.Clock
	Log           Logger // optional; nil = no logging
}

// View is the state of one list as shown to the user.
type View struct {
	Key           Key
	Items         []recommendations.Recommendation
	TotalCount    int
	HasNextPage   bool
	AvailableTags recommendations.AvailableTags
	Pages         int
	// Err is the last failed fetch. Cached pages are kept alongside it.
	Err        error
	IsFetching bool
	IsStale    bool
	UpdatedAt  time.Time
}

// Loaded reports whether at least one page was fetched.
func (v View) Loaded() bool { return v.Pages > 0 }

type entry struct {
	key Key
	// gen changes whenever the cached pages or their validity change. A
	// refetch only lands when gen is unchanged since it started.
	gen        uint64
	pages      []recommendations.Page
	err        error
	updatedAt  time.Time
	lastAccess time.Time
	invalid    bool
	fetching   bool
}

type Cache struct {
	fetcher Fetcher
	clock   clockwork.Clock
	log     Logger
	opts    Options

	mu      sync.Mutex
	entries map[Key]*entry
	tags    tagsEntry

	group   singleflight.Group
	refetch *debounce.Debouncer[struct{}]
	wg      sync.WaitGroup
}

// New creates a cache and starts its invalidation loop. Call Close to stop it.
func New(f Fetcher, opts Options) *Cache {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.GCTime <= 0 {
		opts.GCTime = DefaultGCTime
	}
	if opts.RefetchDelay <= 0 {
		opts.RefetchDelay = DefaultRefetchDelay
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.TagsStaleTime <= 0 {
		opts.TagsStaleTime = DefaultTagsStaleTime
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}

	c := &Cache{
		fetcher: f,
		clock:   opts.Clock,
		log:     log,
		opts:    opts,
		entries: make(map[Key]*entry),
		refetch: debounce.New(opts.Clock, opts.RefetchDelay, struct{}{}),
	}
	c.wg.Add(1)
	go c.invalidationLoop()
	return c
}

// Close stops the invalidation loop. In-flight fetches finish on their own.
func (c *Cache) Close() {
	c.refetch.Stop()
	c.wg.Wait()
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key.id()]
	if !ok {
		e = &entry{}
		c.entries[key.id()] = e
	}
	e.key = key
	return e
}

func (c *Cache) staleLocked(e *entry) bool {
	return e.invalid || c.clock.Since(e.updatedAt) >= c.opts.StaleTime
}

func (c *Cache) snapshotLocked(e *entry) View {
	v := View{
		Key:        e.key,
		Items:      Flatten(e.pages),
		TotalCount: totalCount(e.pages),
		Pages:      len(e.pages),
		Err:        e.err,
		IsFetching: e.fetching,
		UpdatedAt:  e.updatedAt,
	}
	if len(e.pages) > 0 {
		_, v.HasNextPage = hasNextPage(e.pages)
		v.AvailableTags = e.pages[0].AvailableTags
		v.IsStale = c.staleLocked(e)
	}
	return v
}

// Peek returns the cached view of key without fetching or touching its access time.
func (c *Cache) Peek(key Key) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.id()]
	if !ok {
		return View{Key: key}, false
	}
	return c.snapshotLocked(e), true
}

// View returns the list for key. With nothing cached it waits for the first
// page. Stale data is returned at once while a refetch runs in the background.
func (c *Cache) View(ctx context.Context, key Key) View {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.lastAccess = c.clock.Now()
	loaded := len(e.pages) > 0
	stale := loaded && c.staleLocked(e)
	c.mu.Unlock()

	switch {
	case !loaded:
		if err := c.wait(ctx, c.startRefetch(key)); err != nil && ctx.Err() != nil {
			v, _ := c.Peek(key)
			v.Err = ctx.Err()
			return v
		}
	case stale:
		c.log.Debugf("Refetching stale list %s", key)
		c.startRefetch(key)
	}

	v, _ := c.Peek(key)
	return v
}

// FetchNextPage appends the page after the last cached one. Without a next
// cursor it does nothing. Concurrent calls for one key share a single request.
func (c *Cache) FetchNextPage(ctx context.Context, key Key) (View, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.lastAccess = c.clock.Now()
	_, more := hasNextPage(e.pages)
	c.mu.Unlock()

	if !more {
		v, _ := c.Peek(key)
		return v, nil
	}
	err := c.wait(ctx, c.group.DoChan(key.String()+"/next", func() (interface{}, error) {
		return nil, c.fetchNext(key)
	}))
	v, _ := c.Peek(key)
	if errors.Is(err, errDropped) {
		err = nil
	}
	return v, err
}

func (c *Cache) wait(ctx context.Context, ch <-chan singleflight.Result) error {
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchContext is detached from any caller so a late completion still lands in the cache.
func (c *Cache) fetchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.opts.FetchTimeout)
}

// begin marks the entry as fetching and returns it with its generation, or nil if it was evicted.
func (c *Cache) begin(key Key) (*entry, uint64, []recommendations.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.id()]
	if !ok {
		return nil, 0, nil
	}
	e.fetching = true
	return e, e.gen, e.pages
}

// liveLocked reports whether e is still the cached entry for its key.
func (c *Cache) liveLocked(e *entry) bool {
	return c.entries[e.key.id()] == e
}

func (c *Cache) fail(e *entry, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.liveLocked(e) {
		c.log.Debugf("Dropping failed fetch for replaced list %s", e.key)
		return errDropped
	}
	e.fetching = false
	e.err = err
	c.log.Warnf("Fetching %s failed: %v", e.key, err)
	return err
}

func (c *Cache) startRefetch(key Key) <-chan singleflight.Result {
	return c.group.DoChan(key.String(), func() (interface{}, error) {
		return nil, c.refetchPages(key)
	})
}

// refetchPages reloads the list from the first page, as many pages as were cached.
// The new sequence replaces the old one only once every page has arrived. When
// the list was changed or invalidated meanwhile the result is stale, and the
// refetch starts over so callers waiting on it see the server's newer state.
func (c *Cache) refetchPages(key Key) error {
	for attempt := 1; ; attempt++ {
		e, gen, old := c.begin(key)
		if e == nil {
			return errDropped
		}
		pages, err := c.loadPages(key, len(old))
		if err != nil {
			return c.fail(e, err)
		}

		c.mu.Lock()
		if !c.liveLocked(e) {
			c.mu.Unlock()
			c.log.Debugf("Dropping refetch for replaced list %s", key)
			return errDropped
		}
		if e.gen != gen {
			if attempt < maxRefetchAttempts {
				c.mu.Unlock()
				c.log.Debugf("List %s changed while refetching, starting over", key)
				continue
			}
			e.fetching = false
			c.mu.Unlock()
			c.log.Debugf("List %s kept changing, retrying later", key)
			c.refetch.Set(struct{}{})
			return errDropped
		}
		e.pages = pages
		e.gen++
		e.err = nil
		e.invalid = false
		e.fetching = false
		e.updatedAt = c.clock.Now()
		c.mu.Unlock()
		return nil
	}
}

// loadPages fetches up to want pages of key from the first one, at least one.
func (c *Cache) loadPages(key Key, want int) ([]recommendations.Page, error) {
	if want == 0 {
		want = 1
	}
	ctx, cancel := c.fetchContext()
	defer cancel()

	var pages []recommendations.Page
	cursor := ""
	for {
		page, err := c.fetcher.GetRecommendations(ctx, key.Filter(cursor))
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
		next, ok := page.NextCursor()
		if !ok || len(pages) >= want {
			return pages, nil
		}
		cursor = next
	}
}

// fetchNext appends the page after the last cached one. The page lands as long
// as the cached list still ends at the cursor it was requested with.
func (c *Cache) fetchNext(key Key) error {
	e, _, pages := c.begin(key)
	if e == nil {
		return errDropped
	}
	cursor, ok := hasNextPage(pages)
	if !ok {
		c.mu.Lock()
		e.fetching = false
		c.mu.Unlock()
		return nil
	}

	ctx, cancel := c.fetchContext()
	defer cancel()

	page, err := c.fetcher.GetRecommendations(ctx, key.Filter(cursor))
	if err != nil {
		return c.fail(e, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.liveLocked(e) {
		c.log.Debugf("Dropping page for replaced list %s", key)
		return errDropped
	}
	if last, ok := hasNextPage(e.pages); !ok || last != cursor {
		e.fetching = false
		c.log.Debugf("Dropping page for reloaded list %s", key)
		return errDropped
	}
	next := make([]recommendations.Page, len(e.pages), len(e.pages)+1)
	copy(next, e.pages)
	e.pages = append(next, *page)
	e.gen++
	e.err = nil
	e.fetching = false
	e.updatedAt = c.clock.Now()
	return nil
}

// Remove drops id from the cached pages of key without asking the server.
// It reports whether id was cached.
func (c *Cache) Remove(key Key, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.id()]
	if !ok {
		return false
	}
	pages, found := RemoveFromPages(e.pages, id)
	if found {
		e.pages = pages
		e.gen++
	}
	return found
}

// Invalidate marks every list stale and schedules a refetch of the lists
// viewed recently. Bursts of calls collapse into one refetch.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	for _, e := range c.entries {
		e.invalid = true
		e.gen++
	}
	c.mu.Unlock()
	c.refetch.Set(struct{}{})
}

func (c *Cache) invalidationLoop() {
	defer c.wg.Done()
	for range c.refetch.Changes() {
		c.refetchInvalid()
	}
}

func (c *Cache) refetchInvalid() {
	c.mu.Lock()
	var keys []Key
	for _, e := range c.entries {
		if e.invalid && len(e.pages) > 0 && c.clock.Since(e.lastAccess) < c.opts.StaleTime {
			keys = append(keys, e.key)
		}
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.log.Debugf("Refetching invalidated list %s", k)
		c.startRefetch(k)
	}
}

// Sweep evicts lists that have not been accessed for the GC time and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if e.fetching {
			continue
		}
		if c.clock.Since(e.lastAccess) >= c.opts.GCTime {
			delete(c.entries, k)
			n++
		}
	}
	if n > 0 {
		c.log.Debugf("Evicted %d cached lists", n)
	}
	return n
}

// Len returns the number of cached lists.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every cached list, including the available tags. Results of
// fetches still in flight are discarded when they arrive.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
	c.tags = tagsEntry{gen: c.tags.gen + 1}
}
