package query

import (
	"context"
	"time"

	"github.com/recdash/recdash/pkg/recommendations"
)

const tagsFlightKey = "available-tags"

type tagsEntry struct {
	gen       uint64
	tags      recommendations.AvailableTags
	loaded    bool
	updatedAt time.Time
}

// AvailableTags returns the full filter vocabulary. It is cached separately
// from the lists and is not affected by Invalidate.
func (c *Cache) AvailableTags(ctx context.Context) (recommendations.AvailableTags, error) {
	c.mu.Lock()
	t := c.tags
	fresh := t.loaded && c.clock.Since(t.updatedAt) < c.opts.TagsStaleTime
	c.mu.Unlock()
	if fresh {
		return t.tags, nil
	}

	ch := c.group.DoChan(tagsFlightKey, func() (interface{}, error) {
		fctx, cancel := c.fetchContext()
		defer cancel()
		tags, err := c.fetcher.AvailableTags(fctx)
		if err != nil {
			c.log.Warnf("Fetching available tags failed: %v", err)
			return nil, err
		}
		c.mu.Lock()
		if c.tags.gen == t.gen {
			c.tags = tagsEntry{gen: t.gen, tags: tags, loaded: true, updatedAt: c.clock.Now()}
		}
		c.mu.Unlock()
		return tags, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if t.loaded {
				return t.tags, res.Err
			}
			return recommendations.AvailableTags{}, res.Err
		}
		return res.Val.(recommendations.AvailableTags), nil
	case <-ctx.Done():
		return t.tags, ctx.Err()
	}
}
