package content

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// MediaClassifier resolves the media kind of a link, typically over the
// network. Implementations must be safe for concurrent use. MediaNone with a
// nil error means the resource is not media.
type MediaClassifier interface {
	ClassifyMedia(ctx context.Context, link string) (MediaKind, error)
}

// Cache remembers conclusive classifications by link. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(link string) (MediaKind, bool)
	Put(link string, kind MediaKind)
}

// classifyLinks fills MetaMediaKind on links that lack it. Each lookup writes
// only its own span, so results land in text order whatever the timing.
func (t *Tokenizer) classifyLinks(ctx context.Context, spans []Span) {
	var g errgroup.Group
	g.SetLimit(t.concurrency)
	for i := range spans {
		s := &spans[i]
		if s.Kind != Link || s.Metadata.String(MetaMediaKind) != "" {
			continue
		}
		g.Go(func() error {
			if kind := t.lookup(ctx, s.Text); kind != MediaNone {
				s.Metadata[MetaMediaKind] = string(kind)
			}
			return nil
		})
	}
	g.Wait()
}

// lookup consults the cache, then the classifier. Only conclusive answers
// are cached; failures are logged and read as MediaNone. Concurrent lookups
// of one link share a single classifier call that outlives any one caller's
// cancellation; each caller still stops waiting when its own ctx ends.
func (t *Tokenizer) lookup(ctx context.Context, link string) MediaKind {
	if t.cache != nil {
		if kind, ok := t.cache.Get(link); ok {
			return kind
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := t.inflight.DoChan(link, func() (any, error) {
		return t.classifier.ClassifyMedia(shared, link)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		slog.Debug("content: media lookup abandoned", "url", link, "err", ctx.Err())
		return MediaNone
	}
	v, err := res.Val, res.Err
	if err != nil {
		slog.Debug("content: media lookup failed", "url", link, "err", err)
		return MediaNone
	}
	kind, _ := v.(MediaKind)
	if !kind.Valid() {
		return MediaNone
	}
	if t.cache != nil {
		t.cache.Put(link, kind)
	}
	return kind
}

// MemoryCache is an in-process Cache without eviction.
type MemoryCache struct {
	mu    sync.RWMutex
	kinds map[string]MediaKind
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{kinds: make(map[string]MediaKind)}
}

func (c *MemoryCache) Get(link string) (MediaKind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kind, ok := c.kinds[link]
	return kind, ok
}

func (c *MemoryCache) Put(link string, kind MediaKind) {
	if !kind.Valid() {
		return
	}
	c.mu.Lock()
	c.kinds[link] = kind
	c.mu.Unlock()
}

// Len returns the number of cached links.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.kinds)
}
