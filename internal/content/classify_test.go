package content

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	mu     sync.Mutex
	calls  map[string]int
	kinds  map[string]MediaKind
	errs   map[string]error
	delays map[string]time.Duration
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{
		calls:  map[string]int{},
		kinds:  map[string]MediaKind{},
		errs:   map[string]error{},
		delays: map[string]time.Duration{},
	}
}

func (f *fakeClassifier) ClassifyMedia(ctx context.Context, link string) (MediaKind, error) {
	f.mu.Lock()
	f.calls[link]++
	delay, kind, err := f.delays[link], f.kinds[link], f.errs[link]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return MediaNone, ctx.Err()
		}
	}
	return kind, err
}

func (f *fakeClassifier) callCount(link string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[link]
}

func TestTokenizeNeverLooksUp(t *testing.T) {
	fake := newFakeClassifier()
	fake.kinds["https://example.com/watch"] = MediaVideo
	tok := NewWithClassifier(fake, NewMemoryCache(), 2)

	links := Links(tok.Tokenize("see https://example.com/watch", nil, nil))
	require.Len(t, links, 1)
	assert.NotContains(t, links[0].Metadata, MetaMediaKind)
	assert.Zero(t, fake.callCount("https://example.com/watch"))
}

func TestClassificationCachesConclusiveResults(t *testing.T) {
	const link = "https://example.com/watch"
	fake := newFakeClassifier()
	fake.kinds[link] = MediaVideo
	cache := NewMemoryCache()
	tok := NewWithClassifier(fake, cache, 2)

	for range 2 {
		links := Links(tok.TokenizeWithClassification(context.Background(), "see "+link, nil, nil))
		require.Len(t, links, 1)
		assert.Equal(t, "video", links[0].Metadata[MetaMediaKind])
	}
	assert.Equal(t, 1, fake.callCount(link))
	assert.Equal(t, 1, cache.Len())
}

func TestClassificationFailuresAreNotCached(t *testing.T) {
	const (
		broken  = "https://example.com/broken"
		webpage = "https://example.com/page"
	)
	fake := newFakeClassifier()
	fake.errs[broken] = errors.New("connection refused")
	fake.kinds[webpage] = MediaNone
	cache := NewMemoryCache()
	tok := NewWithClassifier(fake, cache, 2)

	for range 2 {
		links := Links(tok.TokenizeWithClassification(context.Background(), broken+" "+webpage, nil, nil))
		require.Len(t, links, 2)
		for _, l := range links {
			assert.NotContains(t, l.Metadata, MetaMediaKind)
		}
	}
	assert.Equal(t, 2, fake.callCount(broken))
	assert.Equal(t, 2, fake.callCount(webpage))
	assert.Zero(t, cache.Len())
}

func TestClassificationSkipsKnownExtensions(t *testing.T) {
	fake := newFakeClassifier()
	tok := NewWithClassifier(fake, nil, 2)

	links := Links(tok.TokenizeWithClassification(context.Background(), "https://example.com/cat.png", nil, nil))
	require.Len(t, links, 1)
	assert.Equal(t, "image", links[0].Metadata[MetaMediaKind])
	assert.Zero(t, fake.callCount("https://example.com/cat.png"))
}

func TestClassificationKeepsTextOrder(t *testing.T) {
	fake := newFakeClassifier()
	urls := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
	kinds := []MediaKind{MediaVideo, MediaAudio, MediaImage}
	delays := []time.Duration{30 * time.Millisecond, 15 * time.Millisecond, 0}
	for i, u := range urls {
		fake.kinds[u] = kinds[i]
		fake.delays[u] = delays[i]
	}
	tok := NewWithClassifier(fake, NewMemoryCache(), 3)

	spans := tok.TokenizeWithClassification(context.Background(), urls[0]+" "+urls[1]+" "+urls[2], nil, nil)
	requirePartition(t, urls[0]+" "+urls[1]+" "+urls[2], spans)
	links := Links(spans)
	require.Len(t, links, 3)
	for i, l := range links {
		assert.Equal(t, urls[i], l.Text)
		assert.Equal(t, string(kinds[i]), l.Metadata[MetaMediaKind])
	}
}

func TestConcurrentLookupsShareOneCall(t *testing.T) {
	const link = "https://example.com/clip"
	fake := newFakeClassifier()
	fake.kinds[link] = MediaVideo
	fake.delays[link] = 200 * time.Millisecond
	tok := NewWithClassifier(fake, NewMemoryCache(), 2)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	var wg sync.WaitGroup
	var first, second []Span
	wg.Add(2)
	go func() {
		defer wg.Done()
		first = tok.TokenizeWithClassification(ctxA, link, nil, nil)
	}()
	require.Eventually(t, func() bool { return fake.callCount(link) == 1 },
		time.Second, time.Millisecond)
	go func() {
		defer wg.Done()
		second = tok.TokenizeWithClassification(context.Background(), link, nil, nil)
	}()
	time.Sleep(20 * time.Millisecond)
	cancelA()
	wg.Wait()

	require.Len(t, first, 1)
	assert.NotContains(t, first[0].Metadata, MetaMediaKind)
	require.Len(t, second, 1)
	assert.Equal(t, "video", second[0].Metadata[MetaMediaKind])
	assert.Equal(t, 1, fake.callCount(link))
}

func TestClassificationWithoutClassifier(t *testing.T) {
	spans := New().TokenizeWithClassification(context.Background(), "https://example.com/x", nil, nil)
	require.Len(t, spans, 1)
	assert.NotContains(t, spans[0].Metadata, MetaMediaKind)
}

func TestMemoryCacheIgnoresInconclusive(t *testing.T) {
	c := NewMemoryCache()
	c.Put("a", MediaNone)
	c.Put("b", MediaKind("text"))
	c.Put("c", MediaAudio)

	_, ok := c.Get("a")
	assert.False(t, ok)
	kind, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, MediaAudio, kind)
	assert.Equal(t, 1, c.Len())
}
