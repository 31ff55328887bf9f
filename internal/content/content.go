// Package content splits social-post text into an ordered, gap-free
// sequence of typed spans: links, relay addresses, NIP-19 entities, payment
// instruments, custom emoji, email and lightning addresses, hashtags, NIP
// identifiers, legacy "#[n]" references and the plain text between them.
//
// Every detector runs over the whole input and proposes candidates. Links are
// found first and protected; overlapping candidates are then reconciled by
// kind priority and length, and the gaps are filled with plain text.
//
// Usage:
//
//	spans := content.Tokenize(text, tags, nil)
//
//	t := content.NewWithClassifier(headprobe.New(5*time.Second), content.NewMemoryCache(), 8)
//	spans = t.TokenizeWithClassification(ctx, text, tags, nil)
package content

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// defaultConcurrency bounds simultaneous link lookups when none is configured.
const defaultConcurrency = 4

// Tokenizer is the top-level object created once at startup. It is safe for
// concurrent use.
type Tokenizer struct {
	classifier  MediaClassifier
	cache       Cache
	concurrency int
	inflight    singleflight.Group
}

// New creates a Tokenizer without a media classifier. Link media kinds then
// come from the file extension only.
func New() *Tokenizer {
	return &Tokenizer{concurrency: defaultConcurrency}
}

// NewWithClassifier creates a Tokenizer that resolves link media kinds with
// c, remembering conclusive answers in cache (nil disables caching).
// concurrency bounds the lookups of one call; values below 1 use a default.
func NewWithClassifier(c MediaClassifier, cache Cache, concurrency int) *Tokenizer {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Tokenizer{classifier: c, cache: cache, concurrency: concurrency}
}

var defaultTokenizer = New()

// Tokenize splits text using the default Tokenizer. It never performs
// lookups. A nil opts means DefaultOptions.
func Tokenize(text string, tags Annotations, opts *Options) []Span {
	return defaultTokenizer.Tokenize(text, tags, opts)
}

// Tokenize splits text into spans. It never performs lookups; link media
// kinds come from the file extension only.
func (t *Tokenizer) Tokenize(text string, tags Annotations, opts *Options) []Span {
	if text == "" {
		return nil
	}
	return reconcile(text, collect(text, tags, resolveOptions(opts)))
}

// TokenizeWithClassification is Tokenize followed by media lookups for every
// link the extension table could not classify. Lookup failures leave the
// link unclassified. Span order is textual regardless of completion order.
func (t *Tokenizer) TokenizeWithClassification(ctx context.Context, text string, tags Annotations, opts *Options) []Span {
	spans := t.Tokenize(text, tags, opts)
	if t.classifier != nil {
		t.classifyLinks(ctx, spans)
	}
	return spans
}
