package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(text string, k Kind, start, end int) Span {
	return Span{Kind: k, Text: text[start:end], Start: start, End: end}
}

type wantSpan struct {
	kind       Kind
	start, end int
}

func shape(spans []Span) []wantSpan {
	out := make([]wantSpan, len(spans))
	for i, s := range spans {
		out[i] = wantSpan{s.Kind, s.Start, s.End}
	}
	return out
}

func TestReconcilePriorityIndependentOfOrder(t *testing.T) {
	text := "abcde"
	a := candidate(text, Hashtag, 0, 5)
	b := candidate(text, Link, 0, 5)

	want := []wantSpan{{Link, 0, 5}}
	assert.Equal(t, want, shape(reconcile(text, []Span{a, b})))
	assert.Equal(t, want, shape(reconcile(text, []Span{b, a})))
}

func TestReconcileLongestWinsOnTie(t *testing.T) {
	text := "abcdefg"
	short := candidate(text, Email, 0, 3)
	long := candidate(text, Email, 0, 5)

	want := []wantSpan{{Email, 0, 5}, {PlainText, 5, 7}}
	assert.Equal(t, want, shape(reconcile(text, []Span{short, long})))
	assert.Equal(t, want, shape(reconcile(text, []Span{long, short})))
}

func TestReconcileFirstKeptOnFullTie(t *testing.T) {
	text := "abcdefgh"
	got := reconcile(text, []Span{
		candidate(text, NIPIdentifier, 2, 6),
		candidate(text, Hashtag, 0, 4),
	})
	assert.Equal(t, []wantSpan{{Hashtag, 0, 4}, {PlainText, 4, 8}}, shape(got))
}

func TestReconcileHigherPriorityLaterStart(t *testing.T) {
	text := "abcdefghijkl"
	got := reconcile(text, []Span{
		candidate(text, CustomEmoji, 0, 6),
		candidate(text, ProtocolEntity, 3, 10),
	})
	assert.Equal(t, []wantSpan{
		{PlainText, 0, 3},
		{ProtocolEntity, 3, 10},
		{PlainText, 10, 12},
	}, shape(got))
}

// A candidate discarded against a span that is later replaced is not
// reconsidered, even when it no longer conflicts with anything.
func TestReconcileIsSinglePass(t *testing.T) {
	text := "abcdefgh"
	got := reconcile(text, []Span{
		candidate(text, Email, 0, 5),
		candidate(text, Hashtag, 1, 3),
		candidate(text, Link, 4, 6),
	})
	assert.Equal(t, []wantSpan{
		{PlainText, 0, 4},
		{Link, 4, 6},
		{PlainText, 6, 8},
	}, shape(got))
}

func TestReconcileGapFill(t *testing.T) {
	text := "xx ab yy cd zz"
	got := reconcile(text, []Span{
		candidate(text, Hashtag, 9, 11),
		candidate(text, Hashtag, 3, 5),
	})
	require.Len(t, got, 5)
	assert.Equal(t, []string{"xx ", "ab", " yy ", "cd", " zz"}, textsOf(got))
	requirePartition(t, text, got)
}

func TestReconcileNoCandidates(t *testing.T) {
	got := reconcile("plain", nil)
	assert.Equal(t, []wantSpan{{PlainText, 0, 5}}, shape(got))
}

func TestValidCandidatesDropsDegenerateSpans(t *testing.T) {
	text := "abc"
	got := validCandidates(text, []Span{
		{Kind: Hashtag, Start: 1, End: 1},
		{Kind: Hashtag, Start: 2, End: 9},
		{Kind: Hashtag, Start: -1, End: 1},
		candidate(text, Hashtag, 0, 2),
	}, "test")
	assert.Equal(t, []wantSpan{{Hashtag, 0, 2}}, shape(got))
}

func TestUTF16Offsets(t *testing.T) {
	text := "😀 #go"
	got := Tokenize(text, nil, allHashtags())
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[1].Start)
	assert.Equal(t, 3, got[1].UTF16Start)
	assert.Equal(t, 6, got[1].UTF16End)
}
