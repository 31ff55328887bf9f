package content

import (
	"cmp"
	"slices"
)

// reconcile resolves overlapping candidates and fills the gaps with plain
// text so the result partitions text.
//
// The sweep is greedy and single-pass: a candidate is compared only against
// the first accepted span it overlaps. A replacement can therefore leave an
// earlier-discarded candidate that no longer conflicts with anything; it is
// not revisited.
func reconcile(text string, candidates []Span) []Span {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b Span) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(b.End, a.End); c != 0 {
			return c
		}
		return cmp.Compare(b.Kind.Priority(), a.Kind.Priority())
	})

	accepted := make([]Span, 0, len(sorted))
	for _, cand := range sorted {
		i := slices.IndexFunc(accepted, cand.overlaps)
		if i < 0 {
			accepted = append(accepted, cand)
			continue
		}
		if wins(cand, accepted[i]) {
			accepted[i] = cand
		}
	}
	slices.SortStableFunc(accepted, func(a, b Span) int { return cmp.Compare(a.Start, b.Start) })

	spans := fillGaps(text, accepted)
	assignUTF16Offsets(spans)
	return spans
}

// wins reports whether cand replaces the accepted span it overlaps: strictly
// higher priority, or equal priority and strictly longer.
func wins(cand, existing Span) bool {
	cp, ep := cand.Kind.Priority(), existing.Kind.Priority()
	if cp != ep {
		return cp > ep
	}
	return cand.Len() > existing.Len()
}

// fillGaps inserts PlainText spans for every uncovered range. accepted must
// be sorted by Start and free of overlaps.
func fillGaps(text string, accepted []Span) []Span {
	out := make([]Span, 0, 2*len(accepted)+1)
	cursor := 0
	for _, s := range accepted {
		if s.Start < cursor {
			continue
		}
		if s.Start > cursor {
			out = append(out, plain(text, cursor, s.Start))
		}
		out = append(out, s)
		cursor = s.End
	}
	if cursor < len(text) {
		out = append(out, plain(text, cursor, len(text)))
	}
	return out
}

func plain(text string, start, end int) Span {
	return Span{Kind: PlainText, Text: text[start:end], Start: start, End: end}
}

// assignUTF16Offsets fills UTF16Start and UTF16End on a contiguous sequence.
func assignUTF16Offsets(spans []Span) {
	units := 0
	for i := range spans {
		spans[i].UTF16Start = units
		units += utf16Len(spans[i].Text)
		spans[i].UTF16End = units
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
