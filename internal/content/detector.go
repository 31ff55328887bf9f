package content

import (
	"log/slog"
	"regexp"
)

// Detector finds candidate spans of one entity family. Implementations keep
// no state between calls and must be safe for concurrent use.
type Detector interface {
	Name() string
	Detect(text string, tags Annotations) []Span
}

// matchHandler turns a regex submatch into span metadata. Returning false
// drops the candidate, leaving its characters to plain text.
type matchHandler func(text string, loc []int, tags Annotations) (Metadata, bool)

// patternDetector is the regex-shaped detector shared by most families.
type patternDetector struct {
	name   string
	kind   Kind
	re     *regexp.Regexp
	handle matchHandler // nil means no metadata
}

func (d *patternDetector) Name() string { return d.name }

func (d *patternDetector) Detect(text string, tags Annotations) []Span {
	var out []Span
	for _, loc := range d.re.FindAllStringSubmatchIndex(text, -1) {
		var meta Metadata
		if d.handle != nil {
			m, ok := d.handle(text, loc, tags)
			if !ok {
				continue
			}
			meta = m
		}
		out = append(out, Span{
			Kind:     d.kind,
			Text:     text[loc[0]:loc[1]],
			Start:    loc[0],
			End:      loc[1],
			Metadata: meta,
		})
	}
	return out
}

// group returns the n-th capture group of a submatch, or "" when it did not
// participate.
func group(text string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

// detectorSet returns the ordered detectors for one call. The link detector
// always comes first; its output is protected from every later detector.
func detectorSet(opts Options) (Detector, []Detector) {
	rest := []Detector{protocolEntityDetector{bare: false}}
	if opts.IncludeBareProtocolReferences {
		rest = append(rest, protocolEntityDetector{bare: true})
	}
	rest = append(rest,
		nipIdentifierDetector,
		relayDetector,
		lightningURLDetector,
		lightningInvoiceDetector,
		cashuDetector,
	)
	rest = append(rest, bitcoinDetectors...)
	rest = append(rest,
		emailDetector,
		customEmojiDetector,
		hashtagDetector{restrict: opts.RestrictTagsToAnnotations},
		legacyReferenceDetector,
	)
	return linkDetector{}, rest
}

// collect runs every detector and returns the candidate set: the protected
// link spans plus every other candidate that does not touch them.
func collect(text string, tags Annotations, opts Options) []Span {
	first, rest := detectorSet(opts)

	protected := validCandidates(text, first.Detect(text, tags), first.Name())
	candidates := append([]Span(nil), protected...)

	for _, d := range rest {
		for _, s := range validCandidates(text, d.Detect(text, tags), d.Name()) {
			if overlapsAny(s, protected) {
				continue
			}
			candidates = append(candidates, s)
		}
	}
	return candidates
}

// validCandidates drops zero-length, out-of-range or rune-splitting spans.
// Detectors are not expected to emit them.
func validCandidates(text string, spans []Span, detector string) []Span {
	out := spans[:0]
	for _, s := range spans {
		if s.Start < 0 || s.End > len(text) || s.Start >= s.End ||
			!isRuneBoundary(text, s.Start) || !isRuneBoundary(text, s.End) {
			slog.Debug("content: dropping invalid candidate",
				"detector", detector, "start", s.Start, "end", s.End)
			continue
		}
		out = append(out, s)
	}
	return out
}

func overlapsAny(s Span, set []Span) bool {
	for _, p := range set {
		if s.overlaps(p) {
			return true
		}
	}
	return false
}

func isRuneBoundary(s string, i int) bool {
	if i == 0 || i == len(s) {
		return true
	}
	return s[i]&0xC0 != 0x80
}
