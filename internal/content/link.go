package content

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// linkDetector finds http(s) links. Go's regexp has no lookahead, so the
// "stop where another scheme begins" rule is a hand-written scan.
type linkDetector struct{}

func (linkDetector) Name() string { return "link" }

func (linkDetector) Detect(text string, _ Annotations) []Span {
	var out []Span
	pos := 0
	for pos < len(text) {
		start, bodyStart := nextScheme(text, pos)
		if start < 0 {
			break
		}
		end := scanLinkBody(text, bodyStart)
		if end < 0 {
			pos = start + 1
			continue
		}

		raw := text[start:end]
		cleaned := cleanLinkEnd(raw)
		cut := start + len(cleaned)

		scheme := "http"
		if strings.HasPrefix(cleaned, "https://") {
			scheme = "https"
		}
		meta := Metadata{MetaScheme: scheme}
		if kind := mediaKindFromExtension(cleaned); kind != MediaNone {
			meta[MetaMediaKind] = string(kind)
		}
		out = append(out, Span{Kind: Link, Text: cleaned, Start: start, End: cut, Metadata: meta})
		if cut < end {
			out = append(out, Span{Kind: PlainText, Text: text[cut:end], Start: cut, End: end})
		}
		pos = end
	}
	return out
}

// nextScheme finds the next "http://" or "https://" at or after pos and
// returns its start and the offset just past "://".
func nextScheme(text string, pos int) (int, int) {
	for {
		i := strings.Index(text[pos:], "http")
		if i < 0 {
			return -1, -1
		}
		start := pos + i
		if n := schemeLen(text[start:]); n > 0 {
			return start, start + n
		}
		pos = start + 1
	}
}

// schemeLen returns the length of a leading "http://" or "https://", or 0.
func schemeLen(s string) int {
	switch {
	case strings.HasPrefix(s, "https://"):
		return len("https://")
	case strings.HasPrefix(s, "http://"):
		return len("http://")
	}
	return 0
}

// scanLinkBody extends a link body from i and returns the end offset of the
// longest acceptable match, or -1 when none exists. The body needs at least
// two UTF-16 code units and must not end on whitespace or one of `:.){}(`.
func scanLinkBody(text string, i int) int {
	end := -1
	units := 0
	for j := i; j < len(text); {
		if schemeLen(text[j:]) > 0 {
			break
		}
		r, size := utf8.DecodeRuneInString(text[j:])
		if isLinkBreak(r) {
			break
		}
		units += utf16.RuneLen(r)
		j += size
		if units >= 2 && !strings.ContainsRune(":.){}(", r) {
			end = j
		}
	}
	return end
}

func isLinkBreak(r rune) bool {
	switch r {
	case '"', '\'', '<', '`', '\ufeff':
		return true
	}
	return unicode.IsSpace(r)
}

// closingBrackets maps each closing bracket to its opener.
var closingBrackets = map[rune]rune{
	')': '(',
	'）': '（',
	']': '[',
	'」': '「',
	'}': '{',
	'｝': '｛',
	'>': '<',
	'〉': '〈',
	'』': '『',
	'》': '《',
}

const trailingPunctuation = ".．,，;；:：!！?？→←"

// cleanLinkEnd trims characters that belong to the surrounding prose rather
// than the link: an unbalanced closing bracket and everything after it, then
// trailing punctuation and unbalanced closers.
func cleanLinkEnd(link string) string {
	cleaned := link
	for i, r := range link {
		open, ok := closingBrackets[r]
		if !ok {
			continue
		}
		prefix := link[:i+utf8.RuneLen(r)]
		if strings.Count(prefix, string(r)) > strings.Count(prefix, string(open)) {
			cleaned = link[:i]
			break
		}
	}

	for cleaned != "" {
		last, size := utf8.DecodeLastRuneInString(cleaned)
		if strings.ContainsRune(trailingPunctuation, last) {
			cleaned = cleaned[:len(cleaned)-size]
			continue
		}
		if open, ok := closingBrackets[last]; ok {
			if strings.Count(cleaned, string(open)) >= strings.Count(cleaned, string(last)) {
				break
			}
			cleaned = cleaned[:len(cleaned)-size]
			continue
		}
		break
	}
	return cleaned
}

var extensionMediaKinds = map[string]MediaKind{
	"mp4": MediaVideo, "webm": MediaVideo, "mov": MediaVideo, "mkv": MediaVideo,
	"mp3": MediaAudio, "wav": MediaAudio, "ogg": MediaAudio, "flac": MediaAudio,
	"jpg": MediaImage, "jpeg": MediaImage, "png": MediaImage, "gif": MediaImage,
	"webp": MediaImage, "bmp": MediaImage, "svg": MediaImage,
}

// mediaKindFromExtension infers the media kind from the path extension,
// ignoring any query string or fragment.
func mediaKindFromExtension(link string) MediaKind {
	path := link
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return MediaNone
	}
	return extensionMediaKinds[strings.ToLower(path[dot+1:])]
}
