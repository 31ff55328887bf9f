package content

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var relayDetector = &patternDetector{
	name: "relay",
	kind: Relay,
	re:   regexp.MustCompile(`(?i)(wss?)://[a-z0-9.-]+(?::[0-9]{1,5})?(?:/[a-z0-9._~%+-]*)*`),
	handle: func(text string, loc []int, _ Annotations) (Metadata, bool) {
		return Metadata{MetaScheme: strings.ToLower(group(text, loc, 1))}, true
	},
}

var customEmojiDetector = &patternDetector{
	name: "emoji",
	kind: CustomEmoji,
	re:   regexp.MustCompile(`:([a-zA-Z0-9_+-]+):`),
	handle: func(text string, loc []int, tags Annotations) (Metadata, bool) {
		name := group(text, loc, 1)
		meta := Metadata{MetaName: name}
		if tag := tags.Find("emoji", name); len(tag) >= 3 {
			meta[MetaURL] = tag[2]
		}
		return meta, true
	},
}

// mailProviders are domains whose addresses are treated as plain email
// rather than lightning addresses.
var mailProviders = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"icloud.com":     {},
	"protonmail.com": {},
	"aol.com":        {},
	"live.com":       {},
}

// emailDetector emits Email for well-known mail providers and
// LightningAddress for every other domain.
var emailDetector = emailAddressDetector{
	re: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
}

type emailAddressDetector struct {
	re *regexp.Regexp
}

func (emailAddressDetector) Name() string { return "email" }

func (d emailAddressDetector) Detect(text string, _ Annotations) []Span {
	var out []Span
	for _, loc := range d.re.FindAllStringSubmatchIndex(text, -1) {
		domain := strings.ToLower(group(text, loc, 1))
		kind := LightningAddress
		if _, ok := mailProviders[domain]; ok {
			kind = Email
		}
		out = append(out, Span{
			Kind:     kind,
			Text:     text[loc[0]:loc[1]],
			Start:    loc[0],
			End:      loc[1],
			Metadata: Metadata{MetaDomain: domain},
		})
	}
	return out
}

var nipIdentifierDetector = &patternDetector{
	name: "nip-identifier",
	kind: NIPIdentifier,
	re:   regexp.MustCompile(`\bNIP-([0-9A-Za-z]+)\b`),
	handle: func(text string, loc []int, _ Annotations) (Metadata, bool) {
		number := group(text, loc, 1)
		if number == "" {
			return nil, false
		}
		return Metadata{
			MetaNumber:   number,
			MetaHasAlpha: strings.ContainsFunc(number, isASCIILetter),
			MetaHasDigit: strings.ContainsFunc(number, isASCIIDigit),
		}, true
	},
}

func isASCIILetter(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }
func isASCIIDigit(r rune) bool  { return r >= '0' && r <= '9' }

// referenceTypes maps a legacy reference's tag type to the entity it points at.
var referenceTypes = map[string]string{
	"p": "npub",
	"e": "note",
	"a": "naddr",
}

var legacyReferenceDetector = &patternDetector{
	name: "legacy-reference",
	kind: LegacyReference,
	re:   regexp.MustCompile(`#\[(\d+)\]`),
	handle: func(text string, loc []int, tags Annotations) (Metadata, bool) {
		// The group is all digits, so the only failure is overflow; such an
		// index can never resolve and is reported clamped.
		index, err := strconv.Atoi(group(text, loc, 1))
		if err != nil {
			index = math.MaxInt
		}
		meta := Metadata{MetaTagIndex: index}
		tag := tags.Tag(index)
		if len(tag) < 2 {
			return meta, true
		}
		refType, ok := referenceTypes[tag[0]]
		if !ok {
			refType = "unknown"
		}
		meta[MetaTagType] = tag[0]
		meta[MetaReferenceID] = tag[1]
		meta[MetaReferenceType] = refType
		return meta, true
	},
}
