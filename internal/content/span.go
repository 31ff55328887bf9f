package content

import (
	"golang.org/x/text/cases"
)

// Span is one typed slice of the input text.
type Span struct {
	Kind       Kind     `json:"kind"`
	Text       string   `json:"text"`
	Start      int      `json:"start"`      // byte offset of the first character (UTF-8)
	End        int      `json:"end"`        // byte offset one past the last character
	UTF16Start int      `json:"utf16Start"` // Start counted in UTF-16 code units
	UTF16End   int      `json:"utf16End"`   // End counted in UTF-16 code units
	Metadata   Metadata `json:"metadata,omitempty"`
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Metadata carries kind-specific attributes. Keys are the Meta* constants.
type Metadata map[string]any

// String returns the value under key when it is a string.
func (m Metadata) String(key string) string {
	v, _ := m[key].(string)
	return v
}

// Metadata keys.
const (
	MetaScheme         = "scheme"         // Link, Relay
	MetaMediaKind      = "mediaKind"      // Link
	MetaSubType        = "subType"        // ProtocolEntity
	MetaHasNostrPrefix = "hasNostrPrefix" // ProtocolEntity
	MetaPlainNIP19     = "plainNip19"     // ProtocolEntity
	MetaVersion        = "version"        // CashuToken
	MetaAddressType    = "addressType"    // BitcoinAddress
	MetaName           = "name"           // CustomEmoji
	MetaURL            = "url"            // CustomEmoji
	MetaDomain         = "domain"         // Email, LightningAddress
	MetaTag            = "tag"            // Hashtag
	MetaNumber         = "number"         // NIPIdentifier
	MetaHasAlpha       = "hasAlpha"       // NIPIdentifier
	MetaHasDigit       = "hasDigit"       // NIPIdentifier
	MetaTagIndex       = "tagIndex"       // LegacyReference
	MetaTagType        = "tagType"        // LegacyReference
	MetaReferenceID    = "referenceId"    // LegacyReference
	MetaReferenceType  = "referenceType"  // LegacyReference
)

// MediaKind is the resolved media category of a link.
type MediaKind string

const (
	MediaNone  MediaKind = ""
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaImage MediaKind = "image"
)

// Valid reports whether k is one of the conclusive media kinds.
func (k MediaKind) Valid() bool {
	return k == MediaVideo || k == MediaAudio || k == MediaImage
}

// Annotations is the tag list attached to a post: ordered tuples of strings
// whose first element names the tuple's kind ("t", "emoji", "p", ...).
// Tuples of any length are tolerated.
type Annotations [][]string

// Tag returns the i-th tuple, or nil when i is out of range.
func (a Annotations) Tag(i int) []string {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Find returns the first tuple whose first two fields are kind and value.
func (a Annotations) Find(kind, value string) []string {
	for _, tag := range a {
		if len(tag) >= 2 && tag[0] == kind && tag[1] == value {
			return tag
		}
	}
	return nil
}

// Topics returns the case-folded set of "t" tag values.
func (a Annotations) Topics() map[string]struct{} {
	fold := cases.Fold()
	out := make(map[string]struct{})
	for _, tag := range a {
		if len(tag) >= 2 && tag[0] == "t" {
			out[fold.String(tag[1])] = struct{}{}
		}
	}
	return out
}

// Options tune a single tokenize call.
type Options struct {
	// IncludeBareProtocolReferences also detects NIP-19 entities written
	// without the "nostr:" marker.
	IncludeBareProtocolReferences bool
	// RestrictTagsToAnnotations drops hashtags that have no matching "t" tag.
	RestrictTagsToAnnotations bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{RestrictTagsToAnnotations: true}
}

func resolveOptions(opts *Options) Options {
	if opts == nil {
		return DefaultOptions()
	}
	return *opts
}
