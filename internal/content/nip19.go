package content

import (
	"fmt"
	"strings"

	"github.com/coregx/ahocorasick"
)

const (
	nostrMarker     = "nostr:"
	bech32Alphabet  = "023456789acdefghjklmnpqrstuvwxyz"
	fixedDataLength = 58 // data characters in a 32-byte key or event id
)

// nip19Prefix describes one bech32 human-readable part.
type nip19Prefix struct {
	hrp     string // including the "1" separator
	subType string
	fixed   bool // exactly fixedDataLength data characters
}

var nip19Prefixes = []nip19Prefix{
	{hrp: "npub1", subType: "npub", fixed: true},
	{hrp: "nprofile1", subType: "nprofile"},
	{hrp: "note1", subType: "note", fixed: true},
	{hrp: "nevent1", subType: "nevent"},
	{hrp: "naddr1", subType: "naddr"},
	{hrp: "nsec1", subType: "nsec", fixed: true},
}

// NIP19SubTypes lists the recognised protocol-entity sub-types.
func NIP19SubTypes() []string {
	out := make([]string, len(nip19Prefixes))
	for i, p := range nip19Prefixes {
		out[i] = p.subType
	}
	return out
}

// nip19Automaton locates every human-readable part in one pass.
var nip19Automaton = mustBuildAutomaton(nip19Prefixes)

func mustBuildAutomaton(prefixes []nip19Prefix) *ahocorasick.Automaton {
	patterns := make([]string, len(prefixes))
	for i, p := range prefixes {
		patterns[i] = p.hrp
	}
	automaton, err := ahocorasick.NewBuilder().AddStrings(patterns).Build()
	if err != nil {
		panic(fmt.Sprintf("content: build nip19 automaton: %v", err))
	}
	return automaton
}

// protocolEntityDetector finds NIP-19 entities. The prefixed form requires
// the "nostr:" marker directly before the entity and includes it in the
// span; the bare form requires its absence.
type protocolEntityDetector struct {
	bare bool
}

func (d protocolEntityDetector) Name() string {
	if d.bare {
		return "nip19-bare"
	}
	return "nip19"
}

func (d protocolEntityDetector) Detect(text string, _ Annotations) []Span {
	if !strings.Contains(text, "1") {
		return nil
	}
	var out []Span
	for _, m := range nip19Automaton.FindAllOverlapping([]byte(text)) {
		prefix := nip19Prefixes[m.PatternID]
		prefixed := m.Start >= len(nostrMarker) && text[m.Start-len(nostrMarker):m.Start] == nostrMarker
		if prefixed == d.bare {
			continue
		}

		end := m.End + bech32Run(text[m.End:])
		if end == m.End {
			continue
		}
		if prefix.fixed {
			if end-m.End < fixedDataLength {
				continue
			}
			end = m.End + fixedDataLength
		}

		start := m.Start
		if prefixed {
			start -= len(nostrMarker)
		}
		out = append(out, Span{
			Kind:  ProtocolEntity,
			Text:  text[start:end],
			Start: start,
			End:   end,
			Metadata: Metadata{
				MetaSubType:        prefix.subType,
				MetaHasNostrPrefix: prefixed,
				MetaPlainNIP19:     text[m.Start:end],
			},
		})
	}
	return out
}

// bech32Run returns the length of the leading run of bech32 data characters.
func bech32Run(s string) int {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(bech32Alphabet, s[i]) < 0 {
			return i
		}
	}
	return len(s)
}
