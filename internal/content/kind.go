package content

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a span of note content.
type Kind int

const (
	PlainText Kind = iota
	Link
	Relay
	ProtocolEntity // NIP-19 bech32 entity (npub, note, nevent, ...)
	LightningURL
	LightningInvoice
	CashuToken
	BitcoinAddress
	CustomEmoji
	Email
	LightningAddress
	Hashtag
	NIPIdentifier
	LegacyReference
)

var kindNames = [...]string{
	PlainText:        "text",
	Link:             "url",
	Relay:            "relay",
	ProtocolEntity:   "nip19",
	LightningURL:     "ln_url",
	LightningInvoice: "lnbc",
	CashuToken:       "cashu_token",
	BitcoinAddress:   "bitcoin_address",
	CustomEmoji:      "custom_emoji",
	Email:            "email",
	LightningAddress: "ln_address",
	Hashtag:          "hashtag",
	NIPIdentifier:    "nip_identifier",
	LegacyReference:  "legacy_reference",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Priority decides which of two overlapping candidates survives reconciliation.
// Higher wins. Kinds outside the known set rank lowest.
func (k Kind) Priority() int {
	switch k {
	case Link:
		return 15
	case Relay, ProtocolEntity:
		return 10
	case LightningURL, LightningInvoice, CashuToken, BitcoinAddress:
		return 2
	case CustomEmoji, Email, LightningAddress, LegacyReference:
		return 1
	default:
		return 0
	}
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("content: unknown kind %q", truncate(name, 32))
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("content: kind: %w", err)
	}
	parsed, err := ParseKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
