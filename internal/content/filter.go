package content

import "slices"

// FilterBy returns the spans for which keep reports true, in order.
func FilterBy(spans []Span, keep func(Span) bool) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// FilterByKind returns the spans of kind k.
func FilterByKind(spans []Span, k Kind) []Span {
	return FilterBy(spans, func(s Span) bool { return s.Kind == k })
}

// FilterByKinds returns the spans whose kind is any of kinds.
func FilterByKinds(spans []Span, kinds ...Kind) []Span {
	return FilterBy(spans, func(s Span) bool { return slices.Contains(kinds, s.Kind) })
}

// FilterProtocolEntities returns the NIP-19 spans, restricted to the given
// sub-types ("npub", "note", ...) when any are named.
func FilterProtocolEntities(spans []Span, subTypes ...string) []Span {
	return FilterBy(spans, func(s Span) bool {
		if s.Kind != ProtocolEntity {
			return false
		}
		return len(subTypes) == 0 || slices.Contains(subTypes, s.Metadata.String(MetaSubType))
	})
}

func Links(spans []Span) []Span            { return FilterByKind(spans, Link) }
func Hashtags(spans []Span) []Span         { return FilterByKind(spans, Hashtag) }
func ProtocolEntities(spans []Span) []Span { return FilterByKind(spans, ProtocolEntity) }

// PaymentInstruments returns lightning URLs, invoices, cashu tokens and
// bitcoin addresses.
func PaymentInstruments(spans []Span) []Span {
	return FilterByKinds(spans, LightningURL, LightningInvoice, CashuToken, BitcoinAddress)
}
