package content

import "regexp"

var lightningURLDetector = &patternDetector{
	name: "lnurl",
	kind: LightningURL,
	re:   regexp.MustCompile(`(?i)lnurl1[02-9ac-hj-np-z]+`),
}

var lightningInvoiceDetector = &patternDetector{
	name: "lnbc",
	kind: LightningInvoice,
	re:   regexp.MustCompile(`(?i)lnbc[0-9]*[munp]?1[02-9ac-hj-np-z]+`),
}

var cashuDetector = &patternDetector{
	name: "cashu",
	kind: CashuToken,
	re:   regexp.MustCompile(`cashu([AB])[A-Za-z0-9_-]+=*`),
	handle: func(text string, loc []int, _ Annotations) (Metadata, bool) {
		return Metadata{MetaVersion: group(text, loc, 1)}, true
	},
}

// Bitcoin address shapes. Checksums are not verified.
const base58 = `[1-9A-HJ-NP-Za-km-z]`

var bitcoinDetectors = []Detector{
	bitcoinDetector("legacy", `\b1`+base58+`{25,34}\b`),
	bitcoinDetector("script", `\b3`+base58+`{25,34}\b`),
	bitcoinDetector("bech32", `(?i)\bbc1[02-9ac-hj-np-z]{25,87}\b`),
}

func bitcoinDetector(addressType, pattern string) Detector {
	return &patternDetector{
		name: "bitcoin-" + addressType,
		kind: BitcoinAddress,
		re:   regexp.MustCompile(pattern),
		handle: func(string, []int, Annotations) (Metadata, bool) {
			return Metadata{MetaAddressType: addressType}, true
		},
	}
}
