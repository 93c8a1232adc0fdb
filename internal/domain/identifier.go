package domain

import (
	"regexp"
	"strings"
)

// Identifier is the canonical token for a shipped item.
// Two identifiers are the same item only if the strings are equal.
type Identifier string

// identifierLength is the digit count of a canonical shipment id.
const identifierLength = 11

// Shipment ids are 11 digits starting with 4.
var shipmentIDPattern = regexp.MustCompile(`4\d{10}`)

// NormalizeIdentifier turns raw scanner or keyboard input into a canonical Identifier.
//
// A substring shaped like a shipment id wins. Otherwise every non-digit is
// dropped and the first 11 digits are kept. Input with fewer digits is rejected
// and the caller decides whether to re-prompt.
func NormalizeIdentifier(raw string) (Identifier, bool) {
	s := strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if m := shipmentIDPattern.FindString(s); m != "" {
		return Identifier(m), true
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)

	if len(digits) >= identifierLength {
		return Identifier(digits[:identifierLength]), true
	}

	return "", false
}

// C0 and C1 control ranges, plus DEL.
func isControl(r rune) bool {
	return r <= 0x1F || (r >= 0x7F && r <= 0x9F)
}
