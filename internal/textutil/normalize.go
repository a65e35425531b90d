package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NFC returns value in Unicode normalization form C. macOS volumes hand out
// decomposed names, so comparisons across deliveries must normalize first.
func NFC(value string) string {
	if norm.NFC.IsNormalString(value) {
		return value
	}
	return norm.NFC.String(value)
}

// FoldKey returns a case-insensitive, NFC-normalized comparison key.
func FoldKey(value string) string {
	return strings.ToLower(NFC(value))
}
