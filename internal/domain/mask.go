package domain

import "strings"

// Masked field markers. The upstream API redacts address and phone fields for
// returning customers before full confirmation; a redacted value carries one
// of these markers and must never be geocoded or re-validated locally.
const (
	maskStar     = "*"
	maskEllipsis = "..."
)

// IsMasked reports whether text is a privacy-redacted (partial) value.
// Masked values are trusted as-is: they are skipped by field validation and
// act as a hard gate in front of any geocoding call.
func IsMasked(text string) bool {
	return strings.Contains(text, maskStar) || strings.Contains(text, maskEllipsis)
}
