package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeField trims surrounding whitespace and applies NFKC so that
// full-width digits and compatibility characters in phone numbers or plates
// compare equal to their ASCII forms.
func NormalizeField(s string) string {
	return strings.TrimSpace(norm.NFKC.String(strings.TrimSpace(s)))
}
