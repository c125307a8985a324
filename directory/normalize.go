package directory

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail canonicalizes an email for lookup and uniqueness checks:
// unicode NFKC, trimmed, lower-cased.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// NormalizeUsername canonicalizes a username the same way emails are
// canonicalized. Display casing is preserved on the User record itself;
// normalization applies only to index keys.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
