// Package normalize canonicalizes free-text names, addresses, and phone
// numbers into comparable forms. Every function is total: any string input
// maps to a defined output, never an error.
package normalize

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	multiCommaRe = regexp.MustCompile(`,(\s*,)+`)
	nonDigitRe   = regexp.MustCompile(`\D`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// Name lowercases, strips everything outside [a-z0-9\s], and collapses
// whitespace. Idempotent; empty input yields empty string.
func Name(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Address collapses whitespace runs to one space, collapses repeated commas,
// and strips leading/trailing commas and spaces. Display-oriented: case and
// interior punctuation are preserved (comparison uses Name).
func Address(s string) string {
	s = spaceRunRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = multiCommaRe.ReplaceAllString(s, ",")
	s = strings.Trim(s, ", ")
	return s
}

// Phone strips all non-digit characters. A bare 10-digit national number
// gets the +1 country prefix so it compares equal to geocoded numbers; an
// 11-digit number already carrying the leading 1 gets the + restored.
// Anything else passes through digit-stripped: lenient comparison over
// strict validation.
func Phone(s string) string {
	digits := nonDigitRe.ReplaceAllString(s, "")
	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	default:
		return digits
	}
}
