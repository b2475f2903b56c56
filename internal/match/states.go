package match

import "strings"

// abbrToState maps lowercase state abbreviations to lowercase full names.
var abbrToState = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut", "de": "delaware",
	"fl": "florida", "ga": "georgia", "hi": "hawaii", "id": "idaho",
	"il": "illinois", "in": "indiana", "ia": "iowa", "ks": "kansas",
	"ky": "kentucky", "la": "louisiana", "me": "maine", "md": "maryland",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota", "ms": "mississippi",
	"mo": "missouri", "mt": "montana", "ne": "nebraska", "nv": "nevada",
	"nh": "new hampshire", "nj": "new jersey", "nm": "new mexico", "ny": "new york",
	"nc": "north carolina", "nd": "north dakota", "oh": "ohio", "ok": "oklahoma",
	"or": "oregon", "pa": "pennsylvania", "ri": "rhode island", "sc": "south carolina",
	"sd": "south dakota", "tn": "tennessee", "tx": "texas", "ut": "utah",
	"vt": "vermont", "va": "virginia", "wa": "washington", "wv": "west virginia",
	"wi": "wisconsin", "wy": "wyoming", "dc": "district of columbia",
}

// stateToAbbr maps lowercase full names to abbreviations.
var stateToAbbr = func() map[string]string {
	m := make(map[string]string, len(abbrToState))
	for abbr, full := range abbrToState {
		m[full] = abbr
	}
	return m
}()

// regionHint is a state extracted from the tail of a business query,
// e.g. "Home Helpers of Dayton OH" carries the hint "oh".
type regionHint struct {
	abbr string
	full string
}

// extractRegionHint looks for a trailing state abbreviation or full state
// name in the query. An abbreviation only counts when it appears uppercase
// in the raw query and is not one of the stop words, so corporate suffixes
// that double as state codes ("Acme Plumbing Co") read as companies, not
// Colorado. Returns nil when the query carries no location hint.
func extractRegionHint(query string, stopWords []string) *regionHint {
	raw := strings.Trim(query, " ,.")
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return nil
	}

	// Two-word full names first ("new york", "north carolina").
	if len(fields) >= 2 {
		tail := fields[len(fields)-2] + " " + fields[len(fields)-1]
		if abbr, ok := stateToAbbr[tail]; ok {
			return &regionHint{abbr: abbr, full: tail}
		}
	}

	last := strings.Trim(fields[len(fields)-1], ",.")
	if full, ok := abbrToState[last]; ok {
		if isStopWord(last, stopWords) || !containsWord(raw, strings.ToUpper(last)) {
			return nil
		}
		return &regionHint{abbr: last, full: full}
	}
	if abbr, ok := stateToAbbr[last]; ok {
		return &regionHint{abbr: abbr, full: last}
	}
	return nil
}

func isStopWord(word string, stopWords []string) bool {
	for _, w := range stopWords {
		if w == word {
			return true
		}
	}
	return false
}

// matchesAddress reports whether the candidate address mentions the hinted
// state, as a word-bounded abbreviation or full name.
func (h *regionHint) matchesAddress(addr string) bool {
	lower := strings.ToLower(addr)
	return containsWord(lower, h.abbr) || containsWord(lower, h.full)
}

// contradictedBy reports whether the address names a different state. Only
// uppercase abbreviations in the raw address count (formatted addresses
// write "Springfield, IL 62704"); lowercase two-letter words like "or" and
// "in" are too ambiguous. Full state names are checked case-insensitively.
func (h *regionHint) contradictedBy(addr string) bool {
	lower := strings.ToLower(addr)
	for abbr, full := range abbrToState {
		if abbr == h.abbr {
			continue
		}
		if containsWord(addr, strings.ToUpper(abbr)) || containsWord(lower, full) {
			return true
		}
	}
	return false
}

// containsWord checks whether text contains needle bounded by
// non-alphanumeric characters or string boundaries. Case-sensitive.
func containsWord(text, needle string) bool {
	if needle == "" || text == "" {
		return false
	}
	start := 0
	for {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			return false
		}
		absIdx := start + idx
		endIdx := absIdx + len(needle)

		leftOK := absIdx == 0 || !isAlphaNum(text[absIdx-1])
		rightOK := endIdx == len(text) || !isAlphaNum(text[endIdx])
		if leftOK && rightOK {
			return true
		}
		start = absIdx + 1
	}
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
