package yext

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// NameScorer scores the similarity of two business names in [0, 1].
type NameScorer interface {
	Score(a, b string) float64
}

// pathSkipWords are URL path tokens that carry no location signal.
var pathSkipWords = map[string]struct{}{
	"offices": {}, "office": {}, "locations": {}, "location": {},
	"local": {}, "home": {}, "index": {}, "html": {}, "php": {},
	"en": {}, "us": {}, "contact": {}, "about": {},
}

// Finder locates the best-matching location entity for a business name
// across every account the API key can see.
type Finder struct {
	client    Client
	scorer    NameScorer
	threshold float64
}

func NewFinder(client Client, scorer NameScorer, threshold float64) *Finder {
	return &Finder{client: client, scorer: scorer, threshold: threshold}
}

// Find returns the best-scoring location for name, or nil when no
// location clears the threshold. Franchise entities often share one
// brand name across territories, so each location is also scored under
// a name enhanced with the location words from its website path.
func (f *Finder) Find(ctx context.Context, name string) (*Location, error) {
	accounts, err := f.client.ListAccounts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "yext: find location")
	}

	var best *Location
	bestScore := 0.0
	for _, acct := range accounts {
		locations, err := f.client.ListLocations(ctx, acct.ID)
		if err != nil {
			return nil, eris.Wrap(err, "yext: find location")
		}
		for i, loc := range locations {
			score := f.scorer.Score(name, loc.Name)
			if enhanced := enhancedName(loc); enhanced != loc.Name {
				if s := f.scorer.Score(name, enhanced); s > score {
					score = s
				}
			}
			if score > bestScore {
				bestScore = score
				best = &locations[i]
			}
		}
	}

	if best == nil || bestScore < f.threshold {
		return nil, nil
	}
	return best, nil
}

// enhancedName appends the location words from the entity's website path
// to its name, e.g. "Home Helpers" + "/offices/dayton-oh/" yields
// "Home Helpers dayton oh".
func enhancedName(loc Location) string {
	if loc.Website == "" {
		return loc.Name
	}
	u, err := url.Parse(loc.Website)
	if err != nil {
		return loc.Name
	}

	var words []string
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		for _, tok := range strings.FieldsFunc(seg, func(r rune) bool {
			return r == '-' || r == '_' || r == '.'
		}) {
			tok = strings.ToLower(tok)
			if _, skip := pathSkipWords[tok]; skip || tok == "" {
				continue
			}
			words = append(words, tok)
		}
	}
	if len(words) == 0 {
		return loc.Name
	}
	return loc.Name + " " + strings.Join(words, " ")
}
