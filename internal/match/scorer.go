// Package match implements fuzzy business-name scoring and candidate
// selection for directory search results.
package match

import (
	"strings"

	"github.com/sells-group/nap-audit-cli/internal/normalize"
)

// BrandRule strips franchise boilerplate from both names before generic
// comparison, so two locations of the same brand don't score falsely high
// on shared brand words alone. Pattern is matched as a substring of either
// normalized name; StripTokens are removed as whole words or phrases.
type BrandRule struct {
	Pattern     string   `mapstructure:"pattern"`
	StripTokens []string `mapstructure:"strip_tokens"`
}

// Options holds the tunable scoring and selection knobs. The numeric
// defaults are empirically chosen and preserved as configuration rather
// than re-derived.
type Options struct {
	Threshold        float64     `mapstructure:"threshold"`
	ContainmentScore float64     `mapstructure:"containment_score"`
	URLOverrideScore float64     `mapstructure:"url_override_score"`
	URLPathGate      float64     `mapstructure:"url_path_gate"`
	RegionBonus      float64     `mapstructure:"region_bonus"`
	RegionPenalty    float64     `mapstructure:"region_penalty"`
	JaccardWeight    float64     `mapstructure:"jaccard_weight"`
	RatioWeight      float64     `mapstructure:"ratio_weight"`
	StopWords        []string    `mapstructure:"stop_words"`
	BrandRules       []BrandRule `mapstructure:"brand_rules"`
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:        0.70,
		ContainmentScore: 0.90,
		URLOverrideScore: 0.85,
		URLPathGate:      0.80,
		RegionBonus:      0.10,
		RegionPenalty:    0.15,
		JaccardWeight:    0.60,
		RatioWeight:      0.40,
		StopWords: []string{
			"of", "the", "and", "&", "-", "inc", "llc", "corp",
			"corporation", "company", "co", "ltd",
		},
		BrandRules: []BrandRule{
			{
				// 360 Painting franchises decorate the brand with a degree
				// symbol and suffix the territory name.
				Pattern:     "360 painting",
				StripTokens: []string{"360", "painting", "of"},
			},
			{
				// Home Helpers locations share "home care"/"home helpers"
				// boilerplate; only the territory words distinguish them.
				Pattern:     "home helpers",
				StripTokens: []string{"home helpers", "home care", "home", "helpers", "care", "of"},
			},
		},
	}
}

// Scorer computes a bounded similarity score between two business names.
// Safe for concurrent use: all state is read-only after construction.
type Scorer struct {
	opts  Options
	rules []brandRule
}

type brandRule struct {
	pattern string
	strip   []string
}

// NewScorer builds a Scorer from options, pre-normalizing rule patterns
// and tokens so matching happens in canonical space.
func NewScorer(opts Options) *Scorer {
	s := &Scorer{opts: opts}
	for _, r := range opts.BrandRules {
		nr := brandRule{pattern: normalize.Name(r.Pattern)}
		for _, tok := range r.StripTokens {
			if t := normalize.Name(tok); t != "" {
				nr.strip = append(nr.strip, t)
			}
		}
		if nr.pattern != "" {
			s.rules = append(s.rules, nr)
		}
	}
	return s
}

// Options returns the scorer's configuration.
func (s *Scorer) Options() Options { return s.opts }

// Score returns a similarity in [0,1] between two business names.
//
// Precedence: empty input scores 0; brand boilerplate is stripped when a
// rule pattern appears in either name, otherwise the generic stop-word
// list is stripped; exact cleaned equality scores 1; containment of one
// cleaned name in the other scores the fixed containment score; otherwise
// the result is a weighted blend of word-set Jaccard and character-level
// sequence ratio.
func (s *Scorer) Score(a, b string) float64 {
	na := normalize.Name(a)
	nb := normalize.Name(b)
	if na == "" || nb == "" {
		return 0
	}

	ca, cb := s.clean(na, nb)

	if ca == cb {
		return 1.0
	}
	if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
		return s.opts.ContainmentScore
	}

	return s.opts.JaccardWeight*jaccard(ca, cb) + s.opts.RatioWeight*seqRatio(ca, cb)
}

// clean applies the first matching brand rule to both names, or the generic
// stop-word strip when no rule triggers. A name that reduces to nothing
// falls back to its normalized form so comparison stays meaningful.
func (s *Scorer) clean(na, nb string) (string, string) {
	for _, r := range s.rules {
		if strings.Contains(na, r.pattern) || strings.Contains(nb, r.pattern) {
			return fallback(stripPhrases(na, r.strip), na), fallback(stripPhrases(nb, r.strip), nb)
		}
	}
	return fallback(stripPhrases(na, s.stopWords()), na), fallback(stripPhrases(nb, s.stopWords()), nb)
}

func (s *Scorer) stopWords() []string {
	return s.opts.StopWords
}

func fallback(cleaned, original string) string {
	if cleaned == "" {
		return original
	}
	return cleaned
}

// stripPhrases removes each phrase as a whole word (or whole multi-word
// phrase) from a normalized name, then re-collapses whitespace.
func stripPhrases(name string, phrases []string) string {
	padded := " " + name + " "
	for _, p := range phrases {
		for {
			replaced := strings.ReplaceAll(padded, " "+p+" ", " ")
			if replaced == padded {
				break
			}
			padded = replaced
		}
	}
	return strings.TrimSpace(strings.Join(strings.Fields(padded), " "))
}
