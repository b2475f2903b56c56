package match

import (
	"net/url"
	"strings"

	"github.com/sells-group/nap-audit-cli/internal/model"
)

// Selector picks the best-matching candidate from a directory search, or
// declares no-match. Safe for concurrent use.
type Selector struct {
	scorer *Scorer
}

// NewSelector builds a Selector around a Scorer.
func NewSelector(scorer *Scorer) *Selector {
	return &Selector{scorer: scorer}
}

// Select scores every candidate's name against the query and returns a
// tagged result. A region hint embedded in the query adjusts borderline
// scores before the threshold comparison. knownSite, when non-empty, is a
// previously verified website URL: if no candidate clears the threshold by
// name, a candidate whose website path closely matches it is accepted at a
// fixed override score. Ties go to the earliest candidate.
func (s *Selector) Select(query string, candidates []model.Candidate, knownSite string) model.MatchResult {
	if len(candidates) == 0 {
		return model.MatchResult{Outcome: model.OutcomeNoResults}
	}

	opts := s.scorer.opts
	hint := extractRegionHint(query, opts.StopWords)

	bestIdx := -1
	bestScore := -1.0
	for i, c := range candidates {
		score := s.scorer.Score(query, c.Name)

		if hint != nil && c.Address != "" {
			if hint.matchesAddress(c.Address) {
				score += opts.RegionBonus
			} else if hint.contradictedBy(c.Address) {
				score -= opts.RegionPenalty
			}
		}
		score = clamp01(score)

		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestScore >= opts.Threshold {
		return model.MatchResult{
			Outcome:   model.OutcomeMatched,
			Candidate: candidates[bestIdx],
			Score:     bestScore,
		}
	}

	// Secondary path: a known-correct website can vouch for a candidate
	// whose directory name diverged from the query.
	if knownSite != "" {
		if idx, ok := s.bestByURLPath(knownSite, candidates); ok {
			return model.MatchResult{
				Outcome:   model.OutcomeMatched,
				Candidate: candidates[idx],
				Score:     opts.URLOverrideScore,
			}
		}
	}

	return model.MatchResult{
		Outcome:     model.OutcomeNoConfidentMatch,
		ClosestName: candidates[bestIdx].Name,
	}
}

// bestByURLPath finds the candidate whose website URL path is most similar
// to the known site's path, if any clears the gate.
func (s *Selector) bestByURLPath(knownSite string, candidates []model.Candidate) (int, bool) {
	known := urlPath(knownSite)
	if known == "" {
		return 0, false
	}

	bestIdx := -1
	bestRatio := -1.0
	for i, c := range candidates {
		if c.Website == "" {
			continue
		}
		if r := seqRatio(known, urlPath(c.Website)); r > bestRatio {
			bestRatio = r
			bestIdx = i
		}
	}

	if bestIdx >= 0 && bestRatio >= s.scorer.opts.URLPathGate {
		return bestIdx, true
	}
	return 0, false
}

// urlPath extracts the lowercased, slash-trimmed path of a URL. Falls back
// to the raw string on parse failure so comparison stays total.
func urlPath(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.ToLower(strings.Trim(raw, "/"))
	}
	return strings.ToLower(strings.Trim(u.Path, "/"))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
