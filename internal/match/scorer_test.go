package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestScorer() *Scorer {
	return NewScorer(DefaultOptions())
}

func TestScoreEmptyInputs(t *testing.T) {
	s := newTestScorer()

	assert.Zero(t, s.Score("", "Acme Plumbing"))
	assert.Zero(t, s.Score("Acme Plumbing", ""))
	assert.Zero(t, s.Score("", ""))
	assert.Zero(t, s.Score("   ", "Acme"))
}

func TestScoreReflexive(t *testing.T) {
	s := newTestScorer()

	for _, name := range []string{
		"Acme Plumbing",
		"Riverside Dental Group",
		"O'Brien & Sons Roofing, LLC",
	} {
		assert.Equal(t, 1.0, s.Score(name, name), "Score(%q, %q)", name, name)
	}
}

func TestScoreSymmetric(t *testing.T) {
	s := newTestScorer()

	pairs := [][2]string{
		{"Acme Plumbing", "Acme Heating"},
		{"Riverside Dental", "Riverbend Dental Care"},
		{"Smith Automotive Repair", "Jones Automotive"},
	}
	for _, p := range pairs {
		assert.Equal(t, s.Score(p[0], p[1]), s.Score(p[1], p[0]), "Score(%q, %q)", p[0], p[1])
	}
}

func TestScoreStopWordsCollapseToEqual(t *testing.T) {
	s := newTestScorer()

	// "Inc" is boilerplate: both names clean to the same tokens.
	assert.GreaterOrEqual(t, s.Score("Acme Plumbing Inc", "Acme Plumbing"), 0.9)
	assert.Equal(t, 1.0, s.Score("The Acme Company", "Acme"))
}

func TestScoreContainment(t *testing.T) {
	s := newTestScorer()

	// One name carries extra descriptive text around the other.
	score := s.Score("Acme Plumbing", "Acme Plumbing Heating and Air")
	assert.Equal(t, 0.9, score)
}

func TestScoreFranchiseBoilerplate(t *testing.T) {
	s := newTestScorer()

	// Two Home Helpers territories share only brand words; the location
	// words disagree, so the pair must stay under the match threshold.
	score := s.Score("Home Helpers of Dayton", "Home Helpers Columbus")
	assert.Less(t, score, 0.7)

	// Decorated franchise brand: the degree symbol is stripped by
	// normalization and the brand tokens by the rule.
	score = s.Score("360° Painting of North Georgia", "360 Painting of Charlotte")
	assert.Less(t, score, 0.7)
}

func TestScoreSameFranchiseLocation(t *testing.T) {
	s := newTestScorer()

	// Same territory should still match even through the brand rule.
	score := s.Score("Home Helpers of Dayton", "Home Helpers Home Care of Dayton")
	assert.GreaterOrEqual(t, score, 0.7)
}

func TestScoreBlendedSignal(t *testing.T) {
	s := newTestScorer()

	// Word overlap plus spelling similarity, no containment.
	score := s.Score("Riverside Dental Group", "Riverside Dental Associates")
	assert.Greater(t, score, 0.3)
	assert.Less(t, score, 1.0)

	// Unrelated names score low.
	assert.Less(t, s.Score("Acme Plumbing", "Zebra Consulting"), 0.4)
}

func TestSeqRatio(t *testing.T) {
	assert.Equal(t, 1.0, seqRatio("abc", "abc"))
	assert.Zero(t, seqRatio("", "abc"))
	assert.Zero(t, seqRatio("abc", ""))
	assert.InDelta(t, 2.0/3.0, seqRatio("ab", "aXbY"), 1e-9) // lcs "ab": 2*2/(2+4)
}

func TestSeqRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"dayton", "columbus"},
		{"acme plumbing", "acme heating"},
		{"a", "b"},
	}
	for _, p := range pairs {
		assert.Equal(t, seqRatio(p[0], p[1]), seqRatio(p[1], p[0]))
	}
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, jaccard("acme plumbing", "plumbing acme")) // order-insensitive
	assert.Zero(t, jaccard("dayton", "columbus"))
	assert.Zero(t, jaccard("a b c", "abc def"))                  // left side has no qualifying words
	assert.InDelta(t, 1.0/3.0, jaccard("acme plumbing", "acme heating"), 1e-9)
}

func TestStripPhrases(t *testing.T) {
	got := stripPhrases("home helpers home care of dayton", []string{"home helpers", "home care", "of"})
	assert.Equal(t, "dayton", got)

	// Whole-word only: "co" must not eat into "columbus".
	got = stripPhrases("columbus co", []string{"co"})
	assert.Equal(t, "columbus", got)
}
