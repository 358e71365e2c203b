package experiments

import (
	"errors"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// MatchThreshold is the minimum similarity accepted by Find.
const MatchThreshold = 85

var ErrNotFound = errors.New("no such experiment found")

// Matcher scores the similarity of two strings from 0 to 100.
type Matcher interface {
	Similarity(a, b string) int
}

type MatcherFunc func(a, b string) int

func (f MatcherFunc) Similarity(a, b string) int { return f(a, b) }

// DefaultMatcher uses partial-ratio scoring.
var DefaultMatcher Matcher = MatcherFunc(fuzzy.PartialRatio)

// Find returns the first experiment, in dataset order, whose lowercased
// label or raw ID is similar enough to query.
func Find(exps []Experiment, query string, m Matcher) (Experiment, error) {
	if m == nil {
		m = DefaultMatcher
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Experiment{}, ErrNotFound
	}
	for _, e := range exps {
		if m.Similarity(strings.ToLower(e.Label), q) >= MatchThreshold {
			return e, nil
		}
		if m.Similarity(e.ID, q) >= MatchThreshold {
			return e, nil
		}
	}
	return Experiment{}, ErrNotFound
}
