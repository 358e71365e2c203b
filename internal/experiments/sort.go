package experiments

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// periodLen is the length of the "yyyy-mm" prefix of an experiment ID.
const periodLen = len("yyyy-mm")

// SortKey orders experiments by the period encoded at the start of the ID.
// Numeric keys always rank above textual ones.
type SortKey struct {
	Numeric bool
	Number  int
	Text    string
}

// KeyOf derives the sort key of an experiment.
func KeyOf(e Experiment) SortKey {
	prefix := e.ID
	if r := []rune(prefix); len(r) > periodLen {
		prefix = string(r[:periodLen])
	}
	key := strings.ReplaceAll(prefix, "-", "")
	if isDigits(key) {
		if n, err := strconv.Atoi(key); err == nil {
			return SortKey{Numeric: true, Number: n}
		}
	}
	return SortKey{Text: key}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Compare returns -1, 0 or +1.
func (k SortKey) Compare(o SortKey) int {
	switch {
	case k.Numeric && !o.Numeric:
		return 1
	case !k.Numeric && o.Numeric:
		return -1
	case k.Numeric:
		return cmp.Compare(k.Number, o.Number)
	default:
		return strings.Compare(k.Text, o.Text)
	}
}

// SortForBrowsing returns a copy of exps ordered most recent period first.
// Experiments with equal keys keep their original order.
func SortForBrowsing(exps []Experiment) []Experiment {
	out := slices.Clone(exps)
	slices.SortStableFunc(out, func(a, b Experiment) int {
		return KeyOf(b).Compare(KeyOf(a))
	})
	return out
}
