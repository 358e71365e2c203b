package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"experiment-bot/internal/storage"
)

// topQueries is how many lookup queries a report lists.
const topQueries = 5

// DailyStats summarises one day of bot usage.
type DailyStats struct {
	Date          string         `json:"date"`
	TotalCommands int            `json:"total_commands"`
	UniqueUsers   int            `json:"unique_users"`
	ByOutcome     map[string]int `json:"by_outcome"`
	Queries       map[string]int `json:"queries"`
}

// AnalyzeDay aggregates the events that happened on day (in day's location).
func AnalyzeDay(events []storage.Event, day time.Time) *DailyStats {
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByOutcome: make(map[string]int),
		Queries:   make(map[string]int),
	}
	users := make(map[int64]struct{})

	for _, ev := range events {
		if ev.Timestamp.Before(startOfDay) || !ev.Timestamp.Before(endOfDay) {
			continue
		}
		stats.TotalCommands++
		users[ev.UserID] = struct{}{}
		stats.ByOutcome[ev.Outcome]++
		if ev.Command == storage.CommandLookup && ev.Query != "" {
			stats.Queries[strings.ToLower(ev.Query)]++
		}
	}
	stats.UniqueUsers = len(users)
	return stats
}

type queryCount struct {
	query string
	n     int
}

// TopQueries returns up to n queries, most frequent first.
func (ds *DailyStats) TopQueries(n int) []string {
	qs := make([]queryCount, 0, len(ds.Queries))
	for q, c := range ds.Queries {
		qs = append(qs, queryCount{q, c})
	}
	sort.Slice(qs, func(i, j int) bool {
		if qs[i].n != qs[j].n {
			return qs[i].n > qs[j].n
		}
		return qs[i].query < qs[j].query
	})
	if len(qs) > n {
		qs = qs[:n]
	}
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = fmt.Sprintf("%s (%d)", q.query, q.n)
	}
	return out
}

// FormatReport renders the stats as a chat message.
func (ds *DailyStats) FormatReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Experiment bot usage for %s\n\n", ds.Date)
	fmt.Fprintf(&b, "Commands: %d\nUnique users: %d\n", ds.TotalCommands, ds.UniqueUsers)

	outcomes := make([]string, 0, len(ds.ByOutcome))
	for o := range ds.ByOutcome {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	if len(outcomes) > 0 {
		b.WriteString("\nBy outcome:\n")
		for _, o := range outcomes {
			fmt.Fprintf(&b, "- %s: %d\n", o, ds.ByOutcome[o])
		}
	}

	if top := ds.TopQueries(topQueries); len(top) > 0 {
		b.WriteString("\nTop lookups:\n")
		for _, q := range top {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return b.String()
}
