// Package report derives read-only views from movement collections: monthly
// summaries, per-period grouping and totals, and the trend curve geometry.
//
// Every function here is pure. The package never touches the store; callers
// pass in snapshots obtained through store queries.
package report

import (
	"sort"

	"talos/internal/core"
)

// Summary is the budget position for one period.
type Summary struct {
	Budget core.Money
	Spent  core.Money
	// Remaining may be negative; overspend is representable and never clamped.
	Remaining core.Money
	// PercentRemaining is clamped to [0,100] for display. It is 0 when the
	// budget is not positive.
	PercentRemaining float64
}

// PeriodTotal is the spend total for one period key.
type PeriodTotal struct {
	PeriodKey string
	Total     core.Money
}

// MonthlySummary computes the budget position from a period's movements.
func MonthlySummary(movements []core.Movement, budget core.Money) Summary {
	var spent int64
	for _, m := range movements {
		spent += m.Amount.Cents
	}
	remaining := budget.Cents - spent

	var pct float64
	if budget.Cents > 0 {
		pct = float64(remaining) / float64(budget.Cents) * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
	}

	return Summary{
		Budget:           budget,
		Spent:            core.Money{Cents: spent},
		Remaining:        core.Money{Cents: remaining},
		PercentRemaining: pct,
	}
}

// GroupByPeriod buckets movements by period key. Within each bucket the
// movements are ordered reverse-chronologically; insertion id breaks ties so
// the order is deterministic.
func GroupByPeriod(movements []core.Movement) map[string][]core.Movement {
	groups := make(map[string][]core.Movement)
	for _, m := range movements {
		groups[m.PeriodKey] = append(groups[m.PeriodKey], m)
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.After(group[j].CreatedAt)
			}
			return group[i].ID > group[j].ID
		})
	}
	return groups
}

// SortedPeriods returns the keys of a grouping in descending order, the way
// the history view lists them (most recent month first).
func SortedPeriods(groups map[string][]core.Movement) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// PeriodTotals returns one total per distinct period key, ascending by key.
// "YYYY-MM" keys sort chronologically as plain strings.
func PeriodTotals(movements []core.Movement) []PeriodTotal {
	totals := make(map[string]int64)
	for _, m := range movements {
		totals[m.PeriodKey] += m.Amount.Cents
	}

	out := make([]PeriodTotal, 0, len(totals))
	for key, cents := range totals {
		out = append(out, PeriodTotal{PeriodKey: key, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodKey < out[j].PeriodKey })
	return out
}

// LastN returns the trailing window of totals, e.g. the last 6 months for
// the trend graph. It returns the input unchanged when it is shorter than n.
func LastN(totals []PeriodTotal, n int) []PeriodTotal {
	if n <= 0 {
		return nil
	}
	if len(totals) <= n {
		return totals
	}
	return totals[len(totals)-n:]
}
