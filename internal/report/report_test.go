package report

import (
	"math"
	"testing"
	"time"

	"talos/internal/core"
)

func mv(id int64, created time.Time, cents int64, desc string) core.Movement {
	return core.Movement{
		ID:          id,
		CreatedAt:   created,
		PeriodKey:   core.PeriodKeyFor(created),
		Amount:      core.Money{Cents: cents},
		Description: desc,
		Provenance:  core.ManualEntry(),
	}
}

func TestMonthlySummary(t *testing.T) {
	day := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	movements := []core.Movement{
		mv(1, day, 10000, "groceries"),
		mv(2, day.Add(time.Hour), 2050, "fuel"),
	}

	// 120.50 spent out of 300.00 leaves 179.50 (59.83%).
	sum := MonthlySummary(movements, core.Money{Cents: 30000})
	if sum.Spent.Cents != 12050 {
		t.Fatalf("spent: got %d", sum.Spent.Cents)
	}
	if sum.Remaining.Cents != 17950 {
		t.Fatalf("remaining: got %d", sum.Remaining.Cents)
	}
	if math.Abs(sum.PercentRemaining-59.8333) > 0.001 {
		t.Fatalf("percent: got %v", sum.PercentRemaining)
	}
}

func TestMonthlySummaryOverspend(t *testing.T) {
	day := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	movements := []core.Movement{mv(1, day, 35000, "rent share")}

	sum := MonthlySummary(movements, core.Money{Cents: 30000})
	if sum.Remaining.Cents != -5000 {
		t.Fatalf("remaining must stay negative, got %d", sum.Remaining.Cents)
	}
	if sum.PercentRemaining != 0 {
		t.Fatalf("percent must clamp to 0, got %v", sum.PercentRemaining)
	}
}

func TestMonthlySummaryEmptyAndZeroBudget(t *testing.T) {
	sum := MonthlySummary(nil, core.Money{Cents: 30000})
	if sum.Spent.Cents != 0 || sum.Remaining.Cents != 30000 || sum.PercentRemaining != 100 {
		t.Fatalf("got %+v", sum)
	}

	sum = MonthlySummary(nil, core.Money{Cents: 0})
	if sum.PercentRemaining != 0 {
		t.Fatalf("zero budget percent: got %v", sum.PercentRemaining)
	}
}

func TestGroupByPeriodOrdering(t *testing.T) {
	june := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)
	movements := []core.Movement{
		mv(1, june, 100, "first"),
		mv(2, june.Add(time.Hour), 200, "second"),
		mv(3, july, 300, "third"),
		mv(4, june.Add(time.Hour), 400, "tie"), // same instant as id 2
	}

	groups := GroupByPeriod(movements)
	if len(groups) != 2 {
		t.Fatalf("got %d groups", len(groups))
	}

	juneGroup := groups["2025-06"]
	wantIDs := []int64{4, 2, 1} // reverse chronological, id breaks the tie
	if len(juneGroup) != len(wantIDs) {
		t.Fatalf("june group size: got %d", len(juneGroup))
	}
	for i, want := range wantIDs {
		if juneGroup[i].ID != want {
			t.Fatalf("june[%d]: got id %d, want %d", i, juneGroup[i].ID, want)
		}
	}

	periods := SortedPeriods(groups)
	if periods[0] != "2025-07" || periods[1] != "2025-06" {
		t.Fatalf("periods: got %v", periods)
	}
}

func TestPeriodTotals(t *testing.T) {
	movements := []core.Movement{
		mv(1, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), 300, ""),
		mv(2, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), 100, ""),
		mv(3, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), 150, ""),
		mv(4, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 200, ""),
	}

	totals := PeriodTotals(movements)
	want := []PeriodTotal{
		{PeriodKey: "2025-05", Total: core.Money{Cents: 250}},
		{PeriodKey: "2025-06", Total: core.Money{Cents: 200}},
		{PeriodKey: "2025-07", Total: core.Money{Cents: 300}},
	}
	if len(totals) != len(want) {
		t.Fatalf("got %d totals", len(totals))
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Fatalf("totals[%d]: got %+v, want %+v", i, totals[i], want[i])
		}
	}
}

func TestLastN(t *testing.T) {
	totals := []PeriodTotal{
		{PeriodKey: "2025-01"}, {PeriodKey: "2025-02"}, {PeriodKey: "2025-03"},
	}

	got := LastN(totals, 2)
	if len(got) != 2 || got[0].PeriodKey != "2025-02" {
		t.Fatalf("got %v", got)
	}
	if got := LastN(totals, 6); len(got) != 3 {
		t.Fatalf("short input must pass through, got %v", got)
	}
	if got := LastN(totals, 0); got != nil {
		t.Fatalf("n=0 must return nil, got %v", got)
	}
}

func TestCoffeeScenario(t *testing.T) {
	// A 15.00 coffee against the default 300.00 budget leaves 285.00 (95%).
	day := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	sum := MonthlySummary([]core.Movement{mv(1, day, 1500, "coffee")}, core.DefaultSettings().MonthlyBudget)
	if sum.Remaining.Cents != 28500 {
		t.Fatalf("remaining: got %d", sum.Remaining.Cents)
	}
	if sum.PercentRemaining != 95 {
		t.Fatalf("percent: got %v", sum.PercentRemaining)
	}
}
