package aggregate

import (
	"errors"
	"testing"
	"upreport/internal/core"

	"github.com/shopspring/decimal"
)

func TestComputeVariance_Totality(t *testing.T) {
	summaries := map[string]core.TagSummary{
		"food":           {Tag: "food", Total: money(t, "-80"), Count: 3},
		"fuel":           {Tag: "fuel", Total: money(t, "-40"), Count: 1},
		core.UntaggedTag: {Tag: core.UntaggedTag, Total: money(t, "-5"), Count: 1},
	}
	entries := []core.BudgetEntry{
		{Tag: "food", Period: core.Weekly, Limit: dec("100")},
		{Tag: "rent", Period: core.Weekly, Limit: dec("400")},
	}

	report, err := ComputeVariance(summaries, entries, VarianceOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]int{}
	for _, tag := range report.Tags() {
		seen[tag]++
	}
	for _, tag := range []string{"food", "rent", "fuel", core.UntaggedTag} {
		if seen[tag] != 1 {
			t.Errorf("tag %s appears %d times, want exactly once", tag, seen[tag])
		}
	}
	if len(seen) != 4 {
		t.Errorf("unexpected tags in report: %v", seen)
	}

	rent := report.Results[1]
	if rent.Tag != "rent" || !rent.Actual.IsZero() || rent.Count != 0 {
		t.Errorf("budget-only tag should have zero actual: %+v", rent)
	}
	if rent.Status != core.StatusUnder {
		t.Errorf("rent status: got %s", rent.Status)
	}
	if len(report.Unbudgeted) != 2 || report.Unbudgeted[0].Tag != "fuel" {
		t.Errorf("unbudgeted: got %+v", report.Unbudgeted)
	}
}

func TestComputeVariance_Values(t *testing.T) {
	summaries := map[string]core.TagSummary{"food": {Tag: "food", Total: money(t, "-80")}}
	entries := []core.BudgetEntry{{Tag: "food", Period: core.Weekly, Limit: dec("-100")}}

	report, err := ComputeVariance(summaries, entries, VarianceOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := report.Results[0]
	if !r.Budgeted.Equal(money(t, "100")) {
		t.Errorf("budget should be compared by magnitude, got %s", r.Budgeted)
	}
	if !r.Actual.Equal(money(t, "80")) || !r.Variance.Equal(money(t, "-20")) {
		t.Errorf("actual %s variance %s, want 80 and -20", r.Actual, r.Variance)
	}
	if !r.Percent.Valid || !r.Percent.Decimal.Equal(dec("80")) {
		t.Errorf("percent: got %+v", r.Percent)
	}
}

func TestComputeVariance_StatusBand(t *testing.T) {
	tests := []struct {
		spend string
		want  core.VarianceStatus
	}{
		{"0", core.StatusUnder},
		{"97.5", core.StatusUnder},
		{"97.6", core.StatusOnTarget},
		{"100", core.StatusOnTarget},
		{"119.99", core.StatusOnTarget},
		{"120", core.StatusOver},
		{"300", core.StatusOver},
	}
	for _, tt := range tests {
		summaries := map[string]core.TagSummary{"x": {Tag: "x", Total: money(t, tt.spend).Neg()}}
		entries := []core.BudgetEntry{{Tag: "x", Period: core.Weekly, Limit: dec("100")}}
		report, err := ComputeVariance(summaries, entries, VarianceOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := report.Results[0].Status; got != tt.want {
			t.Errorf("spend %s: got %s, want %s", tt.spend, got, tt.want)
		}
	}
}

func TestComputeVariance_CustomBand(t *testing.T) {
	summaries := map[string]core.TagSummary{"x": {Tag: "x", Total: money(t, "-96")}}
	entries := []core.BudgetEntry{{Tag: "x", Period: core.Weekly, Limit: dec("100")}}
	opts := VarianceOptions{Lower: dec("95"), Upper: dec("112.5")}

	report, err := ComputeVariance(summaries, entries, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := report.Results[0].Status; got != core.StatusOnTarget {
		t.Errorf("got %s, want on-target", got)
	}
}

func TestComputeVariance_ZeroBudget(t *testing.T) {
	summaries := map[string]core.TagSummary{
		"spent": {Tag: "spent", Total: money(t, "-1")},
		"idle":  {Tag: "idle"},
	}
	entries := []core.BudgetEntry{
		{Tag: "spent", Period: core.Weekly, Limit: decimal.Zero},
		{Tag: "idle", Period: core.Weekly, Limit: decimal.Zero},
	}
	report, err := ComputeVariance(summaries, entries, VarianceOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idle, spent := report.Results[0], report.Results[1]
	if spent.Status != core.StatusOver || spent.Percent.Valid {
		t.Errorf("spent: got %s %+v", spent.Status, spent.Percent)
	}
	if idle.Status != core.StatusOnTarget || idle.Percent.Valid {
		t.Errorf("idle: got %s %+v", idle.Status, idle.Percent)
	}
}

func TestComputeVariance_InvalidBudget(t *testing.T) {
	entries := []core.BudgetEntry{
		{Tag: "food", Period: core.Weekly, Limit: dec("10")},
		{Tag: "food", Period: core.Weekly, Limit: dec("20")},
	}
	_, err := ComputeVariance(nil, entries, VarianceOptions{})
	var cfgErr *core.BudgetConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected BudgetConfigError, got %v", err)
	}
	if !errors.Is(err, core.ErrDuplicateBudget) {
		t.Errorf("expected duplicate budget problem, got %v", err)
	}
}

func TestComputeVariance_Scaling(t *testing.T) {
	w := core.Window{Start: day(0), End: day(14)}
	summaries := map[string]core.TagSummary{
		"food": {Tag: "food", Total: money(t, "-200")},
		"trip": {Tag: "trip", Total: money(t, "-300")},
	}
	entries := []core.BudgetEntry{
		{Tag: "food", Period: core.Weekly, Limit: dec("100")},
		{Tag: "trip", Period: core.Weekly, Limit: dec("10")},
		{Tag: "trip", Period: core.Custom, Limit: dec("600"), Start: day(7), End: day(21)},
	}
	report, err := ComputeVariance(summaries, entries, DefaultVarianceOptions(w))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	food, trip := report.Results[0], report.Results[1]
	if !food.Budgeted.Equal(money(t, "200")) || food.Status != core.StatusOnTarget {
		t.Errorf("food: budget %s status %s, want 200 on-target", food.Budgeted, food.Status)
	}
	// custom wins over weekly; half of its range falls in the window
	if trip.Period != core.Custom || !trip.Budgeted.Equal(money(t, "300")) {
		t.Errorf("trip: period %s budget %s, want custom 300", trip.Period, trip.Budgeted)
	}
}

func TestComputeVariance_CustomOutsideWindowFallsBack(t *testing.T) {
	w := core.Window{Start: day(0), End: day(7)}
	entries := []core.BudgetEntry{
		{Tag: "trip", Period: core.Monthly, Limit: dec("365")},
		{Tag: "trip", Period: core.Custom, Limit: dec("600"), Start: day(30), End: day(40)},
		{Tag: "gift", Period: core.Custom, Limit: dec("50"), Start: day(30), End: day(40)},
	}
	report, err := ComputeVariance(nil, entries, DefaultVarianceOptions(w))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gift, trip := report.Results[0], report.Results[1]
	if trip.Period != core.Monthly || !trip.Budgeted.Round(2).Equal(money(t, "84")) {
		t.Errorf("trip: period %s budget %s, want monthly 84", trip.Period, trip.Budgeted)
	}
	if !gift.Budgeted.IsZero() || gift.Status != core.StatusOnTarget {
		t.Errorf("gift: budget %s status %s", gift.Budgeted, gift.Status)
	}
}

func TestGetPeriodScaler(t *testing.T) {
	for _, p := range []core.BudgetPeriod{core.Weekly, core.Monthly, core.Custom} {
		if _, err := GetPeriodScaler(p); err != nil {
			t.Errorf("%s: %v", p, err)
		}
	}
	if _, err := GetPeriodScaler("yearly"); !errors.Is(err, core.ErrUnknownPeriod) {
		t.Errorf("expected ErrUnknownPeriod, got %v", err)
	}
}

func TestCustomScaler_ZeroLengthRange(t *testing.T) {
	w := core.Window{Start: day(0), End: day(7)}
	in := core.BudgetEntry{Tag: "x", Period: core.Custom, Limit: dec("25"), Start: day(3), End: day(3)}
	out := in
	out.Start, out.End = day(9), day(9)

	if got := (CustomScaler{}).Scale(in, w); !got.Equal(dec("25")) {
		t.Errorf("inside: got %s", got)
	}
	if got := (CustomScaler{}).Scale(out, w); !got.IsZero() {
		t.Errorf("outside: got %s", got)
	}
}
