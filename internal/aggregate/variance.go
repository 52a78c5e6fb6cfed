package aggregate

import (
	"cmp"
	"slices"
	"upreport/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// VarianceOptions controls budget scaling and the tolerance band.
type VarianceOptions struct {
	// Window is the report window budgets are scaled to. A zero Window
	// compares the raw limits without scaling.
	Window core.Window
	// Lower and Upper are percentages of the budget. Spend at or below
	// Lower is under budget, spend at or above Upper is over budget.
	Lower decimal.Decimal
	Upper decimal.Decimal
}

// DefaultVarianceOptions returns the 97.5% / 120% band over w.
func DefaultVarianceOptions(w core.Window) VarianceOptions {
	return VarianceOptions{
		Window: w,
		Lower:  decimal.RequireFromString("97.5"),
		Upper:  decimal.NewFromInt(120),
	}
}

// ComputeVariance joins tag summaries with budget entries. Every budgeted
// tag gets one result, with zero actual spend when it had no transactions.
// Tags with transactions but no budget are returned in Unbudgeted. Invalid
// entries fail the whole computation with a *core.BudgetConfigError.
func ComputeVariance(summaries map[string]core.TagSummary, entries []core.BudgetEntry, opts VarianceOptions) (core.VarianceReport, error) {
	if err := core.ValidateBudget("", entries); err != nil {
		return core.VarianceReport{}, err
	}
	if opts.Lower.IsZero() && opts.Upper.IsZero() {
		d := DefaultVarianceOptions(opts.Window)
		opts.Lower, opts.Upper = d.Lower, d.Upper
	}

	byTag := make(map[string][]core.BudgetEntry)
	for _, e := range entries {
		byTag[e.Tag] = append(byTag[e.Tag], e)
	}

	var report core.VarianceReport
	for tag, tagEntries := range byTag {
		period, budgeted := scaledBudget(tagEntries, opts.Window)
		s := summaries[tag]
		actual := s.Spend()
		r := core.VarianceResult{
			Tag:      tag,
			Period:   period,
			Total:    s.Total,
			Count:    s.Count,
			Budgeted: core.NewMoney(budgeted),
			Actual:   actual,
			Variance: actual.Sub(core.NewMoney(budgeted)),
		}
		r.Percent, r.Status = varianceStatus(actual.Decimal(), budgeted, opts)
		report.Results = append(report.Results, r)
	}
	for tag, s := range summaries {
		if _, ok := byTag[tag]; !ok {
			report.Unbudgeted = append(report.Unbudgeted, s)
		}
	}

	slices.SortFunc(report.Results, func(a, b core.VarianceResult) int { return cmp.Compare(a.Tag, b.Tag) })
	slices.SortFunc(report.Unbudgeted, func(a, b core.TagSummary) int { return cmp.Compare(a.Tag, b.Tag) })
	return report, nil
}

// scaledBudget picks the entries of the highest ranked period that apply to
// w and returns their combined scaled limit. Custom entries apply only when
// their range meets the window.
func scaledBudget(entries []core.BudgetEntry, w core.Window) (core.BudgetPeriod, decimal.Decimal) {
	unscaled := w.IsZero()

	var best core.BudgetPeriod
	for _, e := range entries {
		if e.Period == core.Custom && !unscaled && !w.Overlaps(e.Window()) {
			continue
		}
		if periodRank(e.Period) > periodRank(best) {
			best = e.Period
		}
	}
	if best == "" {
		// only custom ranges outside the window
		return core.Custom, decimal.Zero
	}

	total := decimal.Zero
	for _, e := range entries {
		if e.Period != best {
			continue
		}
		if unscaled {
			total = total.Add(e.Limit.Abs())
			continue
		}
		scaler, err := GetPeriodScaler(e.Period)
		if err != nil {
			continue
		}
		total = total.Add(scaler.Scale(e, w))
	}
	return best, total
}

func varianceStatus(actual, budgeted decimal.Decimal, opts VarianceOptions) (decimal.NullDecimal, core.VarianceStatus) {
	if budgeted.IsZero() {
		if actual.IsPositive() {
			return decimal.NullDecimal{}, core.StatusOver
		}
		return decimal.NullDecimal{}, core.StatusOnTarget
	}
	pct := actual.Div(budgeted).Mul(hundred)
	status := core.StatusOnTarget
	switch {
	case pct.GreaterThanOrEqual(opts.Upper):
		status = core.StatusOver
	case pct.LessThanOrEqual(opts.Lower):
		status = core.StatusUnder
	}
	return decimal.NewNullDecimal(pct), status
}
