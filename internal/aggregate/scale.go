package aggregate

import (
	"fmt"
	"upreport/internal/core"

	"github.com/shopspring/decimal"
)

// PeriodScaler converts a budget limit into the amount available over a
// report window. Each budget period has its own scaler.
type PeriodScaler interface {
	Scale(entry core.BudgetEntry, w core.Window) decimal.Decimal
}

// WeeklyScaler multiplies the limit by the number of weeks in the window.
type WeeklyScaler struct{}

func (WeeklyScaler) Scale(e core.BudgetEntry, w core.Window) decimal.Decimal {
	return e.Limit.Abs().Mul(w.Weeks())
}

// MonthlyScaler multiplies the limit by the number of average months.
type MonthlyScaler struct{}

func (MonthlyScaler) Scale(e core.BudgetEntry, w core.Window) decimal.Decimal {
	return e.Limit.Abs().Mul(w.Months())
}

// CustomScaler takes the share of the limit whose range falls inside the
// window. A zero-length range counts fully when the window contains it.
type CustomScaler struct{}

func (CustomScaler) Scale(e core.BudgetEntry, w core.Window) decimal.Decimal {
	limit := e.Limit.Abs()
	r := e.Window()
	span := r.Duration()
	if span <= 0 {
		if w.Contains(r.Start) {
			return limit
		}
		return decimal.Zero
	}
	overlap := w.Overlap(r)
	if overlap <= 0 {
		return decimal.Zero
	}
	if overlap >= span {
		return limit
	}
	return limit.Mul(decimal.NewFromInt(int64(overlap))).Div(decimal.NewFromInt(int64(span)))
}

var periodScalers = map[core.BudgetPeriod]PeriodScaler{
	core.Weekly:  WeeklyScaler{},
	core.Monthly: MonthlyScaler{},
	core.Custom:  CustomScaler{},
}

// GetPeriodScaler returns the scaler registered for a budget period.
func GetPeriodScaler(p core.BudgetPeriod) (PeriodScaler, error) {
	s, ok := periodScalers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownPeriod, p)
	}
	return s, nil
}

// periodRank orders budget periods by precedence when a tag has several
// active entries.
func periodRank(p core.BudgetPeriod) int {
	switch p {
	case core.Custom:
		return 3
	case core.Monthly:
		return 2
	case core.Weekly:
		return 1
	default:
		return 0
	}
}
