package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusUnder    VarianceStatus = "under"
	StatusOnTarget VarianceStatus = "on-target"
	StatusOver     VarianceStatus = "over"
)

type (
	VarianceStatus string

	// TagSummary aggregates the transactions carrying one tag.
	TagSummary struct {
		Tag   string
		Total Money
		Count int
		First time.Time
		Last  time.Time
	}

	// SpendRate is the spend of a tag spread over the report window.
	SpendRate struct {
		Total   Money
		Weekly  Money
		Monthly Money
	}

	// VarianceResult compares the spend of a budgeted tag with its budget
	// scaled to the report window.
	VarianceResult struct {
		Tag      string
		Period   BudgetPeriod
		Total    Money // signed tag total, zero when the tag had no transactions
		Count    int
		Budgeted Money
		Actual   Money // spend: the negated total
		Variance Money // Actual - Budgeted
		Percent  decimal.NullDecimal
		Status   VarianceStatus
	}

	// VarianceReport holds one result per budgeted tag and the summaries of
	// tags that had spend but no budget.
	VarianceReport struct {
		Results    []VarianceResult
		Unbudgeted []TagSummary
	}
)

// Spend returns the outflow of the tag as a positive amount.
func (s TagSummary) Spend() Money { return s.Total.Neg() }

// Tags returns every tag of the report, budgeted first.
func (r VarianceReport) Tags() []string {
	out := make([]string, 0, len(r.Results)+len(r.Unbudgeted))
	for _, v := range r.Results {
		out = append(out, v.Tag)
	}
	for _, s := range r.Unbudgeted {
		out = append(out, s.Tag)
	}
	return out
}
