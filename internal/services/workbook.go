package services

import (
	"strconv"
	"strings"
	"time"

	"upreport/internal/aggregate"
	"upreport/internal/core"
)

// Sheet names shared by every writer.
const (
	SheetSummary     = "report_summary"
	SheetTagSummary  = "tag_summary"
	SheetBudget      = "budget_vs_spend"
	SheetUnbudgeted  = "unbudgeted_spend"
	SheetUntagged    = "untagged_withdrawals"
	SheetRejected    = "rejected_records"
	tagSheetPrefix   = "tag_"
	cellTimeLayout   = "2006-01-02 15:04:05"
	workbookUntagged = "untagged_withdrawals"
	workbookTags     = "tag_analysis"
	workbookBudget   = "budget_vs_spend"
)

var transactionHeader = []string{"id", "created_at", "description", "message", "amount", "tags", "category", "status"}

// TagSheetName is the sheet holding the transactions of one tag.
func TagSheetName(tag string) string { return tagSheetPrefix + tag }

type builder struct {
	wb     core.Workbook
	window core.Window
	config Config
}

func newBuilder(kind core.ReportKind, generatedAt time.Time, w core.Window, config Config) *builder {
	name := map[core.ReportKind]string{
		core.ReportUntagged: workbookUntagged,
		core.ReportTags:     workbookTags,
		core.ReportBudget:   workbookBudget,
	}[kind]
	return &builder{
		wb:     core.Workbook{Name: name, GeneratedAt: generatedAt},
		window: w,
		config: config,
	}
}

func (b *builder) summary(txs []core.Transaction, malformed int) {
	s := b.wb.AddSheet(SheetSummary,
		"from", "to", "generated_at", "total_days", "total_weeks", "total_months",
		"transactions", "net_total", "malformed_records")
	s.Append(
		b.time(b.window.Start),
		b.time(b.window.End),
		b.time(b.wb.GeneratedAt),
		b.window.Days().StringFixed(2),
		b.window.Weeks().StringFixed(2),
		b.window.Months().StringFixed(2),
		strconv.Itoa(len(txs)),
		aggregate.GrandTotal(txs).Format(b.config.Currency),
		strconv.Itoa(malformed),
	)
}

func (b *builder) untagged(txs []core.Transaction) {
	b.transactions(SheetUntagged, txs)
}

func (b *builder) tags(txs []core.Transaction, selected []string, exact bool) {
	summaries := aggregate.GroupByTag(txs)
	if len(selected) > 0 {
		for tag := range summaries {
			if !matchesAny(tag, selected, exact) {
				delete(summaries, tag)
			}
		}
	}
	sorted := b.tagSummary(summaries)
	for _, s := range sorted {
		b.transactions(TagSheetName(s.Tag), aggregate.GroupMembers(txs, s.Tag))
	}
}

func (b *builder) tagSummary(summaries map[string]core.TagSummary) []core.TagSummary {
	sheet := b.wb.AddSheet(SheetTagSummary,
		"tag", "total", "count", "spend", "weekly_spend", "monthly_spend", "first", "last")
	sorted := aggregate.SortByTotal(summaries)
	for _, s := range sorted {
		rate := aggregate.SpendRates(s, b.window)
		sheet.Append(
			s.Tag,
			s.Total.String(),
			strconv.Itoa(s.Count),
			rate.Total.String(),
			rate.Weekly.String(),
			rate.Monthly.String(),
			b.time(s.First),
			b.time(s.Last),
		)
	}
	return sorted
}

func (b *builder) variance(r core.VarianceReport) {
	sheet := b.wb.AddSheet(SheetBudget,
		"tag", "period", "total", "count", "budget", "actual", "variance", "percent", "status")
	for _, v := range r.Results {
		percent := ""
		if v.Percent.Valid {
			percent = v.Percent.Decimal.StringFixed(2)
		}
		sheet.Append(
			v.Tag,
			v.Period.String(),
			v.Total.String(),
			strconv.Itoa(v.Count),
			v.Budgeted.String(),
			v.Actual.String(),
			v.Variance.String(),
			percent,
			string(v.Status),
		)
	}

	unbudgeted := b.wb.AddSheet(SheetUnbudgeted, "tag", "total", "count", "spend")
	for _, s := range r.Unbudgeted {
		unbudgeted.Append(s.Tag, s.Total.String(), strconv.Itoa(s.Count), s.Spend().String())
	}
}

func (b *builder) rejected(malformed []*core.MalformedRecordError) {
	if len(malformed) == 0 {
		return
	}
	sheet := b.wb.AddSheet(SheetRejected, "index", "id", "error")
	for _, m := range malformed {
		reason := ""
		if m.Err != nil {
			reason = m.Err.Error()
		}
		sheet.Append(strconv.Itoa(m.Index), m.ID, reason)
	}
}

func (b *builder) transactions(name string, txs []core.Transaction) {
	sheet := b.wb.AddSheet(name, transactionHeader...)
	for _, tx := range txs {
		sheet.Append(
			tx.ID,
			b.time(tx.CreatedAt),
			tx.Description,
			tx.Message,
			tx.Amount.String(),
			strings.Join(tx.Tags, ","),
			tx.Category,
			tx.Status,
		)
	}
}

func (b *builder) time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(b.config.Location).Format(cellTimeLayout)
}

func matchesAny(tag string, selected []string, exact bool) bool {
	for _, sel := range selected {
		if tag == sel || (!exact && strings.Contains(tag, sel)) {
			return true
		}
	}
	return false
}
