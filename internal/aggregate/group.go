package aggregate

import (
	"cmp"
	"slices"
	"upreport/internal/core"
)

// GroupByTag summarizes transactions per tag. A transaction without tags is
// counted under core.UntaggedTag. A transaction with several tags adds its
// full amount to each of them, so the per-tag totals may sum to more than
// GrandTotal.
func GroupByTag(txs []core.Transaction) map[string]core.TagSummary {
	out := make(map[string]core.TagSummary)
	for _, tx := range txs {
		for _, key := range groupKeys(tx) {
			out[key] = add(out[key], key, tx)
		}
	}
	return out
}

// GroupMembers returns the transactions GroupByTag counts under key, in
// input order. A literal "untagged" tag shares the core.UntaggedTag group.
func GroupMembers(txs []core.Transaction, key string) []core.Transaction {
	return filter(txs, func(tx core.Transaction) bool {
		return slices.Contains(groupKeys(tx), key)
	})
}

// groupKeys lists the distinct groups a transaction belongs to.
func groupKeys(tx core.Transaction) []string {
	if tx.IsUntagged() {
		return []string{core.UntaggedTag}
	}
	keys := make([]string, 0, len(tx.Tags))
	for _, tag := range tx.Tags {
		if !slices.Contains(keys, tag) {
			keys = append(keys, tag)
		}
	}
	return keys
}

func add(s core.TagSummary, tag string, tx core.Transaction) core.TagSummary {
	s.Tag = tag
	s.Total = s.Total.Add(tx.Amount)
	s.Count++
	if s.First.IsZero() || tx.CreatedAt.Before(s.First) {
		s.First = tx.CreatedAt
	}
	if tx.CreatedAt.After(s.Last) {
		s.Last = tx.CreatedAt
	}
	return s
}

// GrandTotal sums the amounts of distinct transactions.
func GrandTotal(txs []core.Transaction) core.Money {
	var total core.Money
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.ID != "" {
			if seen[tx.ID] {
				continue
			}
			seen[tx.ID] = true
		}
		total = total.Add(tx.Amount)
	}
	return total
}

// SortByTotal returns the summaries ordered by spend, largest first. Ties
// are broken by tag name.
func SortByTotal(summaries map[string]core.TagSummary) []core.TagSummary {
	out := make([]core.TagSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b core.TagSummary) int {
		if c := b.Spend().Cmp(a.Spend()); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	return out
}

// SpendRates spreads the spend of a tag over the window. An empty window
// yields zero rates.
func SpendRates(s core.TagSummary, w core.Window) core.SpendRate {
	rate := core.SpendRate{Total: s.Spend()}
	weeks, months := w.Weeks(), w.Months()
	if weeks.IsPositive() {
		rate.Weekly = core.NewMoney(rate.Total.Decimal().Div(weeks))
	}
	if months.IsPositive() {
		rate.Monthly = core.NewMoney(rate.Total.Decimal().Div(months))
	}
	return rate
}
