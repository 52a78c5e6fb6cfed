// Package aggregate turns normalized transactions into per-tag summaries
// and budget variance results. Every function is pure: inputs are never
// modified and the same inputs always give the same outputs.
package aggregate

import (
	"strings"
	"time"
	"upreport/internal/core"
)

// FilterByPeriod returns the transactions created inside [start, end], both
// bounds included, in their original order.
func FilterByPeriod(txs []core.Transaction, start, end time.Time) ([]core.Transaction, error) {
	w, err := core.NewWindow(start, end)
	if err != nil {
		return nil, err
	}
	return FilterByWindow(txs, w), nil
}

// FilterByWindow is FilterByPeriod for an already validated window.
func FilterByWindow(txs []core.Transaction, w core.Window) []core.Transaction {
	return filter(txs, func(tx core.Transaction) bool { return w.Contains(tx.CreatedAt) })
}

// Withdrawals keeps the transactions with a negative amount.
func Withdrawals(txs []core.Transaction) []core.Transaction {
	return filter(txs, core.Transaction.IsWithdrawal)
}

// UntaggedWithdrawals keeps the withdrawals that carry no tag.
func UntaggedWithdrawals(txs []core.Transaction) []core.Transaction {
	return filter(txs, func(tx core.Transaction) bool { return tx.IsWithdrawal() && tx.IsUntagged() })
}

// FilterByTag keeps the transactions carrying tag. Without exact, any tag
// containing tag as a substring matches.
func FilterByTag(txs []core.Transaction, tag string, exact bool) []core.Transaction {
	if exact {
		return filter(txs, func(tx core.Transaction) bool { return tx.HasTag(tag) })
	}
	return filter(txs, func(tx core.Transaction) bool {
		for _, t := range tx.Tags {
			if strings.Contains(t, tag) {
				return true
			}
		}
		return false
	})
}

func filter(txs []core.Transaction, keep func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}
