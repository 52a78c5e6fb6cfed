package aggregate

import (
	"testing"
	"time"
	"upreport/internal/core"

	"github.com/shopspring/decimal"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func tx(id, amount string, at time.Time, tags ...string) core.Transaction {
	m, err := core.ParseMoney(amount)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: id, Amount: m, CreatedAt: at, Tags: tags}
}

func money(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseMoney(s)
	if err != nil {
		t.Fatalf("bad amount %q: %v", s, err)
	}
	return m
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(n int) time.Time { return base.AddDate(0, 0, n) }

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}
