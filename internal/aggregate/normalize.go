package aggregate

import (
	"fmt"
	"strings"
	"upreport/internal/core"
)

// Normalize validates raw records. Records a source could not decode, and
// records without an id, timestamp or parseable amount, and records repeating an earlier id, are left out and
// returned as errors; the remaining records are returned in source order.
// currency is used for amounts given in minor units without a currency.
func Normalize(raws []core.RawTransaction, currency string) ([]core.Transaction, []*core.MalformedRecordError) {
	var (
		txs      = make([]core.Transaction, 0, len(raws))
		rejected []*core.MalformedRecordError
		seen     = make(map[string]bool, len(raws))
	)
	for i, raw := range raws {
		tx, err := normalizeOne(raw, currency)
		if err == nil && seen[tx.ID] {
			err = core.ErrDuplicateID
		}
		if err != nil {
			rejected = append(rejected, &core.MalformedRecordError{Index: i, ID: raw.ID, Err: err})
			continue
		}
		seen[tx.ID] = true
		txs = append(txs, tx)
	}
	return txs, rejected
}

func normalizeOne(raw core.RawTransaction, currency string) (core.Transaction, error) {
	if raw.DecodeErr != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", core.ErrUnreadableRecord, raw.DecodeErr)
	}
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return core.Transaction{}, core.ErrMissingID
	}
	if raw.CreatedAt == nil || raw.CreatedAt.IsZero() {
		return core.Transaction{}, core.ErrMissingTimestamp
	}

	var amount core.Money
	switch {
	case raw.Amount != nil:
		m, err := core.ParseMoney(*raw.Amount)
		if err != nil {
			return core.Transaction{}, err
		}
		amount = m
	case raw.AmountInBaseUnits != nil:
		cur := raw.Currency
		if cur == "" {
			cur = currency
		}
		amount = core.MoneyFromMinorUnits(*raw.AmountInBaseUnits, cur)
	default:
		return core.Transaction{}, core.ErrMissingAmount
	}

	tx := core.Transaction{
		ID:             id,
		AccountID:      raw.AccountID,
		Description:    strings.TrimSpace(raw.Description),
		Message:        strings.TrimSpace(raw.Message),
		Amount:         amount,
		CreatedAt:      *raw.CreatedAt,
		Tags:           normalizeTags(raw.Tags),
		Category:       raw.Category,
		ParentCategory: raw.ParentCategory,
		Status:         raw.Status,
	}
	if raw.SettledAt != nil {
		tx.SettledAt = *raw.SettledAt
	}
	return tx, nil
}

// normalizeTags trims tags and drops empty and repeated ones.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
