package aggregate

import (
	"errors"
	"strings"
	"testing"
	"time"
	"upreport/internal/core"
)

func ptr[T any](v T) *T { return &v }

func TestNormalize(t *testing.T) {
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	raws := []core.RawTransaction{
		{ID: "ok", Amount: ptr("-12.50"), CreatedAt: &at, Tags: []string{" food ", "", "food"}},
		{ID: "no-time", Amount: ptr("-1")},
		{ID: "no-amount", CreatedAt: &at},
		{ID: "cents", AmountInBaseUnits: ptr(int64(-995)), CreatedAt: &at},
		{ID: "bad-amount", Amount: ptr("twelve"), CreatedAt: &at},
		{ID: "", Amount: ptr("-1"), CreatedAt: &at},
		{ID: "ok", Amount: ptr("-3"), CreatedAt: &at},
	}

	txs, rejected := Normalize(raws, "AUD")

	if len(txs) != 2 {
		t.Fatalf("expected 2 valid transactions, got %d", len(txs))
	}
	if txs[0].ID != "ok" || !txs[0].Amount.Equal(money(t, "-12.50")) {
		t.Errorf("first: got %+v", txs[0])
	}
	if len(txs[0].Tags) != 1 || txs[0].Tags[0] != "food" {
		t.Errorf("tags not normalized: %q", txs[0].Tags)
	}
	if !txs[1].Amount.Equal(money(t, "-9.95")) {
		t.Errorf("minor units: got %s", txs[1].Amount)
	}

	wantErrs := []struct {
		index int
		err   error
	}{
		{1, core.ErrMissingTimestamp},
		{2, core.ErrMissingAmount},
		{4, core.ErrInvalidAmount},
		{5, core.ErrMissingID},
		{6, core.ErrDuplicateID},
	}
	if len(rejected) != len(wantErrs) {
		t.Fatalf("expected %d rejected records, got %d", len(wantErrs), len(rejected))
	}
	for i, w := range wantErrs {
		r := rejected[i]
		if r.Index != w.index || !errors.Is(r, w.err) {
			t.Errorf("rejected[%d]: got index %d err %v, want index %d err %v", i, r.Index, r.Err, w.index, w.err)
		}
	}
}

func TestNormalize_MalformedRecordDoesNotStopAggregation(t *testing.T) {
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	raws := []core.RawTransaction{
		{ID: "1", Amount: ptr("-10"), CreatedAt: &at, Tags: []string{"food"}},
		{ID: "2", Amount: ptr("-99"), Tags: []string{"food"}},
		{ID: "3", Amount: ptr("-5"), CreatedAt: &at, Tags: []string{"food"}},
	}
	txs, rejected := Normalize(raws, "AUD")
	if len(rejected) != 1 || rejected[0].ID != "2" {
		t.Fatalf("expected one rejected record with id 2, got %v", rejected)
	}

	var malformed *core.MalformedRecordError
	if !errors.As(rejected[0], &malformed) {
		t.Fatal("rejection should be a MalformedRecordError")
	}

	summary := GroupByTag(txs)["food"]
	if summary.Count != 2 || !summary.Total.Equal(money(t, "-15")) {
		t.Errorf("food: got count %d total %s", summary.Count, summary.Total)
	}
}

func TestNormalize_UnreadableRecordKeepsDecodeError(t *testing.T) {
	raws := []core.RawTransaction{
		{DecodeErr: errors.New("line 4: unexpected end of JSON input")},
	}
	_, rejected := Normalize(raws, "AUD")
	if len(rejected) != 1 {
		t.Fatalf("expected one rejected record, got %d", len(rejected))
	}
	r := rejected[0]
	if !errors.Is(r, core.ErrUnreadableRecord) || errors.Is(r, core.ErrMissingID) {
		t.Errorf("got %v, want an unreadable record error", r.Err)
	}
	if !strings.Contains(r.Error(), "unexpected end of JSON input") {
		t.Errorf("decode error lost: %v", r)
	}
}
