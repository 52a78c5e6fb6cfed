package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseBudgetPeriod(t *testing.T) {
	tests := []struct {
		in   string
		want BudgetPeriod
		err  bool
	}{
		{"weekly", Weekly, false},
		{" Monthly ", Monthly, false},
		{"week", Weekly, false},
		{"custom", Custom, false},
		{"yearly", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBudgetPeriod(tt.in)
		if tt.err {
			if !errors.Is(err, ErrUnknownPeriod) {
				t.Errorf("%q: expected ErrUnknownPeriod, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: got %q, %v", tt.in, got, err)
		}
	}
}

func TestTransaction_Helpers(t *testing.T) {
	tx := Transaction{Amount: NewMoney(decimal.NewFromInt(-5)), Tags: []string{"coffee", "work"}}
	if !tx.IsWithdrawal() {
		t.Error("negative amount should be a withdrawal")
	}
	if tx.IsUntagged() {
		t.Error("tagged transaction reported as untagged")
	}
	if !tx.HasTag("work") || tx.HasTag("wor") {
		t.Error("HasTag should match whole tags only")
	}
}

func TestBudgetEntry_Validate(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	limit := decimal.NewFromInt(100)

	tests := []struct {
		name  string
		entry BudgetEntry
		want  error
	}{
		{"weekly ok", BudgetEntry{Tag: "food", Period: Weekly, Limit: limit}, nil},
		{"custom ok", BudgetEntry{Tag: "trip", Period: Custom, Limit: limit, Start: jan, End: feb}, nil},
		{"empty tag", BudgetEntry{Tag: " ", Period: Weekly, Limit: limit}, ErrEmptyTag},
		{"unknown period", BudgetEntry{Tag: "food", Period: "daily", Limit: limit}, ErrUnknownPeriod},
		{"custom without range", BudgetEntry{Tag: "trip", Period: Custom, Limit: limit}, ErrMissingRange},
		{"weekly with range", BudgetEntry{Tag: "food", Period: Weekly, Limit: limit, Start: jan, End: feb}, ErrUnexpectedRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	inverted := BudgetEntry{Tag: "trip", Period: Custom, Limit: limit, Start: feb, End: jan}
	var rangeErr *InvalidRangeError
	if !errors.As(inverted.Validate(), &rangeErr) {
		t.Fatal("inverted custom range should be an InvalidRangeError")
	}
}

func TestValidateBudget(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	limit := decimal.NewFromInt(50)

	valid := []BudgetEntry{
		{Tag: "food", Period: Weekly, Limit: limit},
		{Tag: "food", Period: Monthly, Limit: limit},
		{Tag: "trip", Period: Custom, Limit: limit, Start: jan, End: feb.Add(-time.Second)},
		{Tag: "trip", Period: Custom, Limit: limit, Start: feb, End: mar},
	}
	if err := ValidateBudget("budget.csv", valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := []BudgetEntry{
		{Tag: "food", Period: Weekly, Limit: limit},
		{Tag: "food", Period: Weekly, Limit: limit},
		{Tag: "trip", Period: Custom, Limit: limit, Start: jan, End: feb},
		{Tag: "trip", Period: Custom, Limit: limit, Start: feb, End: mar},
		{Tag: "", Period: Monthly, Limit: limit},
	}
	err := ValidateBudget("budget.csv", invalid)
	var cfgErr *BudgetConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected BudgetConfigError, got %v", err)
	}
	if len(cfgErr.Problems) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(cfgErr.Problems), err)
	}
	for _, want := range []error{ErrDuplicateBudget, ErrOverlappingBudget, ErrEmptyTag} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v among problems", want)
		}
	}
}
