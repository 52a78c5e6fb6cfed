package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UntaggedTag is the grouping key for transactions without any tag.
const UntaggedTag = "untagged"

const (
	Weekly  BudgetPeriod = "weekly"
	Monthly BudgetPeriod = "monthly"
	Custom  BudgetPeriod = "custom"
)

type (
	BudgetPeriod string

	// Transaction is a validated, immutable transaction record.
	Transaction struct {
		ID             string
		AccountID      string
		Description    string
		Message        string
		Amount         Money
		CreatedAt      time.Time
		SettledAt      time.Time // zero while the transaction is held
		Tags           []string
		Category       string
		ParentCategory string
		Status         string
	}

	// RawTransaction is a record as delivered by a transaction source, before
	// validation. Amount and timestamps are pointers so that missing values
	// can be told apart from zero values.
	RawTransaction struct {
		ID                string     `json:"id"`
		AccountID         string     `json:"account_id,omitempty"`
		Description       string     `json:"description,omitempty"`
		Message           string     `json:"message,omitempty"`
		Amount            *string    `json:"amount,omitempty"`
		AmountInBaseUnits *int64     `json:"amount_in_base_units,omitempty"`
		Currency          string     `json:"currency,omitempty"`
		CreatedAt         *time.Time `json:"created_at,omitempty"`
		SettledAt         *time.Time `json:"settled_at,omitempty"`
		Tags              []string   `json:"tags,omitempty"`
		Category          string     `json:"category,omitempty"`
		ParentCategory    string     `json:"parent_category,omitempty"`
		Status            string     `json:"status,omitempty"`

		// DecodeErr is set by sources that could not decode the record.
		DecodeErr error `json:"-"`
	}

	// BudgetEntry is one line of the user's budget configuration.
	BudgetEntry struct {
		Tag    string
		Period BudgetPeriod
		Limit  decimal.Decimal // compared by magnitude
		Start  time.Time       // custom only
		End    time.Time       // custom only
	}
)

// ParseBudgetPeriod accepts the period names used in budget files.
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "custom", "range":
		return Custom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

func (p BudgetPeriod) String() string { return string(p) }

// IsValid reports whether p is one of the known periods.
func (p BudgetPeriod) IsValid() bool {
	switch p {
	case Weekly, Monthly, Custom:
		return true
	default:
		return false
	}
}

// IsWithdrawal reports whether the transaction moves money out of the account.
func (t Transaction) IsWithdrawal() bool { return t.Amount.IsNegative() }

// IsUntagged reports whether the transaction carries no tag.
func (t Transaction) IsUntagged() bool { return len(t.Tags) == 0 }

// HasTag reports whether tag is one of the transaction's tags.
func (t Transaction) HasTag(tag string) bool { return slices.Contains(t.Tags, tag) }

// Validate checks a single entry. Cross-entry rules (duplicates, overlaps)
// are checked by ValidateBudget.
func (b BudgetEntry) Validate() error {
	if strings.TrimSpace(b.Tag) == "" {
		return ErrEmptyTag
	}
	if !b.Period.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownPeriod, b.Period)
	}
	if b.Period == Custom {
		if b.Start.IsZero() || b.End.IsZero() {
			return ErrMissingRange
		}
		if b.Start.After(b.End) {
			return &InvalidRangeError{Start: b.Start, End: b.End}
		}
	} else if !b.Start.IsZero() || !b.End.IsZero() {
		return ErrUnexpectedRange
	}
	return nil
}

// Window returns the custom range of the entry.
func (b BudgetEntry) Window() Window { return Window{Start: b.Start, End: b.End} }

// ValidateBudget validates every entry and the uniqueness rules: a tag has
// at most one weekly and one monthly entry, and its custom ranges do not
// overlap. All problems are returned in one *BudgetConfigError.
func ValidateBudget(source string, entries []BudgetEntry) error {
	var problems []error
	seen := map[string]int{}
	var customs []int
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("entry %d (%s): %w", i+1, e.Tag, err))
			continue
		}
		if e.Period == Custom {
			for _, j := range customs {
				o := entries[j]
				if o.Tag == e.Tag && e.Window().Overlaps(o.Window()) {
					problems = append(problems, fmt.Errorf("entry %d (%s): %w with entry %d", i+1, e.Tag, ErrOverlappingBudget, j+1))
				}
			}
			customs = append(customs, i)
			continue
		}
		key := e.Tag + "\x00" + string(e.Period)
		if j, ok := seen[key]; ok {
			problems = append(problems, fmt.Errorf("entry %d (%s, %s): %w of entry %d", i+1, e.Tag, e.Period, ErrDuplicateBudget, j+1))
			continue
		}
		seen[key] = i
	}
	if len(problems) > 0 {
		return &BudgetConfigError{Source: source, Problems: problems}
	}
	return nil
}
