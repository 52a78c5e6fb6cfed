package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	nanosPerDay      = decimal.NewFromInt(int64(24 * time.Hour))
	daysPerWeek      = decimal.NewFromInt(7)
	averageMonthDays = decimal.NewFromInt(365).Div(decimal.NewFromInt(12))
)

// Window is a closed interval of time, both ends included.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window [start, end] or an *InvalidRangeError.
func NewWindow(start, end time.Time) (Window, error) {
	if start.After(end) {
		return Window{}, &InvalidRangeError{Start: start, End: end}
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether t is inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool { return !t.Before(w.Start) && !t.After(w.End) }

// Overlaps reports whether both windows share at least one instant.
func (w Window) Overlaps(o Window) bool { return !w.End.Before(o.Start) && !o.End.Before(w.Start) }

// Overlap returns the length of the intersection of both windows.
func (w Window) Overlap(o Window) time.Duration {
	start, end := w.Start, w.End
	if o.Start.After(start) {
		start = o.Start
	}
	if o.End.Before(end) {
		end = o.End
	}
	if end.Before(start) {
		return 0
	}
	return end.Sub(start)
}

// IsZero reports whether the window was never set.
func (w Window) IsZero() bool { return w.Start.IsZero() && w.End.IsZero() }

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Days is the exact length of the window in days.
func (w Window) Days() decimal.Decimal { return durationDays(w.Duration()) }

// Weeks is the exact length of the window in weeks.
func (w Window) Weeks() decimal.Decimal { return w.Days().Div(daysPerWeek) }

// Months is the length of the window in average months of 365/12 days.
func (w Window) Months() decimal.Decimal { return w.Days().Div(averageMonthDays) }

func (w Window) String() string {
	return w.Start.Format(time.DateTime) + " - " + w.End.Format(time.DateTime)
}

func durationDays(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(nanosPerDay)
}

// Lookback returns the window that ends at now and starts n units earlier.
// Units are h (hours), d (days), w (weeks) and m (calendar months), e.g. "6w".
func Lookback(spec string, now time.Time) (Window, error) {
	spec = strings.TrimSpace(strings.ToLower(spec))
	if len(spec) < 2 {
		return Window{}, fmt.Errorf("invalid lookback %q", spec)
	}
	n, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil || n < 0 {
		return Window{}, fmt.Errorf("invalid lookback %q", spec)
	}
	var start time.Time
	switch spec[len(spec)-1] {
	case 'h':
		start = now.Add(-time.Duration(n) * time.Hour)
	case 'd':
		start = now.AddDate(0, 0, -n)
	case 'w':
		start = now.AddDate(0, 0, -7*n)
	case 'm':
		start = now.AddDate(0, -n, 0)
	default:
		return Window{}, fmt.Errorf("invalid lookback unit in %q: want h, d, w or m", spec)
	}
	return Window{Start: start, End: now}, nil
}
