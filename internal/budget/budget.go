// Package budget loads the user's budget file into validated entries.
//
// Two layouts are accepted. The full layout has the columns
// tag,period,limit,start,end (start and end only for custom periods). The
// short layout tag,weekly_budget describes weekly entries only. JSON files
// hold an array of objects with the same keys.
package budget

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"upreport/internal/core"

	"github.com/shopspring/decimal"
)

var ErrUnsupportedFormat = errors.New("unsupported budget file format")

// record is one row of a budget file before validation.
type record struct {
	Tag          string              `json:"tag"`
	Period       string              `json:"period"`
	Limit        decimal.NullDecimal `json:"limit"`
	WeeklyBudget decimal.NullDecimal `json:"weekly_budget"`
	Start        string              `json:"start"`
	End          string              `json:"end"`
}

// Load reads a .csv or .json budget file. Dates without a time of day are
// read in loc; an end date covers its whole day. All problems found in the
// file are returned together as a *core.BudgetConfigError.
func Load(path string, loc *time.Location) ([]core.BudgetEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open budget file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f, filepath.Base(path), loc)
	case ".json":
		return ReadJSON(f, filepath.Base(path), loc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadCSV parses budget rows from r. source names the input in errors.
func ReadCSV(r io.Reader, source string, loc *time.Location) ([]core.BudgetEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read budget header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["tag"]; !ok {
		return nil, &core.BudgetConfigError{Source: source, Problems: []error{errors.New("missing column \"tag\"")}}
	}
	_, hasLimit := cols["limit"]
	_, hasWeekly := cols["weekly_budget"]
	if !hasLimit && !hasWeekly {
		return nil, &core.BudgetConfigError{Source: source, Problems: []error{errors.New("missing column \"limit\" or \"weekly_budget\"")}}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		records  []record
		problems []error
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read budget row %d: %w", line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec := record{
			Tag:    cell(row, "tag"),
			Period: cell(row, "period"),
			Start:  cell(row, "start"),
			End:    cell(row, "end"),
		}
		var perr error
		if rec.Limit, perr = parseAmount(cell(row, "limit")); perr != nil {
			problems = append(problems, fmt.Errorf("line %d: limit: %w", line, perr))
			continue
		}
		if rec.WeeklyBudget, perr = parseAmount(cell(row, "weekly_budget")); perr != nil {
			problems = append(problems, fmt.Errorf("line %d: weekly_budget: %w", line, perr))
			continue
		}
		records = append(records, rec)
	}
	return build(source, records, problems, loc)
}

// ReadJSON parses an array of budget objects from r.
func ReadJSON(r io.Reader, source string, loc *time.Location) ([]core.BudgetEntry, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, &core.BudgetConfigError{Source: source, Problems: []error{fmt.Errorf("decode: %w", err)}}
	}
	return build(source, records, nil, loc)
}

func build(source string, records []record, problems []error, loc *time.Location) ([]core.BudgetEntry, error) {
	if loc == nil {
		loc = time.UTC
	}
	entries := make([]core.BudgetEntry, 0, len(records))
	for i, rec := range records {
		e, err := rec.entry(loc)
		if err != nil {
			problems = append(problems, fmt.Errorf("entry %d (%s): %w", i+1, rec.Tag, err))
			continue
		}
		entries = append(entries, e)
	}
	if err := core.ValidateBudget(source, entries); err != nil {
		var cfgErr *core.BudgetConfigError
		if errors.As(err, &cfgErr) {
			problems = append(problems, cfgErr.Problems...)
		} else {
			problems = append(problems, err)
		}
	}
	if len(problems) > 0 {
		return nil, &core.BudgetConfigError{Source: source, Problems: problems}
	}
	return entries, nil
}

func (r record) entry(loc *time.Location) (core.BudgetEntry, error) {
	e := core.BudgetEntry{Tag: strings.TrimSpace(r.Tag)}

	switch {
	case r.Limit.Valid:
		e.Limit = r.Limit.Decimal
	case r.WeeklyBudget.Valid:
		e.Limit = r.WeeklyBudget.Decimal
		if r.Period == "" {
			r.Period = string(core.Weekly)
		}
	default:
		return core.BudgetEntry{}, errors.New("missing limit")
	}

	if r.Period == "" {
		r.Period = string(core.Weekly)
	}
	p, err := core.ParseBudgetPeriod(r.Period)
	if err != nil {
		return core.BudgetEntry{}, err
	}
	e.Period = p

	if r.Start != "" {
		if e.Start, err = parseDate(r.Start, loc, false); err != nil {
			return core.BudgetEntry{}, fmt.Errorf("start: %w", err)
		}
	}
	if r.End != "" {
		if e.End, err = parseDate(r.End, loc, true); err != nil {
			return core.BudgetEntry{}, fmt.Errorf("end: %w", err)
		}
	}
	return e, nil
}

func parseAmount(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	m, err := core.ParseMoney(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(m.Decimal()), nil
}

// parseDate accepts RFC 3339 timestamps and plain dates. A plain end date
// is moved to the last instant of its day.
func parseDate(s string, loc *time.Location, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	if end {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}
