package core

import "time"

// Sheet is one named table of a report.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Workbook is the output of a report run, handed to a report writer.
type Workbook struct {
	Name        string
	GeneratedAt time.Time
	Sheets      []*Sheet
}

// AddSheet appends an empty sheet and returns it for filling.
func (w *Workbook) AddSheet(name string, header ...string) *Sheet {
	s := &Sheet{Name: name, Header: header}
	w.Sheets = append(w.Sheets, s)
	return s
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Append adds one row.
func (s *Sheet) Append(cells ...string) { s.Rows = append(s.Rows, cells) }
