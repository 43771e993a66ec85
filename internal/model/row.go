package model

import (
	"fmt"
	"strings"
)

// ColumnMap resolves a logical Field to the header actually used by the sheet.
type ColumnMap map[Field]string

// Header returns the sheet header for f, falling back to the logical name.
func (m ColumnMap) Header(f Field) string {
	if h, ok := m[f]; ok && h != "" {
		return h
	}
	return string(f)
}

// Row is one charge-sheet record. Cells are keyed by the sheet's own header
// text and are always addressed through a ColumnMap.
type Row struct {
	// Number is the spreadsheet row number: the header is row 1, so the
	// first data row is 2.
	Number int

	// PaymentID is set when Phase 2 posts a payment for this row.
	PaymentID string

	cols     ColumnMap
	cells    map[string]string
	messages []string
}

// NewRow creates a Row over cells (header -> raw value).
func NewRow(number int, cols ColumnMap, cells map[string]string) *Row {
	if cells == nil {
		cells = make(map[string]string)
	}
	return &Row{Number: number, cols: cols, cells: cells}
}

// Get returns the trimmed value of f, or "" when the cell is absent.
func (r *Row) Get(f Field) string {
	return strings.TrimSpace(r.cells[r.cols.Header(f)])
}

// Set writes v into the cell for f.
func (r *Row) Set(f Field, v string) {
	r.cells[r.cols.Header(f)] = v
}

// Cell returns the raw value stored under a sheet header.
func (r *Row) Cell(header string) string {
	return r.cells[header]
}

// AddMessage appends an outcome message. Blank and duplicate messages are
// dropped; earlier messages are never replaced.
func (r *Row) AddMessage(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	for _, m := range r.messages {
		if m == msg {
			return
		}
	}
	r.messages = append(r.messages, msg)
}

// Messages returns the outcome messages in the order they were added.
func (r *Row) Messages() []string {
	return append([]string(nil), r.messages...)
}

// Message returns the messages joined the way they are written to the sheet.
func (r *Row) Message() string {
	return strings.Join(r.messages, "; ")
}

// GroupKey identifies the rows that are billed together as one encounter.
// Practice is kept as written in the sheet.
type GroupKey struct {
	PatientID string
	DOS       string
	Practice  string
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.PatientID, k.DOS, k.Practice)
}
