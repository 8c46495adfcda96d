package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NotFound is the column index of an unmapped logical field
const NotFound = -1

// Field is a logical transaction field a spreadsheet column can be mapped to
type Field string

const (
	FieldID      Field = "id"
	FieldMachine Field = "machine"
	FieldProduct Field = "product"
	FieldAmount  Field = "amount"
	FieldPayment Field = "payment"
	FieldDate    Field = "date"
	FieldTime    Field = "time"
)

// Fields lists every logical field in detection order
var Fields = []Field{FieldID, FieldMachine, FieldProduct, FieldAmount, FieldPayment, FieldDate, FieldTime}

// HeaderMap is the inferred column index for each logical field
type HeaderMap struct {
	Columns map[Field]int `json:"columns"`
	// CombinedDateTime is set when the date column also carries the time of day
	CombinedDateTime bool `json:"combinedDateTime"`
}

// NewHeaderMap returns a map with every field set to NotFound
func NewHeaderMap() HeaderMap {
	cols := make(map[Field]int, len(Fields))
	for _, f := range Fields {
		cols[f] = NotFound
	}
	return HeaderMap{Columns: cols}
}

// Index returns the column of a field or NotFound
func (m HeaderMap) Index(f Field) int {
	if idx, ok := m.Columns[f]; ok {
		return idx
	}
	return NotFound
}

// Cell is one raw spreadsheet value. Numeric is set when the cell holds a number,
// in which case Num carries it; Raw always keeps the source text.
type Cell struct {
	Raw     string
	Num     float64
	Numeric bool
}

// TextCell builds a cell from source text, inferring a number when the text is one
func TextCell(raw string) Cell {
	c := Cell{Raw: raw}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return c
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		c.Num = f
		c.Numeric = true
	}
	return c
}

// NumberCell builds a numeric cell
func NumberCell(v float64) Cell {
	return Cell{Raw: strconv.FormatFloat(v, 'f', -1, 64), Num: v, Numeric: true}
}

// IsEmpty reports whether the cell holds nothing
func (c Cell) IsEmpty() bool {
	return !c.Numeric && strings.TrimSpace(c.Raw) == ""
}

// Text returns the trimmed cell text
func (c Cell) Text() string {
	return strings.TrimSpace(c.Raw)
}

// RawRow is one spreadsheet data row, aligned with the sheet's header row
type RawRow struct {
	Headers []string
	Cells   []Cell
}

// At returns the cell at a column index; out-of-range yields an empty cell
func (r RawRow) At(idx int) (Cell, bool) {
	if idx < 0 || idx >= len(r.Cells) {
		return Cell{}, false
	}
	return r.Cells[idx], true
}

// Get returns the cell under a literal header name (case-insensitive)
func (r RawRow) Get(header string) (Cell, bool) {
	want := strings.ToLower(strings.TrimSpace(header))
	for i, h := range r.Headers {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return r.At(i)
		}
	}
	return Cell{}, false
}

// First returns the first cell of the row
func (r RawRow) First() Cell {
	c, _ := r.At(0)
	return c
}

// FileReport summarizes how one spreadsheet file was parsed
type FileReport struct {
	Name         string    `json:"name"`
	Rows         int       `json:"rows"`
	Accepted     int       `json:"accepted"`
	Rejected     int       `json:"rejected"`
	Footers      int       `json:"footers"`
	FallbackDate string    `json:"fallbackDate"`
	Headers      HeaderMap `json:"headers"`
	Error        string    `json:"error,omitempty"`
}

// ImportBatch is a parsed, not yet committed set of transactions
type ImportBatch struct {
	ID           uuid.UUID       `json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	Transactions []Transaction   `json:"transactions"`
	Files        []FileReport    `json:"files"`
	TotalRows    int             `json:"totalRows"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}
