package laptable

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Well-known lap table columns.
const (
	ColumnSession     = "Session"
	ColumnLapNumber   = "LapNumber"
	ColumnStint       = "Stint"
	ColumnLapTime     = "LapTime"
	ColumnLapTimeS    = "LapTime_s"
	ColumnTyreLife    = "TyreLife"
	ColumnCompound    = "Compound"
	ColumnTrackStatus = "TrackStatus"
)

// Record is a single lap keyed by column name.
type Record map[string]Value

// Table is an ordered collection of laps sharing one set of columns. Every
// transformation in this module returns a new Table; a Table handed to a
// transformation is never modified.
type Table struct {
	columns []string
	index   map[string]int
	data    [][]Value
	numRows int
}

func New(columns ...string) *Table {
	t := &Table{
		index: make(map[string]int, len(columns)),
	}

	for _, column := range columns {
		if _, ok := t.index[column]; ok {
			continue
		}

		t.index[column] = len(t.columns)
		t.columns = append(t.columns, column)
		t.data = append(t.data, nil)
	}

	return t
}

// FromRecords builds a table with the given columns. Fields a record does not
// carry are stored as missing; fields outside columns are ignored.
func FromRecords(columns []string, records ...Record) *Table {
	t := New(columns...)

	for _, record := range records {
		t.AppendRecord(record)
	}

	return t
}

func (t *Table) Len() int {
	return t.numRows
}

func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) Has(column string) bool {
	_, ok := t.index[column]

	return ok
}

func (t *Table) HasAll(columns ...string) bool {
	for _, column := range columns {
		if !t.Has(column) {
			return false
		}
	}

	return true
}

func (t *Table) AppendRow(values ...Value) error {
	if len(values) != len(t.columns) {
		return errors.Wrapf(ErrColumnLength, "row has %d values, table has %d columns", len(values), len(t.columns))
	}

	for i, value := range values {
		t.data[i] = append(t.data[i], value)
	}

	t.numRows++

	return nil
}

func (t *Table) AppendRecord(record Record) {
	for i, column := range t.columns {
		t.data[i] = append(t.data[i], record[column])
	}

	t.numRows++
}

// Value returns the cell at row for column, missing if the column does not exist.
func (t *Table) Value(row int, column string) Value {
	i, ok := t.index[column]

	if !ok || row < 0 || row >= t.numRows {
		return Missing()
	}

	return t.data[i][row]
}

// Column returns a copy of the named column.
func (t *Table) Column(column string) ([]Value, error) {
	i, ok := t.index[column]

	if !ok {
		return nil, errors.Wrap(ErrUnknownColumn, column)
	}

	return append([]Value(nil), t.data[i]...), nil
}

func (t *Table) Record(row int) Record {
	record := make(Record, len(t.columns))

	for i, column := range t.columns {
		record[column] = t.data[i][row]
	}

	return record
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.columns...)
	out.numRows = t.numRows

	for i := range t.data {
		out.data[i] = append(make([]Value, 0, t.numRows), t.data[i]...)
	}

	return out
}

// SetColumn adds or replaces a column in place. It is meant for tables the
// caller owns, such as one returned by Clone.
func (t *Table) SetColumn(column string, values []Value) error {
	if len(values) != t.numRows && !(len(t.columns) == 0 && t.numRows == 0) {
		return errors.Wrapf(ErrColumnLength, "column %s has %d values, table has %d rows", column, len(values), t.numRows)
	}

	if len(t.columns) == 0 {
		t.numRows = len(values)
	}

	values = append([]Value(nil), values...)

	if i, ok := t.index[column]; ok {
		t.data[i] = values
		return nil
	}

	t.index[column] = len(t.columns)
	t.columns = append(t.columns, column)
	t.data = append(t.data, values)

	return nil
}

// WithColumn returns a copy of the table with column added or replaced.
func (t *Table) WithColumn(column string, values []Value) (*Table, error) {
	out := t.Clone()

	if err := out.SetColumn(column, values); err != nil {
		return nil, err
	}

	return out, nil
}

// Without returns a copy of the table minus the named columns.
func (t *Table) Without(columns ...string) *Table {
	drop := make(map[string]bool, len(columns))

	for _, column := range columns {
		drop[column] = true
	}

	var keep []string

	for _, column := range t.columns {
		if !drop[column] {
			keep = append(keep, column)
		}
	}

	out := New(keep...)
	out.numRows = t.numRows

	for j, column := range keep {
		out.data[j] = append(make([]Value, 0, t.numRows), t.data[t.index[column]]...)
	}

	return out
}

// Filter returns a new table holding the rows for which keep returns true, in their original order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := New(t.columns...)

	for row := 0; row < t.numRows; row++ {
		if !keep(row) {
			continue
		}

		for i := range t.data {
			out.data[i] = append(out.data[i], t.data[i][row])
		}

		out.numRows++
	}

	return out
}

// MarshalJSON encodes the table as an array of objects, missing cells as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := make([]map[string]interface{}, 0, t.numRows)

	for row := 0; row < t.numRows; row++ {
		out := make(map[string]interface{}, len(t.columns))

		for i, column := range t.columns {
			out[column] = t.data[i][row].Interface()
		}

		rows = append(rows, out)
	}

	return json.Marshal(rows)
}
