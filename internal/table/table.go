// Package table implements the date-indexed wide table: outer-aligned
// assembly of per-ticker series, left joins, and null handling.
// Nulls are represented as NaN. Every operation returns a new Table.
package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"MarketSeries/internal/model"
)

// ErrColumnCollision is returned when two sources produce the same column name.
var ErrColumnCollision = errors.New("column name collision")

// Fields are the per-ticker column suffixes, in output order.
var Fields = []string{"OPEN", "HIGH", "LOW", "CLOSE", "VOLUME", "RET", "LOGRET"}

// ColumnName joins a symbol and field into a wide-table column name.
func ColumnName(symbol, field string) string {
	return symbol + "_" + field
}

// Table is a date-indexed, column-ordered matrix of float64 cells.
type Table struct {
	Dates   []time.Time
	Columns []string
	cells   [][]float64 // cells[col][row]
	index   map[string]int
}

// New builds a table from column-major data. Dates must be strictly ascending
// and every column must have one cell per date.
func New(dates []time.Time, columns []string, data [][]float64) (*Table, error) {
	if len(columns) != len(data) {
		return nil, fmt.Errorf("table: %d columns but %d data slices", len(columns), len(data))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("table: dates not strictly ascending at row %d", i)
		}
	}
	t := &Table{
		Dates:   append([]time.Time(nil), dates...),
		Columns: append([]string(nil), columns...),
		cells:   make([][]float64, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for c, name := range columns {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrColumnCollision, name)
		}
		if len(data[c]) != len(dates) {
			return nil, fmt.Errorf("table: column %q has %d cells, want %d", name, len(data[c]), len(dates))
		}
		t.index[name] = c
		t.cells[c] = append([]float64(nil), data[c]...)
	}
	return t, nil
}

// Rows returns the number of dates.
func (t *Table) Rows() int { return len(t.Dates) }

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	c, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), t.cells[c]...), true
}

// Value returns the cell at row for column index col.
func (t *Table) Value(row, col int) float64 {
	return t.cells[col][row]
}

// NullCount returns the number of NaN or infinite cells.
func (t *Table) NullCount() int {
	n := 0
	for _, col := range t.cells {
		for _, v := range col {
			if isNull(v) {
				n++
			}
		}
	}
	return n
}

// Series is one ticker's derived records, contributing len(Fields) columns.
type Series struct {
	Symbol  string
	Records []model.DerivedRecord
}

func recordField(r model.DerivedRecord, field int) float64 {
	switch field {
	case 0:
		return r.AdjOpen
	case 1:
		return r.AdjHigh
	case 2:
		return r.AdjLow
	case 3:
		return r.AdjClose
	case 4:
		return r.AdjVolume
	case 5:
		return r.Ret
	default:
		return r.LogRet
	}
}

// Assemble outer-aligns series into one table. Rows are the sorted union of
// every series' dates; columns follow series order then Fields order. Dates a
// series does not cover are null.
func Assemble(series []Series) (*Table, error) {
	seen := make(map[int64]time.Time)
	for _, s := range series {
		for _, r := range s.Records {
			d := model.DateOnly(r.Date)
			seen[d.Unix()] = d
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rowOf := make(map[int64]int, len(dates))
	for i, d := range dates {
		rowOf[d.Unix()] = i
	}

	columns := make([]string, 0, len(series)*len(Fields))
	data := make([][]float64, 0, len(series)*len(Fields))
	for _, s := range series {
		block := make([][]float64, len(Fields))
		for f := range Fields {
			block[f] = nullColumn(len(dates))
			columns = append(columns, ColumnName(s.Symbol, Fields[f]))
		}
		for _, r := range s.Records {
			row := rowOf[model.DateOnly(r.Date).Unix()]
			for f := range Fields {
				block[f][row] = recordField(r, f)
			}
		}
		data = append(data, block...)
	}
	return New(dates, columns, data)
}

// DropFirst returns t without its earliest row. An empty table is returned unchanged.
func (t *Table) DropFirst() *Table {
	if t.Rows() == 0 {
		return t.clone()
	}
	data := make([][]float64, len(t.cells))
	for c, col := range t.cells {
		data[c] = col[1:]
	}
	out, _ := New(t.Dates[1:], t.Columns, data)
	return out
}

func (t *Table) clone() *Table {
	out, _ := New(t.Dates, t.Columns, t.cells)
	return out
}

func nullColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}

func isNull(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
