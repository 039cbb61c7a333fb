// Package earnings loads the supplementary date-indexed earnings CSV.
package earnings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"MarketSeries/internal/model"
	"MarketSeries/internal/table"
)

// IndexColumn is the name of the date index column.
const IndexColumn = "DATE"

// ErrMalformed is returned for unparseable dates or cells and duplicate dates.
var ErrMalformed = errors.New("malformed earnings file")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

// ParseDate accepts the ISO and US date layouts seen in exported CSVs.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrMalformed, s)
}

// Load reads the earnings CSV at path.
func Load(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open earnings: %w", err)
	}
	defer f.Close()
	return Read(f)
}

type row struct {
	date   time.Time
	values []float64
}

// Read parses earnings CSV data. Rows are returned sorted by date.
func Read(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformed, err)
	}

	idx := -1
	columns := make([]string, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if idx < 0 && strings.EqualFold(h, IndexColumn) {
			idx = i
			continue
		}
		columns = append(columns, h)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: no %s column", ErrMalformed, IndexColumn)
	}

	var rows []row
	seen := make(map[int64]bool)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		date, err := ParseDate(rec[idx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if seen[date.Unix()] {
			return nil, fmt.Errorf("%w: line %d: duplicate date %s", ErrMalformed, line, date.Format("2006-01-02"))
		}
		seen[date.Unix()] = true

		vals := make([]float64, 0, len(columns))
		for i, cell := range rec {
			if i == idx {
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %v", ErrMalformed, line, header[i], err)
			}
			vals = append(vals, v)
		}
		rows = append(rows, row{date: date, values: vals})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	dates := make([]time.Time, len(rows))
	data := make([][]float64, len(columns))
	for c := range data {
		data[c] = make([]float64, len(rows))
	}
	for i, r := range rows {
		dates[i] = r.date
		for c, v := range r.values {
			data[c][i] = v
		}
	}
	return table.New(dates, columns, data)
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
