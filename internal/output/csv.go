// Package output persists the wide table as CSV.
package output

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MarketSeries/internal/table"
)

// IndexLabel is the header of the materialized date index column.
const IndexLabel = "DATE"

// DateLayout is the serialized date format.
const DateLayout = "2006-01-02"

// Options controls number formatting.
type Options struct {
	// Precision is the number of fractional digits; negative means the
	// shortest exact decimal representation.
	Precision int
}

// FormatValue renders one cell. Nulls become an empty string.
func FormatValue(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	d := decimal.NewFromFloat(v)
	if precision < 0 {
		return d.String()
	}
	return d.StringFixed(int32(precision))
}

// Write serializes t as CSV to w.
func Write(w io.Writer, t *table.Table, opts Options) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, IndexLabel)
	header = append(header, t.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(header))
	for r, date := range t.Dates {
		rec[0] = date.Format(DateLayout)
		for c := range t.Columns {
			rec[c+1] = FormatValue(t.Value(r, c), opts.Precision)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV atomically replaces path with the CSV serialization of t.
// On failure any existing file at path is left untouched.
func WriteCSV(path string, t *table.Table, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, t, opts); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod csv: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	committed = true
	return nil
}

// ReadCSV loads a file written by WriteCSV.
func ReadCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses CSV data with a leading DATE column.
func Read(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || header[0] != IndexLabel {
		return nil, errors.New("first column must be " + IndexLabel)
	}
	columns := header[1:]
	data := make([][]float64, len(columns))
	var dates []time.Time
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		date, err := time.Parse(DateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		dates = append(dates, date)
		for c, cell := range rec[1:] {
			v := math.NaN()
			if s := strings.TrimSpace(cell); s != "" {
				if v, err = strconv.ParseFloat(s, 64); err != nil {
					return nil, fmt.Errorf("line %d column %q: %w", line, columns[c], err)
				}
			}
			data[c] = append(data[c], v)
		}
	}
	for c := range data {
		if data[c] == nil {
			data[c] = []float64{}
		}
	}
	return table.New(dates, columns, data)
}
