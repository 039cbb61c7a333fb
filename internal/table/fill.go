package table

import (
	"fmt"
	"strings"
)

// NullPolicy selects how null (NaN or infinite) cells are resolved.
type NullPolicy string

const (
	// NullZero replaces every null cell with 0.
	NullZero NullPolicy = "zero"
	// NullKeep leaves nulls in place; they serialize as empty cells.
	NullKeep NullPolicy = "keep"
	// NullForwardFill carries the last finite value down each column;
	// cells with no finite predecessor become 0.
	NullForwardFill NullPolicy = "ffill"
)

// ParseNullPolicy validates a policy name.
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch p := NullPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case NullZero, NullKeep, NullForwardFill:
		return p, nil
	case "":
		return NullZero, nil
	default:
		return "", fmt.Errorf("unknown null policy %q", s)
	}
}

// FillNulls returns a copy of t with nulls resolved per policy.
func (t *Table) FillNulls(policy NullPolicy) (*Table, error) {
	data := make([][]float64, len(t.cells))
	for c, col := range t.cells {
		out := append([]float64(nil), col...)
		switch policy {
		case NullZero:
			for i, v := range out {
				if isNull(v) {
					out[i] = 0
				}
			}
		case NullForwardFill:
			last, have := 0.0, false
			for i, v := range out {
				if isNull(v) {
					if have {
						out[i] = last
					} else {
						out[i] = 0
					}
					continue
				}
				last, have = v, true
			}
		case NullKeep:
		default:
			return nil, fmt.Errorf("unknown null policy %q", policy)
		}
		data[c] = out
	}
	return New(t.Dates, t.Columns, data)
}
