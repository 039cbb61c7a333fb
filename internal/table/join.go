package table

import (
	"fmt"
	"strings"
)

// CollisionPolicy decides what LeftJoin does when a right column name already
// exists on the left.
type CollisionPolicy string

const (
	CollisionReject CollisionPolicy = "reject"
	CollisionSuffix CollisionPolicy = "suffix"
)

// DefaultCollisionSuffix is appended to colliding right-hand columns.
const DefaultCollisionSuffix = "_EARN"

// JoinOptions configures LeftJoin.
type JoinOptions struct {
	Collision CollisionPolicy
	Suffix    string
}

// LeftJoin keeps exactly the rows of left and appends right's columns after
// left's. Right rows whose date is absent from left are dropped; left rows
// without a right match get nulls.
func LeftJoin(left, right *Table, opts JoinOptions) (*Table, error) {
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultCollisionSuffix
	}

	rightRow := make(map[int64]int, right.Rows())
	for i, d := range right.Dates {
		rightRow[d.Unix()] = i
	}

	columns := append([]string(nil), left.Columns...)
	data := make([][]float64, 0, len(left.Columns)+len(right.Columns))
	data = append(data, left.cells...)
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}

	for rc, name := range right.Columns {
		if taken[name] {
			switch opts.Collision {
			case CollisionSuffix:
				renamed := name + suffix
				if taken[renamed] {
					return nil, fmt.Errorf("%w: %q (also %q after suffixing)", ErrColumnCollision, name, renamed)
				}
				name = renamed
			default:
				return nil, fmt.Errorf("%w: %q", ErrColumnCollision, name)
			}
		}
		taken[name] = true
		col := nullColumn(left.Rows())
		for i, d := range left.Dates {
			if r, ok := rightRow[d.Unix()]; ok {
				col[i] = right.cells[rc][r]
			}
		}
		columns = append(columns, name)
		data = append(data, col)
	}
	return New(left.Dates, columns, data)
}

// ParseCollisionPolicy validates a policy name.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case CollisionReject, CollisionSuffix:
		return p, nil
	case "":
		return CollisionReject, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q", s)
	}
}
