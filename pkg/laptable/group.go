package laptable

import (
	"strings"

	"github.com/pkg/errors"
)

// Grouping partitions the rows of a table by exact equality on a tuple of key
// columns. Rows with a missing key belong to no group.
type Grouping struct {
	groupOf []int
	members [][]int
}

const noGroup = -1

// GroupBy computes group membership for every row up front, so per-group
// statistics can be aggregated in one pass and broadcast back in another.
func (t *Table) GroupBy(keys ...string) (*Grouping, error) {
	columns := make([][]Value, len(keys))

	for i, key := range keys {
		idx, ok := t.index[key]

		if !ok {
			return nil, errors.Wrap(ErrUnknownColumn, key)
		}

		columns[i] = t.data[idx]
	}

	g := &Grouping{
		groupOf: make([]int, t.numRows),
	}

	ids := make(map[string]int)

	for row := 0; row < t.numRows; row++ {
		key, ok := groupKey(columns, row)

		if !ok {
			g.groupOf[row] = noGroup
			continue
		}

		id, ok := ids[key]

		if !ok {
			id = len(g.members)
			ids[key] = id
			g.members = append(g.members, nil)
		}

		g.groupOf[row] = id
		g.members[id] = append(g.members[id], row)
	}

	return g, nil
}

func groupKey(columns [][]Value, row int) (string, bool) {
	var sb strings.Builder

	for i, column := range columns {
		value := column[row]

		if value.IsMissing() {
			return "", false
		}

		if i > 0 {
			sb.WriteByte(0x1f)
		}

		sb.WriteString(value.Kind().String())
		sb.WriteByte(':')
		sb.WriteString(value.String())
	}

	return sb.String(), true
}

// NumGroups returns the number of distinct keys.
func (g *Grouping) NumGroups() int {
	return len(g.members)
}

// Group returns the group of row, false when its key is missing.
func (g *Grouping) Group(row int) (int, bool) {
	id := g.groupOf[row]

	return id, id != noGroup
}

// Members returns the rows of a group in table order.
func (g *Grouping) Members(group int) []int {
	return g.members[group]
}

func (g *Grouping) Size(group int) int {
	return len(g.members[group])
}

// Broadcast assigns each row the statistic of its group. Rows without a
// group, and groups whose statistic is missing, yield missing.
func (g *Grouping) Broadcast(stats []Value) []Value {
	out := make([]Value, len(g.groupOf))

	for row, id := range g.groupOf {
		if id == noGroup {
			continue
		}

		out[row] = stats[id]
	}

	return out
}
