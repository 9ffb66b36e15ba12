package charts

import (
	"fmt"
	"nerisdash/pkg/format"
	"sort"
)

// Pair is the count of rows with a given (row, column) combination.
type Pair struct {
	Row   string `db:"row" json:"row"`
	Col   string `db:"col" json:"col"`
	Count int64  `db:"count" json:"count"`
}

// Contingency is a cross tabulation with sorted row and column labels.
type Contingency struct {
	Rows   []string
	Cols   []string
	Counts map[[2]string]int64
}

// Empty reports whether the table has no cells.
func (c Contingency) Empty() bool {
	return len(c.Rows) == 0 || len(c.Cols) == 0
}

// At returns the count of cell (row, col).
func (c Contingency) At(row, col string) int64 {
	return c.Counts[[2]string{row, col}]
}

// ContingencyTable cross tabulates pairs.
func ContingencyTable(pairs []Pair) Contingency {
	t := Contingency{Counts: map[[2]string]int64{}}
	rows, cols := map[string]bool{}, map[string]bool{}
	for _, p := range pairs {
		t.Counts[[2]string{p.Row, p.Col}] += p.Count
		if !rows[p.Row] {
			rows[p.Row] = true
			t.Rows = append(t.Rows, p.Row)
		}
		if !cols[p.Col] {
			cols[p.Col] = true
			t.Cols = append(t.Cols, p.Col)
		}
	}
	sort.Strings(t.Rows)
	sort.Strings(t.Cols)

	return t
}

// Bubble is one cell of a bubble chart.
type Bubble struct {
	Row   string `json:"row"`
	Col   string `json:"col"`
	Count int64  `json:"count"`
}

// ContingencyToBubble lists the cells of t with a positive count, row by row.
func ContingencyToBubble(t Contingency) []Bubble {
	out := []Bubble{}
	for _, r := range t.Rows {
		for _, c := range t.Cols {
			if n := t.At(r, c); n > 0 {
				out = append(out, Bubble{Row: r, Col: c, Count: n})
			}
		}
	}

	return out
}

// Cell is one (x, y) count of a heatmap.
type Cell struct {
	X     any   `json:"x"`
	Y     any   `json:"y"`
	Count int64 `json:"count"`
}

// Grid is a heatmap ready for plotting: Z is indexed [y][x].
type Grid struct {
	X []string  `json:"x"`
	Y []string  `json:"y"`
	Z [][]int64 `json:"z"`
}

// Heatmap lays cells out on the xOrder by yOrder grid, filling gaps with 0.
// Cells whose coordinates are not in the orders are dropped.
func Heatmap(cells []Cell, xOrder, yOrder []any, xLabel, yLabel format.Formatter) Grid {
	if xLabel == nil {
		xLabel = format.Scalar
	}
	if yLabel == nil {
		yLabel = format.Scalar
	}

	g := Grid{Z: make([][]int64, len(yOrder))}
	xi, yi := positions(xOrder), positions(yOrder)
	for _, x := range xOrder {
		g.X = append(g.X, xLabel(x))
	}
	for i, y := range yOrder {
		g.Y = append(g.Y, yLabel(y))
		g.Z[i] = make([]int64, len(xOrder))
	}

	for _, c := range cells {
		x, ok := xi[key(c.X)]
		if !ok {
			continue
		}
		y, ok := yi[key(c.Y)]
		if !ok {
			continue
		}
		g.Z[y][x] += c.Count
	}

	return g
}

func positions(order []any) map[string]int {
	out := make(map[string]int, len(order))
	for i, v := range order {
		out[key(v)] = i
	}

	return out
}

// key normalises numeric values so that int and int64 hours match.
func key(v any) string {
	if n, ok := format.AsInt(v); ok {
		return fmt.Sprint(n)
	}

	return fmt.Sprint(v)
}
