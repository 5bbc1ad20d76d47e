package ui

import (
	"fmt"
	"sort"

	"halo-life/pkg/core"
	"halo-life/pkg/grid"
)

// segment is an axis-aligned line in screen pixels.
type segment struct {
	x1, y1, x2, y2 float64
}

// partitionSegments returns one line per distinct inner partition boundary.
// Boundaries on the grid edge are omitted.
func partitionSegments(parts []grid.Partition, size core.Size, scale int) []segment {
	xs := map[int]bool{}
	ys := map[int]bool{}
	for _, p := range parts {
		if p.OffsetX > 0 {
			xs[p.OffsetX] = true
		}
		if p.OffsetY > 0 {
			ys[p.OffsetY] = true
		}
	}
	w := float64(size.W * scale)
	h := float64(size.H * scale)
	var out []segment
	for _, x := range sortedKeys(xs) {
		sx := float64(x * scale)
		out = append(out, segment{x1: sx, y1: 0, x2: sx, y2: h})
	}
	for _, y := range sortedKeys(ys) {
		sy := float64(y * scale)
		out = append(out, segment{x1: 0, y1: sy, x2: w, y2: sy})
	}
	return out
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// hudLines flattens a snapshot into the text rows of the stats panel.
func hudLines(snap core.ParameterSnapshot) []string {
	var lines []string
	for _, g := range snap.Groups {
		if len(g.Params) == 0 {
			continue
		}
		lines = append(lines, g.Name)
		for _, p := range g.Params {
			lines = append(lines, fmt.Sprintf("  %s: %s", p.Label, formatValue(p)))
		}
	}
	return lines
}

func formatValue(p core.Parameter) string {
	if p.Type != core.ParamTypeFloat {
		return p.Value
	}
	var f float64
	if _, err := fmt.Sscanf(p.Value, "%g", &f); err != nil {
		return p.Value
	}
	return fmt.Sprintf("%.2f", f)
}
