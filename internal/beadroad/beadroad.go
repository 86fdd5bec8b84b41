// Package beadroad lays out outcome history as a bead plate: fixed-height
// columns filled top to bottom, left to right.
package beadroad

import (
	"iter"
	"slices"
	"strings"

	"github.com/lox/shoeaxis/internal/baccarat"
)

// DefaultHeight is the number of beads per column.
const DefaultHeight = 6

// Columns yields contiguous slices of history holding at most size
// outcomes each. The sequence is lazy and can be ranged over repeatedly.
// A non-positive size uses DefaultHeight.
func Columns(history []baccarat.Outcome, size int) iter.Seq[[]baccarat.Outcome] {
	if size <= 0 {
		size = DefaultHeight
	}
	return slices.Chunk(history, size)
}

// NumColumns is how many columns Columns yields.
func NumColumns(n, size int) int {
	if size <= 0 {
		size = DefaultHeight
	}
	return (n + size - 1) / size
}

// Render draws the plate as text, one line per bead row. format renders a
// single bead; a nil format uses the one-letter outcome symbol. Empty
// cells in the last column are padded with spaces of width cellWidth.
func Render(history []baccarat.Outcome, size int, cellWidth int, format func(baccarat.Outcome) string) string {
	if size <= 0 {
		size = DefaultHeight
	}
	if format == nil {
		format = baccarat.Outcome.Symbol
	}
	cols := slices.Collect(Columns(history, size))
	if len(cols) == 0 {
		return ""
	}

	blank := strings.Repeat(" ", max(cellWidth, 1))
	rows := min(size, len(history))
	lines := make([]string, rows)
	for r := 0; r < rows; r++ {
		var b strings.Builder
		for c, col := range cols {
			if c > 0 {
				b.WriteByte(' ')
			}
			if r < len(col) {
				b.WriteString(format(col[r]))
			} else {
				b.WriteString(blank)
			}
		}
		lines[r] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}
