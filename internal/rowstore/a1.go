package rowstore

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnLetter converts a 0-based column index to its letter, e.g. 0 -> "A",
// 13 -> "N", 26 -> "AA".
func ColumnLetter(col int) string {
	s := ""
	for col >= 0 {
		s = string(rune('A'+col%26)) + s
		col = col/26 - 1
	}
	return s
}

// CellRange builds a single-cell A1 range from 0-based column and 1-based row.
func CellRange(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnLetter(col), row)
}

// RowRange builds an A1 range spanning cols [colStart, colEnd] on one row.
func RowRange(colStart, colEnd, row int) string {
	return fmt.Sprintf("%s%d:%s%d", ColumnLetter(colStart), row, ColumnLetter(colEnd), row)
}

// a1Ref is one corner of a parsed A1 range. col is 0-based; row is 1-based,
// 0 meaning unbounded (a bare column reference like "A:N").
type a1Ref struct {
	col int
	row int
}

// parseA1 splits a range like "A:N", "B3", or "H5:N5" into its corners.
func parseA1(rng string) (start, end a1Ref, err error) {
	parts := strings.SplitN(rng, ":", 2)
	start, err = parseRef(parts[0])
	if err != nil {
		return start, end, fmt.Errorf("parse range %q: %w", rng, err)
	}
	if len(parts) == 1 {
		return start, start, nil
	}
	end, err = parseRef(parts[1])
	if err != nil {
		return start, end, fmt.Errorf("parse range %q: %w", rng, err)
	}
	return start, end, nil
}

func parseRef(ref string) (a1Ref, error) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return a1Ref{}, fmt.Errorf("missing column letters in %q", ref)
	}
	col := 0
	for _, c := range ref[:i] {
		col = col*26 + int(c-'A') + 1
	}
	r := a1Ref{col: col - 1}
	if i < len(ref) {
		row, err := strconv.Atoi(ref[i:])
		if err != nil || row < 1 {
			return a1Ref{}, fmt.Errorf("bad row number in %q", ref)
		}
		r.row = row
	}
	return r, nil
}
