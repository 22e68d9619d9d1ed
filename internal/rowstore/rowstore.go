// Package rowstore abstracts the spreadsheet backing store as a table of
// string cells addressed by (sheet, A1 range). It is the only package that
// reasons about column letters; everything above it works with decoded rows.
package rowstore

import "context"

// RangeUpdate is one (range, rows) pair of a batched write.
type RangeUpdate struct {
	Range string
	Rows  [][]string
}

// RowStore is the contract every backing adapter implements. All operations
// are remote calls that can fail with a transport error. A single call never
// partially applies, but there is no atomicity across calls: a read followed
// by a write can race with a concurrent writer, and the last write wins.
type RowStore interface {
	// ReadRange returns the populated rows of the given A1 range, e.g.
	// ("Responses", "A:N"). Trailing empty cells may be absent from a row.
	ReadRange(ctx context.Context, sheet, rng string) ([][]string, error)

	// AppendRow appends one row after the last populated row of the range.
	AppendRow(ctx context.Context, sheet, rng string, row []string) error

	// UpdateRange overwrites cells starting at the range's top-left corner.
	UpdateRange(ctx context.Context, sheet, rng string, rows [][]string) error

	// BatchUpdate applies all updates in one remote call.
	BatchUpdate(ctx context.Context, sheet string, updates []RangeUpdate) error
}
