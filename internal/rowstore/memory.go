package rowstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process RowStore used by tests and throwaway dev runs.
// It mimics the remote store's range semantics, including rows shorter than
// the requested range when trailing cells are empty.
type Memory struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][][]string)}
}

// Seed replaces a sheet's contents wholesale. Test setup helper.
func (m *Memory) Seed(sheet string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	m.sheets[sheet] = cp
}

// ReadRange returns the populated rows within the range's columns.
func (m *Memory) ReadRange(_ context.Context, sheet, rng string) ([][]string, error) {
	start, end, err := parseA1(rng)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.sheets[sheet]
	first, last := 1, len(rows)
	if start.row > 0 {
		first = start.row
	}
	if end.row > 0 && end.row < last {
		last = end.row
	}

	var out [][]string
	for n := first; n <= last; n++ {
		row := rows[n-1]
		var cells []string
		for c := start.col; c <= end.col && c < len(row); c++ {
			cells = append(cells, row[c])
		}
		// Trailing empty cells are absent, as the remote API returns them.
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		out = append(out, cells)
	}
	return out, nil
}

// AppendRow appends one row after the sheet's last populated row.
func (m *Memory) AppendRow(_ context.Context, sheet, rng string, row []string) error {
	start, _, err := parseA1(rng)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cells := make([]string, start.col+len(row))
	copy(cells[start.col:], row)
	m.sheets[sheet] = append(m.sheets[sheet], cells)
	return nil
}

// UpdateRange overwrites cells starting at the range's top-left corner,
// growing the sheet as needed.
func (m *Memory) UpdateRange(_ context.Context, sheet, rng string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.update(sheet, rng, rows)
}

// BatchUpdate applies all updates under one lock.
func (m *Memory) BatchUpdate(_ context.Context, sheet string, updates []RangeUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		if err := m.update(sheet, u.Range, u.Rows); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) update(sheet, rng string, rows [][]string) error {
	start, _, err := parseA1(rng)
	if err != nil {
		return err
	}
	if start.row == 0 {
		return fmt.Errorf("update range %q: row number required", rng)
	}
	grid := m.sheets[sheet]
	for i, src := range rows {
		n := start.row + i
		for len(grid) < n {
			grid = append(grid, nil)
		}
		row := grid[n-1]
		need := start.col + len(src)
		for len(row) < need {
			row = append(row, "")
		}
		copy(row[start.col:need], src)
		grid[n-1] = row
	}
	m.sheets[sheet] = grid
	return nil
}
