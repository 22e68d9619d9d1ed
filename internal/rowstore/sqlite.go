package rowstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is a file-backed RowStore for running without spreadsheet
// credentials. Cells live in a single table keyed (sheet, row, col), so the
// adapter keeps the same loose, schema-less shape as the remote store.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if necessary creates) the cell store at dbPath.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cells (
		sheet TEXT NOT NULL,
		row   INTEGER NOT NULL,
		col   INTEGER NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (sheet, row, col)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ReadRange returns the populated rows within the range's columns.
func (s *SQLite) ReadRange(ctx context.Context, sheet, rng string) ([][]string, error) {
	start, end, err := parseA1(rng)
	if err != nil {
		return nil, err
	}

	query := `SELECT row, col, value FROM cells WHERE sheet = ? AND col BETWEEN ? AND ?`
	args := []any{sheet, start.col, end.col}
	if start.row > 0 {
		query += ` AND row >= ?`
		args = append(args, start.row)
	}
	if end.row > 0 {
		query += ` AND row <= ?`
		args = append(args, end.row)
	}
	query += ` ORDER BY row, col`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", sheet, rng, err)
	}
	defer rows.Close()

	byRow := make(map[int][]string)
	maxRow := 0
	for rows.Next() {
		var row, col int
		var value string
		if err := rows.Scan(&row, &col, &value); err != nil {
			return nil, err
		}
		cells := byRow[row]
		for len(cells) <= col-start.col {
			cells = append(cells, "")
		}
		cells[col-start.col] = value
		byRow[row] = cells
		if row > maxRow {
			maxRow = row
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	first := 1
	if start.row > 0 {
		first = start.row
	}
	var out [][]string
	for n := first; n <= maxRow; n++ {
		cells := byRow[n]
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		out = append(out, cells)
	}
	return out, nil
}

// AppendRow appends one row after the sheet's last populated row.
func (s *SQLite) AppendRow(ctx context.Context, sheet, rng string, row []string) error {
	start, _, err := parseA1(rng)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(row) FROM cells WHERE sheet = ?`, sheet,
	).Scan(&last); err != nil {
		return err
	}
	n := int(last.Int64) + 1

	for i, v := range row {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cells (sheet, row, col, value) VALUES (?, ?, ?, ?)
			 ON CONFLICT(sheet, row, col) DO UPDATE SET value = excluded.value`,
			sheet, n, start.col+i, v,
		); err != nil {
			return fmt.Errorf("append to %s: %w", sheet, err)
		}
	}
	return tx.Commit()
}

// UpdateRange overwrites cells starting at the range's top-left corner.
func (s *SQLite) UpdateRange(ctx context.Context, sheet, rng string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := updateTx(ctx, tx, sheet, rng, rows); err != nil {
		return err
	}
	return tx.Commit()
}

// BatchUpdate applies all updates in one transaction, matching the remote
// batch primitive's all-or-nothing behavior.
func (s *SQLite) BatchUpdate(ctx context.Context, sheet string, updates []RangeUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, u := range updates {
		if err := updateTx(ctx, tx, sheet, u.Range, u.Rows); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func updateTx(ctx context.Context, tx *sql.Tx, sheet, rng string, rows [][]string) error {
	start, _, err := parseA1(rng)
	if err != nil {
		return err
	}
	if start.row == 0 {
		return fmt.Errorf("update range %q: row number required", rng)
	}
	for i, src := range rows {
		for j, v := range src {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cells (sheet, row, col, value) VALUES (?, ?, ?, ?)
				 ON CONFLICT(sheet, row, col) DO UPDATE SET value = excluded.value`,
				sheet, start.row+i, start.col+j, v,
			); err != nil {
				return fmt.Errorf("update %s!%s: %w", sheet, rng, err)
			}
		}
	}
	return nil
}
