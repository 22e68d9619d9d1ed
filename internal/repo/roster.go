package repo

import (
	"context"
	"fmt"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/rowstore"
)

// Roster resolves login IDs against the GraderLogin and Data sheets.
type Roster struct {
	store rowstore.RowStore
}

// NewRoster creates a Roster repository.
func NewRoster(s rowstore.RowStore) *Roster {
	return &Roster{store: s}
}

// LookupGrader returns the grader slot registered for a login ID.
// GraderLogin layout (A:B): login id, grader slot name.
func (r *Roster) LookupGrader(ctx context.Context, login string) (model.Grader, error) {
	rows, err := r.store.ReadRange(ctx, sheetGraderLogin, "A:B")
	if err != nil {
		return model.Grader{}, fmt.Errorf("lookup grader: %w", err)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cell(row, 0) == login {
			return model.Grader{Login: login, Slot: model.GraderSlot(cell(row, 1))}, nil
		}
	}
	return model.Grader{}, ErrLoginNotFound
}

// LookupStudent returns the roster entry for a login ID. The Data sheet's
// columns are located by header name (Name, Group, Login) rather than by
// position, since that sheet is maintained by hand.
func (r *Roster) LookupStudent(ctx context.Context, login string) (model.Student, error) {
	rows, err := r.store.ReadRange(ctx, sheetData, "A:E")
	if err != nil {
		return model.Student{}, fmt.Errorf("lookup student: %w", err)
	}
	if len(rows) == 0 {
		return model.Student{}, fmt.Errorf("lookup student: %s sheet is empty", sheetData)
	}

	nameCol, groupCol, loginCol := -1, -1, -1
	for i, h := range rows[0] {
		switch h {
		case "Name":
			nameCol = i
		case "Group":
			groupCol = i
		case "Login":
			loginCol = i
		}
	}
	if nameCol < 0 || groupCol < 0 || loginCol < 0 {
		return model.Student{}, fmt.Errorf("lookup student: required columns not found in %s sheet", sheetData)
	}

	for _, row := range rows[1:] {
		if cell(row, loginCol) == login {
			return model.Student{
				Name:  cell(row, nameCol),
				Group: cell(row, groupCol),
				Login: login,
			}, nil
		}
	}
	return model.Student{}, ErrLoginNotFound
}
