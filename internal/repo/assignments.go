package repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/rowstore"
)

// TaskAssignment sheet layout (A:B): studentId, pipe-delimited task ID list.
const (
	assignColStudentID = iota
	assignColTasks
)

const assignmentRange = "A:B"

// Assignments is the per-student ledger of assigned tasks.
type Assignments struct {
	store rowstore.RowStore
}

// NewAssignments creates an Assignments repository.
func NewAssignments(s rowstore.RowStore) *Assignments {
	return &Assignments{store: s}
}

// List returns every student's assigned task IDs.
func (a *Assignments) List(ctx context.Context) (map[string][]string, error) {
	rows, err := a.store.ReadRange(ctx, sheetAssignments, assignmentRange)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	out := make(map[string][]string)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		out[cell(row, assignColStudentID)] = splitPipes(cell(row, assignColTasks))
	}
	return out, nil
}

// ListForStudent returns the task IDs assigned to one student. A student
// without a ledger row has no assignments.
func (a *Assignments) ListForStudent(ctx context.Context, studentID string) ([]string, error) {
	rows, err := a.store.ReadRange(ctx, sheetAssignments, assignmentRange)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cell(row, assignColStudentID) == studentID {
			return splitPipes(cell(row, assignColTasks)), nil
		}
	}
	return nil, nil
}

// StudentsWithTask returns the students whose ledger row lists taskID.
func (a *Assignments) StudentsWithTask(ctx context.Context, taskID string) ([]string, error) {
	all, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	var students []string
	for studentID, tasks := range all {
		if slices.Contains(tasks, taskID) {
			students = append(students, studentID)
		}
	}
	slices.Sort(students)
	return students, nil
}

// AssignToAll adds taskID to every student that lacks it, writing all
// affected rows back in one batched call. Students that already have the
// task are untouched. Returns the number of rows written.
func (a *Assignments) AssignToAll(ctx context.Context, taskID string) (int, error) {
	rows, err := a.store.ReadRange(ctx, sheetAssignments, assignmentRange)
	if err != nil {
		return 0, fmt.Errorf("assign task %s: %w", taskID, err)
	}

	var updates []rowstore.RangeUpdate
	for i, row := range rows {
		if i == 0 {
			continue
		}
		tasks := splitPipes(cell(row, assignColTasks))
		if slices.Contains(tasks, taskID) {
			continue
		}
		tasks = append(tasks, taskID)
		updates = append(updates, rowstore.RangeUpdate{
			Range: rowstore.CellRange(assignColTasks, i+1),
			Rows:  [][]string{{joinPipes(tasks)}},
		})
	}

	if len(updates) == 0 {
		return 0, nil
	}
	if err := a.store.BatchUpdate(ctx, sheetAssignments, updates); err != nil {
		return 0, fmt.Errorf("assign task %s: %w", taskID, err)
	}
	return len(updates), nil
}

// Unassign removes taskID from one student's list. Returns
// ErrStudentNotFound if the student has no ledger row and ErrNotAssigned if
// the task is not in the list.
func (a *Assignments) Unassign(ctx context.Context, studentID, taskID string) error {
	rows, err := a.store.ReadRange(ctx, sheetAssignments, assignmentRange)
	if err != nil {
		return fmt.Errorf("unassign task %s: %w", taskID, err)
	}
	for i, row := range rows {
		if i == 0 || cell(row, assignColStudentID) != studentID {
			continue
		}
		tasks := splitPipes(cell(row, assignColTasks))
		if !slices.Contains(tasks, taskID) {
			return ErrNotAssigned
		}
		tasks = slices.DeleteFunc(tasks, func(t string) bool { return t == taskID })
		rng := rowstore.CellRange(assignColTasks, i+1)
		if err := a.store.UpdateRange(ctx, sheetAssignments, rng, [][]string{{joinPipes(tasks)}}); err != nil {
			return fmt.Errorf("unassign task %s: %w", taskID, err)
		}
		return nil
	}
	return ErrStudentNotFound
}

// Status reports whether taskID is assigned to no, some, or all students.
func (a *Assignments) Status(ctx context.Context, taskID string) (model.AssignmentStatus, error) {
	all, err := a.List(ctx)
	if err != nil {
		return "", err
	}
	total := len(all)
	withTask := 0
	for _, tasks := range all {
		if slices.Contains(tasks, taskID) {
			withTask++
		}
	}
	switch {
	case total > 0 && withTask == total:
		return model.AssignedAll, nil
	case withTask > 0:
		return model.AssignedSome, nil
	default:
		return model.AssignedNone, nil
	}
}
