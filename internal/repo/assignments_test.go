package repo

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/rowstore"
)

func newAssignmentStore(t *testing.T, rows ...[]string) *Assignments {
	t.Helper()
	m := rowstore.NewMemory()
	seed := [][]string{{"StudentId", "Tasks"}}
	seed = append(seed, rows...)
	m.Seed("TaskAssignment", seed)
	return NewAssignments(m)
}

func TestListAssignments(t *testing.T) {
	a := newAssignmentStore(t,
		[]string{"S1", "1 | 3"},
		[]string{"S2", ""},
		[]string{"S3", "2"},
	)

	got, err := a.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(got["S1"], []string{"1", "3"}) {
		t.Errorf("S1 = %v, want [1 3]", got["S1"])
	}
	if len(got["S2"]) != 0 {
		t.Errorf("S2 = %v, want empty", got["S2"])
	}
}

func TestAssignToAll(t *testing.T) {
	// 2 of 5 students already have task 3.
	a := newAssignmentStore(t,
		[]string{"S1", "3"},
		[]string{"S2", "1"},
		[]string{"S3", "1 | 3"},
		[]string{"S4", ""},
		[]string{"S5", "2"},
	)
	ctx := context.Background()

	updated, err := a.AssignToAll(ctx, "3")
	if err != nil {
		t.Fatalf("AssignToAll: %v", err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3 (students already assigned are untouched)", updated)
	}

	status, err := a.Status(ctx, "3")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != model.AssignedAll {
		t.Errorf("status = %q, want all", status)
	}

	// Existing assignments must be preserved.
	all, _ := a.List(ctx)
	if !reflect.DeepEqual(all["S2"], []string{"1", "3"}) {
		t.Errorf("S2 = %v, want [1 3]", all["S2"])
	}

	// A second call is a no-op.
	updated, err = a.AssignToAll(ctx, "3")
	if err != nil {
		t.Fatalf("AssignToAll again: %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0", updated)
	}
}

func TestUnassign(t *testing.T) {
	a := newAssignmentStore(t,
		[]string{"S1", "1 | 3"},
		[]string{"S2", "2"},
	)
	ctx := context.Background()

	if err := a.Unassign(ctx, "S1", "3"); err != nil {
		t.Fatalf("Unassign: %v", err)
	}
	got, _ := a.ListForStudent(ctx, "S1")
	if !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("S1 tasks = %v, want [1]", got)
	}

	err := a.Unassign(ctx, "S2", "3")
	if !errors.Is(err, ErrNotAssigned) {
		t.Errorf("got %v, want ErrNotAssigned", err)
	}

	err = a.Unassign(ctx, "S9", "3")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("got %v, want ErrStudentNotFound", err)
	}
}

func TestAssignmentStatus(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		task string
		want model.AssignmentStatus
	}{
		{"none", [][]string{{"S1", "1"}, {"S2", ""}}, "3", model.AssignedNone},
		{"some", [][]string{{"S1", "3"}, {"S2", "1"}}, "3", model.AssignedSome},
		{"all", [][]string{{"S1", "3"}, {"S2", "1 | 3"}}, "3", model.AssignedAll},
		{"empty ledger", nil, "3", model.AssignedNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAssignmentStore(t, tt.rows...)
			got, err := a.Status(context.Background(), tt.task)
			if err != nil {
				t.Fatalf("Status: %v", err)
			}
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStudentsWithTask(t *testing.T) {
	a := newAssignmentStore(t,
		[]string{"S3", "3"},
		[]string{"S1", "3"},
		[]string{"S2", "1"},
	)
	got, err := a.StudentsWithTask(context.Background(), "3")
	if err != nil {
		t.Fatalf("StudentsWithTask: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"S1", "S3"}) {
		t.Errorf("got %v, want [S1 S3] (sorted)", got)
	}
}
