package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/rowstore"
)

func newRosterStore(t *testing.T) *Roster {
	t.Helper()
	m := rowstore.NewMemory()
	m.Seed("GraderLogin", [][]string{
		{"Login", "GradingId"},
		{"grader-anna", "Grade1"},
		{"grader-boris", "Grade3"},
	})
	m.Seed("Data", [][]string{
		{"Group", "Name", "", "Login", "Notes"},
		{"10A", "Ivan Petrov", "", "ivan42", ""},
		{"10B", "Maria Sidorova", "", "maria7", ""},
	})
	return NewRoster(m)
}

func TestLookupGrader(t *testing.T) {
	roster := newRosterStore(t)
	ctx := context.Background()

	g, err := roster.LookupGrader(ctx, "grader-boris")
	if err != nil {
		t.Fatalf("LookupGrader: %v", err)
	}
	if g.Slot != model.Grade3 {
		t.Errorf("slot = %q, want Grade3", g.Slot)
	}

	_, err = roster.LookupGrader(ctx, "nobody")
	if !errors.Is(err, ErrLoginNotFound) {
		t.Errorf("got %v, want ErrLoginNotFound", err)
	}
}

// Data sheet columns are located by header name, not position.
func TestLookupStudentByHeader(t *testing.T) {
	roster := newRosterStore(t)
	ctx := context.Background()

	s, err := roster.LookupStudent(ctx, "maria7")
	if err != nil {
		t.Fatalf("LookupStudent: %v", err)
	}
	if s.Name != "Maria Sidorova" || s.Group != "10B" {
		t.Errorf("student = %+v", s)
	}

	_, err = roster.LookupStudent(ctx, "nobody")
	if !errors.Is(err, ErrLoginNotFound) {
		t.Errorf("got %v, want ErrLoginNotFound", err)
	}
}

func TestLookupStudentMissingColumns(t *testing.T) {
	m := rowstore.NewMemory()
	m.Seed("Data", [][]string{
		{"A", "B"},
		{"x", "y"},
	})
	roster := NewRoster(m)

	_, err := roster.LookupStudent(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error when header columns are missing")
	}
}
