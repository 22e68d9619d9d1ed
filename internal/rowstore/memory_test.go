package rowstore

import (
	"context"
	"reflect"
	"testing"
)

func TestMemoryReadRange(t *testing.T) {
	m := NewMemory()
	m.Seed("Tasks", [][]string{
		{"TaskId", "Title", "Description", "Questions"},
		{"1", "Algebra", "Week 1", "Q1 | Q2"},
		{"2", "Geometry", "", ""},
	})

	rows, err := m.ReadRange(context.Background(), "Tasks", "A:D")
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Trailing empty cells are trimmed, like the remote API.
	if !reflect.DeepEqual(rows[2], []string{"2", "Geometry"}) {
		t.Errorf("row 3 = %v, want [2 Geometry]", rows[2])
	}
}

func TestMemoryReadRangeSubset(t *testing.T) {
	m := NewMemory()
	m.Seed("Responses", [][]string{
		{"Timestamp", "StudentId", "TaskId"},
		{"t1", "S1", "2"},
	})

	rows, err := m.ReadRange(context.Background(), "Responses", "B2:C2")
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], []string{"S1", "2"}) {
		t.Errorf("got %v, want [[S1 2]]", rows)
	}
}

func TestMemoryAppendRow(t *testing.T) {
	m := NewMemory()
	m.Seed("Tasks", [][]string{{"TaskId", "Title"}})

	if err := m.AppendRow(context.Background(), "Tasks", "A:D", []string{"1", "Algebra"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	rows, err := m.ReadRange(context.Background(), "Tasks", "A:D")
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1][0] != "1" || rows[1][1] != "Algebra" {
		t.Errorf("appended row = %v", rows[1])
	}
}

func TestMemoryUpdateRange(t *testing.T) {
	m := NewMemory()
	m.Seed("TaskAssignment", [][]string{
		{"StudentId", "Tasks"},
		{"S1", "1"},
	})

	err := m.UpdateRange(context.Background(), "TaskAssignment", "B2", [][]string{{"1 | 3"}})
	if err != nil {
		t.Fatalf("UpdateRange: %v", err)
	}

	rows, _ := m.ReadRange(context.Background(), "TaskAssignment", "A:B")
	if rows[1][1] != "1 | 3" {
		t.Errorf("cell B2 = %q, want %q", rows[1][1], "1 | 3")
	}
}

func TestMemoryUpdateRangeRequiresRow(t *testing.T) {
	m := NewMemory()
	if err := m.UpdateRange(context.Background(), "Tasks", "A:D", [][]string{{"x"}}); err == nil {
		t.Fatal("expected error for unbounded update range")
	}
}

func TestMemoryBatchUpdate(t *testing.T) {
	m := NewMemory()
	m.Seed("Responses", [][]string{
		{"Timestamp"},
		{"t1", "S1", "2", "2-1", "10", "answer", "[]", "", "", "", "", "", "", ""},
	})

	err := m.BatchUpdate(context.Background(), "Responses", []RangeUpdate{
		{Range: "J2", Rows: [][]string{{"2"}}},
		{Range: "M2", Rows: [][]string{{"2"}}},
	})
	if err != nil {
		t.Fatalf("BatchUpdate: %v", err)
	}

	rows, _ := m.ReadRange(context.Background(), "Responses", "A:N")
	if rows[1][9] != "2" || rows[1][12] != "2" {
		t.Errorf("cells J2, M2 = %q, %q, want both 2", rows[1][9], rows[1][12])
	}
}

func TestMemoryGrowsOnUpdate(t *testing.T) {
	m := NewMemory()
	err := m.UpdateRange(context.Background(), "Sheet", "C3", [][]string{{"v"}})
	if err != nil {
		t.Fatalf("UpdateRange: %v", err)
	}
	rows, _ := m.ReadRange(context.Background(), "Sheet", "A:C")
	if len(rows) != 3 || rows[2][2] != "v" {
		t.Errorf("got rows %v, want cell C3 = v", rows)
	}
}
