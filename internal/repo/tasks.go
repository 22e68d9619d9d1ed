package repo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/rowstore"
)

// Tasks sheet layout (A:D): id, title, description, pipe-delimited questions.
const (
	taskColID = iota
	taskColTitle
	taskColDescription
	taskColQuestions

	taskColCount
)

const taskRange = "A:D"

// Tasks reads and writes Task rows.
type Tasks struct {
	store rowstore.RowStore
}

// NewTasks creates a Tasks repository.
func NewTasks(s rowstore.RowStore) *Tasks {
	return &Tasks{store: s}
}

// List returns all tasks in sheet order.
func (t *Tasks) List(ctx context.Context) ([]model.Task, error) {
	rows, err := t.store.ReadRange(ctx, sheetTasks, taskRange)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var tasks []model.Task
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		tasks = append(tasks, decodeTask(row))
	}
	return tasks, nil
}

// Get returns the task with the given ID, or ErrTaskNotFound.
func (t *Tasks) Get(ctx context.Context, id string) (model.Task, error) {
	rows, err := t.store.ReadRange(ctx, sheetTasks, taskRange)
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cell(row, taskColID) == id {
			return decodeTask(row), nil
		}
	}
	return model.Task{}, ErrTaskNotFound
}

// Create appends a new task and returns its assigned ID. The next ID is
// max(existing)+1 with unparsable cells treated as 0; concurrent creates can
// compute the same ID, an accepted limitation of the append-only store.
func (t *Tasks) Create(ctx context.Context, title, description string, questions []string) (string, error) {
	rows, err := t.store.ReadRange(ctx, sheetTasks, "A:A")
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	maxID := 0
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if n, err := strconv.Atoi(cell(row, taskColID)); err == nil && n > maxID {
			maxID = n
		}
	}
	id := strconv.Itoa(maxID + 1)

	row := []string{id, title, description, joinPipes(questions)}
	if err := t.store.AppendRow(ctx, sheetTasks, taskRange, row); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return id, nil
}

// Update overwrites the task row in place, or returns ErrTaskNotFound.
func (t *Tasks) Update(ctx context.Context, id, title, description string, questions []string) error {
	rows, err := t.store.ReadRange(ctx, sheetTasks, taskRange)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	for i, row := range rows {
		if i == 0 || cell(row, taskColID) != id {
			continue
		}
		n := i + 1 // 1-based sheet row
		rng := rowstore.RowRange(taskColID, taskColQuestions, n)
		updated := []string{id, title, description, joinPipes(questions)}
		if err := t.store.UpdateRange(ctx, sheetTasks, rng, [][]string{updated}); err != nil {
			return fmt.Errorf("update task %s: %w", id, err)
		}
		return nil
	}
	return ErrTaskNotFound
}

// decodeTask turns a Tasks row into a Task, synthesizing question IDs from
// their position.
func decodeTask(row []string) model.Task {
	task := model.Task{
		ID:          cell(row, taskColID),
		Title:       cell(row, taskColTitle),
		Description: cell(row, taskColDescription),
	}
	for i, text := range splitPipes(cell(row, taskColQuestions)) {
		task.Questions = append(task.Questions, model.Question{
			ID:   fmt.Sprintf("%s-%d", task.ID, i+1),
			Text: text,
		})
	}
	return task
}

// cell reads a column from a row that may be shorter than the sheet's width.
func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}
