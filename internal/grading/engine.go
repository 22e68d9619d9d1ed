// Package grading consolidates multi-grader input into the authoritative
// final grade and derives per-student grading state from fresh store reads.
package grading

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/repo"
)

// Engine wires the repositories the consolidation logic needs. It keeps no
// row cache: every derivation starts from a fresh fetch, so navigation never
// serves stale grades or completion state.
type Engine struct {
	tasks       *repo.Tasks
	responses   *repo.Responses
	assignments *repo.Assignments
}

// New creates an Engine.
func New(tasks *repo.Tasks, responses *repo.Responses, assignments *repo.Assignments) *Engine {
	return &Engine{tasks: tasks, responses: responses, assignments: assignments}
}

// ErrInvalidGrade reports a value outside the permitted score set or a write
// aimed at a non-grader column.
type ErrInvalidGrade struct {
	Slot  model.GraderSlot
	Value int
}

func (e ErrInvalidGrade) Error() string {
	if !e.Slot.IsHumanSlot() {
		return fmt.Sprintf("slot %q is not a grader column", e.Slot)
	}
	return fmt.Sprintf("grade %d outside permitted set %d..%d", e.Value, model.MinGrade, model.MaxGrade)
}

// SubmitGrade records a grader's score for one response. The value lands in
// the grader's own column and is mirrored into GradeFinal in the same
// batched write: the most recent explicit grading action by any grader is
// the authoritative grade (last writer wins, no merging across graders).
// Resubmitting an identical value is a no-op on final state, so a failed
// call is always safe to retry.
func (e *Engine) SubmitGrade(ctx context.Context, studentID, taskID, questionID string, slot model.GraderSlot, value int) error {
	if !slot.IsHumanSlot() || !model.ValidGrade(value) {
		return ErrInvalidGrade{Slot: slot, Value: value}
	}
	row, err := e.responses.FindRow(ctx, studentID, taskID, questionID)
	if err != nil {
		return err
	}
	return e.responses.WriteGrade(ctx, row, slot, strconv.Itoa(value))
}

// ReviewState is the read-side grading state for one response, computed
// entirely from a freshly fetched row.
type ReviewState struct {
	// Saved is the parsed GradeFinal, nil when empty or unparsable.
	Saved *int
	// Suggested is the parsed GradeAI, nil when empty or unparsable.
	Suggested *int
	// Editable is the grader's working value; it initializes to Saved and
	// changes only through local selection in the UI.
	Editable *int
	// CanAutoConfirm allows a one-click confirm of the AI suggestion. It
	// holds only while no final grade is saved, no local selection has been
	// made, and a suggestion exists; once any of the three falsifies it
	// stays false until a fresh fetch resets the state.
	CanAutoConfirm bool
}

// Review derives the grading state for a response.
func Review(resp model.Response) ReviewState {
	s := ReviewState{
		Saved:     parseGrade(resp.FinalGrade),
		Suggested: parseGrade(resp.AIGrade),
	}
	s.Editable = s.Saved
	s.CanAutoConfirm = s.Saved == nil && s.Editable == nil && s.Suggested != nil
	return s
}

// Select records a grader's local digit selection on the state. Any
// selection closes the auto-confirm window.
func (s ReviewState) Select(value int) ReviewState {
	v := value
	s.Editable = &v
	s.CanAutoConfirm = false
	return s
}

// Completion reports, for every student the ledger assigns the task to,
// whether every question of the task has a response with a final grade. A
// task with no questions is complete for every assigned student. Nothing in
// the system clears a grade, so completion only moves forward.
func (e *Engine) Completion(ctx context.Context, taskID string) (map[string]bool, error) {
	task, err := e.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	students, err := e.assignments.StudentsWithTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	responses, err := e.responses.ListForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// finalGraded[(student, question)] = true when GradeFinal is non-empty.
	type key struct{ student, question string }
	finalGraded := make(map[key]bool)
	for _, r := range responses {
		if r.FinalGrade != "" {
			finalGraded[key{r.StudentID, r.QuestionID}] = true
		}
	}

	completion := make(map[string]bool, len(students))
	for _, studentID := range students {
		done := true
		for _, q := range task.Questions {
			if !finalGraded[key{studentID, q.ID}] {
				done = false
				break
			}
		}
		completion[studentID] = done
	}
	return completion, nil
}

func parseGrade(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
