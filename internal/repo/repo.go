// Package repo reads and writes the typed entities encoded in the
// spreadsheet's sheets. Each repository owns one sheet's layout; the rest of
// the program never sees raw cells.
package repo

import "errors"

// Sheet names in the backing store.
const (
	sheetTasks       = "Tasks"
	sheetResponses   = "Responses"
	sheetAssignments = "TaskAssignment"
	sheetGraderLogin = "GraderLogin"
	sheetData        = "Data"
)

// Sentinel errors surfaced by the repositories. Store transport errors are
// wrapped and propagated, never swallowed.
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrResponseNotFound  = errors.New("response row not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrLoginNotFound     = errors.New("login not found")
	ErrNotAssigned       = errors.New("task not in student's assignments")
	ErrDuplicateResponse = errors.New("response already exists for student, task, and question")
)
