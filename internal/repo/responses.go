package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/rowstore"
)

// Responses sheet layout (A:N): submission timestamp, key triple, answer
// payload, then the grade-column block.
const (
	respColTimestamp = iota
	respColStudentID
	respColTaskID
	respColQuestionID
	respColTimeTaken
	respColAnswer
	respColChatLog
	respColGrade1
	respColGrade2
	respColGrade3
	respColGrade4
	respColGrade5
	respColGradeFinal
	respColGradeAI

	respColCount
)

const responseRange = "A:N"

// slotColumns maps every grader slot to its 0-based column.
var slotColumns = map[model.GraderSlot]int{
	model.Grade1:     respColGrade1,
	model.Grade2:     respColGrade2,
	model.Grade3:     respColGrade3,
	model.Grade4:     respColGrade4,
	model.Grade5:     respColGrade5,
	model.GradeFinal: respColGradeFinal,
	model.GradeAI:    respColGradeAI,
}

// Responses reads and writes Response rows.
type Responses struct {
	store rowstore.RowStore
}

// NewResponses creates a Responses repository.
func NewResponses(s rowstore.RowStore) *Responses {
	return &Responses{store: s}
}

// ListFor returns all responses for one question of one task, in sheet order.
func (r *Responses) ListFor(ctx context.Context, taskID, questionID string) ([]model.Response, error) {
	rows, err := r.store.ReadRange(ctx, sheetResponses, responseRange)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	var out []model.Response
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if cell(row, respColTaskID) != taskID || cell(row, respColQuestionID) != questionID {
			continue
		}
		out = append(out, decodeResponse(row))
	}
	return out, nil
}

// ListForTask returns all responses for a task across its questions.
func (r *Responses) ListForTask(ctx context.Context, taskID string) ([]model.Response, error) {
	rows, err := r.store.ReadRange(ctx, sheetResponses, responseRange)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	var out []model.Response
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cell(row, respColTaskID) != taskID {
			continue
		}
		out = append(out, decodeResponse(row))
	}
	return out, nil
}

// Append records a new submission with an empty grade block. An existing row
// for the same (student, task, question) triple is rejected with
// ErrDuplicateResponse, since the store itself has no uniqueness constraint.
func (r *Responses) Append(ctx context.Context, studentID, taskID, questionID string, timeTaken float64, answer string, chatLog []model.ChatMessage) error {
	if _, err := r.FindRow(ctx, studentID, taskID, questionID); err == nil {
		return ErrDuplicateResponse
	} else if !errors.Is(err, ErrResponseNotFound) {
		return err
	}

	logJSON, err := json.Marshal(chatLog)
	if err != nil {
		return fmt.Errorf("encode chat log: %w", err)
	}

	row := make([]string, respColCount)
	row[respColTimestamp] = time.Now().UTC().Format(time.RFC3339)
	row[respColStudentID] = studentID
	row[respColTaskID] = taskID
	row[respColQuestionID] = questionID
	row[respColTimeTaken] = strconv.FormatFloat(timeTaken, 'f', -1, 64)
	row[respColAnswer] = answer
	row[respColChatLog] = string(logJSON)

	if err := r.store.AppendRow(ctx, sheetResponses, responseRange, row); err != nil {
		return fmt.Errorf("append response: %w", err)
	}
	return nil
}

// FindRow returns the 1-based sheet row holding the key triple, or
// ErrResponseNotFound. Keys compare as strings; callers must stringify
// consistently. The header row never matches.
func (r *Responses) FindRow(ctx context.Context, studentID, taskID, questionID string) (int, error) {
	rows, err := r.store.ReadRange(ctx, sheetResponses, responseRange)
	if err != nil {
		return 0, fmt.Errorf("find response: %w", err)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cell(row, respColStudentID) == studentID &&
			cell(row, respColTaskID) == taskID &&
			cell(row, respColQuestionID) == questionID {
			return i + 1, nil
		}
	}
	return 0, ErrResponseNotFound
}

// WriteGrade writes value into the slot's column and mirrors it into
// GradeFinal, as one batched call so the two cells cannot diverge.
func (r *Responses) WriteGrade(ctx context.Context, row int, slot model.GraderSlot, value string) error {
	col, ok := slotColumns[slot]
	if !ok {
		return fmt.Errorf("unknown grader slot %q", slot)
	}
	updates := []rowstore.RangeUpdate{
		{Range: rowstore.CellRange(col, row), Rows: [][]string{{value}}},
	}
	if slot != model.GradeFinal {
		updates = append(updates, rowstore.RangeUpdate{
			Range: rowstore.CellRange(respColGradeFinal, row),
			Rows:  [][]string{{value}},
		})
	}
	if err := r.store.BatchUpdate(ctx, sheetResponses, updates); err != nil {
		return fmt.Errorf("write grade: %w", err)
	}
	return nil
}

// WriteAIGrade writes only the GradeAI column. The suggestion never touches
// GradeFinal; confirming it is a human action.
func (r *Responses) WriteAIGrade(ctx context.Context, row int, value string) error {
	rng := rowstore.CellRange(respColGradeAI, row)
	if err := r.store.UpdateRange(ctx, sheetResponses, rng, [][]string{{value}}); err != nil {
		return fmt.Errorf("write AI grade: %w", err)
	}
	return nil
}

func decodeResponse(row []string) model.Response {
	resp := model.Response{
		Timestamp:  cell(row, respColTimestamp),
		StudentID:  cell(row, respColStudentID),
		TaskID:     cell(row, respColTaskID),
		QuestionID: cell(row, respColQuestionID),
		Answer:     cell(row, respColAnswer),
		FinalGrade: cell(row, respColGradeFinal),
		AIGrade:    cell(row, respColGradeAI),
		Grades:     make(map[model.GraderSlot]string),
	}
	if v, err := strconv.ParseFloat(cell(row, respColTimeTaken), 64); err == nil {
		resp.TimeTaken = v
	}
	if raw := cell(row, respColChatLog); raw != "" {
		// Malformed logs are left empty rather than failing the whole read.
		_ = json.Unmarshal([]byte(raw), &resp.ChatLog)
	}
	for _, slot := range model.GraderSlots {
		resp.Grades[slot] = cell(row, slotColumns[slot])
	}
	resp.Grades[model.GradeFinal] = resp.FinalGrade
	resp.Grades[model.GradeAI] = resp.AIGrade
	return resp
}
