package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/gradesheet/internal/grading"
	"github.com/pavelanni/gradesheet/internal/llm"
	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/repo"
	"github.com/pavelanni/gradesheet/internal/rowstore"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	tasks       *repo.Tasks
	responses   *repo.Responses
	assignments *repo.Assignments
	roster      *repo.Roster
	engine      *grading.Engine
	llm         *llm.Client
	sessions    *sessionStore
}

// New creates a new Handler over the given row store. llmClient may be nil,
// which disables the chat relay and suggestion endpoints.
func New(store rowstore.RowStore, llmClient *llm.Client) *Handler {
	tasks := repo.NewTasks(store)
	responses := repo.NewResponses(store)
	assignments := repo.NewAssignments(store)
	return &Handler{
		tasks:       tasks,
		responses:   responses,
		assignments: assignments,
		roster:      repo.NewRoster(store),
		engine:      grading.New(tasks, responses, assignments),
		llm:         llmClient,
		sessions:    newSessionStore(),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/auth", h.handleAuth)
	r.Get("/api/session", h.handleSession)

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", h.handleListTasks)
		r.Post("/", h.handleCreateTask)
		r.Route("/{taskID}", func(r chi.Router) {
			r.Get("/", h.handleGetTask)
			r.Put("/", h.handleUpdateTask)
			r.Get("/assignment-status", h.handleAssignmentStatus)
			r.Post("/assign-to-all", h.handleAssignToAll)
			r.Get("/completion", h.handleCompletion)
			r.Get("/questions/{questionID}/responses", h.handleListResponses)
			r.Post("/questions/{questionID}/suggest", h.handleSuggest)
		})
	})

	r.Get("/api/task-assignments", h.handleTaskAssignments)
	r.Get("/api/students/{studentID}/tasks", h.handleStudentTasks)
	r.Post("/api/students/{studentID}/tasks/{taskID}/unassign", h.handleUnassign)

	r.Post("/api/grade", h.handleGrade)
	r.Post("/api/submit-response", h.handleSubmitResponse)
	r.Post("/api/chat", h.handleChat)
}

// responseView is the grader-facing shape of one response, including the
// read-side grading state derived from the fresh row.
type responseView struct {
	StudentID      string                      `json:"studentId"`
	Answer         string                      `json:"answer"`
	Grades         map[model.GraderSlot]string `json:"grades"`
	Saved          *int                        `json:"saved"`
	Suggested      *int                        `json:"suggested"`
	CanAutoConfirm bool                        `json:"canAutoConfirm"`
}

func (h *Handler) handleListResponses(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	questionID := chi.URLParam(r, "questionID")

	responses, err := h.responses.ListFor(r.Context(), taskID, questionID)
	if err != nil {
		writeError(w, "Error fetching responses", err)
		return
	}

	views := make([]responseView, 0, len(responses))
	for _, resp := range responses {
		state := grading.Review(resp)
		views = append(views, responseView{
			StudentID:      resp.StudentID,
			Answer:         resp.Answer,
			Grades:         resp.Grades,
			Saved:          state.Saved,
			Suggested:      state.Suggested,
			CanAutoConfirm: state.CanAutoConfirm,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": views})
}

type gradeRequest struct {
	StudentID  string `json:"studentId"`
	TaskID     string `json:"taskId"`
	QuestionID string `json:"questionId"`
	GradingID  string `json:"gradingId"`
	Value      *int   `json:"value"`
}

func (h *Handler) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request body", err))
		return
	}
	if req.StudentID == "" || req.TaskID == "" || req.QuestionID == "" || req.GradingID == "" || req.Value == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Missing required field", nil))
		return
	}

	err := h.engine.SubmitGrade(r.Context(),
		req.StudentID, req.TaskID, req.QuestionID,
		model.GraderSlot(req.GradingID), *req.Value)
	if err != nil {
		writeError(w, "Error updating grade", err)
		return
	}

	slog.Info("grade saved",
		"student", req.StudentID, "task", req.TaskID,
		"question", req.QuestionID, "slot", req.GradingID, "value", *req.Value)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type submitResponseRequest struct {
	StudentID  string              `json:"studentId"`
	TaskID     string              `json:"taskId"`
	QuestionID string              `json:"questionId"`
	TimeTaken  float64             `json:"timeTaken"`
	Answer     string              `json:"answer"`
	ChatLogs   []model.ChatMessage `json:"chatLogs"`
}

func (h *Handler) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req submitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request body", err))
		return
	}
	if req.StudentID == "" || req.TaskID == "" || req.QuestionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Missing required field", nil))
		return
	}

	err := h.responses.Append(r.Context(),
		req.StudentID, req.TaskID, req.QuestionID,
		req.TimeTaken, req.Answer, req.ChatLogs)
	if err != nil {
		writeError(w, "Error submitting response", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleCompletion(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	completion, err := h.engine.Completion(r.Context(), taskID)
	if err != nil {
		writeError(w, "Error computing completion", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completion": completion})
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("AI grading is not configured", nil))
		return
	}
	taskID := chi.URLParam(r, "taskID")
	questionID := chi.URLParam(r, "questionID")

	task, err := h.tasks.Get(r.Context(), taskID)
	if err != nil {
		writeError(w, "Error fetching task", err)
		return
	}
	var question model.Question
	found := false
	for _, q := range task.Questions {
		if q.ID == questionID {
			question, found = q, true
			break
		}
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("Question not found", nil))
		return
	}

	responses, err := h.responses.ListFor(r.Context(), taskID, questionID)
	if err != nil {
		writeError(w, "Error fetching responses", err)
		return
	}

	suggested := 0
	for _, resp := range responses {
		if resp.AIGrade != "" {
			continue // already suggested
		}
		s, err := h.llm.SuggestGrade(r.Context(), question, resp.Answer)
		if err != nil {
			slog.Error("suggestion failed", "student", resp.StudentID, "error", err)
			continue
		}
		row, err := h.responses.FindRow(r.Context(), resp.StudentID, taskID, questionID)
		if err != nil {
			writeError(w, "Error locating response", err)
			return
		}
		if err := h.responses.WriteAIGrade(r.Context(), row, fmt.Sprint(s.Grade)); err != nil {
			writeError(w, "Error writing suggestion", err)
			return
		}
		suggested++
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "suggested": suggested})
}

type chatRequest struct {
	Messages []model.ChatMessage `json:"messages"`
}

// handleChat relays the student's conversation to the completion API and
// streams content chunks back as they arrive.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("AI chat is not configured", nil))
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Messages == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid messages format", err))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	err := h.llm.StreamChat(r.Context(), req.Messages, func(delta string) error {
		if _, err := w.Write([]byte(delta)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		// Headers are already sent; nothing left but to log and drop.
		slog.Error("chat stream failed", "error", err)
	}
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// errorBody builds the {error, details} payload the frontend expects.
func errorBody(msg string, err error) map[string]any {
	body := map[string]any{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	return body
}

// writeError maps repository and engine errors onto the API's status codes:
// missing rows are 404, duplicates 409, rejected values 400, and anything
// else a store/transport failure surfaced as 500.
func writeError(w http.ResponseWriter, msg string, err error) {
	var invalid grading.ErrInvalidGrade
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repo.ErrTaskNotFound),
		errors.Is(err, repo.ErrResponseNotFound),
		errors.Is(err, repo.ErrStudentNotFound),
		errors.Is(err, repo.ErrNotAssigned):
		status = http.StatusNotFound
	case errors.Is(err, repo.ErrDuplicateResponse):
		status = http.StatusConflict
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	default:
		slog.Error(msg, "error", err)
	}
	writeJSON(w, status, errorBody(msg, err))
}
