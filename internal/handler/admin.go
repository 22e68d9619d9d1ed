package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Task-editor and assignment endpoints, used by the teacher-facing screens.

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		writeError(w, "Error fetching tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, "Task not found", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Questions   []struct {
		Text string `json:"text"`
	} `json:"questions"`
}

func (tr taskRequest) questionTexts() []string {
	texts := make([]string, 0, len(tr.Questions))
	for _, q := range tr.Questions {
		texts = append(texts, strings.TrimSpace(q.Text))
	}
	return texts
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request body", err))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Missing required field", nil))
		return
	}

	id, err := h.tasks.Create(r.Context(), req.Title, req.Description, req.questionTexts())
	if err != nil {
		writeError(w, "Error creating task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request body", err))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Missing required field", nil))
		return
	}

	err := h.tasks.Update(r.Context(), taskID, req.Title, req.Description, req.questionTexts())
	if err != nil {
		writeError(w, "Error updating task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleTaskAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignments.List(r.Context())
	if err != nil {
		writeError(w, "Error fetching task assignments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"taskAssignments": assignments})
}

func (h *Handler) handleAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.assignments.Status(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, "Error fetching assignment status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignmentStatus": status})
}

func (h *Handler) handleAssignToAll(w http.ResponseWriter, r *http.Request) {
	updated, err := h.assignments.AssignToAll(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, "Error assigning task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": updated})
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")
	taskID := chi.URLParam(r, "taskID")

	if err := h.assignments.Unassign(r.Context(), studentID, taskID); err != nil {
		writeError(w, "Error unassigning task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleStudentTasks returns the tasks assigned to one student, joined
// against the task sheet.
func (h *Handler) handleStudentTasks(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	assigned, err := h.assignments.ListForStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, "Error fetching student tasks", err)
		return
	}
	if len(assigned) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"tasks": []any{}})
		return
	}

	all, err := h.tasks.List(r.Context())
	if err != nil {
		writeError(w, "Error fetching student tasks", err)
		return
	}

	assignedSet := make(map[string]bool, len(assigned))
	for _, id := range assigned {
		assignedSet[id] = true
	}
	tasks := all[:0:0]
	for _, t := range all {
		if assignedSet[t.ID] {
			tasks = append(tasks, t)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
