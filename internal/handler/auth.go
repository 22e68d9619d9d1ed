package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/repo"
)

const (
	sessionCookieName = "session"
	sessionTTL        = 24 * time.Hour
)

// session is a resolved login held in memory for the cookie's lifetime.
// Sessions identify, they do not authorize: the spreadsheet roster is the
// source of truth and every grading action names its grader explicitly.
type session struct {
	Role      string
	Name      string
	Group     string
	Slot      model.GraderSlot
	ExpiresAt time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]session)}
}

// create stores a session and returns its token. Expired entries are pruned
// here so the map stays bounded by the number of live sessions.
func (s *sessionStore) create(sess session) string {
	token := uuid.NewString()
	now := time.Now()
	sess.ExpiresAt = now.Add(sessionTTL)
	s.mu.Lock()
	for t, old := range s.sessions {
		if now.After(old.ExpiresAt) {
			delete(s.sessions, t)
		}
	}
	s.sessions[token] = sess
	s.mu.Unlock()
	return token
}

// get returns the session for a token, dropping it if expired.
func (s *sessionStore) get(token string) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return session{}, false
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return session{}, false
	}
	return sess, true
}

type authRequest struct {
	ID string `json:"id"`
}

// handleAuth resolves a login ID to a role tag: grader logins come from the
// GraderLogin sheet, student logins from the Data roster, and the literal
// "grading" ID opens the consolidated grading overview.
func (h *Handler) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("No ID provided", nil))
		return
	}

	grader, err := h.roster.LookupGrader(r.Context(), req.ID)
	if err == nil {
		h.setSessionCookie(w, session{Role: "grader", Slot: grader.Slot})
		writeJSON(w, http.StatusOK, map[string]any{"role": "grader", "gradingId": grader.Slot})
		return
	}
	if !errors.Is(err, repo.ErrLoginNotFound) {
		writeError(w, "Internal server error", err)
		return
	}

	if req.ID == "grading" {
		h.setSessionCookie(w, session{Role: "grading"})
		writeJSON(w, http.StatusOK, map[string]any{"role": "grading", "user": ""})
		return
	}

	student, err := h.roster.LookupStudent(r.Context(), req.ID)
	if errors.Is(err, repo.ErrLoginNotFound) {
		writeJSON(w, http.StatusUnauthorized, errorBody("Invalid ID", nil))
		return
	}
	if err != nil {
		writeError(w, "Internal server error", err)
		return
	}

	h.setSessionCookie(w, session{Role: "student", Name: student.Name, Group: student.Group})
	writeJSON(w, http.StatusOK, map[string]any{
		"role":  "student",
		"name":  student.Name,
		"group": student.Group,
	})
}

// handleSession resolves the session cookie back to the login's role payload,
// so the frontend can restore its view after a reload without re-entering the
// login ID.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody("No session", nil))
		return
	}
	sess, ok := h.sessions.get(cookie.Value)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("Session expired", nil))
		return
	}

	body := map[string]any{"role": sess.Role}
	switch sess.Role {
	case "grader":
		body["gradingId"] = sess.Slot
	case "student":
		body["name"] = sess.Name
		body["group"] = sess.Group
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sess session) {
	token := h.sessions.create(sess)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}
