package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pavelanni/gradesheet/internal/model"
)

func TestBuildSuggestSystemPrompt(t *testing.T) {
	q := model.Question{ID: "3-1", Text: "Explain photosynthesis."}
	prompt := buildSuggestSystemPrompt(q)

	for _, want := range []string{
		"Explain photosynthesis.",
		"scale of 0 to 2",
		`"grade"`,
		`"rationale"`,
		"JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestChatRole(t *testing.T) {
	tests := []struct {
		in   model.Role
		want string
	}{
		{model.RoleUser, "user"},
		{model.RoleAssistant, "assistant"},
		{model.RoleSystem, "system"},
		{model.Role("something-else"), "user"},
	}
	for _, tt := range tests {
		if got := chatRole(tt.in); got != tt.want {
			t.Errorf("chatRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// fakeCompletionServer answers /chat/completions with a fixed message content.
func fakeCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "test",
			"object": "chat.completion",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode fake response: %v", err)
		}
	}))
}

func TestSuggestGrade(t *testing.T) {
	srv := fakeCompletionServer(t, `{"grade": 2, "rationale": "Correct and complete."}`)
	defer srv.Close()

	c := New(srv.URL, "test-key", "test-model")
	s, err := c.SuggestGrade(context.Background(), model.Question{Text: "2+2?"}, "4")
	if err != nil {
		t.Fatalf("SuggestGrade: %v", err)
	}
	if s.Grade != 2 {
		t.Errorf("Grade = %d, want 2", s.Grade)
	}
	if s.Rationale == "" {
		t.Error("Rationale is empty")
	}
}

func TestSuggestGradeOutOfRange(t *testing.T) {
	srv := fakeCompletionServer(t, `{"grade": 5, "rationale": "excellent"}`)
	defer srv.Close()

	c := New(srv.URL, "test-key", "test-model")
	if _, err := c.SuggestGrade(context.Background(), model.Question{Text: "q"}, "a"); err == nil {
		t.Fatal("expected an error for a grade outside the permitted set")
	}
}

func TestSuggestGradeMalformedJSON(t *testing.T) {
	srv := fakeCompletionServer(t, "The grade is two.")
	defer srv.Close()

	c := New(srv.URL, "test-key", "test-model")
	if _, err := c.SuggestGrade(context.Background(), model.Question{Text: "q"}, "a"); err == nil {
		t.Fatal("expected a parse error for non-JSON content")
	}
}

func TestStreamChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, delta := range []string{"Hel", "lo ", "there"} {
			chunk := map[string]any{
				"id":     "test",
				"object": "chat.completion.chunk",
				"choices": []map[string]any{
					{"delta": map[string]any{"content": delta}},
				},
			}
			raw, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", raw)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", "test-model")
	var got strings.Builder
	err := c.StreamChat(context.Background(),
		[]model.ChatMessage{{Role: model.RoleUser, Content: "hi"}},
		func(delta string) error {
			got.WriteString(delta)
			return nil
		})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	if got.String() != "Hello there" {
		t.Errorf("streamed %q, want %q", got.String(), "Hello there")
	}
}

func TestStreamChatEmitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunk := `{"id":"t","object":"chat.completion.chunk","choices":[{"delta":{"content":"x"}}]}`
		fmt.Fprintf(w, "data: %s\n\ndata: [DONE]\n\n", chunk)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", "test-model")
	wantErr := fmt.Errorf("client went away")
	err := c.StreamChat(context.Background(),
		[]model.ChatMessage{{Role: model.RoleUser, Content: "hi"}},
		func(string) error { return wantErr })
	if err != wantErr {
		t.Errorf("got %v, want the emit error unwrapped", err)
	}
}
