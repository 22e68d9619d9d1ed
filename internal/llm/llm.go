package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pavelanni/gradesheet/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Suggestion holds the LLM's proposed grade for a single answer.
type Suggestion struct {
	Grade     int    `json:"grade"`
	Rationale string `json:"rationale"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// StreamChat relays a student's assistant conversation, invoking emit for
// each content delta as it arrives. Cancelling ctx aborts the upstream
// request; an emit error stops the stream and is returned unwrapped so the
// caller can tell a closed client apart from an API failure.
func (c *Client) StreamChat(ctx context.Context, messages []model.ChatMessage, emit func(delta string) error) error {
	chatMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMsgs = append(chatMsgs, openai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Content,
		})
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: chatMsgs,
		Stream:   true,
	})
	if err != nil {
		return fmt.Errorf("LLM stream: %w", err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("LLM stream recv: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if err := emit(delta); err != nil {
				return err
			}
		}
	}
}

// SuggestGrade asks the LLM for a grade in the permitted score set for one
// student answer. The result is advisory: it is written into the GradeAI
// column and never becomes authoritative without a human action.
func (c *Client) SuggestGrade(ctx context.Context, question model.Question, answer string) (*Suggestion, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSuggestSystemPrompt(question)},
			{Role: openai.ChatMessageRoleUser, Content: answer},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM suggestion", "raw", raw)

	var s Suggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	if !model.ValidGrade(s.Grade) {
		return nil, fmt.Errorf("LLM suggested grade %d outside permitted set", s.Grade)
	}
	return &s, nil
}

func buildSuggestSystemPrompt(q model.Question) string {
	var sb strings.Builder
	sb.WriteString("You are grading a student's free-text answer to the following question:\n\n")
	sb.WriteString("QUESTION: " + q.Text + "\n\n")
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString(fmt.Sprintf("- Grade the answer on a scale of %d to %d.\n", model.MinGrade, model.MaxGrade))
	sb.WriteString("- 0 means wrong or no meaningful attempt, 1 means partially correct, 2 means correct and complete.\n")
	sb.WriteString("- Judge only what the student wrote; do not reward length.\n")
	sb.WriteString("\nRespond ONLY with a JSON object with these fields:\n")
	sb.WriteString(fmt.Sprintf(`{"grade": <%d, %d, or %d>, "rationale": "<one sentence>"}`,
		model.MinGrade, model.MinGrade+1, model.MaxGrade))
	sb.WriteString("\n")
	return sb.String()
}

func chatRole(r model.Role) string {
	switch r {
	case model.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case model.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
