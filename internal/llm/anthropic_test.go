package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-sonnet-4-20250514",
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Question: Which is bigger?\nAns: [A]"},
			},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  50,
				"output_tokens": 30,
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		Messages:    userText("Generate a question."),
		MaxTokens:   256,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "Question: Which is bigger?\nAns: [A]" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Usage.InputTokens != 50 {
		t.Fatalf("expected 50 input tokens, got %d", resp.Usage.InputTokens)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "rate_limit_error",
				"message": "Rate limit exceeded",
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  userText("test"),
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Fatalf("expected 7s retry hint, got %s", rl.RetryAfter)
	}
}

func TestAnthropicProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "api_error",
				"message": "Internal server error",
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  userText("test"),
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_ModelID(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Fatalf("expected 'claude-sonnet-4-20250514', got %q", p.ModelID())
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func anthropicMessageHandler(content []map[string]any, captured *[]byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured, _ = io.ReadAll(r.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     content,
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	}
}

func TestAnthropicProvider_SendsBase64Images(t *testing.T) {
	var body []byte
	p := newTestAnthropicProvider(t, anthropicMessageHandler(
		[]map[string]any{{"type": "text", "text": "ok"}}, &body))

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{UserMessage(TextPart("prompt"), ImagePart("image/png", []byte("hi")))},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`"base64"`, `"image/png"`, `"aGk="`, `"prompt"`} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("request missing %s: %s", want, body)
		}
	}
	if !strings.Contains(string(body), `"max_tokens":1024`) {
		t.Fatalf("expected default max_tokens: %s", body)
	}
}

func TestAnthropicProvider_EmptyContent(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicMessageHandler([]map[string]any{}, nil))

	_, err := p.Generate(context.Background(), Request{Messages: userText("test")})
	var empty *ErrEmptyResponse
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyResponse, got: %T (%v)", err, err)
	}
	if !strings.Contains(string(empty.Raw), "msg_test") {
		t.Fatalf("raw payload missing message id: %s", empty.Raw)
	}
}
