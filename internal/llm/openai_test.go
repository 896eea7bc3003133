package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "test-key", "gpt-test")
	return c
}

func TestSend_ExtractsMessageSkipsReasoning(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp_1",
			"model": "gpt-test-echo",
			"output": [
				{"type": "reasoning", "content": [{"text": "internal thought"}]},
				{"type": "message", "content": [{"text": "42"}]}
			],
			"usage": {"input_tokens": 10, "output_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ans, err := c.Send(context.Background(), []Message{{Role: "user", Content: "2+2?"}}, "You are terse.")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if ans.Text != "42" {
		t.Fatalf("expected answer %q, got %q", "42", ans.Text)
	}
	if ans.Model != "gpt-test-echo" {
		t.Fatalf("unexpected model echo: %q", ans.Model)
	}
	if ans.PromptTokens != 10 || ans.CompletionTokens != 2 || ans.TotalTokens != 12 {
		t.Fatalf("unexpected usage: %+v", ans)
	}

	if gotBody["model"] != "gpt-test" {
		t.Fatalf("expected configured model in payload, got %v", gotBody["model"])
	}
	if gotBody["instructions"] != "You are terse." {
		t.Fatalf("expected instructions in payload, got %v", gotBody["instructions"])
	}
	input, ok := gotBody["input"].([]any)
	if !ok || len(input) != 1 {
		t.Fatalf("expected single input turn, got %v", gotBody["input"])
	}
}

func TestSend_OmitsEmptyInstructions(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"id":"r","model":"m","output":[],"usage":{}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.Send(context.Background(), []Message{{Role: "user", Content: "hi"}}, ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, present := gotBody["instructions"]; present {
		t.Fatalf("instructions must be omitted when empty, got %v", gotBody["instructions"])
	}
}

func TestSend_ReasoningOnlyYieldsEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "resp_2",
			"model": "m",
			"output": [{"type": "reasoning", "content": [{"text": "thinking..."}]}],
			"usage": {"input_tokens": 1, "output_tokens": 0, "total_tokens": 1}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ans, err := c.Send(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if ans.Text != "" {
		t.Fatalf("expected empty answer, got %q", ans.Text)
	}
}

func TestSend_NonSuccessStatusCapturesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Send(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", apiErr.Status)
	}
	if apiErr.Body != `{"error":{"message":"rate limited"}}` {
		t.Fatalf("body not captured verbatim: %q", apiErr.Body)
	}
}

func TestSend_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := newTestClient(srv.URL)
	_, err := c.Send(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

func TestSend_RejectsEmptyTurns(t *testing.T) {
	c := newTestClient("http://localhost:0")
	if _, err := c.Send(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for empty turns")
	}
	if _, err := c.Send(context.Background(), []Message{{Role: "assistant", Content: "x"}}, ""); err == nil {
		t.Fatal("expected error for turns without a user entry")
	}
}

func TestExtractAnswerText_FirstMessageItemWins(t *testing.T) {
	out := []outputItem{
		{Type: "reasoning", Content: []contentPart{{Text: "a"}}},
		{Type: "message", Content: []contentPart{{Text: ""}, {Text: "first"}}},
		{Type: "message", Content: []contentPart{{Text: "second"}}},
	}
	if got := extractAnswerText(out); got != "first" {
		t.Fatalf("expected %q, got %q", "first", got)
	}
	if got := extractAnswerText(nil); got != "" {
		t.Fatalf("expected empty answer for no output, got %q", got)
	}
}
