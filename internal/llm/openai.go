package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the OpenAI Responses API. It is stateless across calls
// and safe for concurrent use.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-5.2-chat-latest"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: 90 * time.Second},
	}
}

type responsesReq struct {
	Model        string    `json:"model"`
	Input        []Message `json:"input"`
	Instructions string    `json:"instructions,omitempty"`
}

type responsesResp struct {
	ID     string       `json:"id"`
	Model  string       `json:"model"`
	Output []outputItem `json:"output"`
	Usage  usage        `json:"usage"`
}

type outputItem struct {
	Type    string        `json:"type"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Send issues exactly one call to the Responses API. turns must contain at
// least one user entry; instructions carries the system prompt out-of-band
// and is omitted from the payload when empty. There is no retry: transport
// failures surface as *TransportError, non-2xx statuses as *APIError with
// the body captured verbatim.
func (c *Client) Send(ctx context.Context, turns []Message, instructions string) (*Answer, error) {
	if c.HTTP == nil {
		return nil, errors.New("openai: http client is nil")
	}
	if len(turns) == 0 {
		return nil, errors.New("openai: turns must not be empty")
	}
	hasUser := false
	for _, t := range turns {
		if t.Role == "user" {
			hasUser = true
			break
		}
	}
	if !hasUser {
		return nil, errors.New("openai: turns must contain a user entry")
	}

	b, err := json.Marshal(responsesReq{
		Model:        c.Model,
		Input:        turns,
		Instructions: instructions,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/responses", strings.TrimRight(c.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var decoded responsesResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &TransportError{Err: err}
	}

	return &Answer{
		Text:             extractAnswerText(decoded.Output),
		Model:            decoded.Model,
		PromptTokens:     decoded.Usage.InputTokens,
		CompletionTokens: decoded.Usage.OutputTokens,
		TotalTokens:      decoded.Usage.TotalTokens,
	}, nil
}

// extractAnswerText returns the first non-empty text fragment found inside a
// "message" output item. Items with any other type tag ("reasoning" in
// particular) carry provider-internal content and are skipped. An empty
// string is a valid answer, not an error.
func extractAnswerText(output []outputItem) string {
	for _, item := range output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}
