package llm

import "context"

// Message is one conversation turn. Role is a free-form tag ("user",
// "assistant", ...) passed through to the provider verbatim.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Answer is the result of one provider call.
type Answer struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Provider issues one chat call per invocation. Implemented by *Client;
// tests substitute stubs.
type Provider interface {
	Send(ctx context.Context, turns []Message, instructions string) (*Answer, error)
}
