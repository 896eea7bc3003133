package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/yusuke-arai/chat-sessions/internal/apperr"
	"github.com/yusuke-arai/chat-sessions/internal/llm"
	"gorm.io/gorm"
)

// Service is the orchestration layer: it sequences store reads, the single
// provider call and the two appends. It is stateless beyond the database,
// so concurrent requests need no in-process locking.
type Service struct {
	repo     *Repo
	provider llm.Provider
}

func NewService(repo *Repo, provider llm.Provider) *Service {
	return &Service{repo: repo, provider: provider}
}

type ChatResult struct {
	Response         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type SessionChatResult struct {
	Response     string
	Model        string
	SessionID    string
	MessageCount int64
}

// Chat is the history-less one-shot variant. Nothing is persisted.
func (s *Service) Chat(ctx context.Context, message, systemPrompt string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Validation("message must not be empty")
	}

	turns := []llm.Message{{Role: "user", Content: message}}
	ans, err := s.provider.Send(ctx, turns, systemPrompt)
	if err != nil {
		return nil, apperr.Provider(err)
	}

	return &ChatResult{
		Response:         ans.Text,
		Model:            ans.Model,
		PromptTokens:     ans.PromptTokens,
		CompletionTokens: ans.CompletionTokens,
		TotalTokens:      ans.TotalTokens,
	}, nil
}

// SessionChat loads the session's history, calls the provider with the
// history plus the new user turn, then persists the user turn followed by
// the assistant turn. A provider failure persists nothing, so a failed
// exchange never leaves an unanswered user turn in history. The returned
// message count is re-read from the store after both appends.
func (s *Service) SessionChat(ctx context.Context, sessionID, message string) (*SessionChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Validation("message must not be empty")
	}

	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if sess == nil {
		return nil, apperr.NotFound("Session")
	}

	history, err := s.repo.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, apperr.Store(err)
	}

	turns := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, llm.Message{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, llm.Message{Role: "user", Content: message})

	instructions := ""
	if sess.SystemPrompt != nil {
		instructions = *sess.SystemPrompt
	}

	ans, err := s.provider.Send(ctx, turns, instructions)
	if err != nil {
		return nil, apperr.Provider(err)
	}

	// user turn first, assistant second; a concurrent reader may observe
	// the user turn alone but never the reverse
	if _, err := s.repo.AppendMessage(ctx, sessionID, "user", message); err != nil {
		return nil, storeOrNotFound(err)
	}
	if _, err := s.repo.AppendMessage(ctx, sessionID, "assistant", ans.Text); err != nil {
		return nil, storeOrNotFound(err)
	}

	count, err := s.repo.CountMessages(ctx, sessionID)
	if err != nil {
		return nil, apperr.Store(err)
	}

	return &SessionChatResult{
		Response:     ans.Text,
		Model:        ans.Model,
		SessionID:    sessionID,
		MessageCount: count,
	}, nil
}

func (s *Service) CreateSession(ctx context.Context, systemPrompt *string) (*Session, error) {
	sess, err := s.repo.CreateSession(ctx, systemPrompt)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return sess, nil
}

func (s *Service) GetSessionWithMessages(ctx context.Context, id string) (*Session, []Message, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, nil, apperr.Store(err)
	}
	if sess == nil {
		return nil, nil, apperr.NotFound("Session")
	}
	msgs, err := s.repo.GetMessages(ctx, id)
	if err != nil {
		return nil, nil, apperr.Store(err)
	}
	return sess, msgs, nil
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteSession(ctx, id)
	if err != nil {
		return apperr.Store(err)
	}
	if !deleted {
		return apperr.NotFound("Session")
	}
	return nil
}

// CreateJob records a queued session-chat exchange. The session must exist;
// the prompt is persisted on the job row only until the worker runs it.
func (s *Service) CreateJob(ctx context.Context, sessionID, message string) (*Job, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Validation("message must not be empty")
	}
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if sess == nil {
		return nil, apperr.NotFound("Session")
	}

	job := &Job{
		ID:        NewJobID(),
		SessionID: sessionID,
		Prompt:    message,
		Status:    JobQueued,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, apperr.Store(err)
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if job == nil {
		return nil, apperr.NotFound("Job")
	}
	return job, nil
}

// RunJob executes one queued job: the same SessionChat sequence, with the
// outcome recorded on the job row. Only the user-safe message is stored on
// failure; internals stay in the worker log. A job that already left the
// queued state is skipped, so a redelivered queue message cannot append a
// duplicate turn pair.
func (s *Service) RunJob(ctx context.Context, jobID string) error {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return apperr.Store(err)
	}
	if job == nil {
		return apperr.NotFound("Job")
	}
	if job.Status != JobQueued {
		return nil
	}
	if err := s.repo.MarkJobRunning(ctx, jobID); err != nil {
		return apperr.Store(err)
	}

	res, err := s.SessionChat(ctx, job.SessionID, job.Prompt)
	if err != nil {
		if merr := s.repo.MarkJobFailed(ctx, jobID, userSafeMessage(err)); merr != nil {
			return apperr.Store(merr)
		}
		return err
	}

	if err := s.repo.MarkJobSucceeded(ctx, jobID, res.Response); err != nil {
		return apperr.Store(err)
	}
	return nil
}

func userSafeMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return "internal error"
}

func storeOrNotFound(err error) *apperr.Error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Session")
	}
	return apperr.Store(err)
}
