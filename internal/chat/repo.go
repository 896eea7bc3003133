package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repo is the durable session store. It never calls the network-facing
// provider; ordering and referential integrity are enforced here.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CreateSession assigns the id and both timestamps server-side; a new
// session starts with created_at == updated_at and zero messages.
func (r *Repo) CreateSession(ctx context.Context, systemPrompt *string) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:           uuid.NewString(),
		SystemPrompt: systemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession returns (nil, nil) when the id does not exist.
func (r *Repo) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetMessages returns the session's turns oldest first. An unknown or
// deleted session id yields an empty slice, not an error; session existence
// is the caller's concern.
func (r *Repo) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) CountMessages(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error
	return n, err
}

// AppendMessage inserts one row and bumps the parent session's updated_at
// in the same transaction. A missing session surfaces gorm.ErrRecordNotFound
// instead of creating an orphan row.
func (r *Repo) AppendMessage(ctx context.Context, sessionID, role, content string) (*Message, error) {
	now := time.Now().UTC()
	m := &Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Session{}).Where("id = ?", sessionID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&Session{}).
			Where("id = ?", sessionID).
			Update("updated_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteSession removes the session and all its messages atomically.
// Returns false when no session row was removed.
func (r *Repo) DeleteSession(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&Message{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Session{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// Job CRUD

func (r *Repo) CreateJob(ctx context.Context, job *Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJob(ctx context.Context, id string) (*Job, error) {
	var j Job
	err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) MarkJobRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, response string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   JobSucceeded,
			"response": response,
			"error":    nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, userMsg string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   JobFailed,
			"error":    userMsg,
			"response": nil,
		}).Error
}
