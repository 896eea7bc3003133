package chat

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is one queued session-chat exchange, processed by cmd/worker. The
// user turn is not persisted at enqueue time; the worker writes both turns
// only after the provider call succeeds, same as the synchronous path.
type Job struct {
	ID        string `gorm:"primaryKey;size:26" json:"id"` // ULID length
	SessionID string `gorm:"type:varchar(36);index;not null" json:"session_id"`

	Prompt string    `gorm:"type:text;not null" json:"-"`
	Status JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled when succeeded
	Response *string `gorm:"type:text" json:"response,omitempty"`

	// Filled when failed; holds the user-safe message only
	Error *string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Job) TableName() string { return "chat_jobs" }

func NewJobID() string { return ulid.Make().String() }
