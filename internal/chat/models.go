package chat

import "time"

// Session is a persistent conversation container. The system prompt is set
// once at creation and carried to the provider out-of-band; it is never
// stored as a message row.
type Session struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SystemPrompt *string   `gorm:"type:text" json:"system_prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Session) TableName() string { return "sessions" }

// Message is one stored turn. Rows are append-only; history order is
// created_at ascending with the auto-increment id breaking clock ties.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(36);index;not null" json:"session_id"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Session *Session `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Message) TableName() string { return "messages" }
