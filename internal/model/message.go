package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NameMaxLength is the width of the name column
const NameMaxLength = 100

// Message represents a chat message
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index"`
}

// TableName pins the table name
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate assigns a fresh id; callers never choose it.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	m.ID = uuid.NewString()
	return nil
}

// Event types pushed over the change feed
const (
	EventMessageCreated = "message_created"
	EventMessageDeleted = "message_deleted"
)

// ChangeEvent is used for WebSocket create/delete notifications
type ChangeEvent struct {
	Type      string     `json:"type"`
	ID        string     `json:"id"`
	Message   *Message   `json:"message,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
