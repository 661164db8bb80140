package entity

import (
	"time"

	"github.com/google/uuid"
)

// MessageStatus is the persisted processing status of a chat message.
type MessageStatus string

const (
	MessageStatusUnderProcessing MessageStatus = "UNDER_PROCESSING"
	MessageStatusSuccess         MessageStatus = "SUCCESS"
	MessageStatusError           MessageStatus = "ERROR"
)

// IsTerminal reports whether the status is final.
func (s MessageStatus) IsTerminal() bool {
	return s == MessageStatusSuccess || s == MessageStatusError
}

// ChatMessage is one user message and its eventual system-generated reply.
//
// SystemMessage and Status are written together by a single terminal update:
// SystemMessage is non-empty exactly when Status is not UNDER_PROCESSING.
type ChatMessage struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	UserMessage   string
	SystemMessage string
	Status        MessageStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
