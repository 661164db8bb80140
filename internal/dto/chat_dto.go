package dto

import (
	"time"

	"neuro-chat-be/internal/constant"
)

// --- Message Submission ---

type SendMessageRequest struct {
	UserId  string `json:"user_id" validate:"required,uuid"`
	Message string `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	Status             string              `json:"status"`
	MessageId          string              `json:"message_id"`
	SystemResponse     string              `json:"system_response"`
	InternalStatusCode constant.StatusCode `json:"internal_status_code"`
}

// --- Chat History ---

type GetChatRequest struct {
	UserId     string `query:"user_id" validate:"required,uuid"`
	PageNumber int    `query:"page_number" validate:"required,min=1"`
}

type MessageList struct {
	Id                  string              `json:"id"`
	UserMessage         string              `json:"user_message"`
	SystemMessage       string              `json:"system_message"`
	SystemMessageStatus constant.StatusCode `json:"system_message_status"`
	Timestamp           time.Time           `json:"timestamp"`
}

type GetChatResponse struct {
	Status string        `json:"status"`
	Data   []MessageList `json:"data"`
}

// --- Status Lookup ---

type GetMessagesStatusRequest struct {
	UserId     string   `json:"user_id" validate:"required,uuid"`
	MessageIds []string `json:"message_ids" validate:"required,min=1"`
}

type MessageStatusItem struct {
	MessageId      string              `json:"message_id"`
	Status         constant.StatusCode `json:"status"`
	SystemResponse string              `json:"system_response"`
}

type GetMessagesStatusResponse struct {
	Status string              `json:"status"`
	Data   []MessageStatusItem `json:"data"`
}
