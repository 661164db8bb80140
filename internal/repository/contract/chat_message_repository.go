package contract

import (
	"context"
	"time"

	"neuro-chat-be/internal/entity"
	"neuro-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateTerminal sets system_message, status and updated_at in one UPDATE
	// so no reader ever observes a terminal status with an empty reply.
	UpdateTerminal(ctx context.Context, id uuid.UUID, systemMessage string, status entity.MessageStatus, updatedAt time.Time) error
}
