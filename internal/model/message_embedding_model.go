package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// MessageEmbedding shares its primary key with the chat message it was built
// from. It is written only after the message reaches SUCCESS and may be
// permanently missing for a given message.
type MessageEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (MessageEmbedding) TableName() string {
	return "message_embeddings"
}
