package vectorindex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"neuro-chat-be/internal/model"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PgVectorIndex stores message embeddings in a pgvector table and answers
// cosine nearest-neighbor queries with the <=> operator.
//
// Initialization is deferred to first use and guarded by sync.Once, so
// double initialization is a no-op.
type PgVectorIndex struct {
	db       *gorm.DB
	initOnce sync.Once
	initErr  error
}

var _ Index = &PgVectorIndex{}

func NewPgVectorIndex(db *gorm.DB) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

func (idx *PgVectorIndex) ensureReady(ctx context.Context) error {
	idx.initOnce.Do(func() {
		if err := idx.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			idx.initErr = fmt.Errorf("enable pgvector extension: %w", err)
			return
		}
		if err := idx.db.WithContext(ctx).AutoMigrate(&model.MessageEmbedding{}); err != nil {
			idx.initErr = fmt.Errorf("migrate message_embeddings: %w", err)
		}
	})
	return idx.initErr
}

func (idx *PgVectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if err := idx.ensureReady(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so the score
	// reported back is 1 - (embedding_value <=> query).
	type row struct {
		Id         uuid.UUID
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)
	err := idx.db.WithContext(ctx).
		Table("message_embeddings").
		Select("id, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(rows))
	for i, r := range rows {
		matches[i] = Match{Id: r.Id.String(), Score: r.Similarity}
	}
	return matches, nil
}

func (idx *PgVectorIndex) Upsert(ctx context.Context, id string, vector []float32) error {
	if err := idx.ensureReady(ctx); err != nil {
		return err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid embedding id %q: %w", id, err)
	}

	m := &model.MessageEmbedding{
		Id:             parsed,
		EmbeddingValue: pgvector.NewVector(vector),
		UpdatedAt:      time.Now(),
	}
	return idx.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding_value", "updated_at"}),
		}).
		Create(m).Error
}
