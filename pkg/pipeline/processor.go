package pipeline

import (
	"context"
	"fmt"
	"time"

	"neuro-chat-be/internal/entity"
	"neuro-chat-be/internal/pkg/logger"
	"neuro-chat-be/internal/repository/contract"
	"neuro-chat-be/internal/repository/specification"
	"neuro-chat-be/internal/repository/unitofwork"
	"neuro-chat-be/pkg/embedding"
	"neuro-chat-be/pkg/response"
	"neuro-chat-be/pkg/vectorindex"

	"github.com/google/uuid"
)

// ProcessingApology is persisted as the reply when an enrichment step fails
// and the message ends in the ERROR status.
const ProcessingApology = "Sorry, I encountered an error processing your message. Please try again."

const embeddingTaskType = "RETRIEVAL_QUERY"

// Outcome describes where a pipeline run ended up. Degraded lists best-effort
// steps that failed without changing the persisted result.
type Outcome struct {
	State    State
	Response string
	Degraded []string
}

// Processor runs the enrichment pipeline for one chat message: embed the
// user message, retrieve similar prior exchanges, generate a grounded reply
// and durably record the result.
type Processor struct {
	repositoryFactory unitofwork.RepositoryFactory
	embedder          embedding.EmbeddingProvider
	index             vectorindex.Index
	generator         *response.Generator
	retrievalTopK     int
	logger            logger.ILogger
}

func NewProcessor(
	repositoryFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	index vectorindex.Index,
	generator *response.Generator,
	retrievalTopK int,
	log logger.ILogger,
) *Processor {
	if retrievalTopK <= 0 {
		retrievalTopK = 5
	}
	return &Processor{
		repositoryFactory: repositoryFactory,
		embedder:          embedder,
		index:             index,
		generator:         generator,
		retrievalTopK:     retrievalTopK,
		logger:            log,
	}
}

// Process runs the pipeline to a terminal state for messageId.
//
// It returns an error only when the message could not be left in a
// consistent state (the recovery write itself failed); the caller should
// then request redelivery. Every other failure is absorbed into the ERROR
// terminal state. Reprocessing an already-terminal message simply overwrites
// the terminal fields, so duplicate deliveries are safe.
func (p *Processor) Process(ctx context.Context, messageId uuid.UUID) (Outcome, error) {
	state := StateEnqueued
	uow := p.repositoryFactory.NewUnitOfWork(ctx)
	chatRepo := uow.ChatMessageRepository()

	state, _ = Transition(state, StateValidating)
	message, err := chatRepo.FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		// Store unreachable: nothing durable can be written either, so hand
		// the task back for redelivery.
		return Outcome{State: StateError}, fmt.Errorf("fetch chat message %s: %w", messageId, err)
	}
	if message == nil {
		p.logger.Warn("pipeline", "chat message not found, dropping task", map[string]interface{}{
			"message_id": messageId.String(),
		})
		return Outcome{State: StateError}, nil
	}
	if message.UserMessage == "" {
		p.logger.Warn("pipeline", "chat message has empty user message, nothing to process", map[string]interface{}{
			"message_id": messageId.String(),
		})
		return Outcome{State: StateError}, nil
	}

	state, _ = Transition(state, StateEmbedding)
	embeddingResult, err := p.embedder.Generate(message.UserMessage, embeddingTaskType)
	if err != nil {
		return p.failTerminal(ctx, chatRepo, messageId, state, "embedding failed", err)
	}
	vector := embeddingResult.Embedding.Values

	state, _ = Transition(state, StateRetrieving)
	matches, err := p.index.Query(ctx, vector, p.retrievalTopK)
	if err != nil {
		return p.failTerminal(ctx, chatRepo, messageId, state, "vector query failed", err)
	}

	contextPairs, err := p.fetchContextPairs(ctx, chatRepo, messageId, matches)
	if err != nil {
		return p.failTerminal(ctx, chatRepo, messageId, state, "fetching related messages failed", err)
	}

	state, _ = Transition(state, StateGenerating)
	reply := p.generator.Generate(ctx, message.UserMessage, contextPairs)

	state, _ = Transition(state, StatePersisting)
	if err := chatRepo.UpdateTerminal(ctx, messageId, reply, entity.MessageStatusSuccess, time.Now()); err != nil {
		return p.failTerminal(ctx, chatRepo, messageId, state, "persisting reply failed", err)
	}
	state, _ = Transition(state, StateSuccess)

	outcome := Outcome{State: state, Response: reply}

	// Enrichment is best-effort: the reply is already durable, a missing
	// embedding only weakens future retrieval.
	if err := p.index.Upsert(ctx, messageId.String(), vector); err != nil {
		p.logger.Warn("pipeline", "embedding upsert failed after successful reply", map[string]interface{}{
			"message_id": messageId.String(),
			"error":      err.Error(),
		})
		outcome.Degraded = append(outcome.Degraded, "embedding_upsert")
	}

	return outcome, nil
}

// fetchContextPairs loads the retrieved candidate messages and keeps the ones
// that already carry a reply, preserving retrieval order. Malformed candidate
// ids are skipped with a warning.
func (p *Processor) fetchContextPairs(
	ctx context.Context,
	chatRepo contract.ChatMessageRepository,
	messageId uuid.UUID,
	matches []vectorindex.Match,
) ([]response.ContextPair, error) {
	ids := make([]uuid.UUID, 0, len(matches))
	for _, match := range matches {
		id, err := uuid.Parse(match.Id)
		if err != nil {
			p.logger.Warn("pipeline", "skipping malformed candidate id", map[string]interface{}{
				"candidate_id": match.Id,
				"error":        err.Error(),
			})
			continue
		}
		if id == messageId {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	related, err := chatRepo.FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.Pagination{Limit: p.retrievalTopK},
	)
	if err != nil {
		return nil, err
	}

	byId := make(map[uuid.UUID]*entity.ChatMessage, len(related))
	for _, msg := range related {
		byId[msg.Id] = msg
	}

	pairs := make([]response.ContextPair, 0, len(ids))
	for _, id := range ids {
		msg, ok := byId[id]
		if !ok || msg.SystemMessage == "" {
			continue
		}
		pairs = append(pairs, response.ContextPair{
			UserMessage:   msg.UserMessage,
			SystemMessage: msg.SystemMessage,
		})
	}
	return pairs, nil
}

// failTerminal records the ERROR terminal state with the apology reply. If
// that recovery write fails too, the message stays UNDER_PROCESSING and the
// error is returned so the task is redelivered.
func (p *Processor) failTerminal(
	ctx context.Context,
	chatRepo contract.ChatMessageRepository,
	messageId uuid.UUID,
	from State,
	reason string,
	cause error,
) (Outcome, error) {
	p.logger.Error("pipeline", reason, map[string]interface{}{
		"message_id": messageId.String(),
		"state":      string(from),
		"error":      cause.Error(),
	})

	state, _ := Transition(from, StateError)
	if err := chatRepo.UpdateTerminal(ctx, messageId, ProcessingApology, entity.MessageStatusError, time.Now()); err != nil {
		p.logger.Error("pipeline", "recovery write failed, message left under processing", map[string]interface{}{
			"message_id": messageId.String(),
			"error":      err.Error(),
		})
		return Outcome{State: state}, fmt.Errorf("recovery write for %s: %w", messageId, err)
	}
	return Outcome{State: state, Response: ProcessingApology}, nil
}
