package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neuro-chat-be/internal/constant"
	"neuro-chat-be/internal/dto"
	"neuro-chat-be/internal/entity"
	"neuro-chat-be/internal/pkg/logger"
	"neuro-chat-be/internal/pkg/ratelimit"
	"neuro-chat-be/internal/repository/specification"
	"neuro-chat-be/internal/repository/unitofwork"
	"neuro-chat-be/pkg/pipeline"
	"neuro-chat-be/pkg/queue"

	"github.com/google/uuid"
)

// processingPlaceholder is returned from SendMessage while the reply is
// still being generated; callers poll GetMessagesStatus for the result.
const processingPlaceholder = "Your message is being processed. Please check back shortly."

// IChatService is the request-facing chat API.
type IChatService interface {
	SendMessage(ctx context.Context, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetChat(ctx context.Context, request *dto.GetChatRequest) (*dto.GetChatResponse, error)
	GetMessagesStatus(ctx context.Context, request *dto.GetMessagesStatusRequest) (*dto.GetMessagesStatusResponse, error)
}

type chatService struct {
	uowFactory      unitofwork.RepositoryFactory
	dispatcher      queue.Dispatcher
	limiter         *ratelimit.Limiter
	messagesPerPage int
	logger          logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	dispatcher queue.Dispatcher,
	limiter *ratelimit.Limiter,
	messagesPerPage int,
	log logger.ILogger,
) IChatService {
	if messagesPerPage < 1 {
		messagesPerPage = 10
	}
	return &chatService{
		uowFactory:      uowFactory,
		dispatcher:      dispatcher,
		limiter:         limiter,
		messagesPerPage: messagesPerPage,
		logger:          log,
	}
}

// SendMessage persists the inbound message and enqueues it for asynchronous
// enrichment, returning immediately with a placeholder reply.
func (s *chatService) SendMessage(ctx context.Context, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if err := s.limiter.Allow(request.UserId); err != nil {
		code := constant.StatusGlobalRateLimitExhausted
		if errors.Is(err, ratelimit.ErrUserExhausted) {
			code = constant.StatusUserRateLimitExhausted
		}
		s.logger.Warn("chat", "message rejected by rate limiter", map[string]interface{}{
			"user_id": request.UserId,
			"error":   err.Error(),
		})
		return errorResponse(code), nil
	}

	userId, err := uuid.Parse(request.UserId)
	if err != nil {
		return errorResponse(constant.StatusInvalidInput), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		s.logger.Info("chat", "message from unknown user rejected", map[string]interface{}{
			"user_id": request.UserId,
		})
		return errorResponse(constant.StatusInvalidInput), nil
	}

	now := time.Now()
	message := &entity.ChatMessage{
		Id:          uuid.New(),
		UserId:      userId,
		UserMessage: request.Message,
		Status:      entity.MessageStatusUnderProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to persist chat message: %w", err)
	}

	if err := s.dispatcher.Enqueue(ctx, message.Id); err != nil {
		s.logger.Error("chat", "failed to enqueue message for processing", map[string]interface{}{
			"message_id": message.Id.String(),
			"error":      err.Error(),
		})
		// The message is durable but will never be picked up; mark it
		// failed so the caller is not left polling forever.
		if markErr := uow.ChatMessageRepository().UpdateTerminal(
			ctx, message.Id, pipeline.ProcessingApology, entity.MessageStatusError, time.Now(),
		); markErr != nil {
			s.logger.Error("chat", "failed to mark undispatched message as failed", map[string]interface{}{
				"message_id": message.Id.String(),
				"error":      markErr.Error(),
			})
		}
		return nil, fmt.Errorf("failed to dispatch chat message: %w", err)
	}

	return &dto.SendMessageResponse{
		Status:             "success",
		MessageId:          message.Id.String(),
		SystemResponse:     processingPlaceholder,
		InternalStatusCode: constant.StatusSuccess,
	}, nil
}

// GetChat returns one page of the user's messages, oldest first. An unknown
// user yields an empty page rather than an error.
func (s *chatService) GetChat(ctx context.Context, request *dto.GetChatRequest) (*dto.GetChatResponse, error) {
	result := &dto.GetChatResponse{
		Status: "ok",
		Data:   []dto.MessageList{},
	}

	userId, err := uuid.Parse(request.UserId)
	if err != nil {
		return result, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return result, nil
	}

	offset := (request.PageNumber - 1) * s.messagesPerPage
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: s.messagesPerPage, Offset: offset},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat page: %w", err)
	}

	for _, message := range messages {
		result.Data = append(result.Data, dto.MessageList{
			Id:                  message.Id.String(),
			UserMessage:         message.UserMessage,
			SystemMessage:       message.SystemMessage,
			SystemMessageStatus: statusToCode(message.Status),
			Timestamp:           message.CreatedAt,
		})
	}
	return result, nil
}

// GetMessagesStatus resolves the processing status of the given message ids.
// Ids not owned by the requesting user are silently excluded.
func (s *chatService) GetMessagesStatus(ctx context.Context, request *dto.GetMessagesStatusRequest) (*dto.GetMessagesStatusResponse, error) {
	userId, err := uuid.Parse(request.UserId)
	if err != nil {
		return &dto.GetMessagesStatusResponse{Status: "error", Data: []dto.MessageStatusItem{}}, nil
	}

	ids := make([]uuid.UUID, 0, len(request.MessageIds))
	for _, raw := range request.MessageIds {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.logger.Warn("chat", "skipping malformed message id in status lookup", map[string]interface{}{
				"message_id": raw,
			})
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return &dto.GetMessagesStatusResponse{Status: "error", Data: []dto.MessageStatusItem{}}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message statuses: %w", err)
	}

	result := &dto.GetMessagesStatusResponse{
		Status: "ok",
		Data:   make([]dto.MessageStatusItem, 0, len(messages)),
	}
	for _, message := range messages {
		result.Data = append(result.Data, dto.MessageStatusItem{
			MessageId:      message.Id.String(),
			Status:         statusToCode(message.Status),
			SystemResponse: message.SystemMessage,
		})
	}
	return result, nil
}

func errorResponse(code constant.StatusCode) *dto.SendMessageResponse {
	return &dto.SendMessageResponse{
		Status:             "error",
		MessageId:          "",
		SystemResponse:     "",
		InternalStatusCode: code,
	}
}

func statusToCode(status entity.MessageStatus) constant.StatusCode {
	switch status {
	case entity.MessageStatusSuccess:
		return constant.StatusMessageProcessingSuccess
	case entity.MessageStatusError:
		return constant.StatusProcessingError
	default:
		return constant.StatusMessageUnderProcessing
	}
}
