package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"neuro-chat-be/internal/constant"
	"neuro-chat-be/internal/dto"
	"neuro-chat-be/internal/entity"
	"neuro-chat-be/internal/pkg/ratelimit"
	"neuro-chat-be/internal/repository/contract"
	"neuro-chat-be/internal/repository/specification"
	"neuro-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type memoryStore struct {
	users    map[uuid.UUID]*entity.User
	messages []*entity.ChatMessage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[uuid.UUID]*entity.User{}}
}

func (s *memoryStore) addUser() uuid.UUID {
	id := uuid.New()
	s.users[id] = &entity.User{Id: id, Email: "user@example.com", FullName: "Test User"}
	return id
}

type memoryUserRepo struct{ store *memoryStore }

func (r *memoryUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.users[user.Id] = user
	return nil
}

func (r *memoryUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			if u, found := r.store.users[byId.ID]; found {
				return u, nil
			}
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.users)), nil
}

type memoryChatRepo struct {
	store     *memoryStore
	updateErr error
}

func (r *memoryChatRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	copied := *message
	r.store.messages = append(r.store.messages, &copied)
	return nil
}

func (r *memoryChatRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memoryChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var byIds []uuid.UUID
	var byUser *uuid.UUID
	limit := -1
	offset := 0
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByIDs:
			byIds = s.IDs
		case specification.ByUserID:
			userId := s.UserID
			byUser = &userId
		case specification.Pagination:
			limit = s.Limit
			offset = s.Offset
		}
	}

	var result []*entity.ChatMessage
	for _, m := range r.store.messages {
		if byUser != nil && m.UserId != *byUser {
			continue
		}
		if byIds != nil && !containsId(byIds, m.Id) {
			continue
		}
		copied := *m
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *memoryChatRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.messages)), nil
}

func (r *memoryChatRepo) UpdateTerminal(ctx context.Context, id uuid.UUID, systemMessage string, status entity.MessageStatus, updatedAt time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for _, m := range r.store.messages {
		if m.Id == id {
			m.SystemMessage = systemMessage
			m.Status = status
			m.UpdatedAt = updatedAt
			return nil
		}
	}
	return errors.New("chat message not found")
}

func containsId(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type memoryUow struct {
	userRepo *memoryUserRepo
	chatRepo *memoryChatRepo
}

func (u *memoryUow) Begin(ctx context.Context) error { return nil }
func (u *memoryUow) Commit() error                   { return nil }
func (u *memoryUow) Rollback() error                 { return nil }
func (u *memoryUow) UserRepository() contract.UserRepository {
	return u.userRepo
}
func (u *memoryUow) ChatMessageRepository() contract.ChatMessageRepository {
	return u.chatRepo
}

type memoryFactory struct{ uow *memoryUow }

func (f *memoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type recordingDispatcher struct {
	enqueued []uuid.UUID
	err      error
}

func (d *recordingDispatcher) Enqueue(ctx context.Context, messageId uuid.UUID) error {
	if d.err != nil {
		return d.err
	}
	d.enqueued = append(d.enqueued, messageId)
	return nil
}

// --- Helpers ---

type testFixture struct {
	store      *memoryStore
	chatRepo   *memoryChatRepo
	dispatcher *recordingDispatcher
	service    IChatService
}

func newFixture(limiter *ratelimit.Limiter) *testFixture {
	store := newMemoryStore()
	chatRepo := &memoryChatRepo{store: store}
	uow := &memoryUow{
		userRepo: &memoryUserRepo{store: store},
		chatRepo: chatRepo,
	}
	dispatcher := &recordingDispatcher{}
	if limiter == nil {
		limiter = ratelimit.NewLimiter(1000, 100, time.Minute)
	}
	return &testFixture{
		store:      store,
		chatRepo:   chatRepo,
		dispatcher: dispatcher,
		service:    NewChatService(&memoryFactory{uow: uow}, dispatcher, limiter, 10, nopLogger{}),
	}
}

func (f *testFixture) addMessages(userId uuid.UUID, count int) []*entity.ChatMessage {
	base := time.Now().Add(-time.Hour)
	var created []*entity.ChatMessage
	for i := 0; i < count; i++ {
		m := &entity.ChatMessage{
			Id:          uuid.New(),
			UserId:      userId,
			UserMessage: "question",
			Status:      entity.MessageStatusUnderProcessing,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		f.store.messages = append(f.store.messages, m)
		created = append(created, m)
	}
	return created
}

// --- Tests ---

func TestSendMessagePersistsAndDispatches(t *testing.T) {
	f := newFixture(nil)
	userId := f.store.addUser()

	res, err := f.service.SendMessage(context.Background(), &dto.SendMessageRequest{
		UserId:  userId.String(),
		Message: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.NotEmpty(t, res.MessageId)
	assert.NotEmpty(t, res.SystemResponse)
	assert.Equal(t, constant.StatusSuccess, res.InternalStatusCode)

	require.Len(t, f.store.messages, 1)
	stored := f.store.messages[0]
	assert.Equal(t, entity.MessageStatusUnderProcessing, stored.Status)
	assert.Empty(t, stored.SystemMessage)
	assert.Equal(t, "hello", stored.UserMessage)

	require.Len(t, f.dispatcher.enqueued, 1)
	assert.Equal(t, stored.Id, f.dispatcher.enqueued[0])
}

func TestSendMessageRejectsUnknownUser(t *testing.T) {
	f := newFixture(nil)

	res, err := f.service.SendMessage(context.Background(), &dto.SendMessageRequest{
		UserId:  uuid.New().String(),
		Message: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "error", res.Status)
	assert.Empty(t, res.MessageId)
	assert.Equal(t, constant.StatusInvalidInput, res.InternalStatusCode)
	assert.Empty(t, f.store.messages)
	assert.Empty(t, f.dispatcher.enqueued)
}

func TestSendMessageUserRateLimit(t *testing.T) {
	f := newFixture(ratelimit.NewLimiter(1000, 1, time.Minute))
	userId := f.store.addUser()

	first, err := f.service.SendMessage(context.Background(), &dto.SendMessageRequest{
		UserId: userId.String(), Message: "one",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.StatusSuccess, first.InternalStatusCode)

	second, err := f.service.SendMessage(context.Background(), &dto.SendMessageRequest{
		UserId: userId.String(), Message: "two",
	})
	require.NoError(t, err)
	assert.Equal(t, "error", second.Status)
	assert.Equal(t, constant.StatusUserRateLimitExhausted, second.InternalStatusCode)
	assert.Len(t, f.store.messages, 1)
}

func TestSendMessageGlobalRateLimit(t *testing.T) {
	f := newFixture(ratelimit.NewLimiter(1, 100, time.Minute))
	userA := f.store.addUser()
	userB := f.store.addUser()

	_, err := f.service.SendMessage(context.Background(), &dto.SendMessageRequest{
		UserId: userA.String(), Message: "one",
	})
	require.NoError(t, err)

	res, err := f.service.SendMessage(context.Background(), &dto.SendMessageRequest{
		UserId: userB.String(), Message: "two",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.StatusGlobalRateLimitExhausted, res.InternalStatusCode)
}

func TestSendMessageDispatchFailureMarksError(t *testing.T) {
	f := newFixture(nil)
	userId := f.store.addUser()
	f.dispatcher.err = errors.New("broker down")

	_, err := f.service.SendMessage(context.Background(), &dto.SendMessageRequest{
		UserId: userId.String(), Message: "hello",
	})
	assert.Error(t, err)

	require.Len(t, f.store.messages, 1)
	stored := f.store.messages[0]
	assert.Equal(t, entity.MessageStatusError, stored.Status)
	assert.NotEmpty(t, stored.SystemMessage)
}

func TestGetChatReturnsPageOldestFirst(t *testing.T) {
	f := newFixture(nil)
	userId := f.store.addUser()
	created := f.addMessages(userId, 3)

	res, err := f.service.GetChat(context.Background(), &dto.GetChatRequest{
		UserId:     userId.String(),
		PageNumber: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "ok", res.Status)
	require.Len(t, res.Data, 3)
	for i, item := range res.Data {
		assert.Equal(t, created[i].Id.String(), item.Id)
	}
}

func TestGetChatPaginationCoversAllMessages(t *testing.T) {
	f := newFixture(nil)
	userId := f.store.addUser()
	created := f.addMessages(userId, 23)

	var seen []string
	for page := 1; ; page++ {
		res, err := f.service.GetChat(context.Background(), &dto.GetChatRequest{
			UserId:     userId.String(),
			PageNumber: page,
		})
		require.NoError(t, err)
		if len(res.Data) == 0 {
			break
		}
		assert.LessOrEqual(t, len(res.Data), 10)
		for _, item := range res.Data {
			seen = append(seen, item.Id)
		}
	}

	require.Len(t, seen, len(created))
	for i, m := range created {
		assert.Equal(t, m.Id.String(), seen[i])
	}
}

func TestGetChatUnknownUserReturnsEmptyPage(t *testing.T) {
	f := newFixture(nil)

	res, err := f.service.GetChat(context.Background(), &dto.GetChatRequest{
		UserId:     uuid.New().String(),
		PageNumber: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.Empty(t, res.Data)
}

func TestGetMessagesStatusExcludesForeignIds(t *testing.T) {
	f := newFixture(nil)
	owner := f.store.addUser()
	other := f.store.addUser()
	own := f.addMessages(owner, 1)[0]
	foreign := f.addMessages(other, 1)[0]

	res, err := f.service.GetMessagesStatus(context.Background(), &dto.GetMessagesStatusRequest{
		UserId:     owner.String(),
		MessageIds: []string{own.Id.String(), foreign.Id.String()},
	})
	require.NoError(t, err)

	require.Len(t, res.Data, 1)
	assert.Equal(t, own.Id.String(), res.Data[0].MessageId)
}

func TestGetMessagesStatusMapsStatusCodes(t *testing.T) {
	f := newFixture(nil)
	userId := f.store.addUser()
	messages := f.addMessages(userId, 3)
	messages[1].Status = entity.MessageStatusSuccess
	messages[1].SystemMessage = "done"
	messages[2].Status = entity.MessageStatusError
	messages[2].SystemMessage = "failed"

	res, err := f.service.GetMessagesStatus(context.Background(), &dto.GetMessagesStatusRequest{
		UserId: userId.String(),
		MessageIds: []string{
			messages[0].Id.String(),
			messages[1].Id.String(),
			messages[2].Id.String(),
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Data, 3)

	byId := map[string]dto.MessageStatusItem{}
	for _, item := range res.Data {
		byId[item.MessageId] = item
	}
	assert.Equal(t, constant.StatusMessageUnderProcessing, byId[messages[0].Id.String()].Status)
	assert.Equal(t, constant.StatusMessageProcessingSuccess, byId[messages[1].Id.String()].Status)
	assert.Equal(t, constant.StatusProcessingError, byId[messages[2].Id.String()].Status)
}

func TestGetMessagesStatusMalformedIdsOnly(t *testing.T) {
	f := newFixture(nil)
	userId := f.store.addUser()

	res, err := f.service.GetMessagesStatus(context.Background(), &dto.GetMessagesStatusRequest{
		UserId:     userId.String(),
		MessageIds: []string{"not-a-uuid"},
	})
	require.NoError(t, err)
	assert.Equal(t, "error", res.Status)
	assert.Empty(t, res.Data)
}
