package queue

import (
	"context"

	"neuro-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// ChannelQueue is an in-process queue over a watermill gochannel pub/sub.
// It is not durable across a crash; production deployments use the
// JetStream queue and this one backs single-process dev setups and tests.
type ChannelQueue struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	concurrency int
	logger      logger.ILogger
}

var (
	_ Dispatcher = &ChannelQueue{}
	_ Consumer   = &ChannelQueue{}
)

func NewChannelQueue(topicName string, concurrency int, log logger.ILogger) *ChannelQueue {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ChannelQueue{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(false, false),
		),
		topicName:   topicName,
		concurrency: concurrency,
		logger:      log,
	}
}

func (q *ChannelQueue) Enqueue(ctx context.Context, messageId uuid.UUID) error {
	payload, err := Task{MessageId: messageId}.Marshal()
	if err != nil {
		return err
	}
	return q.pubSub.Publish(q.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (q *ChannelQueue) Start(ctx context.Context, handler Handler) error {
	messages, err := q.pubSub.Subscribe(ctx, q.topicName)
	if err != nil {
		return err
	}

	slots := make(chan struct{}, q.concurrency)
	go func() {
		for msg := range messages {
			slots <- struct{}{}
			go func(msg *message.Message) {
				defer func() { <-slots }()
				q.processMessage(ctx, msg, handler)
			}(msg)
		}
	}()

	return nil
}

func (q *ChannelQueue) processMessage(ctx context.Context, msg *message.Message, handler Handler) {
	task, err := UnmarshalTask(msg.Payload)
	if err != nil {
		q.logger.Error("queue", "failed to unmarshal task", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads would fail forever; drop them
		return
	}

	if err := handler(ctx, task); err != nil {
		q.logger.Error("queue", "task handler failed, requesting redelivery", map[string]interface{}{
			"message_id": task.MessageId.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}

func (q *ChannelQueue) Close() error {
	return q.pubSub.Close()
}
