package queue

import (
	"context"
	"fmt"
	"time"

	"neuro-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "CHAT_TASKS"
	subjectPrefix = "tasks."
)

// JetStreamQueue is a durable task queue backed by NATS JetStream. Tasks
// survive a worker crash: the explicit ack policy redelivers anything the
// handler did not acknowledge.
type JetStreamQueue struct {
	nc          *nats.Conn
	js          jetstream.JetStream
	topicName   string
	concurrency int
	logger      logger.ILogger
}

var (
	_ Dispatcher = &JetStreamQueue{}
	_ Consumer   = &JetStreamQueue{}
)

func NewJetStreamQueue(url, topicName string, concurrency int, log logger.ILogger) (*JetStreamQueue, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		log.Warn("queue", "failed to ensure stream, it may already exist", map[string]interface{}{
			"stream": streamName,
			"error":  err.Error(),
		})
	}

	return &JetStreamQueue{
		nc:          nc,
		js:          js,
		topicName:   topicName,
		concurrency: concurrency,
		logger:      log,
	}, nil
}

func (q *JetStreamQueue) subject() string {
	return subjectPrefix + q.topicName
}

func (q *JetStreamQueue) Enqueue(ctx context.Context, messageId uuid.UUID) error {
	payload, err := Task{MessageId: messageId}.Marshal()
	if err != nil {
		return err
	}
	if _, err := q.js.Publish(ctx, q.subject(), payload); err != nil {
		return fmt.Errorf("failed to publish task to subject %s: %w", q.subject(), err)
	}
	return nil
}

// Start creates a durable consumer and processes tasks until ctx is
// cancelled. Handler errors Nak the message so JetStream redelivers it.
func (q *JetStreamQueue) Start(ctx context.Context, handler Handler) error {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Durable:       "chat-worker",
		FilterSubject: q.subject(),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	slots := make(chan struct{}, q.concurrency)
	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		slots <- struct{}{}
		defer func() { <-slots }()

		task, err := UnmarshalTask(msg.Data())
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
			msg.Nak()
			return
		}

		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
	}()

	q.logger.Info("queue", "consuming tasks", map[string]interface{}{
		"subject": q.subject(),
		"durable": "chat-worker",
	})
	return nil
}

func (q *JetStreamQueue) Close() error {
	if q.nc != nil {
		q.nc.Close()
	}
	return nil
}
