package service

import (
	"context"

	"neuro-chat-be/internal/pkg/logger"
	"neuro-chat-be/pkg/pipeline"
	"neuro-chat-be/pkg/queue"
)

// IWorkerService consumes queued chat tasks and drives them through the
// enrichment pipeline.
type IWorkerService interface {
	Run(ctx context.Context) error
}

type workerService struct {
	consumer  queue.Consumer
	processor *pipeline.Processor
	logger    logger.ILogger
}

func NewWorkerService(consumer queue.Consumer, processor *pipeline.Processor, log logger.ILogger) IWorkerService {
	return &workerService{
		consumer:  consumer,
		processor: processor,
		logger:    log,
	}
}

// Run subscribes to the task queue and processes tasks until ctx is
// cancelled. A task is acknowledged unless the pipeline could not leave the
// message in a consistent state, in which case the error requests
// redelivery.
func (w *workerService) Run(ctx context.Context) error {
	return w.consumer.Start(ctx, func(ctx context.Context, task queue.Task) error {
		outcome, err := w.processor.Process(ctx, task.MessageId)
		if err != nil {
			return err
		}

		details := map[string]interface{}{
			"message_id": task.MessageId.String(),
			"state":      string(outcome.State),
		}
		if len(outcome.Degraded) > 0 {
			details["degraded"] = outcome.Degraded
		}
		w.logger.Info("worker", "task processed", details)
		return nil
	})
}
