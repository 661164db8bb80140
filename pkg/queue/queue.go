package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Task is the unit of work handed from the request path to the worker:
// a reference to a chat message awaiting pipeline processing.
type Task struct {
	MessageId uuid.UUID `json:"message_id"`
}

func (t Task) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

func UnmarshalTask(data []byte) (Task, error) {
	var t Task
	err := json.Unmarshal(data, &t)
	return t, err
}

// Handler processes one delivered task. Returning a non-nil error requests
// redelivery; returning nil acknowledges the task.
type Handler func(ctx context.Context, task Task) error

// Dispatcher enqueues a task for asynchronous processing and returns without
// waiting for the pipeline. Delivery is at-least-once and unordered; the
// pipeline's terminal-overwrite behavior makes duplicates safe.
type Dispatcher interface {
	Enqueue(ctx context.Context, messageId uuid.UUID) error
}

// Consumer delivers tasks to a handler until the context is cancelled.
type Consumer interface {
	Start(ctx context.Context, handler Handler) error
}
