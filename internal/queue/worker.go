package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/crosspost-hq/crosspost/internal/service"
	"github.com/hibiken/asynq"
)

type Worker struct {
	publisher service.PublishService
}

func NewWorker(publisher service.PublishService) *Worker {
	return &Worker{publisher: publisher}
}

// HandlePublishPostTask runs a scheduled fan-out. Per-account outcomes
// are already recorded by the dispatcher; here they are only logged.
func (w *Worker) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	results := w.publisher.PublishToMany(ctx, payload.AccountIDs, payload.Content)
	for _, r := range results {
		if !r.Result.Success {
			log.Printf("Scheduled publish failed for account %d: %s", r.AccountID, r.Result.Error)
		}
	}

	return nil
}
