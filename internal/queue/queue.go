package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/crosspost-hq/crosspost/internal/transfer"
	"github.com/hibiken/asynq"
)

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	UserID     int64                `json:"user_id"`
	AccountIDs []int64              `json:"account_ids"`
	Content    transfer.PostContent `json:"content"`
}

// EnqueuePublish schedules a fan-out publish to run after delay.
func EnqueuePublish(asynqClient *asynq.Client, payload PublishPostPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	log.Printf("Publish task scheduled for user %d across %d accounts", payload.UserID, len(payload.AccountIDs))
	return nil
}
