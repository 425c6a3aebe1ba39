package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/crosspost-hq/crosspost/internal/queue"
	"github.com/crosspost-hq/crosspost/internal/service"
	"github.com/crosspost-hq/crosspost/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type PublishHandler struct {
	publisher   service.PublishService
	accounts    service.AccountService
	asynqClient *asynq.Client
}

func NewPublishHandler(publisher service.PublishService, accounts service.AccountService, asynqClient *asynq.Client) *PublishHandler {
	return &PublishHandler{
		publisher:   publisher,
		accounts:    accounts,
		asynqClient: asynqClient,
	}
}

// PublishNow fans the post out immediately and returns per-account
// results; partial success is a normal outcome, so the status is 200
// whenever the request itself was valid.
func (h *PublishHandler) PublishNow(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.AccountIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No social accounts selected",
		})
	}
	if req.Content.Text == "" && req.Content.MediaURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Post content is empty",
		})
	}

	if err := h.accounts.VerifyOwnership(c.Context(), userID, req.AccountIDs); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Social account doesn't exist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to verify accounts",
		})
	}

	results := h.publisher.PublishToMany(c.Context(), req.AccountIDs, req.Content)
	return c.Status(fiber.StatusOK).JSON(results)
}

func (h *PublishHandler) SchedulePublish(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.SchedulePublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.AccountIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No social accounts selected",
		})
	}

	scheduledTime, err := time.Parse("2006-01-02T15:04", req.ScheduledTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scheduled time format",
		})
	}

	delay := time.Until(scheduledTime)
	if delay < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Scheduled time is in the past",
		})
	}

	if err := h.accounts.VerifyOwnership(c.Context(), userID, req.AccountIDs); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Social account doesn't exist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to verify accounts",
		})
	}

	payload := queue.PublishPostPayload{
		UserID:     userID,
		AccountIDs: req.AccountIDs,
		Content:    req.Content,
	}
	if err := queue.EnqueuePublish(h.asynqClient, payload, delay); err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to schedule post",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"scheduled_time": scheduledTime,
	})
}

func (h *PublishHandler) ListPublications(c *fiber.Ctx) error {
	userID := GetUserID(c)

	publications, err := h.publisher.ListPublications(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch publications",
		})
	}

	return c.Status(fiber.StatusOK).JSON(publications)
}
