package handlers

import (
	"log"

	"github.com/crosspost-hq/crosspost/internal/service"
	"github.com/gofiber/fiber/v2"
)

type MediaHandler struct {
	media service.MediaService
}

func NewMediaHandler(media service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	userID := GetUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	url, mediaType, err := h.media.Upload(c.Context(), userID, file)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"url":        url,
		"media_type": mediaType,
	})
}
