package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// SessionID scopes transient OAuth flow state to the caller's session.
func SessionID(c *fiber.Ctx) string {
	return c.Locals("user_id").(string)
}
