package handlers

import (
	"errors"
	"fmt"
	"html"
	"log"

	config "github.com/crosspost-hq/crosspost/configs"
	"github.com/crosspost-hq/crosspost/internal/service"
	"github.com/gofiber/fiber/v2"
)

type PlatformHandler struct {
	oauth    service.OAuthService
	accounts service.AccountService
	cfg      config.Config
}

func NewPlatformHandler(oauth service.OAuthService, accounts service.AccountService, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		oauth:    oauth,
		accounts: accounts,
		cfg:      cfg,
	}
}

// AddSocialAccount starts the authorization round-trip. The redirect is
// terminal for this navigation; the flow resumes at CallbackHandler.
func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Params("platform")

	authURL, err := h.oauth.BeginAuthorization(c.Context(), SessionID(c), userID, platform)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedPlatform):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("Platform %s is not supported", platform),
			})
		case errors.Is(err, service.ErrMissingClientCredentials):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("OAuth is not configured for %s", platform),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to start authorization",
			})
		}
	}

	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

// CallbackHandler finishes a popup-based connection. On success it
// notifies the opener window with an oauth_success message and closes;
// both outcomes render a small self-contained page.
func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	platform := c.Params("platform")

	if errParam := c.Query("error"); errParam != "" {
		description := c.Query("error_description")
		if description == "" {
			description = errParam
		}
		return h.renderCallbackError(c, description)
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return h.renderCallbackError(c, "Missing authorization code or state")
	}

	account, err := h.accounts.CompleteConnection(c.Context(), SessionID(c), platform, state, code)
	if err != nil {
		log.Printf("OAuth callback failed for %s: %v", platform, err)
		return h.renderCallbackError(c, "Failed to connect account")
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
<p>Successfully connected your %s account (%s). This window will close automatically.</p>
<script>
  if (window.opener) {
    window.opener.postMessage({ type: 'oauth_success', platform: %q }, %q);
  }
  setTimeout(function () { window.close(); }, 2000);
</script>
</body>
</html>`, html.EscapeString(platform), html.EscapeString(account.AccountHandle), platform, h.cfg.FrontendURL)

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(page)
}

func (h *PlatformHandler) renderCallbackError(c *fiber.Ctx, message string) error {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
<p>Connection failed: %s</p>
<button onclick="window.close()">Close Window</button>
</body>
</html>`, html.EscapeString(message))

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusBadRequest).SendString(page)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accountList, err := h.accounts.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)

	err := h.accounts.Delete(c.Context(), userID, int64(accountID))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Social account doesn't exist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to delete social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
