package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crosspost-hq/crosspost/internal/models"
	"github.com/crosspost-hq/crosspost/internal/repository"
	"github.com/crosspost-hq/crosspost/internal/service"
)

const refreshWindow = 30 * time.Minute

// TokenRefreshJob proactively rotates tokens that expire soon, so most
// publishes never hit the refresh path inline.
type TokenRefreshJob struct {
	sr     repository.SocialAccountRepository
	tokens service.TokenService
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, tokens service.TokenService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr:     sr,
		tokens: tokens,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	accounts, err := c.sr.ListExpiring(ctx, refreshWindow)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := c.tokens.Refresh(ctx, acc.ID); err != nil {
				// Account stays stale; the user is prompted to
				// reconnect on the next publish attempt.
				slog.Info("unable to refresh token", "platform", acc.Platform, "account_id", acc.ID, "error", err.Error())
			}
		}(acc)
	}

	wg.Wait()
}
