package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	config "github.com/crosspost-hq/crosspost/configs"
	"github.com/crosspost-hq/crosspost/internal/models"
	"github.com/crosspost-hq/crosspost/internal/repository"
	"github.com/crosspost-hq/crosspost/pkg/utils"
	"golang.org/x/sync/singleflight"
)

// expiryBuffer is how long before the recorded expiry a token is
// already treated as stale.
const expiryBuffer = 5 * time.Minute

// TokenService produces a currently-valid plaintext access token for an
// account, refreshing and persisting rotated credentials when needed.
type TokenService interface {
	GetValidToken(ctx context.Context, accountID int64) (string, error)
	Refresh(ctx context.Context, accountID int64) (string, error)
}

type tokenService struct {
	cfg   config.Config
	sa    repository.SocialAccountRepository
	oauth OAuthService
	group singleflight.Group
}

func NewTokenService(cfg config.Config, sa repository.SocialAccountRepository, oauth OAuthService) TokenService {
	return &tokenService{
		cfg:   cfg,
		sa:    sa,
		oauth: oauth,
	}
}

func (s *tokenService) GetValidToken(ctx context.Context, accountID int64) (string, error) {
	acc, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", ErrAccountNotFound
	}

	// No recorded expiry means the platform issued a non-expiring
	// token; use it as stored.
	if acc.TokenExpiresAt == nil {
		return utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	}

	if time.Now().Before(acc.TokenExpiresAt.Add(-expiryBuffer)) {
		return utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	}

	if acc.RefreshToken == "" {
		return "", ErrTokenExpiredNoRefresh
	}

	return s.refresh(ctx, acc)
}

// Refresh forces a rotation regardless of the stored expiry. Used by
// the background refresh job.
func (s *tokenService) Refresh(ctx context.Context, accountID int64) (string, error) {
	acc, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", ErrAccountNotFound
	}
	if acc.RefreshToken == "" {
		return "", ErrTokenExpiredNoRefresh
	}

	return s.refresh(ctx, acc)
}

// refresh is singleflight-guarded per account so concurrent publishes
// to the same account trigger one upstream refresh, not several.
func (s *tokenService) refresh(ctx context.Context, acc *models.SocialAccount) (string, error) {
	token, err, _ := s.group.Do(strconv.FormatInt(acc.ID, 10), func() (interface{}, error) {
		refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return "", err
		}

		grant, err := s.oauth.Refresh(ctx, acc.Platform, refreshToken)
		if err != nil {
			return "", err
		}

		encryptedAccess, err := utils.Encrypt([]byte(grant.AccessToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return "", err
		}

		// An empty refresh token keeps the stored one; platforms that
		// rotate refresh tokens return a new value here.
		var encryptedRefresh string
		if grant.RefreshToken != "" && grant.RefreshToken != refreshToken {
			encryptedRefresh, err = utils.Encrypt([]byte(grant.RefreshToken), []byte(s.cfg.SecretKey))
			if err != nil {
				return "", err
			}
		}

		if err := s.sa.UpdateTokens(ctx, acc.ID, encryptedAccess, encryptedRefresh, grant.ExpiresAt); err != nil {
			slog.Info(err.Error())
			return "", err
		}

		return grant.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}
