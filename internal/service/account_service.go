package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	config "github.com/crosspost-hq/crosspost/configs"
	"github.com/crosspost-hq/crosspost/internal/models"
	"github.com/crosspost-hq/crosspost/internal/repository"
	"github.com/crosspost-hq/crosspost/internal/transfer"
	"github.com/crosspost-hq/crosspost/pkg/utils"
)

// AccountService owns the connected-account lifecycle around the flow
// engine: finishing a connection (profile fetch + credential persist),
// listing, and disconnecting.
type AccountService interface {
	CompleteConnection(ctx context.Context, sessionID, platform, state, code string) (*models.SocialAccount, error)
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	VerifyOwnership(ctx context.Context, userID int64, accountIDs []int64) error
	Delete(ctx context.Context, userID, accountID int64) error
}

type accountService struct {
	cfg       config.Config
	platforms map[string]PlatformConfig
	oauth     OAuthService
	sa        repository.SocialAccountRepository
	notifier  Notifier
	client    *http.Client
}

func NewAccountService(
	cfg config.Config,
	platforms map[string]PlatformConfig,
	oauth OAuthService,
	sa repository.SocialAccountRepository,
	notifier Notifier) AccountService {
	return &accountService{
		cfg:       cfg,
		platforms: platforms,
		oauth:     oauth,
		sa:        sa,
		notifier:  notifier,
		client:    &http.Client{Timeout: oauthHTTPTimeout},
	}
}

// CompleteConnection finishes the callback leg: exchanges the code,
// fetches the platform identity, and persists the account with
// encrypted credentials.
func (s *accountService) CompleteConnection(ctx context.Context, sessionID, platform, state, code string) (*models.SocialAccount, error) {
	grant, userID, err := s.oauth.CompleteAuthorization(ctx, sessionID, platform, state, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, platform, grant.AccessToken)
	if err != nil {
		return nil, err
	}

	encryptedAccess, err := utils.Encrypt([]byte(grant.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	var encryptedRefresh string
	if grant.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(grant.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
	}

	account := &models.SocialAccount{
		UserID:         userID,
		Platform:       platform,
		AccountName:    profile.Name,
		AccountHandle:  profile.Handle,
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: grant.ExpiresAt,
		IsConnected:    true,
	}

	id, err := s.sa.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	account.ID = id

	s.notifier.Notify(Event{
		Event:         EventAccountConnected,
		Platform:      platform,
		UserID:        userID,
		AccountName:   profile.Name,
		AccountHandle: profile.Handle,
	})

	return account, nil
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	if userID == 0 {
		return nil, errors.New("user id is not valid")
	}

	accounts, err := s.sa.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting social accounts")
	}

	return accounts, nil
}

// VerifyOwnership rejects a request touching any account the user does
// not own.
func (s *accountService) VerifyOwnership(ctx context.Context, userID int64, accountIDs []int64) error {
	for _, id := range accountIDs {
		ok, err := s.sa.CheckByUserID(ctx, id, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAccountNotFound
		}
	}
	return nil
}

// Delete disconnects an account: best-effort token revocation at the
// platform, then removal of the credential record. A failed revoke is
// logged but does not keep the row around.
func (s *accountService) Delete(ctx context.Context, userID, accountID int64) error {
	isValid, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		return ErrAccountNotFound
	}

	acc, err := s.sa.GetByID(ctx, accountID)
	if err != nil || acc == nil {
		return fmt.Errorf("unable to get social account info")
	}

	if pc, ok := s.platforms[acc.Platform]; ok && pc.RevokeURL != "" {
		accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
		if err == nil {
			if err := s.revokeAccess(ctx, pc.RevokeURL, accessToken); err != nil {
				slog.Info(fmt.Sprintf("revoke failed for %s account %d: %v", acc.Platform, acc.ID, err))
			}
		}
	}

	if err := s.sa.Remove(ctx, accountID); err != nil {
		return fmt.Errorf("error removing account info")
	}

	return nil
}

func (s *accountService) revokeAccess(ctx context.Context, revokeURL, accessToken string) error {
	form := url.Values{}
	form.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revoke endpoint returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// fetchProfile normalizes each platform's profile endpoint into a
// display name and handle for the account row.
func (s *accountService) fetchProfile(ctx context.Context, platform, accessToken string) (*transfer.AccountProfile, error) {
	pc, ok := s.platforms[platform]
	if !ok {
		return nil, ErrUnsupportedPlatform
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.ProfileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch account info from %s: %s", platform, body)
	}

	return parseProfile(platform, body)
}

func parseProfile(platform string, body []byte) (*transfer.AccountProfile, error) {
	switch platform {
	case PlatformTwitter:
		var data struct {
			Data struct {
				Name     string `json:"name"`
				Username string `json:"username"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		name := data.Data.Name
		if name == "" {
			name = data.Data.Username
		}
		return &transfer.AccountProfile{Name: name, Handle: "@" + data.Data.Username}, nil

	case PlatformLinkedIn:
		var data struct {
			ID             string `json:"id"`
			LocalizedFirst string `json:"localizedFirstName"`
			LocalizedLast  string `json:"localizedLastName"`
		}
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		return &transfer.AccountProfile{
			Name:   strings.TrimSpace(data.LocalizedFirst + " " + data.LocalizedLast),
			Handle: data.ID,
		}, nil

	case PlatformInstagram:
		var data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		return &transfer.AccountProfile{Name: data.Username, Handle: "@" + data.Username}, nil

	case PlatformFacebook:
		var data struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		return &transfer.AccountProfile{Name: data.Name, Handle: data.ID}, nil

	case PlatformTiktok:
		var data transfer.TiktokUserInfoResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		return &transfer.AccountProfile{
			Name:   data.Data.User.DisplayName,
			Handle: data.Data.User.OpenID,
		}, nil

	default:
		return nil, ErrUnsupportedPlatform
	}
}
