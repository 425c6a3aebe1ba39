package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/crosspost-hq/crosspost/internal/transfer"
	"github.com/crosspost-hq/crosspost/pkg/utils"
	"golang.org/x/oauth2"
)

const (
	oauthStateBytes  = 16
	oauthHTTPTimeout = 15 * time.Second
)

// OAuthService runs the PKCE authorization-code grant against each
// platform's endpoints. It owns the transient flow state; persisting
// issued tokens is the caller's job.
type OAuthService interface {
	BeginAuthorization(ctx context.Context, sessionID string, userID int64, platform string) (string, error)
	CompleteAuthorization(ctx context.Context, sessionID, platform, receivedState, code string) (*transfer.TokenGrant, int64, error)
	Refresh(ctx context.Context, platform, refreshToken string) (*transfer.TokenGrant, error)
}

type oauthService struct {
	platforms map[string]PlatformConfig
	flows     FlowStore
	client    *http.Client
}

func NewOAuthService(platforms map[string]PlatformConfig, flows FlowStore) OAuthService {
	return &oauthService{
		platforms: platforms,
		flows:     flows,
		client:    &http.Client{Timeout: oauthHTTPTimeout},
	}
}

// BeginAuthorization stores a fresh state/verifier pair and returns the
// authorization URL to redirect the user agent to. A repeated call for
// the same session and platform replaces the pending attempt, so the
// earlier redirect can no longer complete.
func (s *oauthService) BeginAuthorization(ctx context.Context, sessionID string, userID int64, platform string) (string, error) {
	pc, ok := s.platforms[platform]
	if !ok {
		return "", ErrUnsupportedPlatform
	}
	if pc.OAuth.ClientID == "" {
		return "", ErrMissingClientCredentials
	}

	state, err := utils.GenerateRandomKey(oauthStateBytes)
	if err != nil {
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	fs := FlowState{
		State:     state,
		Verifier:  verifier,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.flows.Save(ctx, sessionID, platform, fs); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return pc.OAuth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// CompleteAuthorization consumes the pending flow state and exchanges
// the authorization code for tokens. The state record is taken before
// any check, so a flow completes at most once no matter how it ends.
func (s *oauthService) CompleteAuthorization(ctx context.Context, sessionID, platform, receivedState, code string) (*transfer.TokenGrant, int64, error) {
	pc, ok := s.platforms[platform]
	if !ok {
		return nil, 0, ErrUnsupportedPlatform
	}

	fs, err := s.flows.Take(ctx, sessionID, platform)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	if fs == nil {
		return nil, 0, ErrMissingVerifier
	}
	if fs.State != receivedState {
		return nil, 0, ErrStateMismatch
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	tok, err := pc.OAuth.Exchange(ctx, code, oauth2.VerifierOption(fs.Verifier))
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, &TokenExchangeError{Detail: retrieveDetail(err)}
	}

	return grantFromToken(tok), fs.UserID, nil
}

// Refresh runs the refresh_token grant. No stored state is touched;
// the caller persists the rotated tokens.
func (s *oauthService) Refresh(ctx context.Context, platform, refreshToken string) (*transfer.TokenGrant, error) {
	pc, ok := s.platforms[platform]
	if !ok {
		return nil, ErrUnsupportedPlatform
	}
	if pc.OAuth.ClientID == "" {
		return nil, ErrMissingClientCredentials
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	src := pc.OAuth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		slog.Info(err.Error())
		return nil, &TokenRefreshError{Detail: retrieveDetail(err)}
	}

	return grantFromToken(tok), nil
}

func grantFromToken(tok *oauth2.Token) *transfer.TokenGrant {
	grant := &transfer.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry
		grant.ExpiresAt = &expiry
	}
	return grant
}

// retrieveDetail pulls the token endpoint's response body out of an
// oauth2 error so callers see what the platform actually said.
func retrieveDetail(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && len(re.Body) > 0 {
		return string(re.Body)
	}
	return err.Error()
}
