package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedPlatform      = errors.New("unsupported platform")
	ErrMissingClientCredentials = errors.New("oauth client credentials not configured for platform")
	ErrStateMismatch            = errors.New("state parameter mismatch, possible CSRF")
	ErrMissingVerifier          = errors.New("no pending authorization flow for platform")
	ErrTokenExpiredNoRefresh    = errors.New("token expired and no refresh token available, reconnect the account")
	ErrAccountNotFound          = errors.New("social account not found")
	ErrMissingRequiredMedia     = errors.New("platform requires an image or video")
	ErrAuthorizationDenied      = errors.New("authorization denied by provider")
)

// TokenExchangeError reports a failed authorization_code grant. Detail
// carries the token endpoint's own response body when available.
type TokenExchangeError struct {
	Detail string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %s", e.Detail)
}

// TokenRefreshError reports a failed refresh_token grant.
type TokenRefreshError struct {
	Detail string
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %s", e.Detail)
}
