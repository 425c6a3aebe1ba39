package transfer

import "time"

// TokenGrant is the normalized result of an authorization_code or
// refresh_token exchange. RefreshToken is empty for platforms that do
// not issue one; ExpiresAt is nil when the platform reports no expiry.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// AccountProfile is the connected identity fetched from the platform's
// profile endpoint right after a successful code exchange.
type AccountProfile struct {
	Name   string
	Handle string
}
