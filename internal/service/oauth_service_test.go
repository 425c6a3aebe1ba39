package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testPlatforms(tokenURL string) map[string]PlatformConfig {
	return map[string]PlatformConfig{
		PlatformTwitter: {
			OAuth: oauth2.Config{
				ClientID:     "test-client-id",
				ClientSecret: "test-client-secret",
				RedirectURL:  "http://localhost:3000/auth/callback/twitter",
				Scopes:       []string{"tweet.write", "offline.access"},
				Endpoint: oauth2.Endpoint{
					AuthURL:   "https://example.com/authorize",
					TokenURL:  tokenURL,
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
		},
		PlatformLinkedIn: {
			OAuth: oauth2.Config{
				ClientID: "",
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://example.com/authorize",
					TokenURL: tokenURL,
				},
			},
		},
	}
}

func TestBeginAuthorizationUnsupportedPlatform(t *testing.T) {
	s := NewOAuthService(testPlatforms("http://unused"), NewMemoryFlowStore())

	_, err := s.BeginAuthorization(context.Background(), "sess", 1, "myspace")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestBeginAuthorizationMissingClientCredentials(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	s := NewOAuthService(testPlatforms(server.URL), NewMemoryFlowStore())

	_, err := s.BeginAuthorization(context.Background(), "sess", 1, PlatformLinkedIn)
	assert.ErrorIs(t, err, ErrMissingClientCredentials)
	assert.Zero(t, atomic.LoadInt32(&calls), "no network call expected")
}

func TestBeginAuthorizationBuildsPKCEAuthURL(t *testing.T) {
	s := NewOAuthService(testPlatforms("http://unused"), NewMemoryFlowStore())

	authURL, err := s.BeginAuthorization(context.Background(), "sess", 1, PlatformTwitter)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "test-client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:3000/auth/callback/twitter", q.Get("redirect_uri"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.GreaterOrEqual(t, len(q.Get("state")), 22, "state should encode at least 16 random bytes")
}

func TestCompleteAuthorizationStateMismatch(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	s := NewOAuthService(testPlatforms(server.URL), NewMemoryFlowStore())

	_, err := s.BeginAuthorization(context.Background(), "sess", 1, PlatformTwitter)
	require.NoError(t, err)

	_, _, err = s.CompleteAuthorization(context.Background(), "sess", PlatformTwitter, "forged-state", "valid-code")
	assert.ErrorIs(t, err, ErrStateMismatch)
	assert.Zero(t, atomic.LoadInt32(&calls), "token endpoint must not be called on state mismatch")
}

func TestCompleteAuthorizationWithoutPendingFlow(t *testing.T) {
	s := NewOAuthService(testPlatforms("http://unused"), NewMemoryFlowStore())

	_, _, err := s.CompleteAuthorization(context.Background(), "sess", PlatformTwitter, "whatever", "code")
	assert.ErrorIs(t, err, ErrMissingVerifier)
}

func TestCompleteAuthorizationSuccessAndReplay(t *testing.T) {
	var gotVerifier string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotVerifier = r.FormValue("code_verifier")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600,"token_type":"bearer"}`))
	}))
	defer server.Close()

	flows := NewMemoryFlowStore()
	s := NewOAuthService(testPlatforms(server.URL), flows)

	authURL, err := s.BeginAuthorization(context.Background(), "sess", 42, PlatformTwitter)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")

	grant, userID, err := s.CompleteAuthorization(context.Background(), "sess", PlatformTwitter, state, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "at-1", grant.AccessToken)
	assert.Equal(t, "rt-1", grant.RefreshToken)
	require.NotNil(t, grant.ExpiresAt)
	assert.NotEmpty(t, gotVerifier, "exchange must carry the PKCE verifier")

	// The stored flow is single-use: replaying the same callback
	// parameters behaves like a flow that never started.
	_, _, err = s.CompleteAuthorization(context.Background(), "sess", PlatformTwitter, state, "auth-code")
	assert.ErrorIs(t, err, ErrMissingVerifier)
}

func TestCompleteAuthorizationExchangeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}))
	defer server.Close()

	s := NewOAuthService(testPlatforms(server.URL), NewMemoryFlowStore())

	authURL, err := s.BeginAuthorization(context.Background(), "sess", 1, PlatformTwitter)
	require.NoError(t, err)
	state, err := url.Parse(authURL)
	require.NoError(t, err)

	_, _, err = s.CompleteAuthorization(context.Background(), "sess", PlatformTwitter, state.Query().Get("state"), "stale-code")

	var exchangeErr *TokenExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	assert.Contains(t, exchangeErr.Detail, "invalid_grant")
}

func TestRefreshSuccessKeepsOldRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "rt-old", r.FormValue("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-2","expires_in":7200,"token_type":"bearer"}`))
	}))
	defer server.Close()

	s := NewOAuthService(testPlatforms(server.URL), NewMemoryFlowStore())

	grant, err := s.Refresh(context.Background(), PlatformTwitter, "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "at-2", grant.AccessToken)
	assert.Equal(t, "rt-old", grant.RefreshToken, "refresh token is kept when the platform does not rotate it")
	require.NotNil(t, grant.ExpiresAt)
}

func TestRefreshFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer server.Close()

	s := NewOAuthService(testPlatforms(server.URL), NewMemoryFlowStore())

	_, err := s.Refresh(context.Background(), PlatformTwitter, "rt-revoked")

	var refreshErr *TokenRefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Contains(t, refreshErr.Detail, "invalid_token")
}
