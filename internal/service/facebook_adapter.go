package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/crosspost-hq/crosspost/internal/transfer"
)

const facebookAPIBase = "https://graph.facebook.com"

type facebookAdapter struct {
	client  *http.Client
	baseURL string
}

func NewFacebookAdapter(client *http.Client, baseURL string) Adapter {
	if baseURL == "" {
		baseURL = facebookAPIBase
	}
	return &facebookAdapter{client: client, baseURL: baseURL}
}

// Publish posts to a page feed. accountID is the page id; the Graph API
// takes the token in the request body rather than a header.
func (a *facebookAdapter) Publish(ctx context.Context, accessToken string, content transfer.PostContent, accountID string) transfer.PublishResult {
	payload := map[string]string{
		"message":      content.Text,
		"access_token": accessToken,
	}

	url := fmt.Sprintf("%s/v18.0/%s/feed", a.baseURL, accountID)
	status, body, err := postJSON(ctx, a.client, url, nil, payload)
	if err != nil {
		return publishFailure("network error: %v", err)
	}

	if status != http.StatusOK {
		return publishFailure("%s", graphErrorMessage(body, "failed to post to Facebook"))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return publishFailure("failed to parse Facebook response: %v", err)
	}

	return transfer.PublishResult{
		Success: true,
		PostID:  result.ID,
	}
}
