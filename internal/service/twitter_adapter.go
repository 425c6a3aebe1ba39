package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/crosspost-hq/crosspost/internal/transfer"
)

const twitterAPIBase = "https://api.twitter.com"

type twitterAdapter struct {
	client  *http.Client
	baseURL string
}

func NewTwitterAdapter(client *http.Client, baseURL string) Adapter {
	if baseURL == "" {
		baseURL = twitterAPIBase
	}
	return &twitterAdapter{client: client, baseURL: baseURL}
}

func (a *twitterAdapter) Publish(ctx context.Context, accessToken string, content transfer.PostContent, accountID string) transfer.PublishResult {
	payload := map[string]string{"text": content.Text}
	headers := map[string]string{"Authorization": "Bearer " + accessToken}

	status, body, err := postJSON(ctx, a.client, a.baseURL+"/2/tweets", headers, payload)
	if err != nil {
		return publishFailure("network error: %v", err)
	}

	if status != http.StatusOK && status != http.StatusCreated {
		var errResp struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		}
		_ = json.Unmarshal(body, &errResp)
		if errResp.Detail == "" {
			errResp.Detail = "failed to post to Twitter"
		}
		return publishFailure("%s", errResp.Detail)
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return publishFailure("failed to parse Twitter response: %v", err)
	}

	return transfer.PublishResult{
		Success: true,
		PostID:  result.Data.ID,
		PostURL: fmt.Sprintf("https://twitter.com/i/web/status/%s", result.Data.ID),
	}
}
