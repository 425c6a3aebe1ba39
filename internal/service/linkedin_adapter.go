package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/crosspost-hq/crosspost/internal/transfer"
)

const linkedinAPIBase = "https://api.linkedin.com"

type linkedinAdapter struct {
	client  *http.Client
	baseURL string
}

func NewLinkedInAdapter(client *http.Client, baseURL string) Adapter {
	if baseURL == "" {
		baseURL = linkedinAPIBase
	}
	return &linkedinAdapter{client: client, baseURL: baseURL}
}

// Publish creates a UGC post. accountID is the member id the post is
// authored as, embedded as a person URN.
func (a *linkedinAdapter) Publish(ctx context.Context, accessToken string, content transfer.PostContent, accountID string) transfer.PublishResult {
	payload := map[string]interface{}{
		"author":         fmt.Sprintf("urn:li:person:%s", accountID),
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]string{
					"text": content.Text,
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	headers := map[string]string{
		"Authorization":             "Bearer " + accessToken,
		"X-Restli-Protocol-Version": "2.0.0",
	}

	status, body, err := postJSON(ctx, a.client, a.baseURL+"/v2/ugcPosts", headers, payload)
	if err != nil {
		return publishFailure("network error: %v", err)
	}

	if status != http.StatusOK && status != http.StatusCreated {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &errResp)
		if errResp.Message == "" {
			errResp.Message = "failed to post to LinkedIn"
		}
		return publishFailure("%s", errResp.Message)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return publishFailure("failed to parse LinkedIn response: %v", err)
	}

	return transfer.PublishResult{
		Success: true,
		PostID:  result.ID,
	}
}
