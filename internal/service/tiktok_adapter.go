package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/crosspost-hq/crosspost/internal/transfer"
)

const tiktokAPIBase = "https://open.tiktokapis.com"

type tiktokAdapter struct {
	client  *http.Client
	baseURL string
}

func NewTiktokAdapter(client *http.Client, baseURL string) Adapter {
	if baseURL == "" {
		baseURL = tiktokAPIBase
	}
	return &tiktokAdapter{client: client, baseURL: baseURL}
}

// Publish starts a direct video post with TikTok pulling the file from
// the media URL. TikTok processes asynchronously; the publish id it
// returns is the post's external identifier.
func (a *tiktokAdapter) Publish(ctx context.Context, accessToken string, content transfer.PostContent, accountID string) transfer.PublishResult {
	if content.MediaURL == "" {
		return publishFailure("%s", ErrMissingRequiredMedia.Error())
	}

	payload := transfer.TiktokVideoInitRequest{
		PostInfo: transfer.TiktokVideoPostInfo{
			Title:                 content.Text,
			PrivacyLevel:          "PUBLIC_TO_EVERYONE",
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: transfer.TiktokVideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: content.MediaURL,
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + accessToken}

	status, body, err := postJSON(ctx, a.client, a.baseURL+"/v2/post/publish/video/init/", headers, payload)
	if err != nil {
		return publishFailure("network error: %v", err)
	}

	var result transfer.TiktokVideoInitResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return publishFailure("failed to parse TikTok response: %v", err)
	}

	if status != http.StatusOK || (result.Error.Code != "" && result.Error.Code != "ok") {
		msg := result.Error.Message
		if msg == "" {
			msg = "failed to post to TikTok"
		}
		return publishFailure("%s", msg)
	}

	return transfer.PublishResult{
		Success: true,
		PostID:  result.Data.PublishID,
	}
}
