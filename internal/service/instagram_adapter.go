package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/crosspost-hq/crosspost/internal/transfer"
)

const instagramAPIBase = "https://graph.instagram.com"

type instagramAdapter struct {
	client  *http.Client
	baseURL string
}

func NewInstagramAdapter(client *http.Client, baseURL string) Adapter {
	if baseURL == "" {
		baseURL = instagramAPIBase
	}
	return &instagramAdapter{client: client, baseURL: baseURL}
}

// Publish is two-phase: create a media container, then publish it by
// creation id. A container that never reaches media_publish is not a
// post, so a phase-two failure is a failure outright.
func (a *instagramAdapter) Publish(ctx context.Context, accessToken string, content transfer.PostContent, accountID string) transfer.PublishResult {
	if content.MediaURL == "" {
		return publishFailure("%s", ErrMissingRequiredMedia.Error())
	}

	payload := map[string]string{
		"caption":      content.Text,
		"access_token": accessToken,
	}
	if content.MediaType == transfer.MediaTypeVideo {
		payload["media_type"] = "REELS"
		payload["video_url"] = content.MediaURL
	} else {
		payload["image_url"] = content.MediaURL
	}

	createURL := fmt.Sprintf("%s/v18.0/%s/media", a.baseURL, accountID)
	status, body, err := postJSON(ctx, a.client, createURL, nil, payload)
	if err != nil {
		return publishFailure("network error: %v", err)
	}
	if status != http.StatusOK {
		return publishFailure("%s", graphErrorMessage(body, "failed to create Instagram media"))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return publishFailure("no media container id returned from Instagram")
	}

	publishURL := fmt.Sprintf("%s/v18.0/%s/media_publish", a.baseURL, accountID)
	status, body, err = postJSON(ctx, a.client, publishURL, nil, map[string]string{
		"creation_id":  created.ID,
		"access_token": accessToken,
	})
	if err != nil {
		return publishFailure("network error: %v", err)
	}
	if status != http.StatusOK {
		return publishFailure("%s", graphErrorMessage(body, "failed to publish Instagram post"))
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &published); err != nil {
		return publishFailure("failed to parse Instagram response: %v", err)
	}

	return transfer.PublishResult{
		Success: true,
		PostID:  published.ID,
	}
}

func graphErrorMessage(body []byte, fallback string) string {
	var errResp transfer.GraphErrorResponse
	_ = json.Unmarshal(body, &errResp)
	if errResp.Error.Message == "" {
		return fallback
	}
	return errResp.Error.Message
}
