package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crosspost-hq/crosspost/internal/transfer"
)

const adapterHTTPTimeout = 30 * time.Second

// Adapter translates a generic post payload into one platform's publish
// call. Implementations never return an error: every outcome, including
// transport failures, is folded into the PublishResult so a multi-account
// fan-out can collect partial failures.
type Adapter interface {
	Publish(ctx context.Context, accessToken string, content transfer.PostContent, accountID string) transfer.PublishResult
}

// NewAdapterRegistry wires the default adapter per platform. The
// dispatcher selects from this map by the account's platform.
func NewAdapterRegistry() map[string]Adapter {
	client := &http.Client{Timeout: adapterHTTPTimeout}
	return map[string]Adapter{
		PlatformTwitter:   NewTwitterAdapter(client, ""),
		PlatformLinkedIn:  NewLinkedInAdapter(client, ""),
		PlatformInstagram: NewInstagramAdapter(client, ""),
		PlatformFacebook:  NewFacebookAdapter(client, ""),
		PlatformTiktok:    NewTiktokAdapter(client, ""),
	}
}

func publishFailure(format string, args ...interface{}) transfer.PublishResult {
	return transfer.PublishResult{
		Success: false,
		Error:   fmt.Sprintf(format, args...),
	}
}

// postJSON sends one JSON POST and returns the status code and raw
// body. A transport-level failure comes back as an error; HTTP error
// statuses are the caller's to interpret against the platform's own
// error shape.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}
