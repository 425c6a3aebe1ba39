package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	EventAccountConnected = "account_connected"
	EventPostPublished    = "post_published"
)

// Event is a best-effort side notification sent to an external
// automation endpoint on connect and publish.
type Event struct {
	EventID       string `json:"event_id"`
	Event         string `json:"event"`
	Platform      string `json:"platform"`
	UserID        int64  `json:"user_id"`
	AccountName   string `json:"account_name,omitempty"`
	AccountHandle string `json:"account_handle,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// Notifier delivers events without blocking the caller. Delivery is
// not guaranteed; failures are logged and dropped.
type Notifier interface {
	Notify(event Event)
}

type webhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) Notifier {
	return &webhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *webhookNotifier) Notify(event Event) {
	if n.url == "" {
		return
	}

	event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if id, err := gonanoid.New(); err == nil {
		event.EventID = id
	}

	go func() {
		body, err := json.Marshal(event)
		if err != nil {
			slog.Info(err.Error())
			return
		}

		resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
		if err != nil {
			slog.Info(fmt.Sprintf("webhook delivery failed: %v", err))
			return
		}
		resp.Body.Close()
	}()
}
