package transfer

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// PostContent is the payload handed to every platform adapter. It is
// constructed once per publish request and never mutated.
type PostContent struct {
	Text      string `json:"text"`
	MediaURL  string `json:"media_url,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// PublishResult is the per-account outcome of one publish attempt.
// Success implies PostID is set (when the platform returns one);
// failure implies Error is set.
type PublishResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	PostURL string `json:"post_url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type AccountPublishResult struct {
	AccountID int64         `json:"account_id"`
	Result    PublishResult `json:"result"`
}

type PublishRequest struct {
	AccountIDs []int64     `json:"account_ids"`
	Content    PostContent `json:"content"`
}

type SchedulePublishRequest struct {
	AccountIDs    []int64     `json:"account_ids"`
	Content       PostContent `json:"content"`
	ScheduledTime string      `json:"scheduled_time"`
}
