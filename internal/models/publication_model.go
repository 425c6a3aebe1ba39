package models

import "time"

type Publication struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	AccountID      int64     `db:"account_id" json:"account_id"`
	Content        string    `db:"content" json:"content"`
	MediaURL       string    `db:"media_url" json:"media_url"`
	ExternalPostID string    `db:"external_post_id" json:"external_post_id"`
	PostURL        string    `db:"post_url" json:"post_url"`
	PublishedAt    time.Time `db:"published_at" json:"published_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
