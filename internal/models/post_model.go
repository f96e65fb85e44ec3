package models

import "time"

type Post struct {
	ID           int64     `db:"id" json:"id"`
	Kind         string    `db:"kind" json:"type"`
	Caption      string    `db:"caption" json:"caption"`
	MediaURLs    string    `db:"media_urls" json:"media_urls"` // JSON-encoded array, order = swipe order
	ScheduledAt  time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status       string    `db:"status" json:"status"`
	IGMediaID    *string   `db:"ig_media_id" json:"ig_media_id"`
	ErrorMessage *string   `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostKindImage    = "image"
	PostKindCarousel = "carousel"
	PostKindReel     = "reel"
)

const (
	PostStatusPending    = "pending"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)
