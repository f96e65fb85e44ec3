package models

import "time"

// PipelineLogEntry is the audit record of one pipeline run. Exactly one
// "started" row is written per run and updated in place to its terminal status.
type PipelineLogEntry struct {
	ID           int64     `db:"id" json:"id"`
	TopicID      string    `db:"topic_id" json:"topic_id"`
	TemplateName *string   `db:"template_name" json:"template_name"`
	ContentJSON  *string   `db:"content_json" json:"content_json"`
	PostID       *int64    `db:"post_id" json:"post_id"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage *string   `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PipelineStatusStarted   = "started"
	PipelineStatusCompleted = "completed"
	PipelineStatusFailed    = "failed"
)
