package transfer

type PostCreation struct {
	Type        string   `json:"type"`
	Caption     string   `json:"caption"`
	MediaURLs   []string `json:"media_urls"`
	ScheduledAt string   `json:"scheduled_at"`
}

// PostStatusUpdate carries the optional columns of a status transition.
// Nil fields are left untouched.
type PostStatusUpdate struct {
	IGMediaID    *string
	ErrorMessage *string
}

// PipelineLogUpdate is a partial update of a pipeline_log row.
type PipelineLogUpdate struct {
	TemplateName *string
	ContentJSON  *string
	PostID       *int64
	Status       *string
	ErrorMessage *string
}

type RecentTitle struct {
	TopicID string `json:"topic_id"`
	Title   string `json:"title"`
}
