package transfer

// GraphError is the error envelope returned by the Graph API.
type GraphError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// RateLimit is the content_publishing_limit reading for the account.
type RateLimit struct {
	QuotaUsage int            `json:"quota_usage"`
	Config     map[string]any `json:"config"`
}
