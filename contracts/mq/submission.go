package mq

import "time"

// Routing keys
const (
	RoutingKeySubmissionCommitted = "submission.committed"
)

// SubmissionCommittedPayload 提交成功事件的 payload
type SubmissionCommittedPayload struct {
	SubmissionID int64     `json:"submission_id,omitempty"`
	ProjectID    string    `json:"project_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	Status       string    `json:"status"`
	Link         string    `json:"link"`
	Selected     int       `json:"selected"`
	Total        int       `json:"total"`
	TraceID      string    `json:"trace_id,omitempty"`
	CommittedAt  time.Time `json:"committed_at"`
}
