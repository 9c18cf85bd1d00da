package db

import "time"

// Submission 表示 submissions 表的完整结构
type Submission struct {
	ID          int64     `json:"id"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	Link        string    `json:"link"`
	Selected    int       `json:"selected"`
	Total       int       `json:"total"`
	CommittedAt time.Time `json:"committed_at"`
}
