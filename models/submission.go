package models

import "time"

// Submission is one manuscript lifecycle instance. It is created together
// with its Article and never hard-deleted; withdrawal is a terminal status.
type Submission struct {
	SubmissionID int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	ArticleID    int        `gorm:"column:article_id" json:"article_id"`
	AuthorID     int        `gorm:"column:author_id" json:"author_id"`
	Status       string     `gorm:"column:status" json:"status"`
	SubmittedAt  time.Time  `gorm:"column:submitted_at" json:"submitted_at"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Article       *Article                  `gorm:"foreignKey:ArticleID" json:"article,omitempty"`
	StatusHistory []SubmissionStatusHistory `gorm:"foreignKey:SubmissionID" json:"status_history,omitempty"`
}

// SubmissionStatusHistory is the append-only audit trail of status changes.
// Rows are never updated or removed; insertion order is chronological order.
type SubmissionStatusHistory struct {
	HistoryID       int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	SubmissionID    int       `gorm:"column:submission_id" json:"submission_id"`
	OldStatus       *string   `gorm:"column:old_status" json:"old_status"`
	NewStatus       string    `gorm:"column:new_status" json:"new_status"`
	ChangedBy       int       `gorm:"column:changed_by" json:"changed_by"`
	Notes           *string   `gorm:"column:notes" json:"notes"`
	SystemGenerated bool      `gorm:"column:system_generated" json:"system_generated"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (SubmissionStatusHistory) TableName() string {
	return "submission_status_history"
}
