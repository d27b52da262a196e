package models

import "time"

// Recommended reviewer statuses.
const (
	RecommendedStatusSuggested = "suggested"
	RecommendedStatusContacted = "contacted"
	RecommendedStatusAccepted  = "accepted"
	RecommendedStatusDeclined  = "declined"
)

// RecommendedReviewer is an author-suggested reviewer candidate captured at
// submission time. The suggested person may or may not exist as a user.
type RecommendedReviewer struct {
	RecommendedID   int        `gorm:"primaryKey;column:recommended_id" json:"recommended_id"`
	ArticleID       int        `gorm:"column:article_id" json:"article_id"`
	FullName        string     `gorm:"column:full_name" json:"full_name"`
	Email           string     `gorm:"column:email" json:"email"`
	Affiliation     string     `gorm:"column:affiliation" json:"affiliation"`
	Expertise       string     `gorm:"column:expertise" json:"expertise"` // free text from the author
	Status          string     `gorm:"column:status" json:"status"`
	ContactAttempts int        `gorm:"column:contact_attempts" json:"contact_attempts"`
	CreateAt        time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName specifies the table name for RecommendedReviewer.
func (RecommendedReviewer) TableName() string {
	return "recommended_reviewers"
}
