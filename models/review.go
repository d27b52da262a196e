package models

import "time"

// Review statuses.
const (
	ReviewStatusPending    = "pending"
	ReviewStatusAccepted   = "accepted"
	ReviewStatusDeclined   = "declined"
	ReviewStatusInProgress = "in_progress"
	ReviewStatusCompleted  = "completed"
	ReviewStatusOverdue    = "overdue"
)

// Review recommendations, set only when a review completes.
const (
	RecommendationAccept        = "accept"
	RecommendationMinorRevision = "minor_revision"
	RecommendationMajorRevision = "major_revision"
	RecommendationReject        = "reject"
)

// Review is one reviewer's evaluation task for one article.
// Recommendation stays NULL until review_status is completed.
type Review struct {
	ReviewID             int        `gorm:"primaryKey;column:review_id" json:"review_id"`
	ArticleID            int        `gorm:"column:article_id" json:"article_id"`
	ReviewerID           int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	ReviewStatus         string     `gorm:"column:review_status" json:"review_status"`
	Recommendation       *string    `gorm:"column:recommendation" json:"recommendation,omitempty"`
	Comments             *string    `gorm:"column:comments" json:"comments,omitempty"`
	ConfidentialComments *string    `gorm:"column:confidential_comments" json:"-"`
	Rating               *int       `gorm:"column:rating" json:"rating,omitempty"`
	AccessToken          string     `gorm:"column:access_token" json:"-"`
	DueAt                time.Time  `gorm:"column:due_at" json:"due_at"`
	CreatedAt            time.Time  `gorm:"column:created_at" json:"created_at"`
	SubmittedAt          *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName specifies the table name for Review.
func (Review) TableName() string {
	return "reviews"
}

// IsOutstanding reports whether the review still blocks the article's
// aggregate decision.
func (r *Review) IsOutstanding() bool {
	switch r.ReviewStatus {
	case ReviewStatusPending, ReviewStatusAccepted, ReviewStatusInProgress:
		return true
	}
	return false
}
