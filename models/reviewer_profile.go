package models

import "time"

// Reviewer availability statuses.
const (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityUnavailable = "unavailable"
)

// ReviewerProfile tracks capacity and quality per reviewer user.
// current_review_load is only ever changed with relative updates
// (load + 1 / load - 1) so concurrent assignments cannot lose counts.
type ReviewerProfile struct {
	UserID             int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Expertise          string     `gorm:"column:expertise" json:"expertise"` // comma separated
	CurrentReviewLoad  int        `gorm:"column:current_review_load" json:"current_review_load"`
	MaxReviewsPerMonth int        `gorm:"column:max_reviews_per_month" json:"max_reviews_per_month"`
	QualityScore       float64    `gorm:"column:quality_score" json:"quality_score"` // 0-100
	CompletedReviews   int        `gorm:"column:completed_reviews" json:"completed_reviews"`
	LateReviews        int        `gorm:"column:late_reviews" json:"late_reviews"`
	LastReviewDate     *time.Time `gorm:"column:last_review_date" json:"last_review_date,omitempty"`
	AvailabilityStatus string     `gorm:"column:availability_status" json:"availability_status"`
	IsActive           bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt           time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time `gorm:"column:update_at" json:"update_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for ReviewerProfile.
func (ReviewerProfile) TableName() string {
	return "reviewer_profiles"
}

// ExpertiseList splits the stored expertise string into trimmed terms.
func (p *ReviewerProfile) ExpertiseList() []string {
	return splitTerms(p.Expertise)
}

// HasCapacity reports whether the reviewer can take one more assignment.
func (p *ReviewerProfile) HasCapacity() bool {
	return p.CurrentReviewLoad < p.MaxReviewsPerMonth
}
