package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
)

// OverdueSweepSummary summarises one sweep run.
type OverdueSweepSummary struct {
	ReviewsScanned       int      `json:"reviews_scanned"`
	ReviewsMarkedOverdue int      `json:"reviews_marked_overdue"`
	RemindersSent        int      `json:"reminders_sent"`
	Errors               []string `json:"errors,omitempty"`
}

// OverdueReviewJobService marks review invitations that were never answered
// as overdue. The sweep touches reviews and reviewer counters only; article
// status is left alone.
type OverdueReviewJobService struct {
	db       *gorm.DB
	notifier NotificationDispatcher
	now      func() time.Time
}

// NewOverdueReviewJobService constructs an OverdueReviewJobService.
func NewOverdueReviewJobService(db *gorm.DB) *OverdueReviewJobService {
	if db == nil {
		db = config.DB
	}
	return &OverdueReviewJobService{
		db:       db,
		notifier: NewNotificationService(db),
		now:      time.Now,
	}
}

// RunSweep marks every still-pending review past its due date as overdue,
// bumps the reviewer's late count and notifies them. Failures on one review
// do not stop the sweep.
func (s *OverdueReviewJobService) RunSweep(ctx context.Context) (*OverdueSweepSummary, error) {
	summary := &OverdueSweepSummary{}

	var reviews []models.Review
	if err := s.db.WithContext(ctx).
		Where("review_status = ? AND due_at < ?", models.ReviewStatusPending, s.now()).
		Order("review_id ASC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	summary.ReviewsScanned = len(reviews)

	for i := range reviews {
		review := &reviews[i]
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Review{}).
				Where("review_id = ? AND review_status = ?", review.ReviewID, models.ReviewStatusPending).
				Update("review_status", models.ReviewStatusOverdue)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Answered between the scan and now; leave it be.
				return nil
			}
			return tx.Model(&models.ReviewerProfile{}).
				Where("user_id = ?", review.ReviewerID).
				Update("late_reviews", gorm.Expr("late_reviews + ?", 1)).Error
		})
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("review %d: %v", review.ReviewID, err))
			log.Printf("overdue sweep failed for review %d: %v", review.ReviewID, err)
			continue
		}
		summary.ReviewsMarkedOverdue++

		s.notifier.Notify(ctx, review.ReviewerID, "warning", "Review overdue",
			fmt.Sprintf("Your review invitation for article %d expired on %s.",
				review.ArticleID, review.DueAt.Format("2006-01-02")),
			&review.ArticleID)
		summary.RemindersSent++
	}

	return summary, nil
}
