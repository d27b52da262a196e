package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
)

// ReviewService handles reviewer responses, review submission and the
// article-level aggregate decision once the last outstanding review lands.
type ReviewService struct {
	db       *gorm.DB
	subs     *SubmissionService
	notifier NotificationDispatcher
	now      func() time.Time
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB) *ReviewService {
	if db == nil {
		db = config.DB
	}
	return &ReviewService{
		db:       db,
		subs:     NewSubmissionService(db),
		notifier: NewNotificationService(db),
		now:      time.Now,
	}
}

// SubmitReviewInput carries a completed review.
type SubmitReviewInput struct {
	Recommendation       string  `json:"recommendation"`
	Comments             *string `json:"comments"`
	ConfidentialComments *string `json:"confidential_comments"`
	Rating               *int    `json:"rating"`
}

var validRecommendations = map[string]bool{
	models.RecommendationAccept:        true,
	models.RecommendationMinorRevision: true,
	models.RecommendationMajorRevision: true,
	models.RecommendationReject:        true,
}

// RespondToReview records a reviewer's accept/decline answer to a pending
// assignment. Declining frees the reviewer's workload slot immediately.
func (s *ReviewService) RespondToReview(ctx context.Context, reviewID, reviewerID int, accept bool) error {
	var articleID int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := s.lockReview(tx, reviewID, reviewerID)
		if err != nil {
			return err
		}
		if review.ReviewStatus != models.ReviewStatusPending {
			return newValidationError("review", fmt.Sprintf("review is %s, not pending", review.ReviewStatus))
		}
		articleID = review.ArticleID

		target := models.ReviewStatusAccepted
		if !accept {
			target = models.ReviewStatusDeclined
		}
		if err := tx.Model(&models.Review{}).
			Where("review_id = ?", reviewID).
			Update("review_status", target).Error; err != nil {
			return err
		}
		if accept {
			return nil
		}
		// The declined slot no longer counts against the monthly cap.
		if err := tx.Model(&models.ReviewerProfile{}).
			Where("user_id = ?", reviewerID).
			Update("current_review_load", gorm.Expr("current_review_load - ?", 1)).Error; err != nil {
			return err
		}
		return tx.Where("article_id = ? AND reviewer_id = ?", articleID, reviewerID).
			Delete(&models.ArticleReviewer{}).Error
	})
	if err != nil {
		return err
	}

	if !accept {
		s.notifyEditor(ctx, articleID, "warning", "Review invitation declined",
			fmt.Sprintf("Reviewer %d declined the review invitation; a replacement is needed.", reviewerID))
	}
	return nil
}

// StartReview moves an accepted review to in_progress.
func (s *ReviewService) StartReview(ctx context.Context, reviewID, reviewerID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := s.lockReview(tx, reviewID, reviewerID)
		if err != nil {
			return err
		}
		if review.ReviewStatus != models.ReviewStatusAccepted {
			return newValidationError("review", fmt.Sprintf("review is %s, not accepted", review.ReviewStatus))
		}
		return tx.Model(&models.Review{}).
			Where("review_id = ?", reviewID).
			Update("review_status", models.ReviewStatusInProgress).Error
	})
}

// SubmitReview completes a review, updates the reviewer's counters and, if
// this was the last outstanding review for the article, applies the
// aggregate decision.
func (s *ReviewService) SubmitReview(ctx context.Context, reviewID, reviewerID int, input *SubmitReviewInput) error {
	if input == nil || !validRecommendations[input.Recommendation] {
		return newValidationError("recommendation",
			"recommendation must be one of accept, minor_revision, major_revision, reject")
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return newValidationError("rating", "rating must be between 1 and 5")
	}

	now := s.now()
	var articleID int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := s.lockReview(tx, reviewID, reviewerID)
		if err != nil {
			return err
		}
		switch review.ReviewStatus {
		case models.ReviewStatusAccepted, models.ReviewStatusInProgress:
		default:
			return newValidationError("review", fmt.Sprintf("review is %s and cannot be submitted", review.ReviewStatus))
		}
		articleID = review.ArticleID

		if err := tx.Model(&models.Review{}).
			Where("review_id = ?", reviewID).
			Updates(map[string]interface{}{
				"review_status":         models.ReviewStatusCompleted,
				"recommendation":        input.Recommendation,
				"comments":              input.Comments,
				"confidential_comments": input.ConfidentialComments,
				"rating":                input.Rating,
				"submitted_at":          now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReviewerProfile{}).
			Where("user_id = ?", reviewerID).
			Updates(map[string]interface{}{
				"current_review_load": gorm.Expr("current_review_load - ?", 1),
				"completed_reviews":   gorm.Expr("completed_reviews + ?", 1),
				"last_review_date":    now,
			}).Error
	})
	if err != nil {
		return err
	}

	return s.AggregateIfComplete(ctx, articleID)
}

// AggregateIfComplete applies the article-level decision when no review is
// outstanding. Re-running it after the decision has been applied is a no-op,
// so callers may invoke it freely.
func (s *ReviewService) AggregateIfComplete(ctx context.Context, articleID int) error {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Find(&reviews).Error; err != nil {
		return err
	}

	recommendations := make([]string, 0, len(reviews))
	for i := range reviews {
		if reviews[i].IsOutstanding() {
			return nil
		}
		if reviews[i].ReviewStatus == models.ReviewStatusCompleted && reviews[i].Recommendation != nil {
			recommendations = append(recommendations, *reviews[i].Recommendation)
		}
	}
	if len(recommendations) == 0 {
		return nil
	}
	decision := AggregateRecommendation(recommendations)

	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Select("submission_id, status, author_id").
		Where("article_id = ?", articleID).
		First(&submission).Error; err != nil {
		return translateNotFound(err)
	}
	if WorkflowStatus(submission.Status) != StatusUnderReview {
		// Decision already applied or the article moved on; nothing to do.
		return nil
	}

	if err := s.subs.UpdateSubmissionStatus(ctx, submission.SubmissionID, decision, SystemActorID, nil); err != nil {
		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) {
			// A concurrent completion already applied the decision; the
			// winner sent the notifications.
			return nil
		}
		return err
	}

	message := fmt.Sprintf("All reviews are in; the aggregate decision is %q.", decision)
	s.notifyEditor(ctx, articleID, "info", "Reviews completed", message)
	s.notifier.Notify(ctx, submission.AuthorID, "info", "Decision on your submission", message, &articleID)
	return nil
}

// AggregateRecommendation derives the article-level decision from the
// individual review recommendations: any reject blocks acceptance, any
// revision request short of a reject sends the article back to the author,
// and only a unanimous accept carries it forward.
func AggregateRecommendation(recommendations []string) WorkflowStatus {
	hasRevision := false
	for _, r := range recommendations {
		switch r {
		case models.RecommendationReject:
			return StatusRejected
		case models.RecommendationMinorRevision, models.RecommendationMajorRevision:
			hasRevision = true
		}
	}
	if hasRevision {
		return StatusRevisionRequested
	}
	return StatusAccepted
}

// ReviewsForArticle lists an article's reviews with reviewer info.
func (s *ReviewService) ReviewsForArticle(ctx context.Context, articleID int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Preload("Reviewer").
		Where("article_id = ?", articleID).
		Order("review_id ASC").
		Find(&reviews).Error
	return reviews, err
}

// ReviewsForReviewer lists a reviewer's own assignments.
func (s *ReviewService) ReviewsForReviewer(ctx context.Context, reviewerID int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *ReviewService) lockReview(tx *gorm.DB, reviewID, reviewerID int) (*models.Review, error) {
	var review models.Review
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("review_id = ? AND reviewer_id = ?", reviewID, reviewerID).
		First(&review).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &review, nil
}

func (s *ReviewService) notifyEditor(ctx context.Context, articleID int, ntype, title, message string) {
	var article models.Article
	if err := s.db.WithContext(ctx).
		Select("article_id, editor_id").
		Where("article_id = ?", articleID).
		First(&article).Error; err != nil || article.EditorID == nil {
		return
	}
	s.notifier.Notify(ctx, *article.EditorID, ntype, title, message, &articleID)
}
