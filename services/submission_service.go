package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
	"journal-editorial-api/utils"
)

// SystemActorID attributes automated status changes (editor auto-assignment,
// aggregate decisions, overdue sweeps) in the audit trail.
const SystemActorID = 0

// Deadline for a handling editor to act on a fresh assignment.
const editorAssignmentDeadlineDays = 7

// CoAuthorInput is one author entry supplied at submission time.
type CoAuthorInput struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Email                 string `json:"email"`
	Affiliation           string `json:"affiliation"`
	IsCorrespondingAuthor bool   `json:"is_corresponding_author"`
}

// RecommendedReviewerInput is one author-suggested reviewer candidate.
type RecommendedReviewerInput struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
	Expertise   string `json:"expertise"`
}

// SubmitArticleInput carries everything needed to create a manuscript.
type SubmitArticleInput struct {
	Title                string                     `json:"title"`
	Abstract             string                     `json:"abstract"`
	Category             string                     `json:"category"`
	Keywords             []string                   `json:"keywords"`
	Authors              []CoAuthorInput            `json:"authors"`
	RecommendedReviewers []RecommendedReviewerInput `json:"recommended_reviewers"`
}

// SubmitArticleResult reports what submission creation produced.
type SubmitArticleResult struct {
	Article        *models.Article    `json:"article"`
	Submission     *models.Submission `json:"submission"`
	EditorAssigned bool               `json:"editor_assigned"`
	Status         WorkflowStatus     `json:"status"`
}

// SubmissionService is the top-level entry point for manuscript lifecycle
// operations. All status changes in the system go through
// UpdateSubmissionStatus on this service.
type SubmissionService struct {
	db       *gorm.DB
	editors  *EditorSelectionService
	notifier NotificationDispatcher
	now      func() time.Time
	newID    func() string
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(db *gorm.DB) *SubmissionService {
	if db == nil {
		db = config.DB
	}
	return &SubmissionService{
		db:       db,
		editors:  NewEditorSelectionService(db),
		notifier: NewNotificationService(db),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SubmitArticle validates the payload, creates the article, submission,
// co-author and recommended-reviewer rows in one transaction, then attempts
// automatic editor assignment. The submission stays in "submitted" when no
// eligible editor exists; manual assignment picks it up from there.
func (s *SubmissionService) SubmitArticle(ctx context.Context, authorID int, input *SubmitArticleInput) (*SubmitArticleResult, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	article := models.Article{
		ArticleNumber: s.newID(),
		Title:         utils.SanitizeInput(input.Title),
		Abstract:      utils.SanitizeInput(input.Abstract),
		Keywords:      models.JoinTerms(input.Keywords),
		Category:      utils.SanitizeInput(input.Category),
		AuthorID:      authorID,
		Status:        string(StatusSubmitted),
		CreateAt:      now,
	}
	submission := models.Submission{
		AuthorID:    authorID,
		Status:      string(StatusSubmitted),
		SubmittedAt: now,
		CreateAt:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&article).Error; err != nil {
			return err
		}
		for i, a := range input.Authors {
			row := models.CoAuthor{
				ArticleID:             article.ArticleID,
				FirstName:             utils.SanitizeInput(a.FirstName),
				LastName:              utils.SanitizeInput(a.LastName),
				Email:                 strings.TrimSpace(a.Email),
				Affiliation:           utils.SanitizeInput(a.Affiliation),
				IsCorrespondingAuthor: a.IsCorrespondingAuthor,
				AuthorOrder:           i + 1,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		submission.ArticleID = article.ArticleID
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		if err := s.appendHistory(tx, submission.SubmissionID, nil, StatusSubmitted, authorID, nil); err != nil {
			return err
		}

		for _, r := range input.RecommendedReviewers {
			row := models.RecommendedReviewer{
				ArticleID:   article.ArticleID,
				FullName:    utils.SanitizeInput(r.FullName),
				Email:       strings.TrimSpace(r.Email),
				Affiliation: utils.SanitizeInput(r.Affiliation),
				Expertise:   utils.SanitizeInput(r.Expertise),
				Status:      models.RecommendedStatusSuggested,
				CreateAt:    now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &SubmitArticleResult{
		Article:    &article,
		Submission: &submission,
		Status:     StatusSubmitted,
	}

	editor, err := s.editors.FindEditorForArticle(ctx, article.Category)
	if err == nil {
		if assignErr := s.assignEditor(ctx, &article, &submission, editor); assignErr != nil {
			return nil, assignErr
		}
		result.EditorAssigned = true
		result.Status = StatusEditorialAssistantReview
		s.notifier.Notify(ctx, editor.UserID, "info", "New submission assigned",
			fmt.Sprintf("Article \"%s\" has been assigned to you for editorial review.", article.Title),
			&article.ArticleID)
	} else if _, noCandidate := err.(*NoSuitableCandidateError); !noCandidate {
		return nil, err
	}

	s.notifier.Notify(ctx, authorID, "success", "Submission received",
		fmt.Sprintf("Your article \"%s\" has been submitted (number %s).", article.Title, article.ArticleNumber),
		&article.ArticleID)

	return result, nil
}

func (s *SubmissionService) assignEditor(ctx context.Context, article *models.Article, submission *models.Submission, editor *models.EditorProfile) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignment := models.EditorAssignment{
			ArticleID: article.ArticleID,
			EditorID:  editor.UserID,
			Status:    models.EditorAssignmentPending,
			Deadline:  s.now().AddDate(0, 0, editorAssignmentDeadlineDays),
			CreateAt:  s.now(),
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Article{}).
			Where("article_id = ?", article.ArticleID).
			Update("editor_id", editor.UserID).Error; err != nil {
			return err
		}
		// Relative update so concurrent assignments cannot lose counts.
		return tx.Model(&models.EditorProfile{}).
			Where("user_id = ?", editor.UserID).
			Update("current_workload", gorm.Expr("current_workload + ?", 1)).Error
	})
	if err != nil {
		return err
	}

	article.EditorID = &editor.UserID
	return s.UpdateSubmissionStatus(ctx, submission.SubmissionID, StatusEditorialAssistantReview, SystemActorID, nil)
}

// UpdateSubmissionStatus is the sole status mutator. It locks the submission
// row for the duration of the transaction so concurrent transitions on the
// same submission are serialized, validates the transition, mirrors the new
// status onto the article and appends the audit entry atomically.
func (s *SubmissionService) UpdateSubmissionStatus(ctx context.Context, submissionID int, target WorkflowStatus, actorID int, notes *string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ?", submissionID).
			First(&submission).Error; err != nil {
			return translateNotFound(err)
		}

		current := WorkflowStatus(submission.Status)
		if err := ValidateTransition(current, target); err != nil {
			return err
		}

		now := s.now()
		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submissionID).
			Updates(map[string]interface{}{
				"status":    string(target),
				"update_at": now,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Article{}).
			Where("article_id = ?", submission.ArticleID).
			Updates(map[string]interface{}{
				"status":    string(target),
				"update_at": now,
			}).Error; err != nil {
			return err
		}

		old := submission.Status
		return s.appendHistory(tx, submissionID, &old, target, actorID, notes)
	})
}

// appendHistory writes one audit entry inside the caller's transaction so a
// submission's status and history can never disagree.
func (s *SubmissionService) appendHistory(tx *gorm.DB, submissionID int, oldStatus *string, newStatus WorkflowStatus, actorID int, notes *string) error {
	entry := models.SubmissionStatusHistory{
		SubmissionID:    submissionID,
		OldStatus:       oldStatus,
		NewStatus:       string(newStatus),
		ChangedBy:       actorID,
		Notes:           notes,
		SystemGenerated: actorID == SystemActorID,
		CreatedAt:       s.now(),
	}
	return tx.Create(&entry).Error
}

// GetSubmission loads a submission with its history, ordered chronologically.
func (s *SubmissionService) GetSubmission(ctx context.Context, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("history_id ASC")
		}).
		Preload("Article").
		Where("submission_id = ?", submissionID).
		First(&submission).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &submission, nil
}

// AllowedTransitionsFor returns the legal next statuses for a submission,
// for pre-flight UI checks.
func (s *SubmissionService) AllowedTransitionsFor(ctx context.Context, submissionID int) ([]WorkflowStatus, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Select("submission_id, status").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return AllowedTransitions(WorkflowStatus(submission.Status)), nil
}

func validateSubmitInput(input *SubmitArticleInput) error {
	if input == nil {
		return newValidationError("", "request body is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return newValidationError("title", "title is required")
	}
	if strings.TrimSpace(input.Abstract) == "" {
		return newValidationError("abstract", "abstract is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return newValidationError("category", "category is required")
	}
	if len(input.Authors) == 0 {
		return newValidationError("authors", "at least one author is required")
	}

	corresponding := 0
	for i, a := range input.Authors {
		field := fmt.Sprintf("authors[%d]", i)
		if strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "" {
			return newValidationError(field, "author name is required")
		}
		if !utils.ValidateEmail(strings.TrimSpace(a.Email)) {
			return newValidationError(field, "a valid author email is required")
		}
		if strings.TrimSpace(a.Affiliation) == "" {
			return newValidationError(field, "author affiliation is required")
		}
		if a.IsCorrespondingAuthor {
			corresponding++
		}
	}
	if corresponding == 0 {
		return newValidationError("authors", "exactly one corresponding author is required")
	}
	if corresponding > 1 {
		return newValidationError("authors", "only one corresponding author is allowed")
	}

	for i, r := range input.RecommendedReviewers {
		field := fmt.Sprintf("recommended_reviewers[%d]", i)
		if strings.TrimSpace(r.FullName) == "" {
			return newValidationError(field, "reviewer name is required")
		}
		if !utils.ValidateEmail(strings.TrimSpace(r.Email)) {
			return newValidationError(field, "a valid reviewer email is required")
		}
	}
	return nil
}
