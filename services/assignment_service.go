package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
)

// Discovery returns at most this many system candidates per run.
const maxDiscoveredCandidates = 10

// AssignmentConfig is the tunable surface of the orchestrator. The defaults
// are the journal-wide policy; callers may override per category.
type AssignmentConfig struct {
	// TargetReviewers is how many reviewers each article should get.
	TargetReviewers int
	// RecommendedBoost is the score multiplier for author-recommended
	// candidates (author domain knowledge premium).
	RecommendedBoost float64
	// MaxRecommended caps how many recommended candidates the first
	// selection pass may take.
	MaxRecommended int
	// RecommendedMinScore is the boosted-score floor a recommended
	// candidate must clear to use the quota.
	RecommendedMinScore float64
	// MinQualityScore filters system candidates before scoring.
	MinQualityScore float64
	// ReviewDueDays sets the review deadline from assignment time.
	ReviewDueDays int
}

// DefaultAssignmentConfig returns the observed journal defaults.
func DefaultAssignmentConfig() AssignmentConfig {
	return AssignmentConfig{
		TargetReviewers:     3,
		RecommendedBoost:    1.2,
		MaxRecommended:      2,
		RecommendedMinScore: 0.6,
		MinQualityScore:     60,
		ReviewDueDays:       21,
	}
}

// AssignmentSummary records each protocol step's output count plus the
// committed outcome. Per-candidate failures are accumulated in Errors and
// never roll back candidates that did succeed.
type AssignmentSummary struct {
	RecommendedFound     int      `json:"recommended_found"`
	RecommendedValidated int      `json:"recommended_validated"`
	SystemCandidates     int      `json:"system_candidates"`
	MergedCandidates     int      `json:"merged_candidates"`
	Selected             int      `json:"selected"`
	Assigned             int      `json:"assigned"`
	Invited              int      `json:"invited"`
	AssignedReviewerIDs  []int    `json:"assigned_reviewer_ids"`
	ContactedEmails      []string `json:"contacted_emails"`
	Errors               []string `json:"errors,omitempty"`
	Success              bool     `json:"success"`
}

// ReviewerAssignmentService merges author-recommended and system-discovered
// reviewer candidates into one ranked pool and commits assignments.
type ReviewerAssignmentService struct {
	db       *gorm.DB
	subs     *SubmissionService
	notifier NotificationDispatcher
	cfg      AssignmentConfig
	now      func() time.Time
	newToken func() string
}

// NewReviewerAssignmentService constructs a ReviewerAssignmentService with
// the default config.
func NewReviewerAssignmentService(db *gorm.DB) *ReviewerAssignmentService {
	if db == nil {
		db = config.DB
	}
	return &ReviewerAssignmentService{
		db:       db,
		subs:     NewSubmissionService(db),
		notifier: NewNotificationService(db),
		cfg:      DefaultAssignmentConfig(),
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// WithConfig overrides the assignment policy, keeping zero-valued fields at
// their defaults.
func (s *ReviewerAssignmentService) WithConfig(cfg AssignmentConfig) *ReviewerAssignmentService {
	def := DefaultAssignmentConfig()
	if cfg.TargetReviewers <= 0 {
		cfg.TargetReviewers = def.TargetReviewers
	}
	if cfg.RecommendedBoost <= 0 {
		cfg.RecommendedBoost = def.RecommendedBoost
	}
	if cfg.MaxRecommended < 0 {
		cfg.MaxRecommended = def.MaxRecommended
	}
	if cfg.RecommendedMinScore <= 0 {
		cfg.RecommendedMinScore = def.RecommendedMinScore
	}
	if cfg.ReviewDueDays <= 0 {
		cfg.ReviewDueDays = def.ReviewDueDays
	}
	s.cfg = cfg
	return s
}

// AutoAssignReviewers runs the five-step assignment protocol for an article:
// fetch the author's recommendations, validate and score each, discover
// system-wide candidates, merge and rank with the recommended boost, then
// select and commit up to the target count.
func (s *ReviewerAssignmentService) AutoAssignReviewers(ctx context.Context, articleID int, excludedUserIDs []int) (*AssignmentSummary, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	keywords := article.KeywordList()
	summary := &AssignmentSummary{}

	// Step 1: author recommendations.
	var recommended []models.RecommendedReviewer
	if err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("recommended_id ASC").
		Find(&recommended).Error; err != nil {
		return nil, err
	}
	summary.RecommendedFound = len(recommended)

	// Step 2: validate each recommendation against the user base.
	exclusions := append([]int{article.AuthorID}, excludedUserIDs...)
	assignedIDs, err := s.currentReviewerIDs(ctx, articleID)
	if err != nil {
		return nil, err
	}
	exclusions = append(exclusions, assignedIDs...)

	candidates := make([]ReviewerCandidate, 0, len(recommended)+maxDiscoveredCandidates)
	for i := range recommended {
		rec := &recommended[i]
		cand, ok, err := s.validateRecommended(ctx, rec, keywords, exclusions)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		summary.RecommendedValidated++
		if cand.UserID != 0 {
			exclusions = append(exclusions, cand.UserID)
		}
		candidates = append(candidates, cand)
	}

	// Step 3: system-wide discovery, excluding the author, the already
	// validated recommendations and editor-specified conflicts.
	discovered, err := s.discoverCandidates(ctx, keywords, exclusions)
	if err != nil {
		return nil, err
	}
	summary.SystemCandidates = len(discovered)
	candidates = append(candidates, discovered...)

	// Step 4: merge, boost recommended candidates, rank.
	for i := range candidates {
		if candidates[i].Source != SourceSystem {
			candidates[i].Score *= s.cfg.RecommendedBoost
		}
	}
	rankCandidates(candidates)
	summary.MergedCandidates = len(candidates)

	// Step 5: select and commit.
	selected := selectCandidates(candidates, s.cfg)
	summary.Selected = len(selected)
	s.commit(ctx, article, selected, summary)

	if summary.Assigned > 0 {
		s.transitionToUnderReview(ctx, article, summary)
	}
	summary.Success = summary.Assigned > 0
	return summary, nil
}

// DirectAssignReviewers assigns editor-chosen reviewer ids, validating each
// one individually. Invalid ids are reported per id and skipped.
func (s *ReviewerAssignmentService) DirectAssignReviewers(ctx context.Context, articleID int, reviewerIDs []int) (*AssignmentSummary, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	assignedIDs, err := s.currentReviewerIDs(ctx, articleID)
	if err != nil {
		return nil, err
	}
	already := make(map[int]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		already[id] = true
	}

	summary := &AssignmentSummary{}
	for _, reviewerID := range reviewerIDs {
		if reviewerID == article.AuthorID {
			summary.Errors = append(summary.Errors, fmt.Sprintf("reviewer %d: is the article author", reviewerID))
			continue
		}
		if already[reviewerID] {
			summary.Errors = append(summary.Errors, fmt.Sprintf("reviewer %d: already assigned", reviewerID))
			continue
		}

		var user models.User
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND role = ? AND is_active = ? AND delete_at IS NULL",
				reviewerID, models.RoleReviewer, true).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				summary.Errors = append(summary.Errors, fmt.Sprintf("reviewer %d: not an active reviewer", reviewerID))
				continue
			}
			return nil, err
		}

		var profile models.ReviewerProfile
		if err := s.db.WithContext(ctx).
			Where("user_id = ?", reviewerID).
			First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				summary.Errors = append(summary.Errors, fmt.Sprintf("reviewer %d: no reviewer profile", reviewerID))
				continue
			}
			return nil, err
		}
		if !profile.HasCapacity() {
			summary.Errors = append(summary.Errors, fmt.Sprintf("reviewer %d: at capacity (%d/%d)",
				reviewerID, profile.CurrentReviewLoad, profile.MaxReviewsPerMonth))
			continue
		}

		if err := s.assignExisting(ctx, article, reviewerID); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("reviewer %d: %v", reviewerID, err))
			continue
		}
		already[reviewerID] = true
		summary.Assigned++
		summary.AssignedReviewerIDs = append(summary.AssignedReviewerIDs, reviewerID)
	}

	if summary.Assigned > 0 {
		s.transitionToUnderReview(ctx, article, summary)
	}
	summary.Success = summary.Assigned > 0
	return summary, nil
}

// validateRecommended resolves one author recommendation against the user
// base: an active reviewer with that email is scored on their real profile,
// anyone else gets the estimated score.
func (s *ReviewerAssignmentService) validateRecommended(ctx context.Context, rec *models.RecommendedReviewer, keywords []string, exclusions []int) (ReviewerCandidate, bool, error) {
	email := strings.TrimSpace(strings.ToLower(rec.Email))
	if email == "" {
		return ReviewerCandidate{}, false, nil
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ? AND role = ? AND is_active = ? AND delete_at IS NULL",
			email, models.RoleReviewer, true).
		First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewerCandidate{}, false, err
		}
		return ReviewerCandidate{
			RecommendedID: rec.RecommendedID,
			Name:          rec.FullName,
			Email:         rec.Email,
			Source:        SourceRecommendedNew,
			Score:         ScoreRecommendedReviewer(rec, keywords),
		}, true, nil
	}

	for _, id := range exclusions {
		if user.UserID == id {
			return ReviewerCandidate{}, false, nil
		}
	}

	var profile models.ReviewerProfile
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", user.UserID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewerCandidate{}, false, nil
		}
		return ReviewerCandidate{}, false, err
	}
	// Recommendations skip discovery's MinQualityScore floor; the quality
	// history still weighs into the composite score below.
	if !profile.IsActive || profile.AvailabilityStatus != models.AvailabilityAvailable || !profile.HasCapacity() {
		return ReviewerCandidate{}, false, nil
	}

	return ReviewerCandidate{
		UserID:        user.UserID,
		RecommendedID: rec.RecommendedID,
		Name:          user.FullName(),
		Email:         user.Email,
		Source:        SourceRecommendedExisting,
		Score:         ScoreReviewer(&profile, keywords, s.now()),
		CurrentLoad:   profile.CurrentReviewLoad,
	}, true, nil
}

// discoverCandidates queries all eligible reviewer profiles, scores them and
// returns the ranked top slice. The eligibility filter is applied before any
// scoring happens.
func (s *ReviewerAssignmentService) discoverCandidates(ctx context.Context, keywords []string, exclusions []int) ([]ReviewerCandidate, error) {
	query := s.db.WithContext(ctx).
		Table("reviewer_profiles").
		Select("reviewer_profiles.*").
		Joins("JOIN users ON users.user_id = reviewer_profiles.user_id AND users.delete_at IS NULL").
		Where("users.role = ?", models.RoleReviewer).
		Where("users.is_active = ?", true).
		Where("reviewer_profiles.is_active = ?", true).
		Where("reviewer_profiles.availability_status = ?", models.AvailabilityAvailable).
		Where("reviewer_profiles.current_review_load < reviewer_profiles.max_reviews_per_month").
		Where("reviewer_profiles.quality_score >= ?", s.cfg.MinQualityScore)
	if len(exclusions) > 0 {
		query = query.Where("reviewer_profiles.user_id NOT IN ?", exclusions)
	}

	var profiles []models.ReviewerProfile
	if err := query.Order("reviewer_profiles.user_id ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}

	now := s.now()
	candidates := make([]ReviewerCandidate, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		name := fmt.Sprintf("reviewer %d", p.UserID)
		if p.User != nil {
			name = p.User.FullName()
		}
		candidates = append(candidates, ReviewerCandidate{
			UserID:      p.UserID,
			Name:        name,
			Source:      SourceSystem,
			Score:       ScoreReviewer(p, keywords, now),
			CurrentLoad: p.CurrentReviewLoad,
		})
	}
	rankCandidates(candidates)
	if len(candidates) > maxDiscoveredCandidates {
		candidates = candidates[:maxDiscoveredCandidates]
	}
	return candidates, nil
}

// selectCandidates picks up to cfg.TargetReviewers from the ranked pool:
// first up to cfg.MaxRecommended recommended candidates clearing the score
// floor, then the best of the rest regardless of source.
func selectCandidates(ranked []ReviewerCandidate, cfg AssignmentConfig) []ReviewerCandidate {
	selected := make([]ReviewerCandidate, 0, cfg.TargetReviewers)
	taken := make(map[int]bool)

	isTaken := func(c ReviewerCandidate) bool {
		if c.UserID != 0 {
			return taken[c.UserID]
		}
		return taken[-c.RecommendedID]
	}
	mark := func(c ReviewerCandidate) {
		if c.UserID != 0 {
			taken[c.UserID] = true
		} else {
			taken[-c.RecommendedID] = true
		}
	}

	recommendedTaken := 0
	for _, c := range ranked {
		if len(selected) >= cfg.TargetReviewers || recommendedTaken >= cfg.MaxRecommended {
			break
		}
		if c.Source == SourceSystem || c.Score < cfg.RecommendedMinScore || isTaken(c) {
			continue
		}
		selected = append(selected, c)
		mark(c)
		recommendedTaken++
	}

	for _, c := range ranked {
		if len(selected) >= cfg.TargetReviewers {
			break
		}
		if isTaken(c) {
			continue
		}
		selected = append(selected, c)
		mark(c)
	}
	return selected
}

// commit applies the selection: existing reviewers get a pending review and
// a workload bump, recommended-new candidates get an invitation mail and a
// contacted flag. Individual failures are collected, not fatal.
func (s *ReviewerAssignmentService) commit(ctx context.Context, article *models.Article, selected []ReviewerCandidate, summary *AssignmentSummary) {
	for _, c := range selected {
		if c.Source == SourceRecommendedNew {
			if err := s.contactRecommended(ctx, article, c); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("recommended %s: %v", c.Email, err))
				continue
			}
			summary.Invited++
			summary.ContactedEmails = append(summary.ContactedEmails, c.Email)
			continue
		}

		if err := s.assignExisting(ctx, article, c.UserID); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("reviewer %d: %v", c.UserID, err))
			continue
		}
		summary.Assigned++
		summary.AssignedReviewerIDs = append(summary.AssignedReviewerIDs, c.UserID)
	}
}

// assignExisting creates the pending review, bumps the reviewer's load with
// a relative update and records the article-reviewer link, all in one
// transaction. The reviewer is notified afterwards, best-effort.
func (s *ReviewerAssignmentService) assignExisting(ctx context.Context, article *models.Article, reviewerID int) error {
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review := models.Review{
			ArticleID:    article.ArticleID,
			ReviewerID:   reviewerID,
			ReviewStatus: models.ReviewStatusPending,
			AccessToken:  s.newToken(),
			DueAt:        now.AddDate(0, 0, s.cfg.ReviewDueDays),
			CreatedAt:    now,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ReviewerProfile{}).
			Where("user_id = ?", reviewerID).
			Update("current_review_load", gorm.Expr("current_review_load + ?", 1)).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.ArticleReviewer{}).
			Where("article_id = ? AND reviewer_id = ?", article.ArticleID, reviewerID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		return tx.Create(&models.ArticleReviewer{
			ArticleID:  article.ArticleID,
			ReviewerID: reviewerID,
			CreateAt:   now,
		}).Error
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, reviewerID, "info", "Review invitation",
		fmt.Sprintf("You have been assigned to review \"%s\". Please respond within %d days.",
			article.Title, s.cfg.ReviewDueDays),
		&article.ArticleID)
	return nil
}

// contactRecommended marks the author's suggestion contacted and mails the
// external invitation.
func (s *ReviewerAssignmentService) contactRecommended(ctx context.Context, article *models.Article, c ReviewerCandidate) error {
	res := s.db.WithContext(ctx).Model(&models.RecommendedReviewer{}).
		Where("recommended_id = ?", c.RecommendedID).
		Updates(map[string]interface{}{
			"status":           models.RecommendedStatusContacted,
			"contact_attempts": gorm.Expr("contact_attempts + ?", 1),
			"update_at":        s.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	s.notifier.SendEmail(c.Email, "Invitation to review",
		fmt.Sprintf("<p>Dear %s,</p><p>You have been invited to review the manuscript \"%s\".</p>",
			c.Name, article.Title))
	return nil
}

// transitionToUnderReview advances the article's submission once reviewers
// are on board. An already-advanced submission is not an error.
func (s *ReviewerAssignmentService) transitionToUnderReview(ctx context.Context, article *models.Article, summary *AssignmentSummary) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Select("submission_id, status").
		Where("article_id = ?", article.ArticleID).
		First(&submission).Error; err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("transition: %v", translateNotFound(err)))
		return
	}
	if WorkflowStatus(submission.Status) == StatusUnderReview {
		return
	}
	if err := s.subs.UpdateSubmissionStatus(ctx, submission.SubmissionID, StatusUnderReview, SystemActorID, nil); err != nil {
		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) && statusPastReviewerAssignment(invalid.From) {
			// Another assignment advanced the submission first.
			return
		}
		summary.Errors = append(summary.Errors, fmt.Sprintf("transition: %v", err))
	}
}

// statusPastReviewerAssignment reports whether the submission already moved
// to or beyond peer review, making a failed advance to under_review benign.
func statusPastReviewerAssignment(s WorkflowStatus) bool {
	switch s {
	case StatusUnderReview, StatusRevisionRequested, StatusRevisionSubmitted,
		StatusAccepted, StatusRejected, StatusPublished, StatusWithdrawn:
		return true
	}
	return false
}

func (s *ReviewerAssignmentService) loadArticle(ctx context.Context, articleID int) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).
		Where("article_id = ? AND delete_at IS NULL", articleID).
		First(&article).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &article, nil
}

func (s *ReviewerAssignmentService) currentReviewerIDs(ctx context.Context, articleID int) ([]int, error) {
	var ids []int
	err := s.db.WithContext(ctx).
		Model(&models.ArticleReviewer{}).
		Where("article_id = ?", articleID).
		Pluck("reviewer_id", &ids).Error
	return ids, err
}
