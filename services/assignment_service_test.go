package services

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"journal-editorial-api/models"
)

func TestSelectCandidatesHonorsRecommendedQuota(t *testing.T) {
	// One author-recommended reviewer at 0.66 after boost plus four system
	// candidates. The recommendation displaces the weakest system candidate
	// even though it scores below 0.7.
	ranked := []ReviewerCandidate{
		{UserID: 10, Source: SourceSystem, Score: 0.9},
		{UserID: 11, Source: SourceSystem, Score: 0.8},
		{UserID: 12, Source: SourceSystem, Score: 0.7},
		{UserID: 20, Source: SourceRecommendedExisting, Score: 0.66},
		{UserID: 13, Source: SourceSystem, Score: 0.5},
	}

	selected := selectCandidates(ranked, DefaultAssignmentConfig())
	if len(selected) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(selected))
	}

	got := map[int]bool{}
	for _, c := range selected {
		got[c.UserID] = true
	}
	for _, want := range []int{20, 10, 11} {
		if !got[want] {
			t.Errorf("expected candidate %d to be selected, got %v", want, selected)
		}
	}
	if got[12] {
		t.Error("system candidate 12 should have been displaced by the recommendation")
	}
}

func TestSelectCandidatesRecommendedBelowThresholdNotQuotaed(t *testing.T) {
	ranked := []ReviewerCandidate{
		{UserID: 10, Source: SourceSystem, Score: 0.9},
		{UserID: 11, Source: SourceSystem, Score: 0.8},
		{UserID: 12, Source: SourceSystem, Score: 0.7},
		{UserID: 20, Source: SourceRecommendedExisting, Score: 0.55},
	}

	selected := selectCandidates(ranked, DefaultAssignmentConfig())
	if len(selected) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(selected))
	}
	for _, c := range selected {
		if c.UserID == 20 {
			t.Fatal("sub-threshold recommendation must not use the quota")
		}
	}
}

func TestSelectCandidatesCapsRecommendedAtTwo(t *testing.T) {
	ranked := []ReviewerCandidate{
		{RecommendedID: 1, Source: SourceRecommendedNew, Score: 1.1},
		{RecommendedID: 2, Source: SourceRecommendedNew, Score: 1.0},
		{RecommendedID: 3, Source: SourceRecommendedNew, Score: 0.95},
		{UserID: 10, Source: SourceSystem, Score: 0.4},
	}

	selected := selectCandidates(ranked, DefaultAssignmentConfig())
	if len(selected) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(selected))
	}

	recommended := 0
	for _, c := range selected {
		if c.Source != SourceSystem {
			recommended++
		}
	}
	// First pass takes two recommendations; the third still wins a slot in
	// the fill pass because it outranks the system candidate.
	if recommended != 3 {
		t.Fatalf("expected fill pass to take the third recommendation, got %d recommended", recommended)
	}
	if selected[0].RecommendedID != 1 || selected[1].RecommendedID != 2 {
		t.Fatalf("expected quota picks first, got %+v", selected)
	}
}

func TestSelectCandidatesExhaustedPool(t *testing.T) {
	ranked := []ReviewerCandidate{
		{UserID: 10, Source: SourceSystem, Score: 0.9},
	}

	selected := selectCandidates(ranked, DefaultAssignmentConfig())
	if len(selected) != 1 {
		t.Fatalf("expected 1 selection from exhausted pool, got %d", len(selected))
	}
}

func TestSelectCandidatesNoDuplicates(t *testing.T) {
	ranked := []ReviewerCandidate{
		{UserID: 20, Source: SourceRecommendedExisting, Score: 0.9},
		{UserID: 10, Source: SourceSystem, Score: 0.8},
		{UserID: 11, Source: SourceSystem, Score: 0.7},
	}

	selected := selectCandidates(ranked, DefaultAssignmentConfig())
	seen := map[int]int{}
	for _, c := range selected {
		seen[c.UserID]++
	}
	if seen[20] != 1 {
		t.Fatalf("recommended candidate selected %d times", seen[20])
	}
	if len(selected) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(selected))
	}
}

func TestAssignExistingCreatesReviewAndBumpsLoad(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `reviews`"),
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviewer_profiles` SET .*current_review_load \\+ .* WHERE user_id = "),
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `article_reviewers` WHERE article_id = .* AND reviewer_id = "),
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `article_reviewers`"),
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerAssignmentService(db)
	svc.now = func() time.Time { return now }
	svc.newToken = func() string { return "access-token" }

	article := &models.Article{ArticleID: 2, Title: "Study A"}
	if err := svc.assignExisting(context.Background(), article, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestValidateRecommendedExcludesAtCapacityReviewer(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `users` WHERE LOWER\\(email\\) = "),
			columns: []string{"user_id", "first_name", "last_name", "email", "role", "is_active"},
			rows:    [][]driver.Value{{int64(3), "Eve", "Reviewer", "eve@example.org", "reviewer", true}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviewer_profiles` WHERE user_id = "),
			columns: []string{"user_id", "current_review_load", "max_reviews_per_month", "availability_status", "is_active"},
			rows:    [][]driver.Value{{int64(3), int64(3), int64(3), "available", true}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerAssignmentService(db)
	rec := &models.RecommendedReviewer{RecommendedID: 1, FullName: "Eve Reviewer", Email: "eve@example.org"}

	_, ok, err := svc.validateRecommended(context.Background(), rec, []string{"cardiology"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("reviewer at capacity must be excluded before scoring")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestTransitionToUnderReviewReportsBlockedAdvance(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT submission_id, status FROM `submissions` WHERE article_id = "),
			columns: []string{"submission_id", "status"},
			rows:    [][]driver.Value{{int64(42), "submitted"}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `submissions` WHERE submission_id = .*FOR UPDATE"),
			columns: []string{"submission_id", "article_id", "author_id", "status"},
			rows:    [][]driver.Value{{int64(42), int64(2), int64(9), "submitted"}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerAssignmentService(db)
	summary := &AssignmentSummary{}
	svc.transitionToUnderReview(context.Background(), &models.Article{ArticleID: 2}, summary)

	if len(summary.Errors) != 1 {
		t.Fatalf("expected the blocked advance to be reported, got %v", summary.Errors)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestTransitionToUnderReviewIgnoresAlreadyDecidedSubmission(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT submission_id, status FROM `submissions` WHERE article_id = "),
			columns: []string{"submission_id", "status"},
			rows:    [][]driver.Value{{int64(42), "accepted"}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `submissions` WHERE submission_id = .*FOR UPDATE"),
			columns: []string{"submission_id", "article_id", "author_id", "status"},
			rows:    [][]driver.Value{{int64(42), int64(2), int64(9), "accepted"}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewerAssignmentService(db)
	summary := &AssignmentSummary{}
	svc.transitionToUnderReview(context.Background(), &models.Article{ArticleID: 2}, summary)

	if len(summary.Errors) != 0 {
		t.Fatalf("advance past peer review should be benign, got %v", summary.Errors)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestWithConfigKeepsDefaultsForZeroValues(t *testing.T) {
	svc := &ReviewerAssignmentService{}
	svc.WithConfig(AssignmentConfig{TargetReviewers: 5})

	if svc.cfg.TargetReviewers != 5 {
		t.Errorf("override lost: %d", svc.cfg.TargetReviewers)
	}
	if svc.cfg.RecommendedBoost != 1.2 {
		t.Errorf("boost default lost: %v", svc.cfg.RecommendedBoost)
	}
	if svc.cfg.RecommendedMinScore != 0.6 {
		t.Errorf("min score default lost: %v", svc.cfg.RecommendedMinScore)
	}
	if svc.cfg.ReviewDueDays != 21 {
		t.Errorf("due days default lost: %d", svc.cfg.ReviewDueDays)
	}
}
