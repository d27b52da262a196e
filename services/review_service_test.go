package services

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"journal-editorial-api/models"
)

func TestAggregateRecommendationAnyRejectWins(t *testing.T) {
	got := AggregateRecommendation([]string{
		models.RecommendationReject,
		models.RecommendationAccept,
		models.RecommendationAccept,
	})
	if got != StatusRejected {
		t.Fatalf("expected rejected, got %s", got)
	}
}

func TestAggregateRecommendationRevisionBeatsAccept(t *testing.T) {
	got := AggregateRecommendation([]string{
		models.RecommendationMinorRevision,
		models.RecommendationAccept,
		models.RecommendationAccept,
	})
	if got != StatusRevisionRequested {
		t.Fatalf("expected revision_requested, got %s", got)
	}

	got = AggregateRecommendation([]string{
		models.RecommendationMajorRevision,
		models.RecommendationAccept,
	})
	if got != StatusRevisionRequested {
		t.Fatalf("expected revision_requested for major revision, got %s", got)
	}
}

func TestAggregateRecommendationUnanimousAccept(t *testing.T) {
	got := AggregateRecommendation([]string{
		models.RecommendationAccept,
		models.RecommendationAccept,
		models.RecommendationAccept,
	})
	if got != StatusAccepted {
		t.Fatalf("expected accepted, got %s", got)
	}
}

func TestSubmitReviewUpdatesReviewerCounters(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviews` WHERE review_id = .* AND reviewer_id = .*FOR UPDATE"),
			columns: []string{"review_id", "article_id", "reviewer_id", "review_status"},
			rows:    [][]driver.Value{{int64(5), int64(2), int64(3), "in_progress"}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviews` SET .*review_status.* WHERE review_id = "),
		},
		{
			// The freed slot and the completion land in one statement.
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviewer_profiles` SET .*completed_reviews \\+ .*current_review_load - .* WHERE user_id = "),
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviews` WHERE article_id = "),
			columns: []string{"review_id", "article_id", "reviewer_id", "review_status"},
			rows: [][]driver.Value{
				{int64(5), int64(2), int64(3), "completed"},
				{int64(6), int64(2), int64(4), "pending"},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db)
	svc.now = func() time.Time { return now }

	rating := 4
	input := &SubmitReviewInput{Recommendation: models.RecommendationAccept, Rating: &rating}
	if err := svc.SubmitReview(context.Background(), 5, 3, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAggregateIfCompleteIsIdempotent(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviews` WHERE article_id = "),
			columns: []string{"review_id", "article_id", "reviewer_id", "review_status", "recommendation"},
			rows:    [][]driver.Value{{int64(5), int64(2), int64(3), "completed", "accept"}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT submission_id, status, author_id FROM `submissions` WHERE article_id = "),
			columns: []string{"submission_id", "status", "author_id"},
			rows:    [][]driver.Value{{int64(42), "accepted", int64(9)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db)
	if err := svc.AggregateIfComplete(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The decision was already applied: no status write, no notifications.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAggregateIfCompleteToleratesConcurrentDecision(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviews` WHERE article_id = "),
			columns: []string{"review_id", "article_id", "reviewer_id", "review_status", "recommendation"},
			rows:    [][]driver.Value{{int64(5), int64(2), int64(3), "completed", "accept"}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT submission_id, status, author_id FROM `submissions` WHERE article_id = "),
			columns: []string{"submission_id", "status", "author_id"},
			rows:    [][]driver.Value{{int64(42), "under_review", int64(9)}},
		},
		{
			// By the time the row lock is taken, a concurrent completion has
			// already applied the decision.
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `submissions` WHERE submission_id = .*FOR UPDATE"),
			columns: []string{"submission_id", "article_id", "author_id", "status"},
			rows:    [][]driver.Value{{int64(42), int64(2), int64(9), "accepted"}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewReviewService(db)
	if err := svc.AggregateIfComplete(context.Background(), 2); err != nil {
		t.Fatalf("expected the lost race to be a no-op, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAggregateRecommendationRejectBeatsRevision(t *testing.T) {
	got := AggregateRecommendation([]string{
		models.RecommendationMinorRevision,
		models.RecommendationReject,
	})
	if got != StatusRejected {
		t.Fatalf("expected rejected, got %s", got)
	}
}
