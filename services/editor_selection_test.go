package services

import (
	"testing"

	"journal-editorial-api/models"
)

func TestPickEditorPrefersCategoryMatch(t *testing.T) {
	profiles := []models.EditorProfile{
		{UserID: 1, CurrentWorkload: 0, AssignedSections: "oncology"},
		{UserID: 2, CurrentWorkload: 5, AssignedSections: "cardiology"},
	}

	chosen := pickEditor(profiles, "Cardiology")
	if chosen == nil || chosen.UserID != 2 {
		t.Fatalf("expected category editor 2, got %+v", chosen)
	}
}

func TestPickEditorTreatsGeneralAsMatch(t *testing.T) {
	profiles := []models.EditorProfile{
		{UserID: 1, CurrentWorkload: 3, AssignedSections: "oncology"},
		{UserID: 2, CurrentWorkload: 4, AssignedSections: "general"},
	}

	chosen := pickEditor(profiles, "cardiology")
	if chosen == nil || chosen.UserID != 2 {
		t.Fatalf("expected general editor 2, got %+v", chosen)
	}
}

func TestPickEditorFallsBackToFullSet(t *testing.T) {
	profiles := []models.EditorProfile{
		{UserID: 1, CurrentWorkload: 3, AssignedSections: "oncology"},
		{UserID: 2, CurrentWorkload: 1, AssignedSections: "surgery"},
	}

	chosen := pickEditor(profiles, "cardiology")
	if chosen == nil || chosen.UserID != 2 {
		t.Fatalf("expected least-loaded fallback editor 2, got %+v", chosen)
	}
}

func TestPickEditorMinimumWorkloadWithStableTieBreak(t *testing.T) {
	// Input ordering is create_at ASC; on equal workload the earliest
	// profile must win.
	profiles := []models.EditorProfile{
		{UserID: 7, CurrentWorkload: 2, AssignedSections: "cardiology"},
		{UserID: 3, CurrentWorkload: 2, AssignedSections: "cardiology"},
		{UserID: 5, CurrentWorkload: 4, AssignedSections: "cardiology"},
	}

	chosen := pickEditor(profiles, "cardiology")
	if chosen == nil || chosen.UserID != 7 {
		t.Fatalf("expected earliest editor 7 on tie, got %+v", chosen)
	}
}

func TestPickEditorEmptySet(t *testing.T) {
	if chosen := pickEditor(nil, "cardiology"); chosen != nil {
		t.Fatalf("expected nil for empty set, got %+v", chosen)
	}
}
