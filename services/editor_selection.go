package services

import (
	"context"

	"gorm.io/gorm"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
)

// Role sets accepted for automatic vs explicit editor assignment.
var (
	autoAssignEditorRoles     = []string{models.RoleEditor, models.RoleAdmin}
	explicitAssignEditorRoles = []string{models.RoleEditor, models.RoleChiefEditor, models.RoleAssociateEditor}
)

// EditorSelectionService picks a handling editor for a newly submitted
// article by section match and workload.
type EditorSelectionService struct {
	db *gorm.DB
}

// NewEditorSelectionService constructs an EditorSelectionService.
func NewEditorSelectionService(db *gorm.DB) *EditorSelectionService {
	if db == nil {
		db = config.DB
	}
	return &EditorSelectionService{db: db}
}

// FindEditorForArticle returns the best available editor for the category,
// or a NoSuitableCandidateError when nobody is eligible. The caller must
// tolerate an unassigned article without blocking submission creation.
func (s *EditorSelectionService) FindEditorForArticle(ctx context.Context, category string) (*models.EditorProfile, error) {
	return s.findEditor(ctx, category, autoAssignEditorRoles)
}

// FindEditorForExplicitAssignment is the variant used when editorial staff
// reassigns an article by hand; it accepts the wider editorial role set.
func (s *EditorSelectionService) FindEditorForExplicitAssignment(ctx context.Context, category string) (*models.EditorProfile, error) {
	return s.findEditor(ctx, category, explicitAssignEditorRoles)
}

func (s *EditorSelectionService) findEditor(ctx context.Context, category string, roles []string) (*models.EditorProfile, error) {
	var profiles []models.EditorProfile
	err := s.db.WithContext(ctx).
		Table("editor_profiles").
		Select("editor_profiles.*").
		Joins("JOIN users ON users.user_id = editor_profiles.user_id AND users.delete_at IS NULL").
		Where("users.role IN ?", roles).
		Where("users.is_active = ?", true).
		Where("editor_profiles.is_active = ?", true).
		Where("editor_profiles.is_accepting_submissions = ?", true).
		Where("editor_profiles.current_workload < editor_profiles.max_workload").
		Order("editor_profiles.create_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}

	chosen := pickEditor(profiles, category)
	if chosen == nil {
		return nil, &NoSuitableCandidateError{Kind: "editor"}
	}
	return chosen, nil
}

// pickEditor prefers editors covering the article's category (or "general"),
// falling back to the whole eligible set when no section matches. Among the
// preferred subset the least-loaded editor wins; the ASC create_at ordering
// of the input makes ties deterministic.
func pickEditor(profiles []models.EditorProfile, category string) *models.EditorProfile {
	if len(profiles) == 0 {
		return nil
	}

	preferred := make([]models.EditorProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.CoversSection(category) {
			preferred = append(preferred, p)
		}
	}
	if len(preferred) == 0 {
		preferred = profiles
	}

	best := preferred[0]
	for _, p := range preferred[1:] {
		if p.CurrentWorkload < best.CurrentWorkload {
			best = p
		}
	}
	return &best
}
