package models

import (
	"strings"
	"time"
)

// GeneralSection is the sentinel section name matching every category.
const GeneralSection = "general"

// Editor assignment statuses.
const (
	EditorAssignmentPending  = "pending"
	EditorAssignmentAccepted = "accepted"
	EditorAssignmentRejected = "rejected"
	EditorAssignmentExpired  = "expired"
)

// EditorProfile tracks workload capacity and section coverage per editor.
type EditorProfile struct {
	UserID                 int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	CurrentWorkload        int        `gorm:"column:current_workload" json:"current_workload"`
	MaxWorkload            int        `gorm:"column:max_workload" json:"max_workload"`
	AssignedSections       string     `gorm:"column:assigned_sections" json:"assigned_sections"` // comma separated
	IsAcceptingSubmissions bool       `gorm:"column:is_accepting_submissions" json:"is_accepting_submissions"`
	IsActive               bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt               time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt               *time.Time `gorm:"column:update_at" json:"update_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// EditorAssignment is a time-boxed binding of one editor to one article.
// Pending assignments expire once the deadline elapses.
type EditorAssignment struct {
	AssignmentID int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	ArticleID    int        `gorm:"column:article_id" json:"article_id"`
	EditorID     int        `gorm:"column:editor_id" json:"editor_id"`
	Status       string     `gorm:"column:status" json:"status"`
	Deadline     time.Time  `gorm:"column:deadline" json:"deadline"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName overrides
func (EditorProfile) TableName() string {
	return "editor_profiles"
}

func (EditorAssignment) TableName() string {
	return "editor_assignments"
}

// CoversSection reports whether the editor handles the given category,
// either explicitly or via the "general" sentinel.
func (p *EditorProfile) CoversSection(category string) bool {
	target := strings.ToLower(strings.TrimSpace(category))
	for _, section := range splitTerms(p.AssignedSections) {
		s := strings.ToLower(section)
		if s == target || s == GeneralSection {
			return true
		}
	}
	return false
}
