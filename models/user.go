package models

import (
	"time"
)

// Role names stored on users.role. Eligibility filters in the workflow
// engine key off these values.
const (
	RoleAuthor             = "author"
	RoleReviewer           = "reviewer"
	RoleEditorialAssistant = "editorial_assistant"
	RoleAssociateEditor    = "associate_editor"
	RoleEditor             = "editor"
	RoleChiefEditor        = "chief_editor"
	RoleAdmin              = "admin"
)

type User struct {
	UserID      int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FirstName   string     `gorm:"column:first_name" json:"first_name"`
	LastName    string     `gorm:"column:last_name" json:"last_name"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"`
	Role        string     `gorm:"column:role" json:"role"`
	Affiliation *string    `gorm:"column:affiliation" json:"affiliation,omitempty"`
	IsActive    bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

// FullName returns the display name used in notifications and emails.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
