package models

import (
	"strings"
	"time"
)

// Article is the manuscript entity. Its status mirrors the owning
// Submission's status at all times; both are only changed together.
type Article struct {
	ArticleID     int        `gorm:"primaryKey;column:article_id" json:"article_id"`
	ArticleNumber string     `gorm:"column:article_number;unique" json:"article_number"`
	Title         string     `gorm:"column:title" json:"title"`
	Abstract      string     `gorm:"column:abstract" json:"abstract"`
	Keywords      string     `gorm:"column:keywords" json:"keywords"` // comma separated
	Category      string     `gorm:"column:category" json:"category"`
	AuthorID      int        `gorm:"column:author_id" json:"author_id"`
	EditorID      *int       `gorm:"column:editor_id" json:"editor_id,omitempty"`
	Status        string     `gorm:"column:status" json:"status"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Author    *User             `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CoAuthors []CoAuthor        `gorm:"foreignKey:ArticleID" json:"co_authors,omitempty"`
	Reviewers []ArticleReviewer `gorm:"foreignKey:ArticleID" json:"reviewers,omitempty"`
}

// CoAuthor is one entry of the author list captured at submission time.
type CoAuthor struct {
	CoAuthorID            int    `gorm:"primaryKey;column:co_author_id" json:"co_author_id"`
	ArticleID             int    `gorm:"column:article_id" json:"article_id"`
	FirstName             string `gorm:"column:first_name" json:"first_name"`
	LastName              string `gorm:"column:last_name" json:"last_name"`
	Email                 string `gorm:"column:email" json:"email"`
	Affiliation           string `gorm:"column:affiliation" json:"affiliation"`
	IsCorrespondingAuthor bool   `gorm:"column:is_corresponding_author" json:"is_corresponding_author"`
	AuthorOrder           int    `gorm:"column:author_order" json:"author_order"`
}

// ArticleReviewer links an assigned reviewer to an article. One row per
// reviewer, deduplicated on (article_id, reviewer_id).
type ArticleReviewer struct {
	ArticleReviewerID int       `gorm:"primaryKey;column:article_reviewer_id" json:"article_reviewer_id"`
	ArticleID         int       `gorm:"column:article_id" json:"article_id"`
	ReviewerID        int       `gorm:"column:reviewer_id" json:"reviewer_id"`
	CreateAt          time.Time `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides
func (Article) TableName() string {
	return "articles"
}

func (CoAuthor) TableName() string {
	return "co_authors"
}

func (ArticleReviewer) TableName() string {
	return "article_reviewers"
}

// KeywordList splits the stored keyword string into trimmed, non-empty terms.
func (a *Article) KeywordList() []string {
	return splitTerms(a.Keywords)
}

func splitTerms(raw string) []string {
	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// JoinTerms is the inverse of KeywordList, used when persisting keyword sets.
func JoinTerms(terms []string) string {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}
