package services

import (
	"context"
	"log"

	"gorm.io/gorm"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
)

// NotificationDispatcher is what the workflow engine calls to reach users.
// Delivery is best-effort relative to the surrounding operation: a failed
// notification never rolls back a state change or an assignment.
type NotificationDispatcher interface {
	Notify(ctx context.Context, userID int, ntype, title, message string, relatedArticleID *int)
	SendEmail(to, subject, htmlBody string)
}

// NotificationService stores in-app notifications and relays emails through
// the SMTP mailer.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{db: db}
}

// Notify inserts an in-app notification row. Errors are logged, not
// propagated.
func (s *NotificationService) Notify(ctx context.Context, userID int, ntype, title, message string, relatedArticleID *int) {
	row := models.Notification{
		UserID:  uint(userID),
		Title:   title,
		Message: message,
		Type:    ntype,
	}
	if relatedArticleID != nil {
		id := uint(*relatedArticleID)
		row.RelatedArticleID = &id
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		log.Printf("failed to store notification for user %d: %v", userID, err)
	}
}

// SendEmail delivers a single HTML mail, swallowing delivery errors.
func (s *NotificationService) SendEmail(to, subject, htmlBody string) {
	if to == "" {
		return
	}
	if err := config.SendMail([]string{to}, subject, htmlBody); err != nil {
		log.Printf("failed to send mail to %s: %v", to, err)
	}
}
