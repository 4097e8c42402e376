package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/arman-d/TutorAppBack/internal/models"
	"github.com/arman-d/TutorAppBack/internal/repository"
)

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	updated, err := s.notificationRepo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if updated == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}
