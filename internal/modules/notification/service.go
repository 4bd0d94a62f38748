package notification

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"carrental/internal/domain"
	"carrental/internal/pkg/logger"
	"carrental/internal/repository"
)

// Event is the frame pushed to websocket clients.
type Event struct {
	Type         string               `json:"type"`
	Notification *domain.Notification `json:"notification"`
}

type Service struct {
	repo *repository.NotificationRepository
	hub  *Hub
	log  logger.Logger
}

func NewService(repo *repository.NotificationRepository, hub *Hub, log logger.Logger) *Service {
	return &Service{repo: repo, hub: hub, log: log}
}

// Save stores n using tx when given, so the notification commits or rolls
// back together with the change that produced it.
func (s *Service) Save(ctx context.Context, tx *gorm.DB, n *domain.Notification) error {
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.Create(ctx, n)
}

// Publish pushes already stored notifications to connected users. Offline
// users read them later through the REST endpoints.
func (s *Service) Publish(ns ...*domain.Notification) {
	if s.hub == nil {
		return
	}
	for _, n := range ns {
		if n == nil {
			continue
		}
		s.hub.SendToUser(n.UserID, Event{Type: "notification", Notification: n})
	}
}

// Notify stores and publishes a notification outside any transaction.
func (s *Service) Notify(ctx context.Context, n *domain.Notification) error {
	if err := s.Save(ctx, nil, n); err != nil {
		return err
	}
	s.Publish(n)
	return nil
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]domain.Notification, int64, error) {
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Cleanup deletes notifications older than the retention period.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("%w: retention must be positive", domain.ErrValidation)
	}
	n, err := s.repo.DeleteOlderThan(ctx, now.Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}
	if n > 0 {
		s.log.Info("old notifications removed", map[string]interface{}{"count": n})
	}
	return n, nil
}
