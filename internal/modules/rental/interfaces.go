package rental

import (
	"context"

	"gorm.io/gorm"

	"carrental/internal/domain"
)

// Notifier persists notifications inside the caller's transaction and pushes
// them to live clients once that transaction has committed.
type Notifier interface {
	Save(ctx context.Context, tx *gorm.DB, n *domain.Notification) error
	Publish(ns ...*domain.Notification)
}
