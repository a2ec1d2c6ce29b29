package matching

import (
	"context"

	"github.com/khrees2412/talentmatch/pkg/models"
)

// Notifications lists the principal's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, p Principal, unreadOnly bool) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, p.UserID, unreadOnly)
}

// UnreadCount counts the principal's unread notifications.
func (s *Service) UnreadCount(ctx context.Context, p Principal) (int, error) {
	return s.store.UnreadCount(ctx, p.UserID)
}

// MarkRead marks one notification read. Other users' notifications are not found.
func (s *Service) MarkRead(ctx context.Context, p Principal, id int64) error {
	return s.store.MarkNotificationRead(ctx, p.UserID, id)
}

// MarkAllRead marks every notification of the principal read.
func (s *Service) MarkAllRead(ctx context.Context, p Principal) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, p.UserID)
}
