package docservice

import (
	"context"
	"log/slog"

	"github.com/starford/docdesk/internal/models"
)

// RecentLimit is how many unread notifications the dropdown shows.
const RecentLimit = 5

// notify stores a notification and pushes the recipient's new count.
// Failures are logged; a lost notification never fails the caller.
func (s *Service) notify(ctx context.Context, n models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if _, err := s.db.InsertNotification(ctx, n); err != nil {
		s.logger.Error("notification not stored", slog.Int64("user_id", n.UserID), slog.String("error", err.Error()))
		return
	}
	s.publishCount(ctx, n.UserID)
}

func (s *Service) publishCount(ctx context.Context, userID int64) {
	count, err := s.db.UnreadCount(ctx, userID)
	if err != nil {
		s.logger.Warn("unread count failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return
	}
	s.events.PublishCount(userID, count)
}

// Notify stores a notification for its user.
func (s *Service) Notify(ctx context.Context, n models.Notification) {
	s.notify(ctx, n)
}

// UnreadCount returns the badge count.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.db.UnreadCount(ctx, userID)
}

// RecentNotifications returns the newest unread notifications.
func (s *Service) RecentNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.db.RecentUnread(ctx, userID, RecentLimit)
}

// MarkRead marks a notification as read.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	if err := s.db.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	s.publishCount(ctx, userID)
	return nil
}

// MarkAllRead marks all of userID's notifications as read and returns how
// many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.db.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.publishCount(ctx, userID)
	return n, nil
}
