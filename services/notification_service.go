package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"momentumAPI/internal/habit"
	"momentumAPI/internal/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PushProvider is the delivery backend (FCM in production, a mock in tests).
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider injects the push backend after construction; until then
// notifications are stored but not pushed.
func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.pushProvider = p
}

func (s *NotificationService) CreateNotification(ctx context.Context, clerkID string, notifType notification.NotificationType, title, message string, data map[string]any) (*notification.Notification, error) {
	if data == nil {
		data = map[string]any{}
	}
	n := &notification.Notification{
		ID:      uuid.New(),
		UserID:  clerkID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}

	err := s.db.QueryRow(ctx, `
	INSERT INTO notifications (id, user_id, type, title, message, data, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING created_at`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Data).Scan(&n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.pushProvider != nil {
		tokens, err := s.getDeviceTokens(ctx, clerkID)
		if err != nil {
			log.Printf("Notification: failed to load device tokens for %s: %v", clerkID, err)
		} else if err := s.pushProvider.SendPush(ctx, tokens, title, message, data); err != nil {
			log.Printf("Notification: push delivery failed for %s: %v", clerkID, err)
		}
	}

	return n, nil
}

// NotifyStreakMilestone fires after a check-in commit crosses a milestone.
// Best effort: a failed notification never fails the check-in.
func (s *NotificationService) NotifyStreakMilestone(ctx context.Context, clerkID string, h *habit.Habit, milestone int) {
	title := fmt.Sprintf("%d-day streak!", milestone)
	message := fmt.Sprintf("You kept up %q for %d days in a row. Keep it going!", h.Name, milestone)

	_, err := s.CreateNotification(ctx, clerkID, notification.NotificationStreakMilestone, title, message, map[string]any{
		"habit_id": h.ID.String(),
		"days":     milestone,
	})
	if err != nil {
		log.Printf("Notification: streak milestone for habit %s: %v", h.ID, err)
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	query := `
	SELECT id, user_id, type, title, message, is_read, data, created_at
	FROM notifications
	WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, clerkID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		n := &notification.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.Data, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	resp := &notification.NotificationListResponse{
		Notifications: notifications,
		Page:          page,
		PageSize:      pageSize,
	}
	err = s.db.QueryRow(ctx, `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE NOT is_read)
	FROM notifications WHERE user_id = $1`, clerkID).Scan(&resp.TotalCount, &resp.UnreadCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return resp, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
	SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, clerkID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, clerkID string, notificationID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
	UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, notificationID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) error {
	_, err := s.db.Exec(ctx, `
	UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, clerkID string, notificationID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
	DELETE FROM notifications WHERE id = $1 AND user_id = $2`, notificationID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidArgument)
	}
	platform := req.Platform
	if platform == "" {
		platform = "android"
	}

	_, err := s.db.Exec(ctx, `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform`,
		clerkID, req.Token, platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) getDeviceTokens(ctx context.Context, clerkID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
	SELECT token, platform FROM device_tokens WHERE user_id = $1`, clerkID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
