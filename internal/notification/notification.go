package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationStreakMilestone NotificationType = "streak_milestone"
	NotificationStreakBroken    NotificationType = "streak_broken"
	NotificationTaskDue         NotificationType = "task_due"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	Data      map[string]any   `json:"data" db:"data"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	TotalCount    int             `json:"total_count"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
}

// StreakMilestones are the streak lengths that trigger a celebration push.
var StreakMilestones = []int{7, 30, 100, 365}

// IsMilestone reports whether crossing from prev to current passes a milestone.
func IsMilestone(prev, current int) (int, bool) {
	for _, m := range StreakMilestones {
		if prev < m && current >= m {
			return m, true
		}
	}
	return 0, false
}
