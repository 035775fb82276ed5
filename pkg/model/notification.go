// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationCategory 通知类别
type NotificationCategory string

const (
	NotifyShiftReminder        NotificationCategory = "shift_reminder"
	NotifyUnfilledShift        NotificationCategory = "unfilled_shift"
	NotifyAvailabilityConflict NotificationCategory = "availability_conflict"
	NotifyAutoAssignment       NotificationCategory = "auto_assignment"
	NotifySystem               NotificationCategory = "system"
)

// Notification 通知记录
// 引擎只生成记录，投递由外部协作方负责
type Notification struct {
	ID        uuid.UUID            `json:"id" db:"id"`
	Category  NotificationCategory `json:"category" db:"category"`
	Recipient *uuid.UUID           `json:"recipient,omitempty" db:"recipient"`
	Message   string               `json:"message" db:"message"`
	Timestamp time.Time            `json:"timestamp" db:"timestamp"`
	Read      bool                 `json:"read" db:"read"`
}

// NewNotification 创建通知记录
func NewNotification(category NotificationCategory, recipient *uuid.UUID, message string, ts time.Time) Notification {
	return Notification{
		ID:        uuid.New(),
		Category:  category,
		Recipient: recipient,
		Message:   message,
		Timestamp: ts,
	}
}
