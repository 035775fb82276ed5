// Package notify 提供从排班状态派生通知记录
package notify

import (
	"fmt"
	"time"

	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
)

// Config 通知生成配置
type Config struct {
	ReminderLeadDays int // 班前提醒提前天数
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{ReminderLeadDays: 1}
}

// Generator 通知生成器
// 纯函数：只根据快照和给定时刻生成记录，不投递、不持久化
type Generator struct {
	config *Config
}

// NewGenerator 创建通知生成器
func NewGenerator(config *Config) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Generator{config: config}
}

// Generate 从快照派生三类通知：
// 班前提醒（明日有班的每个员工）、缺员提醒（每个未满员班次）、
// 可用性冲突（员工声明不可用的日期上仍有分配）
func (g *Generator) Generate(s *schedule.Snapshot, now time.Time) []model.Notification {
	notifications := make([]model.Notification, 0)

	reminderDate := now.AddDate(0, 0, g.config.ReminderLeadDays).Format(model.DateLayout)

	for _, inst := range s.SortedInstances() {
		if inst.Status == model.ShiftCancelled {
			continue
		}

		shiftType := s.Catalog.Get(inst.ShiftTypeID)
		typeName := inst.ShiftTypeID
		maxStaff := 0
		if shiftType != nil {
			typeName = shiftType.Name
			maxStaff = shiftType.MaxStaff
		}

		// 班前提醒
		if inst.Date == reminderDate {
			for _, staffID := range inst.AssignedStaff {
				recipient := staffID
				notifications = append(notifications, model.NewNotification(
					model.NotifyShiftReminder,
					&recipient,
					fmt.Sprintf("提醒：明天 %s 你有班次 %s (%s-%s)", inst.Date, typeName, inst.StartTime, inst.EndTime),
					now,
				))
			}
		}

		// 缺员提醒
		if inst.Status == model.ShiftScheduled && inst.Shortfall(maxStaff) > 0 {
			notifications = append(notifications, model.NewNotification(
				model.NotifyUnfilledShift,
				nil,
				fmt.Sprintf("班次 %s %s 缺 %d 人", inst.Date, typeName, inst.Shortfall(maxStaff)),
				now,
			))
		}

		// 可用性冲突
		for _, staffID := range inst.AssignedStaff {
			staff := s.GetStaff(staffID)
			if staff == nil || !staff.IsUnavailableOn(inst.Date) {
				continue
			}
			recipient := staffID
			notifications = append(notifications, model.NewNotification(
				model.NotifyAvailabilityConflict,
				&recipient,
				fmt.Sprintf("%s 在 %s 声明不可用，但被排入班次 %s", staff.Name, inst.Date, typeName),
				now,
			))
		}
	}

	return notifications
}
