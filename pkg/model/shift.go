// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ShiftCategory 班次时段类别
type ShiftCategory string

const (
	CategoryEarly ShiftCategory = "early" // 早班（12点前开始）
	CategoryLate  ShiftCategory = "late"  // 晚班
)

// ShiftStatus 班次实例状态
type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "scheduled"
	ShiftActive    ShiftStatus = "active"
	ShiftCompleted ShiftStatus = "completed"
	ShiftCancelled ShiftStatus = "cancelled"
)

// 迟到判定：签到晚于班次开始 15 分钟
const LateCheckInGrace = 15 * time.Minute

// ShiftType 班次类型（目录数据，加载后不可变）
type ShiftType struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	StartTime string `json:"start_time" db:"start_time"` // HH:MM
	EndTime   string `json:"end_time" db:"end_time"`     // HH:MM
	MaxStaff  int    `json:"max_staff" db:"max_staff"`
	Color     string `json:"color,omitempty" db:"color"`
}

// StartClock 返回开始时间的时和分
func (t *ShiftType) StartClock() (hour, minute int) {
	return parseClock(t.StartTime)
}

// EndClock 返回结束时间的时和分
func (t *ShiftType) EndClock() (hour, minute int) {
	return parseClock(t.EndTime)
}

// Category 返回班次时段类别
func (t *ShiftType) Category() ShiftCategory {
	hour, _ := t.StartClock()
	if hour < 12 {
		return CategoryEarly
	}
	return CategoryLate
}

// parseClock 解析 HH:MM，格式错误返回 0,0
// 目录加载时已做快速失败校验，这里不再返回错误
func parseClock(s string) (hour, minute int) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// ShiftInstance 班次实例（某日期上的一次具体班次）
type ShiftInstance struct {
	ID            string          `json:"id" db:"id"` // <date>-<shift_type_id>
	Date          string          `json:"date" db:"date"`
	ShiftTypeID   string          `json:"shift_type_id" db:"shift_type_id"`
	StartTime     string          `json:"start_time" db:"start_time"` // 创建时从类型复制
	EndTime       string          `json:"end_time" db:"end_time"`
	AssignedStaff []uuid.UUID     `json:"assigned_staff" db:"assigned_staff"`
	CheckIns      []CheckInEvent  `json:"check_ins,omitempty" db:"-"`
	CheckOuts     []CheckOutEvent `json:"check_outs,omitempty" db:"-"`
	Status        ShiftStatus     `json:"status" db:"status"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
}

// NewShiftInstance 根据班次类型在某日期创建实例
func NewShiftInstance(date string, shiftType *ShiftType) *ShiftInstance {
	return &ShiftInstance{
		ID:          fmt.Sprintf("%s-%s", date, shiftType.ID),
		Date:        date,
		ShiftTypeID: shiftType.ID,
		StartTime:   shiftType.StartTime,
		EndTime:     shiftType.EndTime,
		Status:      ShiftScheduled,
	}
}

// StartHour 返回开始小时
func (s *ShiftInstance) StartHour() int {
	hour, _ := parseClock(s.StartTime)
	return hour
}

// EndHour 返回结束小时
func (s *ShiftInstance) EndHour() int {
	hour, _ := parseClock(s.EndTime)
	return hour
}

// HasStaff 检查员工是否已分配到该班次
func (s *ShiftInstance) HasStaff(staffID uuid.UUID) bool {
	for _, id := range s.AssignedStaff {
		if id == staffID {
			return true
		}
	}
	return false
}

// AssignStaff 将员工加入分配列表（去重）
func (s *ShiftInstance) AssignStaff(staffID uuid.UUID) bool {
	if s.HasStaff(staffID) {
		return false
	}
	s.AssignedStaff = append(s.AssignedStaff, staffID)
	return true
}

// Shortfall 返回距离满员还缺的人数
func (s *ShiftInstance) Shortfall(maxStaff int) int {
	shortfall := maxStaff - len(s.AssignedStaff)
	if shortfall < 0 {
		return 0
	}
	return shortfall
}

// IsActiveAt 检查班次在给定时刻是否正在进行
// 结束边界使用结束时间的分钟数，半开区间 [start, end)
func (s *ShiftInstance) IsActiveAt(now time.Time) bool {
	if now.Format(DateLayout) != s.Date {
		return false
	}
	startHour, startMin := parseClock(s.StartTime)
	endHour, endMin := parseClock(s.EndTime)

	nowMinutes := now.Hour()*60 + now.Minute()
	startMinutes := startHour*60 + startMin
	endMinutes := endHour*60 + endMin

	return nowMinutes >= startMinutes && nowMinutes < endMinutes
}

// CheckInEvent 签到事件
type CheckInEvent struct {
	StaffID   uuid.UUID `json:"staff_id"`
	Timestamp time.Time `json:"timestamp"`
	IsLate    bool      `json:"is_late"`
}

// CheckOutEvent 签退事件
type CheckOutEvent struct {
	StaffID   uuid.UUID `json:"staff_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCheckInEvent 创建签到事件，根据班次开始时间推导迟到标志
func NewCheckInEvent(staffID uuid.UUID, ts time.Time, shiftStart time.Time) CheckInEvent {
	return CheckInEvent{
		StaffID:   staffID,
		Timestamp: ts,
		IsLate:    ts.After(shiftStart.Add(LateCheckInGrace)),
	}
}

// ShiftStart 返回班次实例开始时刻（日期 + 开始时间）
func (s *ShiftInstance) ShiftStart() time.Time {
	date, err := time.Parse(DateLayout, s.Date)
	if err != nil {
		return time.Time{}
	}
	hour, min := parseClock(s.StartTime)
	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, date.Location())
}
