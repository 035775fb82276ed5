// Package conflict 提供排班冲突检测
package conflict

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
)

// Type 冲突类型
type Type string

const (
	TypeOverlap Type = "overlap" // 时间重叠
	TypeRest    Type = "rest"    // 休息时间不足
)

// Conflict 冲突信息
type Conflict struct {
	Type             Type   `json:"type"`
	Message          string `json:"message"`
	OffendingShiftID string `json:"offending_shift_id"`
}

// Config 检测器配置
type Config struct {
	LateEndHour    int // 前一天班次结束不早于该小时则触发休息检查
	EarlyStartHour int // 目标班次开始不晚于该小时则触发休息检查
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		LateEndHour:    22,
		EarlyStartHour: 9,
	}
}

// Detector 冲突检测器（纯函数，无副作用）
type Detector struct {
	config *Config
}

// NewDetector 创建冲突检测器
func NewDetector(config *Config) *Detector {
	if config == nil {
		config = DefaultConfig()
	}
	return &Detector{config: config}
}

// Detect 检测将员工分配到目标班次会产生的冲突
// 返回有序冲突列表，空列表表示可以分配；班次不存在返回 NotFound 错误
func (d *Detector) Detect(s *schedule.Snapshot, shiftInstanceID string, staffID uuid.UUID) ([]Conflict, error) {
	target, err := s.GetInstance(shiftInstanceID)
	if err != nil {
		return nil, err
	}

	conflicts := make([]Conflict, 0)

	// 重叠检查：同日期、同员工、小时区间相交（半开区间）
	for _, other := range s.StaffInstances(staffID) {
		if other.ID == target.ID || other.Date != target.Date {
			continue
		}
		if other.Status == model.ShiftCancelled {
			continue
		}
		if hoursOverlap(target.StartHour(), target.EndHour(), other.StartHour(), other.EndHour()) {
			conflicts = append(conflicts, Conflict{
				Type:             TypeOverlap,
				Message:          fmt.Sprintf("与 %s 的班次 %s (%s-%s) 时间重叠", other.Date, other.ShiftTypeID, other.StartTime, other.EndTime),
				OffendingShiftID: other.ID,
			})
		}
	}

	// 休息检查：前一天晚班结束不早于22点且目标班次开始不晚于9点
	if target.StartHour() <= d.config.EarlyStartHour {
		prevDate := model.PreviousDate(target.Date)
		for _, prev := range s.StaffInstances(staffID) {
			if prev.Date != prevDate || prev.Status == model.ShiftCancelled {
				continue
			}
			if prev.EndHour() >= d.config.LateEndHour {
				conflicts = append(conflicts, Conflict{
					Type:             TypeRest,
					Message:          fmt.Sprintf("前一天班次 %s 结束于 %s，早班前休息不足", prev.ShiftTypeID, prev.EndTime),
					OffendingShiftID: prev.ID,
				})
			}
		}
	}

	return conflicts, nil
}

// IsAssignable 检查分配是否无冲突
func (d *Detector) IsAssignable(s *schedule.Snapshot, shiftInstanceID string, staffID uuid.UUID) (bool, error) {
	conflicts, err := d.Detect(s, shiftInstanceID, staffID)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// hoursOverlap 检查两个小时区间是否相交（半开区间比较）
func hoursOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
