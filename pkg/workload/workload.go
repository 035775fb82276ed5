// Package workload 提供员工工作量统计分析
package workload

import (
	"sort"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
)

// Profile 员工工作量画像（派生数据，不持久化）
type Profile struct {
	StaffID         uuid.UUID `json:"staff_id"`
	StaffName       string    `json:"staff_name"`
	TotalShifts     int       `json:"total_shifts"`
	EarlyShifts     int       `json:"early_shifts"`
	LateShifts      int       `json:"late_shifts"`
	WeekendShifts   int       `json:"weekend_shifts"`
	ConsecutiveDays int       `json:"consecutive_days"`
	LastWorked      string    `json:"last_worked,omitempty"` // YYYY-MM-DD
}

// DominantCategory 返回当前占主导的班次时段类别
// 早晚班数相等时视为早班主导
func (p *Profile) DominantCategory() model.ShiftCategory {
	if p.LateShifts > p.EarlyShifts {
		return model.CategoryLate
	}
	return model.CategoryEarly
}

// Calculator 工作量计算器
// 每次调用都从快照全量重算，无内部状态，可任意次调用
type Calculator struct{}

// NewCalculator 创建工作量计算器
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ComputeProfiles 计算花名册上每个员工的工作量画像
// 无班次的员工得到零值画像；已取消的班次不计入
func (c *Calculator) ComputeProfiles(s *schedule.Snapshot) map[uuid.UUID]*Profile {
	profiles := make(map[uuid.UUID]*Profile, len(s.Roster))
	for _, st := range s.Roster {
		profiles[st.ID] = &Profile{
			StaffID:   st.ID,
			StaffName: st.Name,
		}
	}

	// 每人工作日期集合，用于连续天数计算
	workDates := make(map[uuid.UUID]map[string]bool)

	for _, inst := range s.Instances {
		if inst.Status == model.ShiftCancelled {
			continue
		}

		category := model.CategoryLate
		if t := s.Catalog.Get(inst.ShiftTypeID); t != nil {
			category = t.Category()
		}
		weekend := model.IsWeekend(inst.Date)

		for _, staffID := range inst.AssignedStaff {
			p := profiles[staffID]
			if p == nil {
				// 分配中出现花名册外的员工，跳过
				continue
			}

			p.TotalShifts++
			if category == model.CategoryEarly {
				p.EarlyShifts++
			} else {
				p.LateShifts++
			}
			if weekend {
				p.WeekendShifts++
			}
			if inst.Date > p.LastWorked {
				p.LastWorked = inst.Date
			}

			if workDates[staffID] == nil {
				workDates[staffID] = make(map[string]bool)
			}
			workDates[staffID][inst.Date] = true
		}
	}

	for staffID, dates := range workDates {
		profiles[staffID].ConsecutiveDays = trailingStreak(dates)
	}

	return profiles
}

// trailingStreak 计算以最近工作日结尾的连续工作天数
// 相邻日期恰好相差一天才算连续，不对跨夜班做特殊处理
func trailingStreak(dates map[string]bool) int {
	if len(dates) == 0 {
		return 0
	}

	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	streak := 1
	for i := len(sorted) - 1; i > 0; i-- {
		if model.IsConsecutiveDate(sorted[i-1], sorted[i]) {
			streak++
		} else {
			break
		}
	}
	return streak
}
