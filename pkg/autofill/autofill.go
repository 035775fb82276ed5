// Package autofill 提供缺员班次的自动补班引擎
package autofill

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/conflict"
	"github.com/banbiao/banbiao/pkg/logger"
	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
	"github.com/banbiao/banbiao/pkg/scorer"
	"github.com/banbiao/banbiao/pkg/workload"
)

// FillRecord 单次补班记录
type FillRecord struct {
	ShiftInstanceID string    `json:"shift_instance_id"`
	StaffID         uuid.UUID `json:"staff_id"`
	StaffName       string    `json:"staff_name"`
	Score           float64   `json:"score"`
}

// Result 自动补班结果
type Result struct {
	NewAssignments int                  `json:"new_assignments"`
	Filled         []FillRecord         `json:"filled"`
	Unfilled       []string             `json:"unfilled"` // 仍有缺口的班次实例ID
	Notifications  []model.Notification `json:"notifications"`
	Duration       time.Duration        `json:"duration"`
}

// Engine 自动补班引擎
// 对快照就地变更 AssignedStaff，这是该引擎明确的变更契约
type Engine struct {
	scorer     *scorer.Scorer
	detector   *conflict.Detector
	calculator *workload.Calculator
	logger     *logger.EngineLogger
}

// NewEngine 创建自动补班引擎
func NewEngine(sc *scorer.Scorer, det *conflict.Detector) *Engine {
	return &Engine{
		scorer:     sc,
		detector:   det,
		calculator: workload.NewCalculator(),
		logger:     logger.NewEngineLogger(),
	}
}

// Fill 为快照中所有缺员的班次补齐人手
// 对每个缺员班次按得分顺序尝试候选人，只接受零冲突者；
// 候选人耗尽仍未补满不是错误，只是可报告的结果。
// 返回新增分配数量等统计；快照中的分配列表被就地修改。
func (e *Engine) Fill(ctx context.Context, s *schedule.Snapshot) (*Result, error) {
	startTime := time.Now()

	result := &Result{
		Filled:        make([]FillRecord, 0),
		Unfilled:      make([]string, 0),
		Notifications: make([]model.Notification, 0),
	}

	instances := s.SortedInstances()

	understaffed := 0
	for _, inst := range instances {
		if t := s.Catalog.Get(inst.ShiftTypeID); t != nil &&
			inst.Status == model.ShiftScheduled && inst.Shortfall(t.MaxStaff) > 0 {
			understaffed++
		}
	}
	e.logger.StartAutoFill(len(instances), understaffed)

	for _, inst := range instances {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if inst.Status != model.ShiftScheduled {
			continue
		}

		shiftType := s.Catalog.Get(inst.ShiftTypeID)
		if shiftType == nil {
			continue
		}

		shortfall := inst.Shortfall(shiftType.MaxStaff)
		if shortfall == 0 {
			continue
		}

		// 画像在每个班次处理前全量重算，避免增量更新错误
		profiles := e.calculator.ComputeProfiles(s)

		exclude := make(map[uuid.UUID]bool, len(inst.AssignedStaff))
		for _, id := range inst.AssignedStaff {
			exclude[id] = true
		}

		candidates, err := e.scorer.Rank(s, profiles, inst.ShiftTypeID, inst.Date, exclude)
		if err != nil {
			return result, err
		}

		filled := 0
		for _, cand := range candidates {
			if filled >= shortfall {
				break
			}

			conflicts, err := e.detector.Detect(s, inst.ID, cand.Staff.ID)
			if err != nil {
				return result, err
			}
			if len(conflicts) > 0 {
				// 冲突规避是绝对的，任何冲突都直接跳过
				e.logger.ConflictSkip(inst.ID, cand.Staff.ID.String(), string(conflicts[0].Type))
				continue
			}

			if err := s.AddAssignment(inst.ID, cand.Staff.ID); err != nil {
				continue
			}

			e.logger.AssignmentMade(inst.ID, cand.Staff.ID.String(), cand.Score)
			result.Filled = append(result.Filled, FillRecord{
				ShiftInstanceID: inst.ID,
				StaffID:         cand.Staff.ID,
				StaffName:       cand.Staff.Name,
				Score:           cand.Score,
			})

			recipient := cand.Staff.ID
			result.Notifications = append(result.Notifications, model.NewNotification(
				model.NotifyAutoAssignment,
				&recipient,
				fmt.Sprintf("你已被自动排入 %s 的班次 %s (%s-%s)", inst.Date, shiftType.Name, inst.StartTime, inst.EndTime),
				time.Now(),
			))

			filled++
			result.NewAssignments++
		}

		if filled < shortfall {
			e.logger.ShiftUnfilled(inst.ID, shortfall-filled)
			result.Unfilled = append(result.Unfilled, inst.ID)
		}
	}

	result.Duration = time.Since(startTime)
	e.logger.AutoFillComplete(result.NewAssignments, result.Duration)

	return result, nil
}
