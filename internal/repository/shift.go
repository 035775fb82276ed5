// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/banbiao/banbiao/pkg/model"
)

// ShiftTypeRepository 班次类型仓储（目录数据）
type ShiftTypeRepository struct {
	db DB
}

// NewShiftTypeRepository 创建班次类型仓储
func NewShiftTypeRepository(db DB) *ShiftTypeRepository {
	return &ShiftTypeRepository{db: db}
}

// ListAll 获取全部班次类型定义
func (r *ShiftTypeRepository) ListAll(ctx context.Context) ([]model.ShiftType, error) {
	query := `
		SELECT id, name, start_time, end_time, max_staff, color
		FROM shift_types
		ORDER BY start_time
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询班次类型失败: %w", err)
	}
	defer rows.Close()

	var result []model.ShiftType
	for rows.Next() {
		var t model.ShiftType
		if err := rows.Scan(&t.ID, &t.Name, &t.StartTime, &t.EndTime, &t.MaxStaff, &t.Color); err != nil {
			return nil, fmt.Errorf("扫描班次类型行失败: %w", err)
		}
		result = append(result, t)
	}

	return result, rows.Err()
}

// ShiftInstanceRepository 班次实例仓储
type ShiftInstanceRepository struct {
	db DB
}

// NewShiftInstanceRepository 创建班次实例仓储
func NewShiftInstanceRepository(db DB) *ShiftInstanceRepository {
	return &ShiftInstanceRepository{db: db}
}

// ListByHorizon 按排班周期加载班次实例
// 快照在单个逻辑事务内读出
func (r *ShiftInstanceRepository) ListByHorizon(ctx context.Context, h Horizon) ([]*model.ShiftInstance, error) {
	start, end := h.DateRange()

	query := `
		SELECT id, date, shift_type_id, start_time, end_time, assigned_staff, status, notes
		FROM shift_instances
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, id
	`

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("查询班次实例失败: %w", err)
	}
	defer rows.Close()

	var result []*model.ShiftInstance
	for rows.Next() {
		inst := &model.ShiftInstance{}
		var status string
		var assigned pq.StringArray

		err := rows.Scan(
			&inst.ID, &inst.Date, &inst.ShiftTypeID, &inst.StartTime, &inst.EndTime,
			&assigned, &status, &inst.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描班次实例行失败: %w", err)
		}

		inst.Status = model.ShiftStatus(status)
		inst.AssignedStaff = make([]uuid.UUID, 0, len(assigned))
		for _, s := range assigned {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("班次 %s 的分配列表含非法ID '%s': %w", inst.ID, s, err)
			}
			inst.AssignedStaff = append(inst.AssignedStaff, id)
		}

		result = append(result, inst)
	}

	return result, rows.Err()
}

// GetByID 根据ID获取班次实例
func (r *ShiftInstanceRepository) GetByID(ctx context.Context, id string) (*model.ShiftInstance, error) {
	query := `
		SELECT id, date, shift_type_id, start_time, end_time, assigned_staff, status, notes
		FROM shift_instances
		WHERE id = $1
	`

	inst := &model.ShiftInstance{}
	var status string
	var assigned pq.StringArray

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inst.ID, &inst.Date, &inst.ShiftTypeID, &inst.StartTime, &inst.EndTime,
		&assigned, &status, &inst.Notes,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询班次实例失败: %w", err)
	}

	inst.Status = model.ShiftStatus(status)
	for _, s := range assigned {
		staffID, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("班次 %s 的分配列表含非法ID '%s': %w", inst.ID, s, err)
		}
		inst.AssignedStaff = append(inst.AssignedStaff, staffID)
	}

	return inst, nil
}

// UpdateAssignedStaff 按单条班次记录原子更新分配列表
// 以 updated_at 做乐观并发检查，避免两个调用方同时填补同一缺口
func (r *ShiftInstanceRepository) UpdateAssignedStaff(
	ctx context.Context,
	id string,
	assigned []uuid.UUID,
	expectedUpdatedAt time.Time,
) error {
	ids := make([]string, len(assigned))
	for i, staffID := range assigned {
		ids[i] = staffID.String()
	}

	query := `
		UPDATE shift_instances SET assigned_staff = $2, updated_at = $3
		WHERE id = $1 AND updated_at = $4
	`

	result, err := r.db.ExecContext(ctx, query, id, pq.Array(ids), time.Now(), expectedUpdatedAt)
	if err != nil {
		return fmt.Errorf("更新班次分配失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次 %s 已被并发修改或不存在", id)
	}

	return nil
}

// SaveAssignments 读取当前 updated_at 后按乐观检查写回分配列表
// 引擎补班结束后逐班次落库时使用
func (r *ShiftInstanceRepository) SaveAssignments(ctx context.Context, inst *model.ShiftInstance) error {
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT updated_at FROM shift_instances WHERE id = $1`, inst.ID,
	).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("班次实例不存在: %s", inst.ID)
	}
	if err != nil {
		return fmt.Errorf("读取班次更新时间失败: %w", err)
	}

	return r.UpdateAssignedStaff(ctx, inst.ID, inst.AssignedStaff, updatedAt)
}

// UpdateStatus 更新班次实例状态
func (r *ShiftInstanceRepository) UpdateStatus(ctx context.Context, id string, status model.ShiftStatus) error {
	query := `UPDATE shift_instances SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, string(status), time.Now())
	if err != nil {
		return fmt.Errorf("更新班次状态失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次实例不存在")
	}

	return nil
}
