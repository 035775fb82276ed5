// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/model"
)

// SwapRequestRepository 换班请求仓储
type SwapRequestRepository struct {
	db DB
}

// NewSwapRequestRepository 创建换班请求仓储
func NewSwapRequestRepository(db DB) *SwapRequestRepository {
	return &SwapRequestRepository{db: db}
}

// Create 创建换班请求
func (r *SwapRequestRepository) Create(ctx context.Context, req *model.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (id, shift_instance_id, requestor_id, target_id, message, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.ShiftInstanceID, req.RequestorID, req.TargetID,
		req.Message, string(req.Status), req.CreatedAt, req.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("创建换班请求失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取换班请求
func (r *SwapRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	query := `
		SELECT id, shift_instance_id, requestor_id, target_id, message, status, created_at, expires_at
		FROM swap_requests
		WHERE id = $1
	`

	req, err := scanSwapRequest(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询换班请求失败: %w", err)
	}

	return req, nil
}

// ListByHorizon 按排班周期加载换班请求
// 连同班次实例一起装进快照，供推荐器过滤已有待处理配对
func (r *SwapRequestRepository) ListByHorizon(ctx context.Context, h Horizon) ([]*model.SwapRequest, error) {
	start, end := h.DateRange()

	query := `
		SELECT s.id, s.shift_instance_id, s.requestor_id, s.target_id, s.message, s.status, s.created_at, s.expires_at
		FROM swap_requests s
		JOIN shift_instances i ON i.id = s.shift_instance_id
		WHERE i.date BETWEEN $1 AND $2
		ORDER BY s.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("查询换班请求失败: %w", err)
	}
	defer rows.Close()

	var result []*model.SwapRequest
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描换班请求行失败: %w", err)
		}
		result = append(result, req)
	}

	return result, rows.Err()
}

// UpdateStatus 更新换班请求状态
// 只允许从 pending 出发的状态迁移，过期请求视同不存在
func (r *SwapRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SwapStatus) error {
	query := `
		UPDATE swap_requests SET status = $2
		WHERE id = $1 AND status = $3 AND expires_at > $4
	`

	result, err := r.db.ExecContext(ctx, query, id, string(status), string(model.SwapPending), time.Now())
	if err != nil {
		return fmt.Errorf("更新换班请求状态失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("换班请求不存在、已处理或已过期")
	}

	return nil
}

// scanSwapRequest 扫描单行换班请求
func scanSwapRequest(row Scanner) (*model.SwapRequest, error) {
	req := &model.SwapRequest{}
	var status string

	err := row.Scan(
		&req.ID, &req.ShiftInstanceID, &req.RequestorID, &req.TargetID,
		&req.Message, &status, &req.CreatedAt, &req.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = model.SwapStatus(status)
	return req, nil
}
