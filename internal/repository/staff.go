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

// StaffRepository 员工仓储
type StaffRepository struct {
	db DB
}

// NewStaffRepository 创建员工仓储
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create 创建员工
func (r *StaffRepository) Create(ctx context.Context, staff *model.Staff) error {
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	query := `
		INSERT INTO staff (id, name, role, active, unavailable_dates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		staff.ID, staff.Name, string(staff.Role), staff.Active,
		pq.Array(staff.UnavailableDates), staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, name, role, active, unavailable_dates, created_at, updated_at
		FROM staff
		WHERE id = $1 AND deleted_at IS NULL
	`

	staff, err := scanStaff(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}

	return staff, nil
}

// ListAll 获取全部未删除员工（花名册）
func (r *StaffRepository) ListAll(ctx context.Context) ([]*model.Staff, error) {
	query := `
		SELECT id, name, role, active, unavailable_dates, created_at, updated_at
		FROM staff
		WHERE deleted_at IS NULL
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询员工列表失败: %w", err)
	}
	defer rows.Close()

	var result []*model.Staff
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描员工行失败: %w", err)
		}
		result = append(result, staff)
	}

	return result, rows.Err()
}

// Update 更新员工
func (r *StaffRepository) Update(ctx context.Context, staff *model.Staff) error {
	staff.UpdatedAt = time.Now()

	query := `
		UPDATE staff SET name = $2, role = $3, active = $4, unavailable_dates = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		staff.ID, staff.Name, string(staff.Role), staff.Active,
		pq.Array(staff.UnavailableDates), staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// Delete 软删除员工
func (r *StaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE staff SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// scanStaff 扫描单行员工数据
func scanStaff(row Scanner) (*model.Staff, error) {
	staff := &model.Staff{}
	var role string
	var dates pq.StringArray

	err := row.Scan(
		&staff.ID, &staff.Name, &role, &staff.Active,
		&dates, &staff.CreatedAt, &staff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	staff.Role = model.Role(role)
	staff.UnavailableDates = []string(dates)
	return staff, nil
}
