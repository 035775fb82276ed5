// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/model"
)

// NotificationRepository 通知仓储
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch 批量写入通知
// 生成器一次扫描产出一批，整批落库
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (id, category, recipient, message, timestamp, read)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, n := range notifications {
		_, err := r.db.ExecContext(ctx, query,
			n.ID, string(n.Category), n.Recipient, n.Message, n.Timestamp, n.Read,
		)
		if err != nil {
			return fmt.Errorf("写入通知 %s 失败: %w", n.ID, err)
		}
	}

	return nil
}

// ListUnread 获取某员工的未读通知，包含广播通知（recipient 为空）
func (r *NotificationRepository) ListUnread(ctx context.Context, staffID uuid.UUID) ([]model.Notification, error) {
	query := `
		SELECT id, category, recipient, message, timestamp, read
		FROM notifications
		WHERE read = FALSE AND (recipient = $1 OR recipient IS NULL)
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, fmt.Errorf("查询未读通知失败: %w", err)
	}
	defer rows.Close()

	var result []model.Notification
	for rows.Next() {
		var n model.Notification
		var category string
		if err := rows.Scan(&n.ID, &category, &n.Recipient, &n.Message, &n.Timestamp, &n.Read); err != nil {
			return nil, fmt.Errorf("扫描通知行失败: %w", err)
		}
		n.Category = model.NotificationCategory(category)
		result = append(result, n)
	}

	return result, rows.Err()
}

// MarkRead 将通知标记为已读
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("标记通知已读失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("通知不存在")
	}

	return nil
}

// PurgeOlderThan 清理早于给定时间的已读通知
func (r *NotificationRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE read = TRUE AND timestamp < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理通知失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
