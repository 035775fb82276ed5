// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// SwapStatus 换班请求状态
type SwapStatus string

const (
	SwapPending  SwapStatus = "pending"
	SwapAccepted SwapStatus = "accepted"
	SwapRejected SwapStatus = "rejected"
	SwapApproved SwapStatus = "approved"
)

// 换班请求有效期
const SwapRequestTTL = 24 * time.Hour

// SwapRequest 换班请求
// 引擎只读取状态以避免重复推荐，状态流转由外部完成
type SwapRequest struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ShiftInstanceID string     `json:"shift_instance_id" db:"shift_instance_id"`
	RequestorID     uuid.UUID  `json:"requestor_id" db:"requestor_id"`
	TargetID        uuid.UUID  `json:"target_id" db:"target_id"`
	Message         string     `json:"message,omitempty" db:"message"`
	Status          SwapStatus `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at" db:"expires_at"`
}

// NewSwapRequest 创建换班请求（pending，24小时后过期）
func NewSwapRequest(shiftInstanceID string, requestorID, targetID uuid.UUID, message string) *SwapRequest {
	now := time.Now()
	return &SwapRequest{
		ID:              uuid.New(),
		ShiftInstanceID: shiftInstanceID,
		RequestorID:     requestorID,
		TargetID:        targetID,
		Message:         message,
		Status:          SwapPending,
		CreatedAt:       now,
		ExpiresAt:       now.Add(SwapRequestTTL),
	}
}

// IsExpired 检查请求是否已过期
func (r *SwapRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsPendingAt 检查请求在给定时刻是否处于待处理且未过期
func (r *SwapRequest) IsPendingAt(now time.Time) bool {
	return r.Status == SwapPending && !r.IsExpired(now)
}
