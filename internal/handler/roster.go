// Package handler 提供HTTP请求处理器
package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/internal/config"
	"github.com/banbiao/banbiao/internal/metrics"
	"github.com/banbiao/banbiao/pkg/conflict"
	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/workload"
)

// RosterHandler 工作量与冲突处理器
type RosterHandler struct {
	cfg *config.EngineConfig
}

// NewRosterHandler 创建工作量与冲突处理器
func NewRosterHandler(cfg *config.EngineConfig) *RosterHandler {
	return &RosterHandler{cfg: cfg}
}

// detectorConfig 从引擎配置构建冲突检测配置
func (h *RosterHandler) detectorConfig() *conflict.Config {
	return &conflict.Config{
		LateEndHour:    h.cfg.RestLateEndHour,
		EarlyStartHour: h.cfg.RestEarlyStartHour,
	}
}

// WorkloadRequest 工作量统计请求
type WorkloadRequest struct {
	SnapshotInput
}

// WorkloadResponse 工作量统计响应
type WorkloadResponse struct {
	Profiles []*workload.Profile       `json:"profiles"`
	Fairness *workload.FairnessSummary `json:"fairness"`
}

// Workload 计算工作量画像和公平性摘要
func (h *RosterHandler) Workload(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req WorkloadRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	snap, appErr := buildSnapshot(&req.SnapshotInput)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	profiles := workload.NewCalculator().ComputeProfiles(snap)
	fairness := workload.Summarize(profiles)

	metrics.SetFairnessGini("shifts", fairness.ShiftGini)
	metrics.SetFairnessGini("weekend", fairness.WeekendGini)
	metrics.SetFairnessScore(fairness.OverallScore)

	// 按员工ID排序保证输出确定性，偏差明细已有序
	ordered := make([]*workload.Profile, len(fairness.StaffDetails))
	for i, d := range fairness.StaffDetails {
		ordered[i] = profiles[d.StaffID]
	}

	respondJSON(w, http.StatusOK, WorkloadResponse{
		Profiles: ordered,
		Fairness: fairness,
	})
}

// ConflictsRequest 冲突检测请求
type ConflictsRequest struct {
	SnapshotInput
	ShiftInstanceID string `json:"shift_instance_id"`
	StaffID         string `json:"staff_id"`
}

// ConflictsResponse 冲突检测响应
type ConflictsResponse struct {
	Assignable bool                `json:"assignable"`
	Conflicts  []conflict.Conflict `json:"conflicts"`
}

// Conflicts 检测将员工分配到班次会产生的冲突
func (h *RosterHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req ConflictsRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	if req.ShiftInstanceID == "" {
		respondError(w, errors.InvalidInput("shift_instance_id", "不能为空"))
		return
	}
	staffID, err := uuid.Parse(req.StaffID)
	if err != nil {
		respondError(w, errors.InvalidFormat("staff_id", req.StaffID).WithCause(err))
		return
	}

	snap, appErr := buildSnapshot(&req.SnapshotInput)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	detector := conflict.NewDetector(h.detectorConfig())
	conflicts, err := detector.Detect(snap, req.ShiftInstanceID, staffID)
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	for _, c := range conflicts {
		metrics.RecordConflictCheck(string(c.Type), true)
	}
	if len(conflicts) == 0 {
		metrics.RecordConflictCheck("none", false)
	}

	respondJSON(w, http.StatusOK, ConflictsResponse{
		Assignable: len(conflicts) == 0,
		Conflicts:  conflicts,
	})
}
