// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/banbiao/banbiao/internal/config"
	"github.com/banbiao/banbiao/internal/metrics"
	"github.com/banbiao/banbiao/pkg/autofill"
	"github.com/banbiao/banbiao/pkg/conflict"
	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/notify"
	"github.com/banbiao/banbiao/pkg/scorer"
	"github.com/banbiao/banbiao/pkg/swap"
	"github.com/banbiao/banbiao/pkg/workload"
)

// EngineHandler 自动补班、换班推荐与通知生成处理器
type EngineHandler struct {
	cfg *config.EngineConfig
}

// NewEngineHandler 创建引擎处理器
func NewEngineHandler(cfg *config.EngineConfig) *EngineHandler {
	return &EngineHandler{cfg: cfg}
}

// newScorer 按请求创建评分器
// 随机源按请求独立创建，种子为0时使用时间种子
func (h *EngineHandler) newScorer() *scorer.Scorer {
	sc := scorer.DefaultConfig()
	sc.WeekendTarget = h.cfg.WeekendTarget
	sc.Jitter = h.cfg.JitterAmplitude

	var rng *rand.Rand
	if h.cfg.RandomSeed != 0 {
		rng = rand.New(rand.NewSource(h.cfg.RandomSeed))
	}
	return scorer.NewScorer(sc, rng)
}

// newDetector 按引擎配置创建冲突检测器
func (h *EngineHandler) newDetector() *conflict.Detector {
	return conflict.NewDetector(&conflict.Config{
		LateEndHour:    h.cfg.RestLateEndHour,
		EarlyStartHour: h.cfg.RestEarlyStartHour,
	})
}

// AutoFillRequest 自动补班请求
type AutoFillRequest struct {
	SnapshotInput
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// AutoFillResponse 自动补班响应
type AutoFillResponse struct {
	Success        bool                   `json:"success"`
	NewAssignments int                    `json:"new_assignments"`
	Filled         []autofill.FillRecord  `json:"filled"`
	Unfilled       []string               `json:"unfilled"`
	Notifications  []model.Notification   `json:"notifications"`
	Instances      []*model.ShiftInstance `json:"instances"`
	Duration       string                 `json:"duration"`
}

// AutoFill 为缺员班次自动补齐人手
func (h *EngineHandler) AutoFill(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req AutoFillRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	snap, appErr := buildSnapshot(&req.SnapshotInput)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	timeout := 30 * time.Second
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	engine := autofill.NewEngine(h.newScorer(), h.newDetector())
	result, err := engine.Fill(ctx, snap)
	if err != nil {
		metrics.RecordAutoFill(0, 0, false, 0)
		if err == context.DeadlineExceeded {
			respondError(w, errors.New(errors.CodeTimeout, "自动补班超时，请缩小排班周期"))
			return
		}
		respondError(w, toAppError(err))
		return
	}

	metrics.RecordAutoFill(result.NewAssignments, len(result.Unfilled), true, result.Duration)

	respondJSON(w, http.StatusOK, AutoFillResponse{
		Success:        true,
		NewAssignments: result.NewAssignments,
		Filled:         result.Filled,
		Unfilled:       result.Unfilled,
		Notifications:  result.Notifications,
		Instances:      snap.SortedInstances(),
		Duration:       result.Duration.String(),
	})
}

// SwapSuggestRequest 换班推荐请求
type SwapSuggestRequest struct {
	SnapshotInput
	ShiftInstanceID string `json:"shift_instance_id"`
	Now             string `json:"now,omitempty"` // RFC3339，缺省为当前时间
}

// SwapSuggestResponse 换班推荐响应
type SwapSuggestResponse struct {
	ShiftInstanceID string            `json:"shift_instance_id"`
	Suggestions     []swap.Suggestion `json:"suggestions"`
}

// SwapSuggest 为目标班次推荐换班候选人
func (h *EngineHandler) SwapSuggest(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req SwapSuggestRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	if req.ShiftInstanceID == "" {
		respondError(w, errors.InvalidInput("shift_instance_id", "不能为空"))
		return
	}

	now := time.Now()
	if req.Now != "" {
		ts, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			respondError(w, errors.InvalidFormat("now", req.Now).WithCause(err))
			return
		}
		now = ts
	}

	snap, appErr := buildSnapshot(&req.SnapshotInput)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	profiles := workload.NewCalculator().ComputeProfiles(snap)

	suggester := swap.NewSuggester(h.newDetector(), &swap.Options{
		MaxSuggestions: h.cfg.MaxSwapSuggestions,
		SkipPending:    h.cfg.SkipPendingSwaps,
	})
	suggestions, err := suggester.Suggest(snap, profiles, req.ShiftInstanceID, now)
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	metrics.RecordSwapSuggestions(len(suggestions))

	respondJSON(w, http.StatusOK, SwapSuggestResponse{
		ShiftInstanceID: req.ShiftInstanceID,
		Suggestions:     suggestions,
	})
}

// NotificationsRequest 通知生成请求
type NotificationsRequest struct {
	SnapshotInput
	Now string `json:"now,omitempty"` // RFC3339，缺省为当前时间
}

// NotificationsResponse 通知生成响应
type NotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	Count         int                  `json:"count"`
}

// Notifications 从排班状态派生通知记录
func (h *EngineHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req NotificationsRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	now := time.Now()
	if req.Now != "" {
		ts, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			respondError(w, errors.InvalidFormat("now", req.Now).WithCause(err))
			return
		}
		now = ts
	}

	snap, appErr := buildSnapshot(&req.SnapshotInput)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	generator := notify.NewGenerator(&notify.Config{
		ReminderLeadDays: h.cfg.ReminderLeadDays,
	})
	notifications := generator.Generate(snap, now)

	for _, n := range notifications {
		metrics.RecordNotifications(string(n.Category), 1)
	}

	respondJSON(w, http.StatusOK, NotificationsResponse{
		Notifications: notifications,
		Count:         len(notifications),
	})
}
