// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/internal/config"
	"github.com/banbiao/banbiao/internal/metrics"
	"github.com/banbiao/banbiao/internal/repository"
	"github.com/banbiao/banbiao/pkg/autofill"
	"github.com/banbiao/banbiao/pkg/conflict"
	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/scorer"
	"github.com/banbiao/banbiao/pkg/workload"
)

// HorizonHandler 持久化排班周期处理器
// 与无状态快照接口不同，这里的数据从数据库按周期装载，结果写回数据库
type HorizonHandler struct {
	cfg       *config.EngineConfig
	loader    *repository.SnapshotLoader
	instances *repository.ShiftInstanceRepository
	notices   *repository.NotificationRepository
	swaps     *repository.SwapRequestRepository
}

// NewHorizonHandler 创建持久化排班周期处理器
func NewHorizonHandler(cfg *config.EngineConfig, db repository.DB) *HorizonHandler {
	return &HorizonHandler{
		cfg:       cfg,
		loader:    repository.NewSnapshotLoader(db),
		instances: repository.NewShiftInstanceRepository(db),
		notices:   repository.NewNotificationRepository(db),
		swaps:     repository.NewSwapRequestRepository(db),
	}
}

// parseHorizon 从查询参数或请求体字段解析排班周期
func parseHorizon(year, month int) (repository.Horizon, *errors.AppError) {
	if year < 2000 || year > 2100 {
		return repository.Horizon{}, errors.InvalidInput("year", "必须在 2000-2100 之间")
	}
	if month < 1 || month > 12 {
		return repository.Horizon{}, errors.InvalidInput("month", "必须在 1-12 之间")
	}
	return repository.Horizon{Year: year, Month: time.Month(month)}, nil
}

// HorizonAutoFillRequest 周期自动补班请求
type HorizonAutoFillRequest struct {
	Year           int `json:"year"`
	Month          int `json:"month"`
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// HorizonAutoFillResponse 周期自动补班响应
type HorizonAutoFillResponse struct {
	Success         bool                  `json:"success"`
	NewAssignments  int                   `json:"new_assignments"`
	Filled          []autofill.FillRecord `json:"filled"`
	Unfilled        []string              `json:"unfilled"`
	PersistedShifts int                   `json:"persisted_shifts"`
	Notifications   int                   `json:"notifications"`
	Duration        string                `json:"duration"`
}

// AutoFill 对某排班周期执行自动补班并把结果写回数据库
// 分配列表按班次逐条写回，任一班次被并发修改则该班次落库失败并中止
func (h *HorizonHandler) AutoFill(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req HorizonAutoFillRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	horizon, appErr := parseHorizon(req.Year, req.Month)
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

	snap, err := h.loader.Load(ctx, horizon)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载排班周期失败"))
		return
	}

	var rng *rand.Rand
	if h.cfg.RandomSeed != 0 {
		rng = rand.New(rand.NewSource(h.cfg.RandomSeed))
	}
	sc := scorer.DefaultConfig()
	sc.WeekendTarget = h.cfg.WeekendTarget
	sc.Jitter = h.cfg.JitterAmplitude

	det := conflict.NewDetector(&conflict.Config{
		LateEndHour:    h.cfg.RestLateEndHour,
		EarlyStartHour: h.cfg.RestEarlyStartHour,
	})

	engine := autofill.NewEngine(scorer.NewScorer(sc, rng), det)
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

	// 有变更的班次逐条写回
	changed := make(map[string]bool, len(result.Filled))
	for _, rec := range result.Filled {
		changed[rec.ShiftInstanceID] = true
	}
	persisted := 0
	for id := range changed {
		inst, err := snap.GetInstance(id)
		if err != nil {
			respondError(w, toAppError(err))
			return
		}
		if err := h.instances.SaveAssignments(ctx, inst); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "写回班次分配失败").WithField("shift_instance_id", id))
			return
		}
		persisted++
	}

	if err := h.notices.CreateBatch(ctx, result.Notifications); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "写入通知失败"))
		return
	}

	metrics.RecordAutoFill(result.NewAssignments, len(result.Unfilled), true, result.Duration)

	respondJSON(w, http.StatusOK, HorizonAutoFillResponse{
		Success:         true,
		NewAssignments:  result.NewAssignments,
		Filled:          result.Filled,
		Unfilled:        result.Unfilled,
		PersistedShifts: persisted,
		Notifications:   len(result.Notifications),
		Duration:        result.Duration.String(),
	})
}

// Workload 从数据库装载某排班周期并计算工作量与公平性
func (h *HorizonHandler) Workload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	horizon, appErr := parseHorizon(year, month)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	snap, err := h.loader.Load(r.Context(), horizon)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载排班周期失败"))
		return
	}

	profiles := workload.NewCalculator().ComputeProfiles(snap)
	fairness := workload.Summarize(profiles)

	metrics.SetFairnessGini("shifts", fairness.ShiftGini)
	metrics.SetFairnessGini("weekend", fairness.WeekendGini)
	metrics.SetFairnessScore(fairness.OverallScore)

	ordered := make([]*workload.Profile, len(fairness.StaffDetails))
	for i, d := range fairness.StaffDetails {
		ordered[i] = profiles[d.StaffID]
	}

	respondJSON(w, http.StatusOK, WorkloadResponse{
		Profiles: ordered,
		Fairness: fairness,
	})
}

// CreateSwapRequest 创建换班请求
type CreateSwapRequest struct {
	ShiftInstanceID string `json:"shift_instance_id"`
	RequestorID     string `json:"requestor_id"`
	TargetID        string `json:"target_id"`
	Message         string `json:"message,omitempty"`
}

// CreateSwap 创建并持久化换班请求
func (h *HorizonHandler) CreateSwap(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req CreateSwapRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	requestorID, err := uuid.Parse(req.RequestorID)
	if err != nil {
		respondError(w, errors.InvalidFormat("requestor_id", req.RequestorID).WithCause(err))
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		respondError(w, errors.InvalidFormat("target_id", req.TargetID).WithCause(err))
		return
	}

	inst, err := h.instances.GetByID(r.Context(), req.ShiftInstanceID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次实例失败"))
		return
	}
	if inst == nil {
		respondError(w, errors.NotFound("班次实例", req.ShiftInstanceID))
		return
	}

	swapReq := model.NewSwapRequest(inst.ID, requestorID, targetID, req.Message)
	if err := h.swaps.Create(r.Context(), swapReq); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建换班请求失败"))
		return
	}

	respondJSON(w, http.StatusCreated, swapReq)
}

// ResolveSwapRequest 换班请求状态流转
type ResolveSwapRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"` // accepted/rejected/approved
}

// ResolveSwap 处理待处理换班请求的状态流转
func (h *HorizonHandler) ResolveSwap(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req ResolveSwapRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		respondError(w, errors.InvalidFormat("id", req.ID).WithCause(err))
		return
	}

	status := model.SwapStatus(req.Status)
	switch status {
	case model.SwapAccepted, model.SwapRejected, model.SwapApproved:
	default:
		respondError(w, errors.InvalidInput("status", "只允许 accepted/rejected/approved"))
		return
	}

	if err := h.swaps.UpdateStatus(r.Context(), id, status); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeNotFound, "换班请求不存在、已处理或已过期"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id.String(),
		"status": string(status),
	})
}

// UnreadNotifications 获取某员工的未读通知（含广播）
func (h *HorizonHandler) UnreadNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	staffID, err := uuid.Parse(r.URL.Query().Get("staff_id"))
	if err != nil {
		respondError(w, errors.InvalidFormat("staff_id", r.URL.Query().Get("staff_id")).WithCause(err))
		return
	}

	notifications, err := h.notices.ListUnread(r.Context(), staffID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询未读通知失败"))
		return
	}

	respondJSON(w, http.StatusOK, NotificationsResponse{
		Notifications: notifications,
		Count:         len(notifications),
	})
}

// MarkNotificationRead 标记通知已读
func (h *HorizonHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if appErr := requirePost(r); appErr != nil {
		respondError(w, appErr)
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if appErr := decodeBody(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		respondError(w, errors.InvalidFormat("id", req.ID).WithCause(err))
		return
	}

	if err := h.notices.MarkRead(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeNotFound, "通知不存在"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"id": id.String(), "read": true})
}
