// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/catalog"
	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
)

// StaffInput 员工输入
type StaffInput struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Active           *bool    `json:"active,omitempty"`
	UnavailableDates []string `json:"unavailable_dates,omitempty"`
}

// ShiftTypeInput 班次类型输入
type ShiftTypeInput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
	MaxStaff  int    `json:"max_staff"`
	Color     string `json:"color,omitempty"`
}

// InstanceInput 班次实例输入
type InstanceInput struct {
	ID            string   `json:"id,omitempty"`
	Date          string   `json:"date"`
	ShiftTypeID   string   `json:"shift_type_id"`
	StartTime     string   `json:"start_time,omitempty"`
	EndTime       string   `json:"end_time,omitempty"`
	AssignedStaff []string `json:"assigned_staff,omitempty"`
	Status        string   `json:"status,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// SwapRequestInput 换班请求输入
type SwapRequestInput struct {
	ID              string `json:"id,omitempty"`
	ShiftInstanceID string `json:"shift_instance_id"`
	RequestorID     string `json:"requestor_id"`
	TargetID        string `json:"target_id"`
	Status          string `json:"status,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"` // RFC3339
	ExpiresAt       string `json:"expires_at,omitempty"` // RFC3339
}

// SnapshotInput 排班快照输入，各操作共用
type SnapshotInput struct {
	Roster       []StaffInput       `json:"roster"`
	ShiftTypes   []ShiftTypeInput   `json:"shift_types,omitempty"` // 为空时使用默认目录
	Instances    []InstanceInput    `json:"instances"`
	SwapRequests []SwapRequestInput `json:"swap_requests,omitempty"`
}

// buildSnapshot 从请求输入构建排班快照
func buildSnapshot(in *SnapshotInput) (*schedule.Snapshot, *errors.AppError) {
	if len(in.Roster) == 0 {
		return nil, errors.InvalidInput("roster", "花名册不能为空")
	}

	roster := make([]*model.Staff, 0, len(in.Roster))
	for _, s := range in.Roster {
		id, err := uuid.Parse(s.ID)
		if err != nil {
			return nil, errors.InvalidFormat("roster.id", s.ID).WithCause(err)
		}
		active := true
		if s.Active != nil {
			active = *s.Active
		}
		roster = append(roster, &model.Staff{
			BaseModel:        model.BaseModel{ID: id},
			Name:             s.Name,
			Role:             model.Role(s.Role),
			Active:           active,
			UnavailableDates: s.UnavailableDates,
		})
	}

	var cat *catalog.Catalog
	if len(in.ShiftTypes) == 0 {
		cat = catalog.Default()
	} else {
		types := make([]model.ShiftType, len(in.ShiftTypes))
		for i, t := range in.ShiftTypes {
			types[i] = model.ShiftType{
				ID:        t.ID,
				Name:      t.Name,
				StartTime: t.StartTime,
				EndTime:   t.EndTime,
				MaxStaff:  t.MaxStaff,
				Color:     t.Color,
			}
		}
		var err error
		cat, err = catalog.New(types)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				return nil, appErr
			}
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "班次类型目录无效")
		}
	}

	instances := make([]*model.ShiftInstance, 0, len(in.Instances))
	for _, i := range in.Instances {
		if _, err := time.Parse(model.DateLayout, i.Date); err != nil {
			return nil, errors.InvalidFormat("instances.date", i.Date).WithCause(err)
		}

		shiftType, err := cat.MustGet(i.ShiftTypeID)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				return nil, appErr
			}
			return nil, errors.Wrap(err, errors.CodeNotFound, "班次类型不存在")
		}

		inst := model.NewShiftInstance(i.Date, shiftType)
		if i.ID != "" {
			inst.ID = i.ID
		}
		if i.StartTime != "" {
			inst.StartTime = i.StartTime
		}
		if i.EndTime != "" {
			inst.EndTime = i.EndTime
		}
		if i.Status != "" {
			inst.Status = model.ShiftStatus(i.Status)
		}
		inst.Notes = i.Notes

		for _, sid := range i.AssignedStaff {
			staffID, err := uuid.Parse(sid)
			if err != nil {
				return nil, errors.InvalidFormat("instances.assigned_staff", sid).WithCause(err)
			}
			inst.AssignStaff(staffID)
		}

		instances = append(instances, inst)
	}

	snap := schedule.NewSnapshot(roster, cat, instances)

	if len(in.SwapRequests) > 0 {
		swaps := make([]*model.SwapRequest, 0, len(in.SwapRequests))
		for _, r := range in.SwapRequests {
			req, appErr := parseSwapRequest(&r)
			if appErr != nil {
				return nil, appErr
			}
			swaps = append(swaps, req)
		}
		snap.SetSwapRequests(swaps)
	}

	return snap, nil
}

// parseSwapRequest 解析换班请求输入
func parseSwapRequest(in *SwapRequestInput) (*model.SwapRequest, *errors.AppError) {
	requestorID, err := uuid.Parse(in.RequestorID)
	if err != nil {
		return nil, errors.InvalidFormat("swap_requests.requestor_id", in.RequestorID).WithCause(err)
	}
	targetID, err := uuid.Parse(in.TargetID)
	if err != nil {
		return nil, errors.InvalidFormat("swap_requests.target_id", in.TargetID).WithCause(err)
	}

	req := model.NewSwapRequest(in.ShiftInstanceID, requestorID, targetID, "")
	if in.ID != "" {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.InvalidFormat("swap_requests.id", in.ID).WithCause(err)
		}
		req.ID = id
	}
	if in.Status != "" {
		req.Status = model.SwapStatus(in.Status)
	}
	if in.CreatedAt != "" {
		ts, err := time.Parse(time.RFC3339, in.CreatedAt)
		if err != nil {
			return nil, errors.InvalidFormat("swap_requests.created_at", in.CreatedAt).WithCause(err)
		}
		req.CreatedAt = ts
		req.ExpiresAt = ts.Add(model.SwapRequestTTL)
	}
	if in.ExpiresAt != "" {
		ts, err := time.Parse(time.RFC3339, in.ExpiresAt)
		if err != nil {
			return nil, errors.InvalidFormat("swap_requests.expires_at", in.ExpiresAt).WithCause(err)
		}
		req.ExpiresAt = ts
	}

	return req, nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}

// toAppError 将任意错误转换为应用错误
func toAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "内部错误")
}

// decodeBody 解析JSON请求体
func decodeBody(r *http.Request, dst interface{}) *errors.AppError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}
	return nil
}

// requirePost 校验请求方法为POST
func requirePost(r *http.Request) *errors.AppError {
	if r.Method != http.MethodPost {
		return errors.New(errors.CodeInvalidInput, "仅支持POST方法")
	}
	return nil
}
