// Package schedule 提供排班快照
// 引擎的每个入口都显式接收快照，不依赖任何环境状态
package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/catalog"
	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/model"
)

// Snapshot 排班快照
// 持有某个排班周期（通常一个月）的全部输入数据和索引
type Snapshot struct {
	Roster       []*model.Staff         `json:"roster"`
	Catalog      *catalog.Catalog       `json:"-"`
	Instances    []*model.ShiftInstance `json:"instances"`
	SwapRequests []*model.SwapRequest   `json:"swap_requests,omitempty"`

	// 索引缓存
	staffMap         map[uuid.UUID]*model.Staff
	instanceMap      map[string]*model.ShiftInstance
	instancesByDate  map[string][]*model.ShiftInstance
	instancesByStaff map[uuid.UUID][]*model.ShiftInstance
}

// NewSnapshot 创建排班快照并建立索引
func NewSnapshot(roster []*model.Staff, cat *catalog.Catalog, instances []*model.ShiftInstance) *Snapshot {
	s := &Snapshot{
		Roster:    roster,
		Catalog:   cat,
		Instances: instances,
	}
	s.rebuildIndexes()
	return s
}

// SetSwapRequests 设置换班请求列表
func (s *Snapshot) SetSwapRequests(requests []*model.SwapRequest) {
	s.SwapRequests = requests
}

// rebuildIndexes 重建全部索引
func (s *Snapshot) rebuildIndexes() {
	s.staffMap = make(map[uuid.UUID]*model.Staff, len(s.Roster))
	for _, st := range s.Roster {
		s.staffMap[st.ID] = st
	}

	s.instanceMap = make(map[string]*model.ShiftInstance, len(s.Instances))
	s.instancesByDate = make(map[string][]*model.ShiftInstance)
	s.instancesByStaff = make(map[uuid.UUID][]*model.ShiftInstance)

	for _, inst := range s.Instances {
		s.instanceMap[inst.ID] = inst
		s.instancesByDate[inst.Date] = append(s.instancesByDate[inst.Date], inst)
		for _, staffID := range inst.AssignedStaff {
			s.instancesByStaff[staffID] = append(s.instancesByStaff[staffID], inst)
		}
	}
}

// GetStaff 获取员工，不存在返回 nil
func (s *Snapshot) GetStaff(id uuid.UUID) *model.Staff {
	return s.staffMap[id]
}

// GetInstance 获取班次实例，不存在返回 NotFound 错误
func (s *Snapshot) GetInstance(id string) (*model.ShiftInstance, error) {
	inst := s.instanceMap[id]
	if inst == nil {
		return nil, errors.NotFound("班次实例", id)
	}
	return inst, nil
}

// InstancesOn 获取某日期的所有班次实例
func (s *Snapshot) InstancesOn(date string) []*model.ShiftInstance {
	return s.instancesByDate[date]
}

// StaffInstances 获取员工已分配的所有班次实例
func (s *Snapshot) StaffInstances(staffID uuid.UUID) []*model.ShiftInstance {
	return s.instancesByStaff[staffID]
}

// ActiveStaff 返回在职员工列表
func (s *Snapshot) ActiveStaff() []*model.Staff {
	var result []*model.Staff
	for _, st := range s.Roster {
		if st.IsActive() {
			result = append(result, st)
		}
	}
	return result
}

// AddAssignment 将员工分配到班次实例并更新索引
// 这是引擎对快照的唯一就地变更入口
func (s *Snapshot) AddAssignment(instanceID string, staffID uuid.UUID) error {
	inst, err := s.GetInstance(instanceID)
	if err != nil {
		return err
	}
	if s.staffMap[staffID] == nil {
		return errors.NotFound("员工", staffID.String())
	}
	if !inst.AssignStaff(staffID) {
		return errors.New(errors.CodeAlreadyExists, "员工已分配到该班次")
	}
	s.instancesByStaff[staffID] = append(s.instancesByStaff[staffID], inst)
	return nil
}

// SortedInstances 返回按日期和ID排序的班次实例副本
// 用于需要确定性遍历顺序的场景
func (s *Snapshot) SortedInstances() []*model.ShiftInstance {
	sorted := make([]*model.ShiftInstance, len(s.Instances))
	copy(sorted, s.Instances)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// HasPendingSwap 检查某班次上是否已有涉及该员工的未过期待处理换班请求
func (s *Snapshot) HasPendingSwap(instanceID string, staffID uuid.UUID, now time.Time) bool {
	for _, req := range s.SwapRequests {
		if req.ShiftInstanceID != instanceID {
			continue
		}
		if !req.IsPendingAt(now) {
			continue
		}
		if req.RequestorID == staffID || req.TargetID == staffID {
			return true
		}
	}
	return false
}
