// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"

	"github.com/banbiao/banbiao/pkg/catalog"
	"github.com/banbiao/banbiao/pkg/schedule"
)

// SnapshotLoader 按排班周期组装引擎快照
type SnapshotLoader struct {
	staff      *StaffRepository
	shiftTypes *ShiftTypeRepository
	instances  *ShiftInstanceRepository
	swaps      *SwapRequestRepository
}

// NewSnapshotLoader 创建快照装载器
func NewSnapshotLoader(db DB) *SnapshotLoader {
	return &SnapshotLoader{
		staff:      NewStaffRepository(db),
		shiftTypes: NewShiftTypeRepository(db),
		instances:  NewShiftInstanceRepository(db),
		swaps:      NewSwapRequestRepository(db),
	}
}

// Load 加载某个排班周期的完整快照
// 目录表为空时回退到内置默认目录
func (l *SnapshotLoader) Load(ctx context.Context, h Horizon) (*schedule.Snapshot, error) {
	roster, err := l.staff.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载花名册失败: %w", err)
	}

	types, err := l.shiftTypes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载班次类型失败: %w", err)
	}

	var cat *catalog.Catalog
	if len(types) == 0 {
		cat = catalog.Default()
	} else {
		cat, err = catalog.New(types)
		if err != nil {
			return nil, fmt.Errorf("构建班次类型目录失败: %w", err)
		}
	}

	instances, err := l.instances.ListByHorizon(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("加载班次实例失败: %w", err)
	}

	swaps, err := l.swaps.ListByHorizon(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("加载换班请求失败: %w", err)
	}

	snap := schedule.NewSnapshot(roster, cat, instances)
	snap.SetSwapRequests(swaps)
	return snap, nil
}
