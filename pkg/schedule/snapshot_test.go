package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/catalog"
	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/model"
)

func newStaff(name string, role model.Role) *model.Staff {
	return &model.Staff{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Role:      role,
		Active:    true,
	}
}

func newTestSnapshot(t *testing.T) (*Snapshot, *model.Staff) {
	t.Helper()

	cat := catalog.Default()
	staff := newStaff("Anna", model.RoleWoonbegeleider)

	instances := []*model.ShiftInstance{
		model.NewShiftInstance("2026-03-08", cat.Get("early-full")),
		model.NewShiftInstance("2026-03-07", cat.Get("early-full")),
		model.NewShiftInstance("2026-03-07", cat.Get("late-full")),
	}
	instances[1].AssignStaff(staff.ID)

	return NewSnapshot([]*model.Staff{staff}, cat, instances), staff
}

func TestSnapshot_Indexes(t *testing.T) {
	snap, staff := newTestSnapshot(t)

	if snap.GetStaff(staff.ID) == nil {
		t.Error("Should find staff by ID")
	}
	if snap.GetStaff(uuid.New()) != nil {
		t.Error("Unknown staff should return nil")
	}

	if got := len(snap.InstancesOn("2026-03-07")); got != 2 {
		t.Errorf("Expected 2 instances on 2026-03-07, got %d", got)
	}

	if got := len(snap.StaffInstances(staff.ID)); got != 1 {
		t.Errorf("Expected 1 instance for staff, got %d", got)
	}
}

func TestSnapshot_GetInstance(t *testing.T) {
	snap, _ := newTestSnapshot(t)

	if _, err := snap.GetInstance("2026-03-07-early-full"); err != nil {
		t.Errorf("Existing instance should be found: %v", err)
	}

	_, err := snap.GetInstance("2026-03-07-missing")
	if err == nil {
		t.Fatal("Unknown instance should return error")
	}
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %s", errors.GetCode(err))
	}
}

func TestSnapshot_AddAssignment(t *testing.T) {
	snap, staff := newTestSnapshot(t)

	if err := snap.AddAssignment("2026-03-08-early-full", staff.ID); err != nil {
		t.Fatalf("AddAssignment failed: %v", err)
	}

	// 分配后按员工索引立即可见
	if got := len(snap.StaffInstances(staff.ID)); got != 2 {
		t.Errorf("Expected 2 instances for staff after assignment, got %d", got)
	}

	// 重复分配返回错误
	if err := snap.AddAssignment("2026-03-08-early-full", staff.ID); err == nil {
		t.Error("Duplicate assignment should fail")
	}

	// 花名册外的员工不能分配
	if err := snap.AddAssignment("2026-03-08-early-full", uuid.New()); err == nil {
		t.Error("Unknown staff should not be assignable")
	}
}

func TestSnapshot_SortedInstances(t *testing.T) {
	snap, _ := newTestSnapshot(t)

	sorted := snap.SortedInstances()
	if len(sorted) != 3 {
		t.Fatalf("Expected 3 instances, got %d", len(sorted))
	}

	// 先按日期再按ID排序
	if sorted[0].Date != "2026-03-07" || sorted[2].Date != "2026-03-08" {
		t.Error("Instances should be sorted by date")
	}
	if sorted[0].ID > sorted[1].ID {
		t.Error("Same-date instances should be sorted by ID")
	}
}

func TestSnapshot_HasPendingSwap(t *testing.T) {
	snap, staff := newTestSnapshot(t)
	other := uuid.New()

	req := model.NewSwapRequest("2026-03-07-early-full", staff.ID, other, "")
	snap.SetSwapRequests([]*model.SwapRequest{req})

	now := req.CreatedAt.Add(time.Hour)

	if !snap.HasPendingSwap("2026-03-07-early-full", staff.ID, now) {
		t.Error("Requestor should have pending swap")
	}
	if !snap.HasPendingSwap("2026-03-07-early-full", other, now) {
		t.Error("Target should have pending swap")
	}
	if snap.HasPendingSwap("2026-03-07-late-full", staff.ID, now) {
		t.Error("Different shift should have no pending swap")
	}

	// 过期请求不再阻止推荐
	expired := req.CreatedAt.Add(25 * time.Hour)
	if snap.HasPendingSwap("2026-03-07-early-full", staff.ID, expired) {
		t.Error("Expired request should not count as pending")
	}
}
