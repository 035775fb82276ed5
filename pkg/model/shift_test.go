package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestShiftType_Category(t *testing.T) {
	early := &ShiftType{ID: "early-full", StartTime: "07:00", EndTime: "15:00"}
	if early.Category() != CategoryEarly {
		t.Error("Shift starting at 07:00 should be early")
	}

	late := &ShiftType{ID: "late-full", StartTime: "14:00", EndTime: "22:00"}
	if late.Category() != CategoryLate {
		t.Error("Shift starting at 14:00 should be late")
	}

	// 12:00 整属于晚班
	noon := &ShiftType{ID: "noon", StartTime: "12:00", EndTime: "20:00"}
	if noon.Category() != CategoryLate {
		t.Error("Shift starting at 12:00 should be late")
	}
}

func TestNewShiftInstance(t *testing.T) {
	shiftType := &ShiftType{ID: "early-full", Name: "早全班", StartTime: "07:00", EndTime: "15:00", MaxStaff: 2}
	inst := NewShiftInstance("2026-03-07", shiftType)

	if inst.ID != "2026-03-07-early-full" {
		t.Errorf("Expected ID 2026-03-07-early-full, got %s", inst.ID)
	}
	if inst.StartTime != "07:00" || inst.EndTime != "15:00" {
		t.Error("Instance should copy times from shift type")
	}
	if inst.Status != ShiftScheduled {
		t.Errorf("New instance should be scheduled, got %s", inst.Status)
	}
}

func TestShiftInstance_AssignStaff(t *testing.T) {
	inst := &ShiftInstance{ID: "2026-03-07-early-full", Date: "2026-03-07"}
	staffID := uuid.New()

	if !inst.AssignStaff(staffID) {
		t.Error("First assignment should succeed")
	}
	// 重复分配被拒绝
	if inst.AssignStaff(staffID) {
		t.Error("Duplicate assignment should be rejected")
	}
	if len(inst.AssignedStaff) != 1 {
		t.Errorf("Expected 1 assigned staff, got %d", len(inst.AssignedStaff))
	}
}

func TestShiftInstance_Shortfall(t *testing.T) {
	inst := &ShiftInstance{ID: "x"}
	if inst.Shortfall(2) != 2 {
		t.Errorf("Empty shift should have shortfall 2, got %d", inst.Shortfall(2))
	}

	inst.AssignStaff(uuid.New())
	inst.AssignStaff(uuid.New())
	if inst.Shortfall(2) != 0 {
		t.Errorf("Full shift should have shortfall 0, got %d", inst.Shortfall(2))
	}

	// 超员不返回负数
	inst.AssignStaff(uuid.New())
	if inst.Shortfall(2) != 0 {
		t.Error("Overstaffed shift should have shortfall 0")
	}
}

func TestShiftInstance_IsActiveAt(t *testing.T) {
	inst := &ShiftInstance{
		ID:        "2026-03-07-late-intermediate",
		Date:      "2026-03-07",
		StartTime: "15:00",
		EndTime:   "23:30",
	}

	at := func(hour, min int) time.Time {
		return time.Date(2026, 3, 7, hour, min, 0, 0, time.UTC)
	}

	if inst.IsActiveAt(at(14, 59)) {
		t.Error("Shift should not be active before start")
	}
	if !inst.IsActiveAt(at(15, 0)) {
		t.Error("Shift should be active at start")
	}
	// 结束边界用结束时间的分钟数，23:29 仍在班内
	if !inst.IsActiveAt(at(23, 29)) {
		t.Error("Shift should be active one minute before end")
	}
	// 半开区间，23:30 恰好结束
	if inst.IsActiveAt(at(23, 30)) {
		t.Error("Shift should not be active at end boundary")
	}

	// 其他日期不算进行中
	otherDay := time.Date(2026, 3, 8, 16, 0, 0, 0, time.UTC)
	if inst.IsActiveAt(otherDay) {
		t.Error("Shift should not be active on a different date")
	}
}

func TestNewCheckInEvent(t *testing.T) {
	staffID := uuid.New()
	shiftStart := time.Date(2026, 3, 7, 7, 0, 0, 0, time.UTC)

	// 开始后15分钟内不算迟到
	onTime := NewCheckInEvent(staffID, shiftStart.Add(15*time.Minute), shiftStart)
	if onTime.IsLate {
		t.Error("Check-in exactly 15 minutes after start should not be late")
	}

	late := NewCheckInEvent(staffID, shiftStart.Add(16*time.Minute), shiftStart)
	if !late.IsLate {
		t.Error("Check-in 16 minutes after start should be late")
	}
}

func TestShiftInstance_ShiftStart(t *testing.T) {
	inst := &ShiftInstance{Date: "2026-03-07", StartTime: "09:00"}
	start := inst.ShiftStart()

	if start.Hour() != 9 || start.Day() != 7 || start.Month() != time.March {
		t.Errorf("Unexpected shift start: %v", start)
	}
}
