package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/catalog"
	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
)

func newStaff(name string) *model.Staff {
	return &model.Staff{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Role:      model.RoleWoonbegeleider,
		Active:    true,
	}
}

func countByCategory(ns []model.Notification, c model.NotificationCategory) int {
	count := 0
	for _, n := range ns {
		if n.Category == c {
			count++
		}
	}
	return count
}

func TestGenerator_ShiftReminder(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")

	// 明天的班，满员
	inst := model.NewShiftInstance("2026-03-07", cat.Get(model.ShiftTypeEarlyIntermediate))
	inst.AssignStaff(anna.ID)

	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, []*model.ShiftInstance{inst})

	now := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	notifications := NewGenerator(nil).Generate(snap, now)

	if got := countByCategory(notifications, model.NotifyShiftReminder); got != 1 {
		t.Errorf("Expected 1 reminder, got %d", got)
	}

	for _, n := range notifications {
		if n.Category == model.NotifyShiftReminder {
			if n.Recipient == nil || *n.Recipient != anna.ID {
				t.Error("Reminder should be addressed to the assigned staff")
			}
		}
	}
}

func TestGenerator_UnfilledShift(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")

	// 早全班需要2人，只有1人
	inst := model.NewShiftInstance("2026-03-10", cat.Get("early-full"))
	inst.AssignStaff(anna.ID)

	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, []*model.ShiftInstance{inst})

	now := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	notifications := NewGenerator(nil).Generate(snap, now)

	if got := countByCategory(notifications, model.NotifyUnfilledShift); got != 1 {
		t.Errorf("Expected 1 unfilled notification, got %d", got)
	}

	// 缺员提醒是广播，没有特定接收人
	for _, n := range notifications {
		if n.Category == model.NotifyUnfilledShift && n.Recipient != nil {
			t.Error("Unfilled notification should be a broadcast")
		}
	}
}

func TestGenerator_AvailabilityConflict(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")
	anna.UnavailableDates = []string{"2026-03-10"}

	inst := model.NewShiftInstance("2026-03-10", cat.Get(model.ShiftTypeEarlyIntermediate))
	inst.AssignStaff(anna.ID)

	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, []*model.ShiftInstance{inst})

	now := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	notifications := NewGenerator(nil).Generate(snap, now)

	if got := countByCategory(notifications, model.NotifyAvailabilityConflict); got != 1 {
		t.Errorf("Expected 1 availability conflict, got %d", got)
	}
}

func TestGenerator_SkipsCancelled(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")

	inst := model.NewShiftInstance("2026-03-07", cat.Get("early-full"))
	inst.Status = model.ShiftCancelled

	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, []*model.ShiftInstance{inst})

	now := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	notifications := NewGenerator(nil).Generate(snap, now)

	if len(notifications) != 0 {
		t.Errorf("Cancelled shift should produce no notifications, got %d", len(notifications))
	}
}

func TestGenerator_ReminderLeadDays(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")

	inst := model.NewShiftInstance("2026-03-08", cat.Get(model.ShiftTypeEarlyIntermediate))
	inst.AssignStaff(anna.ID)

	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, []*model.ShiftInstance{inst})
	now := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)

	// 默认提前1天：3月6日不提醒3月8日的班
	if got := countByCategory(NewGenerator(nil).Generate(snap, now), model.NotifyShiftReminder); got != 0 {
		t.Errorf("Shift two days out should not trigger a reminder, got %d", got)
	}

	// 提前2天则提醒
	gen := NewGenerator(&Config{ReminderLeadDays: 2})
	if got := countByCategory(gen.Generate(snap, now), model.NotifyShiftReminder); got != 1 {
		t.Errorf("Lead of 2 days should trigger the reminder, got %d", got)
	}
}
