package workload

import (
	"testing"

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

func TestCalculator_ComputeProfiles(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")
	bram := newStaff("Bram")

	// Anna：周五早班、周六晚班；Bram 无班
	fri := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	fri.AssignStaff(anna.ID)
	sat := model.NewShiftInstance("2026-03-07", cat.Get("late-full"))
	sat.AssignStaff(anna.ID)

	snap := schedule.NewSnapshot([]*model.Staff{anna, bram}, cat, []*model.ShiftInstance{fri, sat})

	profiles := NewCalculator().ComputeProfiles(snap)

	p := profiles[anna.ID]
	if p.TotalShifts != 2 {
		t.Errorf("Expected 2 total shifts, got %d", p.TotalShifts)
	}
	if p.EarlyShifts != 1 || p.LateShifts != 1 {
		t.Errorf("Expected 1 early and 1 late, got %d/%d", p.EarlyShifts, p.LateShifts)
	}
	if p.WeekendShifts != 1 {
		t.Errorf("Expected 1 weekend shift, got %d", p.WeekendShifts)
	}
	if p.ConsecutiveDays != 2 {
		t.Errorf("Expected streak of 2, got %d", p.ConsecutiveDays)
	}
	if p.LastWorked != "2026-03-07" {
		t.Errorf("Expected last worked 2026-03-07, got %s", p.LastWorked)
	}

	// 无班员工得到零值画像
	q := profiles[bram.ID]
	if q == nil {
		t.Fatal("Staff without shifts should still get a profile")
	}
	if q.TotalShifts != 0 || q.ConsecutiveDays != 0 {
		t.Error("Profile for staff without shifts should be zero")
	}
}

func TestCalculator_SkipsCancelled(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")

	inst := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	inst.AssignStaff(anna.ID)
	inst.Status = model.ShiftCancelled

	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, []*model.ShiftInstance{inst})
	profiles := NewCalculator().ComputeProfiles(snap)

	if profiles[anna.ID].TotalShifts != 0 {
		t.Error("Cancelled shifts should not count")
	}
}

func TestCalculator_TrailingStreak(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")

	// 3月2日、3月5日、3月6日、3月7日：结尾连续3天
	var instances []*model.ShiftInstance
	for _, date := range []string{"2026-03-02", "2026-03-05", "2026-03-06", "2026-03-07"} {
		inst := model.NewShiftInstance(date, cat.Get("early-full"))
		inst.AssignStaff(anna.ID)
		instances = append(instances, inst)
	}

	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, instances)
	profiles := NewCalculator().ComputeProfiles(snap)

	if got := profiles[anna.ID].ConsecutiveDays; got != 3 {
		t.Errorf("Expected trailing streak of 3, got %d", got)
	}
}

func TestCalculator_SameDayTwoShifts(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")

	// 同一天两个班只算一天连班
	early := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	early.AssignStaff(anna.ID)
	late := model.NewShiftInstance("2026-03-06", cat.Get("late-full"))
	late.AssignStaff(anna.ID)

	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, []*model.ShiftInstance{early, late})
	profiles := NewCalculator().ComputeProfiles(snap)

	p := profiles[anna.ID]
	if p.TotalShifts != 2 {
		t.Errorf("Expected 2 shifts, got %d", p.TotalShifts)
	}
	if p.ConsecutiveDays != 1 {
		t.Errorf("Two shifts on one day should be streak 1, got %d", p.ConsecutiveDays)
	}
}

func TestCalculator_Idempotent(t *testing.T) {
	cat := catalog.Default()
	anna := newStaff("Anna")

	inst := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	inst.AssignStaff(anna.ID)
	snap := schedule.NewSnapshot([]*model.Staff{anna}, cat, []*model.ShiftInstance{inst})

	calc := NewCalculator()
	first := calc.ComputeProfiles(snap)
	second := calc.ComputeProfiles(snap)

	// 全量重算，任意次调用结果一致
	if *first[anna.ID] != *second[anna.ID] {
		t.Error("Repeated computation should yield identical profiles")
	}
}

func TestProfile_DominantCategory(t *testing.T) {
	p := &Profile{EarlyShifts: 3, LateShifts: 1}
	if p.DominantCategory() != model.CategoryEarly {
		t.Error("More early shifts should be early dominant")
	}

	p = &Profile{EarlyShifts: 1, LateShifts: 3}
	if p.DominantCategory() != model.CategoryLate {
		t.Error("More late shifts should be late dominant")
	}

	// 相等时视为早班主导
	p = &Profile{EarlyShifts: 2, LateShifts: 2}
	if p.DominantCategory() != model.CategoryEarly {
		t.Error("Tie should be early dominant")
	}
}
