package swap

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/catalog"
	"github.com/banbiao/banbiao/pkg/conflict"
	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
	"github.com/banbiao/banbiao/pkg/workload"
)

func newStaff(name string, role model.Role) *model.Staff {
	return &model.Staff{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Role:      role,
		Active:    true,
	}
}

func newSuggester() *Suggester {
	return NewSuggester(conflict.NewDetector(nil), nil)
}

func profilesFor(s *schedule.Snapshot) map[uuid.UUID]*workload.Profile {
	return workload.NewCalculator().ComputeProfiles(s)
}

func TestSuggester_Suggest(t *testing.T) {
	cat := catalog.Default()
	holder := newStaff("Holder", model.RoleWoonbegeleider)
	free := newStaff("Free", model.RoleWoonbegeleider)

	inst := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	inst.AssignStaff(holder.ID)

	snap := schedule.NewSnapshot([]*model.Staff{holder, free}, cat, []*model.ShiftInstance{inst})

	suggestions, err := newSuggester().Suggest(snap, profilesFor(snap), inst.ID, time.Now())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if len(suggestions) != 1 {
		t.Fatalf("Expected 1 suggestion, got %d", len(suggestions))
	}
	// 已在班上的员工不会被推荐
	if suggestions[0].StaffID == holder.ID.String() {
		t.Error("Assigned staff should not be suggested")
	}
	if suggestions[0].Rank != 1 {
		t.Errorf("First suggestion should have rank 1, got %d", suggestions[0].Rank)
	}
	if suggestions[0].Reason == "" {
		t.Error("Suggestion should carry a reason")
	}
}

func TestSuggester_TopFive(t *testing.T) {
	cat := catalog.Default()
	holder := newStaff("Holder", model.RoleWoonbegeleider)
	roster := []*model.Staff{holder}
	for i := 0; i < 8; i++ {
		roster = append(roster, newStaff(fmt.Sprintf("Staff%d", i), model.RoleWoonbegeleider))
	}

	inst := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	inst.AssignStaff(holder.ID)
	snap := schedule.NewSnapshot(roster, cat, []*model.ShiftInstance{inst})

	suggestions, err := newSuggester().Suggest(snap, profilesFor(snap), inst.ID, time.Now())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if len(suggestions) != 5 {
		t.Errorf("Expected at most 5 suggestions, got %d", len(suggestions))
	}
	for i, s := range suggestions {
		if s.Rank != i+1 {
			t.Errorf("Suggestion %d should have rank %d, got %d", i, i+1, s.Rank)
		}
	}
}

func TestSuggester_DeterministicTieBreak(t *testing.T) {
	cat := catalog.Default()
	holder := newStaff("Holder", model.RoleWoonbegeleider)
	a := newStaff("A", model.RoleWoonbegeleider)
	b := newStaff("B", model.RoleWoonbegeleider)

	inst := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	inst.AssignStaff(holder.ID)
	snap := schedule.NewSnapshot([]*model.Staff{holder, a, b}, cat, []*model.ShiftInstance{inst})

	now := time.Now()
	first, err := newSuggester().Suggest(snap, profilesFor(snap), inst.ID, now)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	second, err := newSuggester().Suggest(snap, profilesFor(snap), inst.ID, now)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	// 并列得分按员工ID升序，两次调用结果一致
	for i := range first {
		if first[i].StaffID != second[i].StaffID {
			t.Fatal("Suggestions should be deterministic")
		}
	}
	if len(first) == 2 && first[0].Score == first[1].Score {
		if first[0].StaffID > first[1].StaffID {
			t.Error("Tied candidates should be ordered by staff ID ascending")
		}
	}
}

func TestSuggester_SkipsConflicted(t *testing.T) {
	cat := catalog.Default()
	holder := newStaff("Holder", model.RoleWoonbegeleider)
	busy := newStaff("Busy", model.RoleWoonbegeleider)

	target := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	target.AssignStaff(holder.ID)

	// Busy 同日早中班，与目标班次重叠
	overlap := model.NewShiftInstance("2026-03-06", cat.Get(model.ShiftTypeEarlyIntermediate))
	overlap.AssignStaff(busy.ID)

	snap := schedule.NewSnapshot([]*model.Staff{holder, busy}, cat, []*model.ShiftInstance{target, overlap})

	suggestions, err := newSuggester().Suggest(snap, profilesFor(snap), target.ID, time.Now())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	for _, s := range suggestions {
		if s.StaffID == busy.ID.String() {
			t.Error("Conflicted staff should not be suggested")
		}
	}
}

func TestSuggester_SkipsPendingPair(t *testing.T) {
	cat := catalog.Default()
	holder := newStaff("Holder", model.RoleWoonbegeleider)
	asked := newStaff("Asked", model.RoleWoonbegeleider)

	inst := model.NewShiftInstance("2026-03-06", cat.Get("early-full"))
	inst.AssignStaff(holder.ID)
	snap := schedule.NewSnapshot([]*model.Staff{holder, asked}, cat, []*model.ShiftInstance{inst})

	req := model.NewSwapRequest(inst.ID, holder.ID, asked.ID, "")
	snap.SetSwapRequests([]*model.SwapRequest{req})

	now := req.CreatedAt.Add(time.Hour)
	suggestions, err := newSuggester().Suggest(snap, profilesFor(snap), inst.ID, now)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	// 已有待处理请求的配对不重复推荐
	if len(suggestions) != 0 {
		t.Errorf("Staff with pending request should be skipped, got %d suggestions", len(suggestions))
	}

	// 请求过期后恢复推荐
	expired := req.CreatedAt.Add(25 * time.Hour)
	suggestions, err = newSuggester().Suggest(snap, profilesFor(snap), inst.ID, expired)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(suggestions) != 1 {
		t.Errorf("Expired request should not block suggestions, got %d", len(suggestions))
	}
}

func TestSuggester_CoordinatorRestriction(t *testing.T) {
	cat := catalog.Default()
	holder := newStaff("Holder", model.RoleWoonbegeleider)
	coord := newStaff("Coord", model.RoleCoordinator)

	inst := model.NewShiftInstance("2026-03-06", cat.Get("late-full"))
	inst.AssignStaff(holder.ID)
	snap := schedule.NewSnapshot([]*model.Staff{holder, coord}, cat, []*model.ShiftInstance{inst})

	suggestions, err := newSuggester().Suggest(snap, profilesFor(snap), inst.ID, time.Now())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	for _, s := range suggestions {
		if s.StaffID == coord.ID.String() {
			t.Error("Coordinator should not be suggested for late-full")
		}
	}
}

func TestSuggester_UnknownShift(t *testing.T) {
	cat := catalog.Default()
	snap := schedule.NewSnapshot([]*model.Staff{newStaff("Anna", model.RoleWoonbegeleider)}, cat, nil)

	_, err := newSuggester().Suggest(snap, profilesFor(snap), "2026-03-06-missing", time.Now())
	if err == nil {
		t.Fatal("Unknown shift should return error")
	}
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %s", errors.GetCode(err))
	}
}
