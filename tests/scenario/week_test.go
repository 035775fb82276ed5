// Package scenario 提供场景测试
package scenario

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/autofill"
	"github.com/banbiao/banbiao/pkg/catalog"
	"github.com/banbiao/banbiao/pkg/conflict"
	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/notify"
	"github.com/banbiao/banbiao/pkg/schedule"
	"github.com/banbiao/banbiao/pkg/scorer"
	"github.com/banbiao/banbiao/pkg/swap"
	"github.com/banbiao/banbiao/pkg/workload"
)

// newRoster 构建住居照护团队花名册
func newRoster() []*model.Staff {
	names := []struct {
		name string
		role model.Role
	}{
		{"Anna", model.RoleWoonbegeleider},
		{"Bram", model.RoleWoonbegeleider},
		{"Cees", model.RoleWoonbegeleider},
		{"Dana", model.RoleWoonbegeleider},
		{"Eva", model.RoleInvalkracht},
		{"Coord", model.RoleCoordinator},
	}

	roster := make([]*model.Staff, len(names))
	for i, n := range names {
		roster[i] = &model.Staff{
			BaseModel: model.BaseModel{ID: uuid.New()},
			Name:      n.name,
			Role:      n.role,
			Active:    true,
		}
	}
	return roster
}

// weekInstances 生成一周（3月2日周一至3月8日周日）的全部班次实例
func weekInstances(cat *catalog.Catalog) []*model.ShiftInstance {
	dates := []string{
		"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05",
		"2026-03-06", "2026-03-07", "2026-03-08",
	}

	var instances []*model.ShiftInstance
	for _, date := range dates {
		for _, t := range cat.List() {
			instances = append(instances, model.NewShiftInstance(date, t))
		}
	}
	return instances
}

// TestWeekAutoFill 测试一周排班的自动补班全流程
func TestWeekAutoFill(t *testing.T) {
	cat := catalog.Default()
	roster := newRoster()
	snap := schedule.NewSnapshot(roster, cat, weekInstances(cat))

	detector := conflict.NewDetector(nil)
	engine := autofill.NewEngine(
		scorer.NewScorer(nil, rand.New(rand.NewSource(2026))),
		detector,
	)

	result, err := engine.Fill(context.Background(), snap)
	if err != nil {
		t.Fatalf("自动补班失败: %v", err)
	}

	t.Logf("一周补班: 新增分配=%d, 未补满班次=%d, 耗时=%v",
		result.NewAssignments, len(result.Unfilled), result.Duration)

	if result.NewAssignments == 0 {
		t.Fatal("一周排班应该产生分配")
	}

	// 补班结果必须完全无冲突
	for _, inst := range snap.Instances {
		for _, staffID := range inst.AssignedStaff {
			conflicts, err := detector.Detect(snap, inst.ID, staffID)
			if err != nil {
				t.Fatalf("冲突检测失败: %v", err)
			}
			for _, c := range conflicts {
				t.Errorf("班次 %s 员工 %s 存在 %s 冲突", inst.ID, staffID, c.Type)
			}
		}
	}

	// 协调员只能出现在早中班
	var coord *model.Staff
	for _, st := range roster {
		if st.Role == model.RoleCoordinator {
			coord = st
		}
	}
	for _, inst := range snap.StaffInstances(coord.ID) {
		if inst.ShiftTypeID != model.ShiftTypeEarlyIntermediate {
			t.Errorf("协调员被排到了 %s", inst.ShiftTypeID)
		}
	}

	// 任何班次不超员
	for _, inst := range snap.Instances {
		maxStaff := cat.Get(inst.ShiftTypeID).MaxStaff
		if len(inst.AssignedStaff) > maxStaff {
			t.Errorf("班次 %s 超员: %d > %d", inst.ID, len(inst.AssignedStaff), maxStaff)
		}
	}
}

// TestWeekFairness 测试一周排班后的工作量公平性
func TestWeekFairness(t *testing.T) {
	cat := catalog.Default()
	roster := newRoster()
	snap := schedule.NewSnapshot(roster, cat, weekInstances(cat))

	engine := autofill.NewEngine(
		scorer.NewScorer(nil, rand.New(rand.NewSource(2026))),
		conflict.NewDetector(nil),
	)
	if _, err := engine.Fill(context.Background(), snap); err != nil {
		t.Fatalf("自动补班失败: %v", err)
	}

	profiles := workload.NewCalculator().ComputeProfiles(snap)
	summary := workload.Summarize(profiles)

	t.Logf("公平性: 班次Gini=%.3f, 周末Gini=%.3f, 综合分=%.1f",
		summary.ShiftGini, summary.WeekendGini, summary.OverallScore)

	// 公平导向的评分器不应产生极端倾斜的分布
	if summary.ShiftGini > 0.5 {
		t.Errorf("班次分布过于失衡: Gini=%.3f", summary.ShiftGini)
	}

	// 协调员资格受限，普通员工之间的偏差应有限
	for _, d := range summary.StaffDetails {
		t.Logf("  %s: %d班 (偏差 %.0f%%)", d.StaffName, d.Shifts, d.Deviation)
	}
}

// TestWeekSwapAndNotify 测试补班后的换班推荐与通知生成
func TestWeekSwapAndNotify(t *testing.T) {
	cat := catalog.Default()
	roster := newRoster()
	snap := schedule.NewSnapshot(roster, cat, weekInstances(cat))

	detector := conflict.NewDetector(nil)
	engine := autofill.NewEngine(
		scorer.NewScorer(nil, rand.New(rand.NewSource(2026))),
		detector,
	)
	if _, err := engine.Fill(context.Background(), snap); err != nil {
		t.Fatalf("自动补班失败: %v", err)
	}

	profiles := workload.NewCalculator().ComputeProfiles(snap)

	// 给周六早全班找换班候选人
	target := "2026-03-07-early-full"
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	suggester := swap.NewSuggester(detector, nil)
	suggestions, err := suggester.Suggest(snap, profiles, target, now)
	if err != nil {
		t.Fatalf("换班推荐失败: %v", err)
	}

	t.Logf("换班推荐 %s: %d个候选人", target, len(suggestions))
	for _, s := range suggestions {
		t.Logf("  #%d %s 得分=%.1f (%s)", s.Rank, s.StaffName, s.Score, s.Reason)
	}

	if len(suggestions) > 5 {
		t.Errorf("推荐不应超过5个, 实际 %d", len(suggestions))
	}

	// 通知生成：3月6日视角，提醒3月7日的班
	notifications := notify.NewGenerator(nil).Generate(snap, time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC))

	reminders := 0
	for _, n := range notifications {
		if n.Category == model.NotifyShiftReminder {
			reminders++
		}
	}
	t.Logf("通知: 共%d条, 其中提醒%d条", len(notifications), reminders)

	// 3月7日有分配的班次就应有提醒
	assigned := 0
	for _, inst := range snap.InstancesOn("2026-03-07") {
		assigned += len(inst.AssignedStaff)
	}
	if assigned > 0 && reminders == 0 {
		t.Error("明日有班却没有生成提醒")
	}
}
