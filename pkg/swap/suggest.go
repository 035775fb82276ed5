// Package swap 提供换班候选人推荐
package swap

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/conflict"
	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
	"github.com/banbiao/banbiao/pkg/workload"
)

// Suggestion 换班推荐
type Suggestion struct {
	StaffID   string  `json:"staff_id"`
	StaffName string  `json:"staff_name"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
	Rank      int     `json:"rank"`
}

// Options 推荐选项
type Options struct {
	MaxSuggestions int  // 最大推荐数量
	SkipPending    bool // 跳过已有待处理换班请求的配对
}

// DefaultOptions 返回默认选项
func DefaultOptions() *Options {
	return &Options{
		MaxSuggestions: 5,
		SkipPending:    true,
	}
}

// Suggester 换班推荐器
type Suggester struct {
	detector *conflict.Detector
	options  *Options
}

// NewSuggester 创建换班推荐器
func NewSuggester(det *conflict.Detector, options *Options) *Suggester {
	if options == nil {
		options = DefaultOptions()
	}
	return &Suggester{detector: det, options: options}
}

// Suggest 为目标班次推荐可能愿意换入的员工
// 依据工作量失衡信号打分（各因子直接求和），丢弃任何存在冲突的候选人，
// 返回得分降序前 N 名；并列时按员工ID升序保证输出确定性。
func (sg *Suggester) Suggest(
	s *schedule.Snapshot,
	profiles map[uuid.UUID]*workload.Profile,
	shiftInstanceID string,
	now time.Time,
) ([]Suggestion, error) {
	target, err := s.GetInstance(shiftInstanceID)
	if err != nil {
		return nil, err
	}

	targetCategory := model.CategoryLate
	if t := s.Catalog.Get(target.ShiftTypeID); t != nil {
		targetCategory = t.Category()
	}

	// 平均班次数，用于总量失衡因子
	meanShifts := 0.0
	if len(profiles) > 0 {
		total := 0
		for _, p := range profiles {
			total += p.TotalShifts
		}
		meanShifts = float64(total) / float64(len(profiles))
	}

	var candidates []Suggestion
	for _, st := range s.Roster {
		if !st.IsActive() || target.HasStaff(st.ID) {
			continue
		}
		if !st.EligibleFor(target.ShiftTypeID) {
			continue
		}
		if sg.options.SkipPending && s.HasPendingSwap(target.ID, st.ID, now) {
			continue
		}

		conflicts, err := sg.detector.Detect(s, target.ID, st.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			continue
		}

		p := profiles[st.ID]
		if p == nil {
			p = &workload.Profile{StaffID: st.ID, StaffName: st.Name}
		}

		score, reason := sg.scoreCandidate(p, targetCategory, target.Date, meanShifts)
		candidates = append(candidates, Suggestion{
			StaffID:   st.ID.String(),
			StaffName: st.Name,
			Score:     score,
			Reason:    reason,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].StaffID < candidates[j].StaffID
	})

	if len(candidates) > sg.options.MaxSuggestions {
		candidates = candidates[:sg.options.MaxSuggestions]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	return candidates, nil
}

// scoreCandidate 根据工作量失衡信号打分并生成推荐原因
// 与分配评分器相同的因子方向，但直接求和不加权
func (sg *Suggester) scoreCandidate(
	p *workload.Profile,
	targetCategory model.ShiftCategory,
	date string,
	meanShifts float64,
) (float64, string) {
	score := 0.0
	var reasons []string

	// 总量低于平均，工时有提升空间
	if float64(p.TotalShifts) < meanShifts {
		score += meanShifts - float64(p.TotalShifts)
		reasons = append(reasons, "班次数低于平均")
	}

	// 周末班稀缺
	if model.IsWeekend(date) && p.WeekendShifts < 2 {
		score += float64(2 - p.WeekendShifts)
		reasons = append(reasons, "周末班较少")
	}

	// 早晚班失衡，目标班次在其弱势时段
	if p.TotalShifts > 0 && p.DominantCategory() != targetCategory {
		diff := p.EarlyShifts - p.LateShifts
		if diff < 0 {
			diff = -diff
		}
		score += float64(diff)
		reasons = append(reasons, "可平衡早晚班分布")
	}

	// 连班天数低，有余力接班
	if p.ConsecutiveDays <= 1 {
		score += 1
		reasons = append(reasons, "近期连班少")
	}

	if len(reasons) == 0 {
		return score, "可以接替此班次"
	}
	return score, reasons[0]
}
