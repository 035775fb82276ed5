// Package scorer 提供候选员工适配度评分
package scorer

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/banbiao/banbiao/pkg/model"
	"github.com/banbiao/banbiao/pkg/schedule"
	"github.com/banbiao/banbiao/pkg/workload"
)

// Candidate 候选员工及其得分
type Candidate struct {
	Staff *model.Staff `json:"staff"`
	Score float64      `json:"score"`
}

// Config 评分系数
// 系数大小是设计选择，各因子的方向才是契约：
// 总班次少者优先、早晚均衡、周末均衡、连班少者优先
type Config struct {
	BaseScore       float64 // 基础分
	LoadPenalty     float64 // 每个已有班次的扣分
	BalanceBonus    float64 // 早晚班反向平衡加分
	WeekendBonus    float64 // 周末班稀缺加分
	WeekdayBonus    float64 // 周末班已饱和时的工作日加分
	StreakBonus     float64 // 连班天数低的小幅加分
	StreakThreshold int     // 连班天数低于等于该值算低
	WeekendTarget   int     // 周末班目标数
	Jitter          float64 // 随机扰动幅度，避免固定并列顺序
}

// DefaultConfig 返回默认评分系数
func DefaultConfig() *Config {
	return &Config{
		BaseScore:       50,
		LoadPenalty:     6,
		BalanceBonus:    12,
		WeekendBonus:    20,
		WeekdayBonus:    8,
		StreakBonus:     6,
		StreakThreshold: 2,
		WeekendTarget:   2,
		Jitter:          1.0,
	}
}

// Scorer 分配评分器
// 随机源由调用方注入，保证测试可复现
type Scorer struct {
	config *Config
	rng    *rand.Rand
}

// NewScorer 创建评分器
func NewScorer(config *Config, rng *rand.Rand) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Scorer{config: config, rng: rng}
}

// Rank 对目标班次的候选员工按适配度降序排序
// 协调员仅在早中班可被返回；排除集合中的员工与离职员工永不返回
func (s *Scorer) Rank(
	snap *schedule.Snapshot,
	profiles map[uuid.UUID]*workload.Profile,
	shiftTypeID string,
	date string,
	exclude map[uuid.UUID]bool,
) ([]Candidate, error) {
	shiftType, err := snap.Catalog.MustGet(shiftTypeID)
	if err != nil {
		return nil, err
	}

	targetCategory := shiftType.Category()
	weekend := model.IsWeekend(date)

	var candidates []Candidate
	for _, st := range snap.Roster {
		if !st.IsActive() || exclude[st.ID] {
			continue
		}
		if !st.EligibleFor(shiftTypeID) {
			continue
		}

		p := profiles[st.ID]
		if p == nil {
			p = &workload.Profile{StaffID: st.ID, StaffName: st.Name}
		}

		candidates = append(candidates, Candidate{
			Staff: st,
			Score: s.score(p, targetCategory, weekend),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates, nil
}

// score 计算单个候选人的适配度得分
func (s *Scorer) score(p *workload.Profile, targetCategory model.ShiftCategory, weekend bool) float64 {
	cfg := s.config
	score := cfg.BaseScore

	// 总班次越多扣分越多，偏向工作量少的员工
	score -= float64(p.TotalShifts) * cfg.LoadPenalty

	// 目标班次与当前主导时段相反时加分，平衡早晚班
	if p.TotalShifts > 0 && p.DominantCategory() != targetCategory {
		score += cfg.BalanceBonus
	}

	// 周末班均衡
	if weekend {
		if p.WeekendShifts < cfg.WeekendTarget {
			score += cfg.WeekendBonus
		}
	} else if p.WeekendShifts > cfg.WeekendTarget-1 {
		// 周末班已偏多的员工在工作日加分，封顶周末负担
		score += cfg.WeekdayBonus
	}

	// 连班天数低的员工小幅加分
	if p.ConsecutiveDays <= cfg.StreakThreshold {
		score += cfg.StreakBonus
	}

	// 随机扰动打破并列
	score += s.rng.Float64() * cfg.Jitter

	return score
}
