// Package workload 提供员工工作量统计分析
package workload

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// FairnessSummary 工作量公平性摘要
type FairnessSummary struct {
	ShiftGini    float64          `json:"shift_gini"`   // 班次数基尼系数 (0=完全公平)
	WeekendGini  float64          `json:"weekend_gini"` // 周末班基尼系数
	MeanShifts   float64          `json:"mean_shifts"`
	MaxShifts    int              `json:"max_shifts"`
	MinShifts    int              `json:"min_shifts"`
	StaffDetails []StaffDeviation `json:"staff_details"`

	// 综合评分 (0-100)
	OverallScore float64 `json:"overall_score"`
}

// StaffDeviation 员工偏差明细
type StaffDeviation struct {
	StaffID   uuid.UUID `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	Shifts    int       `json:"shifts"`
	Deviation float64   `json:"deviation"` // 与平均值的偏差百分比
}

// Summarize 根据工作量画像计算公平性摘要
func Summarize(profiles map[uuid.UUID]*Profile) *FairnessSummary {
	if len(profiles) == 0 {
		return &FairnessSummary{OverallScore: 100}
	}

	ordered := make([]*Profile, 0, len(profiles))
	for _, p := range profiles {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StaffID.String() < ordered[j].StaffID.String()
	})

	totals := make([]float64, len(ordered))
	weekends := make([]float64, len(ordered))
	sum := 0.0
	maxShifts, minShifts := ordered[0].TotalShifts, ordered[0].TotalShifts

	for i, p := range ordered {
		totals[i] = float64(p.TotalShifts)
		weekends[i] = float64(p.WeekendShifts)
		sum += totals[i]
		if p.TotalShifts > maxShifts {
			maxShifts = p.TotalShifts
		}
		if p.TotalShifts < minShifts {
			minShifts = p.TotalShifts
		}
	}

	mean := sum / float64(len(ordered))
	details := make([]StaffDeviation, len(ordered))
	for i, p := range ordered {
		deviation := 0.0
		if mean > 0 {
			deviation = (totals[i] - mean) / mean * 100
		}
		details[i] = StaffDeviation{
			StaffID:   p.StaffID,
			StaffName: p.StaffName,
			Shifts:    p.TotalShifts,
			Deviation: deviation,
		}
	}

	shiftGini := gini(totals)
	weekendGini := gini(weekends)

	// 基尼系数转换为分数，周末公平权重稍低
	score := (1-shiftGini)*70 + (1-weekendGini)*30

	return &FairnessSummary{
		ShiftGini:    shiftGini,
		WeekendGini:  weekendGini,
		MeanShifts:   mean,
		MaxShifts:    maxShifts,
		MinShifts:    minShifts,
		StaffDetails: details,
		OverallScore: math.Max(0, math.Min(100, score)),
	}
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)

	return math.Max(0, math.Min(1, g))
}
