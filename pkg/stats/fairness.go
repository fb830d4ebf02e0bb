// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/yanlian/yanlian/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 分配量公平性
	UsageGini     float64 `json:"usage_gini"`      // 分配量基尼系数 (0=完全公平, 1=完全不公平)
	UsageVariance float64 `json:"usage_variance"`  // 分配量方差
	UsageStdDev   float64 `json:"usage_std_dev"`   // 分配量标准差
	AvgPerPerson  float64 `json:"avg_per_person"`  // 人均分配量
	MaxUsage      int     `json:"max_usage"`       // 最大分配量
	MinUsage      int     `json:"min_usage"`       // 最小分配量
	UsageRange    int     `json:"usage_range"`     // 分配量极差

	// 晚场公平性
	EveningGini  float64 `json:"evening_gini"`  // 晚场分配基尼系数
	EveningShare float64 `json:"evening_share"` // 晚场占全部分配的比例 (%)

	// 演员级别统计
	PersonStats []PersonStat `json:"person_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分 (0-100)
}

// PersonStat 单个演员的统计
type PersonStat struct {
	Person       string         `json:"person"`
	TotalCount   int            `json:"total_count"`
	MorningCount int            `json:"morning_count"`
	EveningCount int            `json:"evening_count"`
	Scenarios    map[string]int `json:"scenarios"` // 情景 → 次数
	Deviation    float64        `json:"deviation"` // 与人均分配量的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析一份排班的公平性
// 只统计配置中登记的演员；未参与排班的演员分配量计为 0
func (f *FairnessAnalyzer) Analyze(schedule model.Schedule, cfg *model.Config) *FairnessMetrics {
	if len(cfg.People) == 0 {
		return &FairnessMetrics{OverallFairnessScore: 100, PersonStats: []PersonStat{}}
	}

	statMap := make(map[string]*PersonStat, len(cfg.People))
	for _, p := range cfg.People {
		statMap[p.ID] = &PersonStat{Person: p.ID, Scenarios: make(map[string]int)}
	}

	totalAssignments := 0
	eveningAssignments := 0

	for _, weekSched := range schedule {
		for _, daySlot := range model.DaySlots() {
			day := weekSched[daySlot]
			if day == nil {
				continue
			}
			for _, shift := range model.Shifts() {
				for scenario, person := range day.Assignments(shift) {
					if person == nil {
						continue
					}
					stat, ok := statMap[*person]
					if !ok {
						// 配置外的演员不计入公平性
						continue
					}
					stat.TotalCount++
					stat.Scenarios[scenario]++
					if shift == model.ShiftEvening {
						stat.EveningCount++
						eveningAssignments++
					} else {
						stat.MorningCount++
					}
					totalAssignments++
				}
			}
		}
	}

	usage := make([]float64, 0, len(statMap))
	evening := make([]float64, 0, len(statMap))
	personStats := make([]PersonStat, 0, len(statMap))
	for _, p := range cfg.People {
		stat := statMap[p.ID]
		usage = append(usage, float64(stat.TotalCount))
		evening = append(evening, float64(stat.EveningCount))
		personStats = append(personStats, *stat)
	}

	avg := mean(usage)
	variance := varianceOf(usage, avg)
	stdDev := math.Sqrt(variance)
	maxU, minU := rangeOf(usage)

	for i := range personStats {
		if avg > 0 {
			personStats[i].Deviation = (float64(personStats[i].TotalCount) - avg) / avg * 100
		}
	}

	// 分配量多的在前，同量时按姓名稳定排序
	sort.SliceStable(personStats, func(i, j int) bool {
		if personStats[i].TotalCount != personStats[j].TotalCount {
			return personStats[i].TotalCount > personStats[j].TotalCount
		}
		return personStats[i].Person < personStats[j].Person
	})

	usageGini := gini(usage)
	eveningGini := gini(evening)

	eveningShare := 0.0
	if totalAssignments > 0 {
		eveningShare = float64(eveningAssignments) / float64(totalAssignments) * 100
	}

	return &FairnessMetrics{
		UsageGini:            usageGini,
		UsageVariance:        variance,
		UsageStdDev:          stdDev,
		AvgPerPerson:         avg,
		MaxUsage:             int(maxU),
		MinUsage:             int(minU),
		UsageRange:           int(maxU - minU),
		EveningGini:          eveningGini,
		EveningShare:         eveningShare,
		PersonStats:          personStats,
		OverallFairnessScore: overallScore(usageGini, eveningGini, stdDev, avg),
	}
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// rangeOf 计算极值
func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
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

// overallScore 计算综合公平性评分
func overallScore(usageGini, eveningGini, stdDev, avg float64) float64 {
	const (
		usageWeight   = 0.5
		eveningWeight = 0.3
		stdDevWeight  = 0.2
	)

	usageScore := (1 - usageGini) * 100
	eveningScore := (1 - eveningGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avg > 0 {
		cv := stdDev / avg
		cvScore = math.Max(0, 100-cv*200)
	}

	score := usageWeight*usageScore + eveningWeight*eveningScore + stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// Compare 比较两份排班的公平性
func (f *FairnessAnalyzer) Compare(first, second model.Schedule, cfg *model.Config) map[string]float64 {
	m1 := f.Analyze(first, cfg)
	m2 := f.Analyze(second, cfg)

	return map[string]float64{
		"usage_gini_diff":      m2.UsageGini - m1.UsageGini,
		"evening_gini_diff":    m2.EveningGini - m1.EveningGini,
		"overall_score_diff":   m2.OverallFairnessScore - m1.OverallFairnessScore,
		"first_overall_score":  m1.OverallFairnessScore,
		"second_overall_score": m2.OverallFairnessScore,
	}
}
