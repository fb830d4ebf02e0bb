// Package stats 提供排班统计分析功能
package stats

import (
	"sort"

	"github.com/yanlian/yanlian/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	// 整体覆盖率
	TotalSlots      int     `json:"total_slots"`      // 总槽位数
	FilledSlots     int     `json:"filled_slots"`     // 已排槽位数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)
	CanceledDays    int     `json:"canceled_days"`    // 取消的训练日数

	// 按日期统计
	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	// 按班次统计
	ShiftCoverage map[string]float64 `json:"shift_coverage"` // morning/evening → 覆盖率 (%)

	// 按情景统计
	ScenarioCoverage map[string]float64 `json:"scenario_coverage"`

	// 问题识别
	UnfilledSlots []UnfilledSlot `json:"unfilled_slots"`
}

// DayCoverage 单个训练日的覆盖情况
type DayCoverage struct {
	Date         string  `json:"date"`
	TotalSlots   int     `json:"total_slots"`
	Filled       int     `json:"filled"`
	CoverageRate float64 `json:"coverage_rate"`
	PeopleCount  int     `json:"people_count"` // 当日参演人数（去重）
}

// UnfilledSlot 未排上的槽位
type UnfilledSlot struct {
	Week     int         `json:"week"`
	Date     string      `json:"date"`
	Shift    model.Shift `json:"shift"`
	Scenario string      `json:"scenario"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 分析一份排班的覆盖率
func (c *CoverageAnalyzer) Analyze(schedule model.Schedule) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage:    make(map[string]DayCoverage),
		ShiftCoverage:    make(map[string]float64),
		ScenarioCoverage: make(map[string]float64),
		UnfilledSlots:    []UnfilledSlot{},
	}

	shiftTotal := make(map[model.Shift]int)
	shiftFilled := make(map[model.Shift]int)
	scenarioTotal := make(map[string]int)
	scenarioFilled := make(map[string]int)

	for weekIdx, weekSched := range schedule {
		for _, daySlot := range model.DaySlots() {
			day := weekSched[daySlot]
			if day == nil {
				metrics.CanceledDays++
				continue
			}

			dayCov := DayCoverage{Date: day.Date}
			dayPeople := make(map[string]bool)

			for _, shift := range model.Shifts() {
				cells := day.Assignments(shift)
				scenarios := make([]string, 0, len(cells))
				for scenario := range cells {
					scenarios = append(scenarios, scenario)
				}
				sort.Strings(scenarios)

				for _, scenario := range scenarios {
					person := cells[scenario]
					metrics.TotalSlots++
					dayCov.TotalSlots++
					shiftTotal[shift]++
					scenarioTotal[scenario]++

					if person != nil {
						metrics.FilledSlots++
						dayCov.Filled++
						shiftFilled[shift]++
						scenarioFilled[scenario]++
						dayPeople[*person] = true
					} else {
						metrics.UnfilledSlots = append(metrics.UnfilledSlots, UnfilledSlot{
							Week:     weekIdx,
							Date:     day.Date,
							Shift:    shift,
							Scenario: scenario,
						})
					}
				}
			}

			dayCov.PeopleCount = len(dayPeople)
			if dayCov.TotalSlots > 0 {
				dayCov.CoverageRate = float64(dayCov.Filled) / float64(dayCov.TotalSlots) * 100
			}
			metrics.DailyCoverage[day.Date] = dayCov
		}
	}

	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.FilledSlots) / float64(metrics.TotalSlots) * 100
	} else {
		metrics.OverallCoverage = 100
	}

	for shift, total := range shiftTotal {
		metrics.ShiftCoverage[string(shift)] = float64(shiftFilled[shift]) / float64(total) * 100
	}
	for scenario, total := range scenarioTotal {
		metrics.ScenarioCoverage[scenario] = float64(scenarioFilled[scenario]) / float64(total) * 100
	}

	return metrics
}
