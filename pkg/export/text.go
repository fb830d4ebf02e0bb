// Package export 提供排班结果的导出功能
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yanlian/yanlian/pkg/model"
)

// TextExporter 导出人类可读的排班表
type TextExporter struct {
	title string
}

// NewTextExporter 创建文本导出器
func NewTextExporter(title string) *TextExporter {
	if title == "" {
		title = "情景演练排班表"
	}
	return &TextExporter{title: title}
}

// Export 将排班渲染为逐周逐日的文本表
// 取消的训练日标注「取消」，未排槽位标注「（未排）」
func (e *TextExporter) Export(schedule model.Schedule, cfg *model.Config) string {
	var b strings.Builder

	b.WriteString(e.title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n\n")

	for weekIdx, weekSched := range schedule {
		fmt.Fprintf(&b, "第%d周\n", weekIdx+1)
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n")

		for _, daySlot := range model.DaySlots() {
			day := weekSched[daySlot]
			if day == nil {
				continue
			}

			weekday := model.WeekdayLabel(model.WeekdayName(day.Date))
			fmt.Fprintf(&b, "%s（%s）\n", day.Date, weekday)

			for _, shift := range model.Shifts() {
				fmt.Fprintf(&b, "  %s:\n", shiftLabel(shift))
				cells := day.Assignments(shift)
				for _, scenario := range sortedScenarios(cells, cfg, daySlot) {
					person := cells[scenario]
					if person == nil {
						fmt.Fprintf(&b, "    %s: （未排）\n", scenario)
					} else {
						fmt.Fprintf(&b, "    %s: %s\n", scenario, *person)
					}
				}
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// shiftLabel 返回班次的中文名
func shiftLabel(shift model.Shift) string {
	switch shift {
	case model.ShiftMorning:
		return "早场"
	case model.ShiftEvening:
		return "晚场"
	}
	return string(shift)
}

// sortedScenarios 返回稳定顺序的情景列表
// 配置了槽位情景顺序时按配置，否则按字典序
func sortedScenarios(cells map[string]*string, cfg *model.Config, daySlot string) []string {
	if cfg != nil {
		if configured, ok := cfg.DaySlotScenarios[daySlot]; ok {
			ordered := make([]string, 0, len(configured))
			for _, scenario := range configured {
				if _, present := cells[scenario]; present {
					ordered = append(ordered, scenario)
				}
			}
			if len(ordered) == len(cells) {
				return ordered
			}
		}
	}
	scenarios := make([]string, 0, len(cells))
	for scenario := range cells {
		scenarios = append(scenarios, scenario)
	}
	sort.Strings(scenarios)
	return scenarios
}
