// Package solver 提供基于约束搜索的排班求解器
package solver

import (
	"github.com/yanlian/yanlian/pkg/model"
)

// enumerate 展开全部分配槽位并构建空白排班骨架
// 槽位顺序固定：周 → 训练日槽位 → 班次 → 情景；
// 取消的训练日不产生槽位，骨架中以 nil 标记
func enumerate(in *Input) ([]model.Slot, model.Schedule) {
	var slots []model.Slot
	schedule := make(model.Schedule, len(in.Weeks))

	for weekIdx, week := range in.Weeks {
		plan := resolvePlan(in, weekIdx)
		weekSched := make(model.WeekSchedule, len(model.DaySlots()))

		for _, daySlot := range model.DaySlots() {
			datePtr, planned := plan[daySlot]
			if !planned || datePtr == nil {
				weekSched[daySlot] = nil
				continue
			}
			date := *datePtr
			weekday := weekdayOf(week, date)
			scenarios := in.Config.DaySlotScenarios[daySlot]

			day := &model.DayAssignment{
				Date:    date,
				Morning: make(map[string]*string, len(scenarios)),
				Evening: make(map[string]*string, len(scenarios)),
			}

			for _, shift := range model.Shifts() {
				for _, scenario := range scenarios {
					slots = append(slots, model.Slot{
						Week:     weekIdx,
						DaySlot:  daySlot,
						Date:     date,
						Weekday:  weekday,
						Shift:    shift,
						Scenario: scenario,
					})
					day.Assignments(shift)[scenario] = nil
				}
			}

			weekSched[daySlot] = day
		}

		schedule[weekIdx] = weekSched
	}

	return slots, schedule
}

// resolvePlan 返回某周的训练日计划：显式覆盖优先，否则按偏好星期推导
func resolvePlan(in *Input, weekIdx int) model.WeekPlan {
	if plan, ok := in.WeekPlans[weekIdx]; ok && plan != nil {
		return plan
	}
	slotWeekdays := in.Config.SlotWeekdays
	if len(slotWeekdays) == 0 {
		slotWeekdays = model.DefaultSlotWeekdays()
	}
	return model.DefaultWeekPlan(in.Weeks[weekIdx], slotWeekdays)
}

// weekdayOf 返回日期的星期名，优先取周内登记的工作日
func weekdayOf(week model.Week, date string) string {
	if day, ok := week.FindByDate(date); ok {
		return day.Weekday
	}
	return model.WeekdayName(date)
}
