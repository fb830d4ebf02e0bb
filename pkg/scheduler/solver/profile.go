// Package solver 提供基于约束搜索的排班求解器
package solver

import (
	"github.com/yanlian/yanlian/pkg/model"
)

// buildProfile 预计算每个演员本月的机会总数
// 统计其被批准、班次可用且满足出勤日限制的槽位数，
// 不考虑任何进行中的分配；仅用于公平性排序，搜索期间不变
func buildProfile(slots []model.Slot, cfg *model.Config, availability model.AvailabilitySet) map[string]int {
	profile := make(map[string]int, len(cfg.People))
	for _, person := range cfg.People {
		profile[person.ID] = 0
	}

	for _, slot := range slots {
		for _, person := range cfg.ApprovedFor(slot.Scenario) {
			if !availability.IsAvailable(slot.Date, person, slot.Shift) {
				continue
			}
			if !cfg.ConstraintFor(person).AllowsWeekday(slot.Weekday) {
				continue
			}
			profile[person]++
		}
	}

	return profile
}
