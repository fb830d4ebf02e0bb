// Package solver 提供基于约束搜索的排班求解器
package solver

import (
	"fmt"
	"sort"

	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/constraint"
)

// greedyFill 贪心兜底：按枚举顺序逐日逐班次填充，
// 同一天内情景按"批准且可用"人数升序处理（最稀缺的先排），
// 仅使用严格级别，未排上的槽位生成诊断记录
func (e *Engine) greedyFill(slots []model.Slot, cctx *constraint.Context, schedule model.Schedule, profile map[string]int) []Diagnostic {
	diagnostics := make([]Diagnostic, 0)

	i := 0
	for i < len(slots) {
		j := i
		for j < len(slots) && sameShiftGroup(slots[i], slots[j]) {
			j++
		}

		group := make([]model.Slot, j-i)
		copy(group, slots[i:j])
		sort.SliceStable(group, func(x, y int) bool {
			return e.scarcity(cctx, group[x]) < e.scarcity(cctx, group[y])
		})

		for _, slot := range group {
			candidates := cctx.EligibleCandidates(slot, constraint.LevelStrict)
			if len(candidates) > 0 {
				ranked := rankCandidates(candidates, cctx, slot.Shift, profile)
				person := ranked[0]
				cctx.Apply(slot, person)
				p := person
				schedule[slot.Week][slot.DaySlot].Assignments(slot.Shift)[slot.Scenario] = &p
				continue
			}
			diagnostics = append(diagnostics, e.diagnose(cctx, slot))
		}

		i = j
	}

	return diagnostics
}

// sameShiftGroup 检查两个槽位是否属于同一 (周, 训练日, 班次)
func sameShiftGroup(a, b model.Slot) bool {
	return a.Week == b.Week && a.DaySlot == b.DaySlot && a.Shift == b.Shift
}

// scarcity 统计某槽位"批准且该班次可用"的人数
func (e *Engine) scarcity(cctx *constraint.Context, slot model.Slot) int {
	count := 0
	for _, person := range cctx.Config().ApprovedFor(slot.Scenario) {
		if cctx.Availability().IsAvailable(slot.Date, person, slot.Shift) {
			count++
		}
	}
	return count
}

// diagnose 为未排上的槽位生成诊断记录
// 每个被批准但被拒绝的演员标注按固定顺序检查出的首个失败原因
func (e *Engine) diagnose(cctx *constraint.Context, slot model.Slot) Diagnostic {
	approved := cctx.Config().ApprovedFor(slot.Scenario)

	d := Diagnostic{
		Week:       slot.Week,
		DaySlot:    slot.DaySlot,
		Date:       slot.Date,
		Shift:      slot.Shift,
		Scenario:   slot.Scenario,
		Approved:   append([]string{}, approved...),
		Rejections: make([]Rejection, 0, len(approved)),
	}

	if len(approved) == 0 {
		d.Message = fmt.Sprintf("情景 '%s' 没有批准的演员", slot.Scenario)
		d.Suggestion = "请为该情景批准更多演员"
		return d
	}

	for _, person := range approved {
		code, rejected := cctx.FirstRejection(slot, person)
		if !rejected {
			continue
		}
		d.Rejections = append(d.Rejections, Rejection{
			Person:  person,
			Code:    code,
			Message: code.Message(),
		})
	}

	d.Message = fmt.Sprintf("情景 '%s' 在 %s %s 无人可排", slot.Scenario, slot.Date, slot.Shift)
	d.Suggestion = "已批准的演员均被阻塞"
	return d
}
