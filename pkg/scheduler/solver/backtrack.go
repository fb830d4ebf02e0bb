// Package solver 提供基于约束搜索的排班求解器
package solver

import (
	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/constraint"
)

// attempt 单个松弛级别下的一次完整搜索
type attempt struct {
	slots    []model.Slot
	cctx     *constraint.Context
	schedule model.Schedule
	profile  map[string]int
	level    constraint.Level

	expansions int
	budget     int
	aborted    bool
}

// run 执行搜索，返回是否得到完整解
func (a *attempt) run() bool {
	if len(a.slots) == 0 {
		return true
	}
	order := make([]int, len(a.slots))
	for i := range order {
		order[i] = i
	}
	return a.assign(order)
}

// assign 递归分配 remaining 中的槽位
// MRV：候选人最少的槽位先处理；选中的索引与尾部交换后缩短切片，
// 回溯撤销即还原一次交换
func (a *attempt) assign(remaining []int) bool {
	if len(remaining) == 0 {
		return true
	}
	if a.aborted {
		return false
	}

	a.expansions++
	if a.expansions > a.budget {
		a.aborted = true
		return false
	}

	// 选出候选人最少的槽位，平手取枚举序靠前的
	best := 0
	bestCount := a.cctx.CountEligible(a.slots[remaining[0]], a.level)
	for i := 1; i < len(remaining); i++ {
		c := a.cctx.CountEligible(a.slots[remaining[i]], a.level)
		if c < bestCount || (c == bestCount && remaining[i] < remaining[best]) {
			best, bestCount = i, c
		}
	}

	last := len(remaining) - 1
	remaining[best], remaining[last] = remaining[last], remaining[best]
	slot := a.slots[remaining[last]]
	rest := remaining[:last]

	candidates := rankCandidates(
		a.cctx.EligibleCandidates(slot, a.level), a.cctx, slot.Shift, a.profile)

	for _, person := range candidates {
		if a.aborted {
			break
		}

		a.cctx.Apply(slot, person)
		a.commit(slot, person)

		// 前向检查：任一剩余槽位候选人归零则立即回退
		if a.forwardCheck(rest) && a.assign(rest) {
			return true
		}

		a.revert(slot)
		a.cctx.Undo(slot, person)
	}

	remaining[best], remaining[last] = remaining[last], remaining[best]
	return false
}

// forwardCheck 检查所有未分配槽位是否仍有候选人
func (a *attempt) forwardCheck(remaining []int) bool {
	for _, idx := range remaining {
		if a.cctx.CountEligible(a.slots[idx], a.level) == 0 {
			return false
		}
	}
	return true
}

// commit 将分配写入排班骨架
func (a *attempt) commit(slot model.Slot, person string) {
	p := person
	a.schedule[slot.Week][slot.DaySlot].Assignments(slot.Shift)[slot.Scenario] = &p
}

// revert 清除排班骨架中的分配
func (a *attempt) revert(slot model.Slot) {
	a.schedule[slot.Week][slot.DaySlot].Assignments(slot.Shift)[slot.Scenario] = nil
}
