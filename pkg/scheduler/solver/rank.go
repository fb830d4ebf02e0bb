// Package solver 提供基于约束搜索的排班求解器
package solver

import (
	"sort"

	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/constraint"
)

// rankCandidates 按公平性排序候选人（升序稳定排序）：
// 1. 当前累计分配数少的优先（负载均衡）
// 2. 晚场时偏好早场的演员后置
// 3. 本月机会总数少的优先（机会稀缺者不被饿死）
// 全部相同时保持候选人原有相对顺序
func rankCandidates(candidates []string, cctx *constraint.Context, shift model.Shift, profile map[string]int) []string {
	ranked := make([]string, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i], ranked[j]

		ui, uj := cctx.UsageCount(pi), cctx.UsageCount(pj)
		if ui != uj {
			return ui < uj
		}

		if shift == model.ShiftEvening {
			mi, mj := cctx.PrefersMorning(pi), cctx.PrefersMorning(pj)
			if mi != mj {
				return !mi
			}
		}

		return profile[pi] < profile[pj]
	})

	return ranked
}
