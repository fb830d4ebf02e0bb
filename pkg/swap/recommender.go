package swap

import (
	"fmt"
	"sort"

	"github.com/yanlian/yanlian/pkg/model"
)

// SwapType 调整方案类型
const (
	SwapTakeOver = "take_over" // 他人直接接手
	SwapExchange = "exchange"  // 与他人的既有任务互换
)

// Recommendation 一条调整建议
type Recommendation struct {
	Person string `json:"person"`

	// SwapType take_over 直接接手；exchange 互换双方任务
	SwapType string `json:"swap_type"`

	// ExchangeSlot 互换方案中对方让出的槽位
	ExchangeSlot *model.Slot `json:"exchange_slot,omitempty"`

	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
	ImpactSummary string  `json:"impact_summary"`
	Rank          int     `json:"rank"`
	Issues        []Issue `json:"issues,omitempty"`
}

// Options 推荐选项
type Options struct {
	MaxRecommendations int      // 最大推荐数量
	Preferred          []string // 优先考虑的演员（加分）
	Exclude            []string // 排除的演员
	AllowExchange      bool     // 是否允许互换方案
	MinScore           float64  // 最低得分
}

// DefaultOptions 返回默认选项
func DefaultOptions() *Options {
	return &Options{
		MaxRecommendations: 5,
		AllowExchange:      true,
		MinScore:           40,
	}
}

// Recommender 调整建议推荐器
type Recommender struct{}

// NewRecommender 创建推荐器
func NewRecommender() *Recommender {
	return &Recommender{}
}

// Recommend 为目标槽位推荐顶替或互换方案
// 目标槽位已有分配时先释放原演员再评估；候选范围为该情景的批准列表
func (r *Recommender) Recommend(
	schedule model.Schedule,
	cfg *model.Config,
	availability model.AvailabilitySet,
	target model.Slot,
	options *Options,
) []Recommendation {
	if options == nil {
		options = DefaultOptions()
	}

	evaluator := NewEvaluator(schedule, cfg, availability)

	current := schedule.PersonAt(target)
	if current != nil {
		evaluator.Release(target, *current)
	}

	exclude := make(map[string]bool, len(options.Exclude)+1)
	if current != nil {
		exclude[*current] = true
	}
	for _, p := range options.Exclude {
		exclude[p] = true
	}
	preferred := make(map[string]bool, len(options.Preferred))
	for _, p := range options.Preferred {
		preferred[p] = true
	}

	var candidates []Recommendation
	for _, person := range cfg.ApprovedFor(target.Scenario) {
		if exclude[person] {
			continue
		}

		ev := evaluator.Evaluate(target, person)
		if ev.Feasible {
			rec := Recommendation{
				Person:        person,
				SwapType:      SwapTakeOver,
				Score:         ev.Score,
				Reason:        r.takeOverReason(evaluator, person),
				ImpactSummary: evaluator.impactSummary(person),
				Issues:        ev.Issues,
			}
			if preferred[person] {
				rec.Score += 10
			}
			if rec.Score >= options.MinScore {
				candidates = append(candidates, rec)
			}
			continue
		}

		// 直接接手不可行时尝试互换：候选人让出一个既有任务给原演员
		if options.AllowExchange && current != nil {
			candidates = append(candidates,
				r.findExchanges(evaluator, schedule, target, *current, person, options)...)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > options.MaxRecommendations {
		candidates = candidates[:options.MaxRecommendations]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates
}

// findExchanges 评估候选人的既有任务能否与目标槽位互换
// 互换成立的条件：候选人释放既有槽位后可进入目标槽位，且原演员可进入该既有槽位
func (r *Recommender) findExchanges(
	evaluator *Evaluator,
	schedule model.Schedule,
	target model.Slot,
	current string,
	candidate string,
	options *Options,
) []Recommendation {
	var out []Recommendation

	for _, filled := range FilledSlots(schedule) {
		if filled.Person != candidate {
			continue
		}
		// 同一槽位没有互换意义
		if filled.Slot == target {
			continue
		}

		evaluator.Release(filled.Slot, candidate)

		candidateEv := evaluator.Evaluate(target, candidate)
		currentEv := evaluator.Evaluate(filled.Slot, current)

		if candidateEv.Feasible && currentEv.Feasible {
			score := (candidateEv.Score+currentEv.Score)/2 - 5
			if score >= options.MinScore {
				slot := filled.Slot
				out = append(out, Recommendation{
					Person:       candidate,
					SwapType:     SwapExchange,
					ExchangeSlot: &slot,
					Score:        score,
					Reason: fmt.Sprintf("与 %s 的 %s %s 任务互换",
						current, filled.Slot.Date, shiftLabel(filled.Slot.Shift)),
					ImpactSummary: "互换后双方任务数不变",
				})
			}
		}

		evaluator.Restore(filled.Slot, candidate)
	}
	return out
}

// takeOverReason 生成接手建议的说明
func (r *Recommender) takeOverReason(evaluator *Evaluator, person string) string {
	switch usage := evaluator.usage(person); {
	case usage == 0:
		return "本月尚无任务，优先接手"
	case usage <= 2:
		return "任务量较少，接手后仍然均衡"
	default:
		return "可以接手该情景"
	}
}

// shiftLabel 班次中文标签
func shiftLabel(shift model.Shift) string {
	if shift == model.ShiftEvening {
		return "晚场"
	}
	return "早场"
}

// sortedKeys 返回分配表的有序情景键
func sortedKeys(cells map[string]*string) []string {
	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
