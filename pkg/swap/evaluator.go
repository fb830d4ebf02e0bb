// Package swap 提供排班调整建议：演员临时缺席时推荐顶替或互换方案
package swap

import (
	"fmt"

	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/constraint"
)

// Issue 调整方案的约束提示
type Issue struct {
	Code     constraint.ReasonCode `json:"code"`
	Severity string                `json:"severity"` // error/warning
	Message  string                `json:"message"`
}

// Evaluation 单个候选人的评估结果
type Evaluation struct {
	Person   string  `json:"person"`
	Feasible bool    `json:"feasible"`
	Score    float64 `json:"score"`
	Issues   []Issue `json:"issues,omitempty"`
}

// Evaluator 调整方案评估器
// 以既有排班为基线构建约束上下文，评估候选人能否进入目标槽位
type Evaluator struct {
	cctx *constraint.Context
	cfg  *model.Config
}

// NewEvaluator 创建评估器并载入既有排班
func NewEvaluator(schedule model.Schedule, cfg *model.Config, availability model.AvailabilitySet) *Evaluator {
	cctx := constraint.NewContext(cfg, availability)
	for _, slot := range FilledSlots(schedule) {
		cctx.Apply(slot.Slot, slot.Person)
	}
	return &Evaluator{cctx: cctx, cfg: cfg}
}

// FilledSlot 排班中的一条已填分配
type FilledSlot struct {
	Slot   model.Slot
	Person string
}

// FilledSlots 展开排班中的全部已填槽位（按周→槽位→班次的稳定顺序）
func FilledSlots(schedule model.Schedule) []FilledSlot {
	var out []FilledSlot
	for week, weekSchedule := range schedule {
		for _, daySlot := range model.DaySlots() {
			day := weekSchedule[daySlot]
			if day == nil {
				continue
			}
			weekday := model.WeekdayName(day.Date)
			for _, shift := range model.Shifts() {
				for _, scenario := range sortedKeys(day.Assignments(shift)) {
					person := day.Assignments(shift)[scenario]
					if person == nil {
						continue
					}
					out = append(out, FilledSlot{
						Slot: model.Slot{
							Week:     week,
							DaySlot:  daySlot,
							Date:     day.Date,
							Weekday:  weekday,
							Shift:    shift,
							Scenario: scenario,
						},
						Person: *person,
					})
				}
			}
		}
	}
	return out
}

// Release 从基线中撤销一条分配（演员缺席时先释放其槽位）
func (e *Evaluator) Release(slot model.Slot, person string) {
	e.cctx.Undo(slot, person)
}

// Restore 恢复一条分配
func (e *Evaluator) Restore(slot model.Slot, person string) {
	e.cctx.Apply(slot, person)
}

// Evaluate 评估候选人进入目标槽位的可行性与得分
func (e *Evaluator) Evaluate(slot model.Slot, person string) *Evaluation {
	ev := &Evaluation{Person: person}

	if !e.cctx.IsApproved(slot.Scenario, person) {
		ev.Issues = append(ev.Issues, Issue{
			Code:     constraint.ReasonNotApproved,
			Severity: "error",
			Message:  constraint.ReasonNotApproved.Message(),
		})
		return ev
	}

	if code, rejected := e.cctx.FirstRejection(slot, person); rejected {
		ev.Issues = append(ev.Issues, Issue{
			Code:     code,
			Severity: "error",
			Message:  code.Message(),
		})
		return ev
	}

	ev.Feasible = true
	ev.Score = e.score(slot, person)

	if slot.Shift == model.ShiftEvening && e.cctx.PrefersMorning(person) {
		ev.Issues = append(ev.Issues, Issue{
			Code:     constraint.ReasonEveningRatio,
			Severity: "warning",
			Message:  "该演员偏好早场",
		})
	}
	return ev
}

// score 候选人得分：任务越少得分越高，晚场对偏好早场者降分
func (e *Evaluator) score(slot model.Slot, person string) float64 {
	score := 100.0
	score -= 12 * float64(e.cctx.UsageCount(person))
	if slot.Shift == model.ShiftEvening && e.cctx.PrefersMorning(person) {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	return score
}

// usage 返回候选人当前任务数
func (e *Evaluator) usage(person string) int {
	return e.cctx.UsageCount(person)
}

// impactSummary 生成接手后的影响摘要
func (e *Evaluator) impactSummary(person string) string {
	return fmt.Sprintf("接手后本月任务数为 %d", e.usage(person)+1)
}
