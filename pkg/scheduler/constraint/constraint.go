// Package constraint 定义排班约束规则与松弛级别
package constraint

import (
	"github.com/yanlian/yanlian/pkg/model"
)

// Level 松弛级别（有序枚举，逐级放宽非核心约束）
type Level int

const (
	// LevelStrict 全部约束生效
	LevelStrict Level = 0
	// LevelIgnoreEveningRatio 忽略晚场占比上限
	LevelIgnoreEveningRatio Level = 1
	// LevelIgnoreDayRestrictions 级别1 + 忽略出勤日限制
	LevelIgnoreDayRestrictions Level = 2
	// LevelIgnoreConflicts 级别2 + 忽略情景互斥规则
	LevelIgnoreConflicts Level = 3
	// LevelNever 永不松弛（核心规则专用标记）
	LevelNever Level = 4
)

// Levels 返回逐级升序的可尝试松弛级别
func Levels() []Level {
	return []Level{LevelStrict, LevelIgnoreEveningRatio, LevelIgnoreDayRestrictions, LevelIgnoreConflicts}
}

// String 返回级别名称
func (l Level) String() string {
	switch l {
	case LevelStrict:
		return "strict"
	case LevelIgnoreEveningRatio:
		return "ignore_evening_ratio"
	case LevelIgnoreDayRestrictions:
		return "ignore_day_restrictions"
	case LevelIgnoreConflicts:
		return "ignore_conflicts"
	case LevelNever:
		return "never"
	}
	return "unknown"
}

// ReasonCode 拒绝原因码（诊断输出用，对调用方稳定）
type ReasonCode string

const (
	ReasonNoApprovedActors ReasonCode = "no_approved_actors"    // 情景无批准演员
	ReasonNotApproved      ReasonCode = "not_approved"          // 未被该情景批准
	ReasonNotAvailable     ReasonCode = "not_available"         // 该班次不可用
	ReasonWeekShiftTaken   ReasonCode = "week_shift_taken"      // 本周该班次已有角色
	ReasonDayNotAllowed    ReasonCode = "day_not_allowed"       // 不在允许出勤日
	ReasonEveningRatio     ReasonCode = "evening_ratio_reached" // 晚场占比达到上限
	ReasonScenarioConflict ReasonCode = "scenario_conflict"     // 与同班次已有情景互斥
)

// Message 返回原因码的展示文案
func (c ReasonCode) Message() string {
	switch c {
	case ReasonNoApprovedActors:
		return "情景没有批准的演员"
	case ReasonNotApproved:
		return "未被该情景批准"
	case ReasonNotAvailable:
		return "该班次未登记可用"
	case ReasonWeekShiftTaken:
		return "本周该班次已承担角色"
	case ReasonDayNotAllowed:
		return "该日不在允许出勤日内"
	case ReasonEveningRatio:
		return "晚场占比已达上限"
	case ReasonScenarioConflict:
		return "与同班次已有情景互斥"
	}
	return string(c)
}

// Rule 单条约束规则：纯谓词，检查某人能否进入某槽位
// Check 返回 true 表示通过
type Rule struct {
	Name      string
	Code      ReasonCode
	RelaxedAt Level // 从该级别起被忽略；LevelNever 表示核心规则
	Check     func(ctx *Context, slot model.Slot, person string) bool
}

// EnforcedAt 检查规则在指定级别下是否生效
func (r Rule) EnforcedAt(level Level) bool {
	return level < r.RelaxedAt
}

// Rules 返回全部规则，顺序即诊断时的原因检查顺序：
// 可用性 → 周班次唯一 → 出勤日 → 晚场占比 → 情景互斥
func Rules() []Rule {
	return []Rule{
		{
			Name:      "班次可用性",
			Code:      ReasonNotAvailable,
			RelaxedAt: LevelNever,
			Check: func(ctx *Context, slot model.Slot, person string) bool {
				return ctx.availability.IsAvailable(slot.Date, person, slot.Shift)
			},
		},
		{
			Name:      "周班次唯一",
			Code:      ReasonWeekShiftTaken,
			RelaxedAt: LevelNever,
			Check: func(ctx *Context, slot model.Slot, person string) bool {
				return !ctx.UsedInWeekShift(slot.Week, slot.Shift, person)
			},
		},
		{
			Name:      "出勤日限制",
			Code:      ReasonDayNotAllowed,
			RelaxedAt: LevelIgnoreDayRestrictions,
			Check: func(ctx *Context, slot model.Slot, person string) bool {
				return ctx.constraints[person].AllowsWeekday(slot.Weekday)
			},
		},
		{
			Name:      "晚场占比上限",
			Code:      ReasonEveningRatio,
			RelaxedAt: LevelIgnoreEveningRatio,
			Check: func(ctx *Context, slot model.Slot, person string) bool {
				return ctx.eveningAllowed(slot.Shift, person)
			},
		},
		{
			Name:      "情景互斥",
			Code:      ReasonScenarioConflict,
			RelaxedAt: LevelIgnoreConflicts,
			Check: func(ctx *Context, slot model.Slot, person string) bool {
				return !ctx.hasConflict(slot, person)
			},
		},
	}
}
