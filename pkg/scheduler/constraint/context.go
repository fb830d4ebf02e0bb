// Package constraint 定义排班约束规则与松弛级别
package constraint

import (
	"github.com/yanlian/yanlian/pkg/model"
)

// Context 一次搜索的约束上下文
// 输入快照只读；usage 计数随 Apply/Undo 增减，仅在单次求解内存活
type Context struct {
	config       *model.Config
	availability model.AvailabilitySet
	rules        []Rule

	// 索引缓存
	constraints map[string]*model.PersonConstraint
	approved    map[string]map[string]bool // 情景 → 演员ID集合

	// 搜索状态
	// weekShiftUsage: 周 → 班次 → 演员 → 已承担的情景集合
	// 周班次唯一规则按整个集合判定（一人每周每班次至多一个角色）
	weekShiftUsage map[int]map[model.Shift]map[string]map[string]bool
	usageCount     map[string]int
	eveningCount   map[string]int
}

// NewContext 创建约束上下文
func NewContext(cfg *model.Config, availability model.AvailabilitySet) *Context {
	ctx := &Context{
		config:         cfg,
		availability:   availability,
		rules:          Rules(),
		constraints:    make(map[string]*model.PersonConstraint, len(cfg.People)),
		approved:       make(map[string]map[string]bool, len(cfg.ScenarioApprovals)),
		weekShiftUsage: make(map[int]map[model.Shift]map[string]map[string]bool),
		usageCount:     make(map[string]int),
		eveningCount:   make(map[string]int),
	}

	for i := range cfg.People {
		ctx.constraints[cfg.People[i].ID] = cfg.People[i].Constraint
	}
	for scenario, people := range cfg.ScenarioApprovals {
		set := make(map[string]bool, len(people))
		for _, p := range people {
			set[p] = true
		}
		ctx.approved[scenario] = set
	}

	return ctx
}

// Config 返回配置快照
func (ctx *Context) Config() *model.Config {
	return ctx.config
}

// Availability 返回可用性表
func (ctx *Context) Availability() model.AvailabilitySet {
	return ctx.availability
}

// IsApproved 检查演员是否被某情景批准
func (ctx *Context) IsApproved(scenario, person string) bool {
	return ctx.approved[scenario][person]
}

// UsageCount 返回演员当前累计分配数
func (ctx *Context) UsageCount(person string) int {
	return ctx.usageCount[person]
}

// EveningCount 返回演员当前晚场分配数
func (ctx *Context) EveningCount(person string) int {
	return ctx.eveningCount[person]
}

// PrefersMorning 检查演员是否偏好早场
func (ctx *Context) PrefersMorning(person string) bool {
	return ctx.constraints[person].PrefersMorning()
}

// UsedInWeekShift 检查演员本周该班次是否已承担任何角色
func (ctx *Context) UsedInWeekShift(week int, shift model.Shift, person string) bool {
	return len(ctx.weekShiftUsage[week][shift][person]) > 0
}

// ScenariosInWeekShift 返回演员本周该班次已承担的情景集合
func (ctx *Context) ScenariosInWeekShift(week int, shift model.Shift, person string) map[string]bool {
	return ctx.weekShiftUsage[week][shift][person]
}

// hasConflict 检查分配是否触发情景互斥规则
func (ctx *Context) hasConflict(slot model.Slot, person string) bool {
	for _, rule := range ctx.config.ConflictRules {
		if rule.Scope != model.ConflictSameShift {
			continue
		}
		other, ok := rule.Other(slot.Scenario)
		if !ok {
			continue
		}
		if ctx.weekShiftUsage[slot.Week][slot.Shift][person][other] {
			return true
		}
	}
	return false
}

// eveningAllowed 检查晚场占比上限
// 占比为 0 完全禁排晚场；已有分配后按 eveningCount/usageCount 判定
func (ctx *Context) eveningAllowed(shift model.Shift, person string) bool {
	if shift != model.ShiftEvening {
		return true
	}
	c := ctx.constraints[person]
	if !c.HasEveningCap() {
		return true
	}
	ratio := *c.MaxEveningRatio
	if ratio == 0 {
		return false
	}
	used := ctx.usageCount[person]
	if used == 0 {
		return true
	}
	return float64(ctx.eveningCount[person])/float64(used) < ratio
}

// Eligible 检查演员在指定松弛级别下能否进入某槽位
func (ctx *Context) Eligible(slot model.Slot, person string, level Level) bool {
	if !ctx.IsApproved(slot.Scenario, person) {
		return false
	}
	for _, rule := range ctx.rules {
		if !rule.EnforcedAt(level) {
			continue
		}
		if !rule.Check(ctx, slot, person) {
			return false
		}
	}
	return true
}

// EligibleCandidates 返回某槽位的合格候选人（保持批准列表顺序）
func (ctx *Context) EligibleCandidates(slot model.Slot, level Level) []string {
	approved := ctx.config.ApprovedFor(slot.Scenario)
	candidates := make([]string, 0, len(approved))
	for _, person := range approved {
		if ctx.Eligible(slot, person, level) {
			candidates = append(candidates, person)
		}
	}
	return candidates
}

// CountEligible 统计某槽位的合格候选人数量
func (ctx *Context) CountEligible(slot model.Slot, level Level) int {
	count := 0
	for _, person := range ctx.config.ApprovedFor(slot.Scenario) {
		if ctx.Eligible(slot, person, level) {
			count++
		}
	}
	return count
}

// FirstRejection 按固定顺序返回演员被严格级别拒绝的首个原因
// 顺序：可用性 → 本周班次已占用 → 出勤日 → 晚场占比 → 情景互斥
// 本周班次已占用时，若已承担的情景与目标情景互斥，原因归为情景互斥
func (ctx *Context) FirstRejection(slot model.Slot, person string) (ReasonCode, bool) {
	for _, rule := range ctx.rules {
		if rule.Check(ctx, slot, person) {
			continue
		}
		if rule.Code == ReasonWeekShiftTaken && ctx.conflictsWithHeld(slot, person) {
			return ReasonScenarioConflict, true
		}
		return rule.Code, true
	}
	return "", false
}

// conflictsWithHeld 检查本周该班次已承担的情景中是否存在与目标情景互斥的
func (ctx *Context) conflictsWithHeld(slot model.Slot, person string) bool {
	held := ctx.weekShiftUsage[slot.Week][slot.Shift][person]
	if len(held) == 0 {
		return false
	}
	for _, rule := range ctx.config.ConflictRules {
		if rule.Scope != model.ConflictSameShift {
			continue
		}
		other, ok := rule.Other(slot.Scenario)
		if !ok {
			continue
		}
		if held[other] {
			return true
		}
	}
	return false
}

// Apply 提交一次分配
func (ctx *Context) Apply(slot model.Slot, person string) {
	byShift, ok := ctx.weekShiftUsage[slot.Week]
	if !ok {
		byShift = make(map[model.Shift]map[string]map[string]bool)
		ctx.weekShiftUsage[slot.Week] = byShift
	}
	byPerson, ok := byShift[slot.Shift]
	if !ok {
		byPerson = make(map[string]map[string]bool)
		byShift[slot.Shift] = byPerson
	}
	scenarios, ok := byPerson[person]
	if !ok {
		scenarios = make(map[string]bool)
		byPerson[person] = scenarios
	}
	scenarios[slot.Scenario] = true

	ctx.usageCount[person]++
	if slot.Shift == model.ShiftEvening {
		ctx.eveningCount[person]++
	}
}

// Undo 撤销一次分配（与 Apply 严格配对）
func (ctx *Context) Undo(slot model.Slot, person string) {
	if scenarios := ctx.weekShiftUsage[slot.Week][slot.Shift][person]; scenarios != nil {
		delete(scenarios, slot.Scenario)
		if len(scenarios) == 0 {
			delete(ctx.weekShiftUsage[slot.Week][slot.Shift], person)
		}
	}

	ctx.usageCount[person]--
	if ctx.usageCount[person] <= 0 {
		delete(ctx.usageCount, person)
	}
	if slot.Shift == model.ShiftEvening {
		ctx.eveningCount[person]--
		if ctx.eveningCount[person] <= 0 {
			delete(ctx.eveningCount, person)
		}
	}
}
