// Package validator 提供排班结果验证功能
package validator

import (
	"fmt"
	"sort"

	"github.com/yanlian/yanlian/pkg/model"
)

// ViolationType 违规类型
type ViolationType string

const (
	ViolationDoubleBooking ViolationType = "double_booking" // 同周同班次重复分配
	ViolationNotApproved   ViolationType = "not_approved"   // 未获情景批准
	ViolationNotAvailable  ViolationType = "not_available"  // 班次不可用
	ViolationDayRestricted ViolationType = "day_restricted" // 违反出勤日限制
	ViolationEveningRatio  ViolationType = "evening_ratio"  // 超过晚场占比上限
	ViolationConflictRule  ViolationType = "conflict_rule"  // 违反情景互斥规则
	ViolationUnfilled      ViolationType = "unfilled"       // 槽位未排
)

// Violation 违规信息
type Violation struct {
	Type     ViolationType `json:"type"`
	Severity string        `json:"severity"` // error/warning
	Person   string        `json:"person,omitempty"`
	Week     int           `json:"week"`
	Date     string        `json:"date,omitempty"`
	Shift    model.Shift   `json:"shift,omitempty"`
	Scenario string        `json:"scenario,omitempty"`
	Message  string        `json:"message"`
}

// Validator 排班验证器
type Validator struct {
	config *ValidatorConfig
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	CheckApproval     bool // 是否检查情景批准
	CheckAvailability bool // 是否检查可用性
	CheckDays         bool // 是否检查出勤日限制
	CheckEveningRatio bool // 是否检查晚场占比
	CheckConflicts    bool // 是否检查互斥规则
	ReportUnfilled    bool // 是否报告未排槽位
}

// DefaultValidatorConfig 返回默认配置（全部检查开启）
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		CheckApproval:     true,
		CheckAvailability: true,
		CheckDays:         true,
		CheckEveningRatio: true,
		CheckConflicts:    true,
		ReportUnfilled:    true,
	}
}

// New 创建排班验证器
func New(config *ValidatorConfig) *Validator {
	if config == nil {
		config = DefaultValidatorConfig()
	}
	return &Validator{config: config}
}

// assignment 打平后的单条分配
type assignment struct {
	week     int
	daySlot  string
	date     string
	weekday  string
	shift    model.Shift
	scenario string
	person   string
}

// Validate 验证一份排班是否满足全部规则
// 松弛级别求解出的排班可能带有已知违规，调用方据此决定是否接受
func (v *Validator) Validate(schedule model.Schedule, cfg *model.Config, availability model.AvailabilitySet, weeks []model.Week) []Violation {
	var violations []Violation

	assignments := flatten(schedule, weeks)

	if v.config.ReportUnfilled {
		violations = append(violations, v.checkUnfilled(schedule, weeks)...)
	}

	violations = append(violations, v.checkDoubleBooking(assignments)...)

	for _, a := range assignments {
		if v.config.CheckApproval {
			violations = append(violations, v.checkApproval(a, cfg)...)
		}
		if v.config.CheckAvailability {
			violations = append(violations, v.checkAvailability(a, availability)...)
		}
		if v.config.CheckDays {
			violations = append(violations, v.checkDays(a, cfg)...)
		}
	}

	if v.config.CheckEveningRatio {
		violations = append(violations, v.checkEveningRatio(assignments, cfg)...)
	}
	if v.config.CheckConflicts {
		violations = append(violations, v.checkConflicts(assignments, cfg)...)
	}

	return violations
}

// flatten 将排班展开为分配列表（按周→槽位→班次→情景的稳定顺序）
func flatten(schedule model.Schedule, weeks []model.Week) []assignment {
	var out []assignment
	for weekIdx, weekSched := range schedule {
		for _, daySlot := range model.DaySlots() {
			day := weekSched[daySlot]
			if day == nil {
				continue
			}
			weekday := model.WeekdayName(day.Date)
			if weekIdx < len(weeks) {
				if info, ok := weeks[weekIdx].FindByDate(day.Date); ok {
					weekday = info.Weekday
				}
			}
			for _, shift := range model.Shifts() {
				cells := day.Assignments(shift)
				scenarios := make([]string, 0, len(cells))
				for scenario := range cells {
					scenarios = append(scenarios, scenario)
				}
				sort.Strings(scenarios)
				for _, scenario := range scenarios {
					person := cells[scenario]
					if person == nil {
						continue
					}
					out = append(out, assignment{
						week:     weekIdx,
						daySlot:  daySlot,
						date:     day.Date,
						weekday:  weekday,
						shift:    shift,
						scenario: scenario,
						person:   *person,
					})
				}
			}
		}
	}
	return out
}

// checkUnfilled 报告未排上的槽位
func (v *Validator) checkUnfilled(schedule model.Schedule, weeks []model.Week) []Violation {
	var violations []Violation
	for weekIdx, weekSched := range schedule {
		for _, daySlot := range model.DaySlots() {
			day := weekSched[daySlot]
			if day == nil {
				continue
			}
			for _, shift := range model.Shifts() {
				cells := day.Assignments(shift)
				scenarios := make([]string, 0, len(cells))
				for scenario := range cells {
					scenarios = append(scenarios, scenario)
				}
				sort.Strings(scenarios)
				for _, scenario := range scenarios {
					if cells[scenario] == nil {
						violations = append(violations, Violation{
							Type:     ViolationUnfilled,
							Severity: "warning",
							Week:     weekIdx,
							Date:     day.Date,
							Shift:    shift,
							Scenario: scenario,
							Message:  fmt.Sprintf("%s %v 情景 '%s' 未排", day.Date, shift, scenario),
						})
					}
				}
			}
		}
	}
	return violations
}

// checkDoubleBooking 检测同周同班次一人多角色
func (v *Validator) checkDoubleBooking(assignments []assignment) []Violation {
	var violations []Violation

	type key struct {
		week   int
		shift  model.Shift
		person string
	}
	seen := make(map[key]assignment)

	for _, a := range assignments {
		k := key{a.week, a.shift, a.person}
		if prev, ok := seen[k]; ok {
			violations = append(violations, Violation{
				Type:     ViolationDoubleBooking,
				Severity: "error",
				Person:   a.person,
				Week:     a.week,
				Date:     a.date,
				Shift:    a.shift,
				Scenario: a.scenario,
				Message: fmt.Sprintf("演员 %s 第%d周 %v 班次已承担情景 '%s'，不能再排 '%s'",
					a.person, a.week+1, a.shift, prev.scenario, a.scenario),
			})
			continue
		}
		seen[k] = a
	}

	return violations
}

// checkApproval 检查演员是否获情景批准
func (v *Validator) checkApproval(a assignment, cfg *model.Config) []Violation {
	for _, approved := range cfg.ApprovedFor(a.scenario) {
		if approved == a.person {
			return nil
		}
	}
	return []Violation{{
		Type:     ViolationNotApproved,
		Severity: "error",
		Person:   a.person,
		Week:     a.week,
		Date:     a.date,
		Shift:    a.shift,
		Scenario: a.scenario,
		Message:  fmt.Sprintf("演员 %s 未获情景 '%s' 批准", a.person, a.scenario),
	}}
}

// checkAvailability 检查演员在该班次是否可用
func (v *Validator) checkAvailability(a assignment, availability model.AvailabilitySet) []Violation {
	if availability.IsAvailable(a.date, a.person, a.shift) {
		return nil
	}
	return []Violation{{
		Type:     ViolationNotAvailable,
		Severity: "error",
		Person:   a.person,
		Week:     a.week,
		Date:     a.date,
		Shift:    a.shift,
		Scenario: a.scenario,
		Message:  fmt.Sprintf("演员 %s 在 %s %v 不可用", a.person, a.date, a.shift),
	}}
}

// checkDays 检查出勤日限制
func (v *Validator) checkDays(a assignment, cfg *model.Config) []Violation {
	if cfg.ConstraintFor(a.person).AllowsWeekday(a.weekday) {
		return nil
	}
	return []Violation{{
		Type:     ViolationDayRestricted,
		Severity: "warning",
		Person:   a.person,
		Week:     a.week,
		Date:     a.date,
		Shift:    a.shift,
		Scenario: a.scenario,
		Message:  fmt.Sprintf("演员 %s 不在 %s 出勤", a.person, model.WeekdayLabel(a.weekday)),
	}}
}

// checkEveningRatio 检查晚场占比上限
// 按全月总量计算：晚场数 / 总分配数
func (v *Validator) checkEveningRatio(assignments []assignment, cfg *model.Config) []Violation {
	var violations []Violation

	total := make(map[string]int)
	evening := make(map[string]int)
	for _, a := range assignments {
		total[a.person]++
		if a.shift == model.ShiftEvening {
			evening[a.person]++
		}
	}

	for _, person := range cfg.People {
		c := cfg.ConstraintFor(person.ID)
		if !c.HasEveningCap() {
			continue
		}
		t, e := total[person.ID], evening[person.ID]
		if t == 0 || e == 0 {
			continue
		}
		ratio := float64(e) / float64(t)
		cap := *c.MaxEveningRatio
		if cap == 0 || ratio > cap {
			violations = append(violations, Violation{
				Type:     ViolationEveningRatio,
				Severity: "warning",
				Person:   person.ID,
				Message: fmt.Sprintf("演员 %s 晚场占比 %.0f%% 超过上限 %.0f%%",
					person.ID, ratio*100, cap*100),
			})
		}
	}

	return violations
}

// checkConflicts 检查情景互斥规则
func (v *Validator) checkConflicts(assignments []assignment, cfg *model.Config) []Violation {
	var violations []Violation

	// (周, 班次, 演员) → 已承担的情景列表
	type key struct {
		week   int
		shift  model.Shift
		person string
	}
	held := make(map[key][]string)
	for _, a := range assignments {
		k := key{a.week, a.shift, a.person}
		held[k] = append(held[k], a.scenario)
	}

	for _, a := range assignments {
		for _, rule := range cfg.ConflictRules {
			other, ok := rule.Other(a.scenario)
			if !ok {
				continue
			}
			k := key{a.week, a.shift, a.person}
			for _, scenario := range held[k] {
				if scenario == other && a.scenario < other {
					violations = append(violations, Violation{
						Type:     ViolationConflictRule,
						Severity: "error",
						Person:   a.person,
						Week:     a.week,
						Date:     a.date,
						Shift:    a.shift,
						Scenario: a.scenario,
						Message: fmt.Sprintf("演员 %s 第%d周 %v 班次同时承担互斥情景 '%s' 与 '%s'",
							a.person, a.week+1, a.shift, a.scenario, other),
					})
				}
			}
		}
	}

	return violations
}

// HasErrors 判断违规列表中是否存在 error 级别的违规
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == "error" {
			return true
		}
	}
	return false
}
