// Package model 定义演练排班引擎的核心数据模型
package model

// ConflictScope 冲突规则作用域
type ConflictScope string

const (
	// ConflictSameShift 同一周内同一班次类型
	ConflictSameShift ConflictScope = "same_shift"
)

// ConflictRule 情景互斥规则：同一人在同一周同一班次内
// 不能同时承担规则中的两个情景
type ConflictRule struct {
	ScenarioA string        `json:"scenario_a"`
	ScenarioB string        `json:"scenario_b"`
	Scope     ConflictScope `json:"scope"`
}

// Other 返回规则中与给定情景配对的另一个情景
func (r ConflictRule) Other(scenario string) (string, bool) {
	switch scenario {
	case r.ScenarioA:
		return r.ScenarioB, true
	case r.ScenarioB:
		return r.ScenarioA, true
	}
	return "", false
}

// Config 一次求解的配置快照
// 求解期间只读；外部编辑器修改配置后需重新生成快照
type Config struct {
	// People 全部已知演员（有序）
	People []Person `json:"people"`

	// ScenarioApprovals 情景 → 批准的演员ID列表（配置顺序即遍历顺序）
	ScenarioApprovals map[string][]string `json:"scenario_approvals"`

	// DaySlotScenarios 训练日槽位 → 该日配置的情景列表
	DaySlotScenarios map[string][]string `json:"day_slot_scenarios"`

	// ConflictRules 情景互斥规则
	ConflictRules []ConflictRule `json:"conflict_rules,omitempty"`

	// SlotWeekdays 槽位偏好星期（缺省周计划推导用）
	SlotWeekdays map[string]string `json:"slot_weekdays,omitempty"`
}

// ConstraintFor 返回某演员的个人约束，未设置返回 nil
func (c *Config) ConstraintFor(personID string) *PersonConstraint {
	for i := range c.People {
		if c.People[i].ID == personID {
			return c.People[i].Constraint
		}
	}
	return nil
}

// ApprovedFor 返回某情景的批准演员列表
func (c *Config) ApprovedFor(scenario string) []string {
	return c.ScenarioApprovals[scenario]
}

// Slot 原子分配单元：(周, 训练日槽位, 班次, 情景)
type Slot struct {
	Week     int    `json:"week"`
	DaySlot  string `json:"day_slot"`
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Shift    Shift  `json:"shift"`
	Scenario string `json:"scenario"`
}

// DayAssignment 一个训练日的分配结果
// Morning/Evening 的值为 nil 表示该情景未排上
type DayAssignment struct {
	Date    string             `json:"date"`
	Morning map[string]*string `json:"morning"`
	Evening map[string]*string `json:"evening"`
}

// Assignments 返回指定班次的分配表
func (d *DayAssignment) Assignments(shift Shift) map[string]*string {
	if shift == ShiftEvening {
		return d.Evening
	}
	return d.Morning
}

// WeekSchedule 一周的排班：槽位 → 训练日分配（nil 表示当日取消）
type WeekSchedule map[string]*DayAssignment

// Schedule 整月排班结果，按周索引
// 可直接 JSON 序列化持久保存
type Schedule []WeekSchedule

// Filled 统计已排/应排槽位数
func (s Schedule) Filled() (filled, total int) {
	for _, week := range s {
		for _, day := range week {
			if day == nil {
				continue
			}
			for _, shift := range Shifts() {
				for _, person := range day.Assignments(shift) {
					total++
					if person != nil {
						filled++
					}
				}
			}
		}
	}
	return filled, total
}

// PersonAt 返回某槽位的分配结果
func (s Schedule) PersonAt(slot Slot) *string {
	if slot.Week < 0 || slot.Week >= len(s) {
		return nil
	}
	day := s[slot.Week][slot.DaySlot]
	if day == nil {
		return nil
	}
	return day.Assignments(slot.Shift)[slot.Scenario]
}
