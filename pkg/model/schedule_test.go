package model

import "testing"

func TestConflictRule_Other(t *testing.T) {
	rule := ConflictRule{ScenarioA: "急诊分诊", ScenarioB: "家属告知", Scope: ConflictSameShift}

	if other, ok := rule.Other("急诊分诊"); !ok || other != "家属告知" {
		t.Errorf("Other() = %v %v, expected 家属告知", other, ok)
	}
	if other, ok := rule.Other("家属告知"); !ok || other != "急诊分诊" {
		t.Errorf("Other() = %v %v, expected 急诊分诊", other, ok)
	}
	if _, ok := rule.Other("问诊"); ok {
		t.Error("规则外的情景不应匹配")
	}
}

func TestPersonConstraint_AllowsWeekday(t *testing.T) {
	tests := []struct {
		name       string
		constraint *PersonConstraint
		weekday    string
		expected   bool
	}{
		{"nil约束无限制", nil, "Monday", true},
		{"空列表无限制", &PersonConstraint{}, "Friday", true},
		{"在允许日内", &PersonConstraint{AllowedDays: []string{"Tuesday", "Thursday"}}, "Tuesday", true},
		{"不在允许日内", &PersonConstraint{AllowedDays: []string{"Tuesday", "Thursday"}}, "Wednesday", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.constraint.AllowsWeekday(tt.weekday); result != tt.expected {
				t.Errorf("AllowsWeekday(%s) = %v, expected %v", tt.weekday, result, tt.expected)
			}
		})
	}
}

func TestSchedule_Filled(t *testing.T) {
	person := "张三"
	schedule := Schedule{
		WeekSchedule{
			DaySlot1: &DayAssignment{
				Date:    "2026-03-03",
				Morning: map[string]*string{"问诊": &person, "告知": nil},
				Evening: map[string]*string{"问诊": nil, "告知": nil},
			},
			DaySlot2: nil, // 取消的训练日不计入
		},
	}

	filled, total := schedule.Filled()
	if filled != 1 || total != 4 {
		t.Errorf("Filled() = %d/%d, expected 1/4", filled, total)
	}
}

func TestDayAssignment_Assignments(t *testing.T) {
	day := &DayAssignment{
		Morning: map[string]*string{"问诊": nil},
		Evening: map[string]*string{"告知": nil},
	}

	if _, ok := day.Assignments(ShiftMorning)["问诊"]; !ok {
		t.Error("早场应返回 Morning 表")
	}
	if _, ok := day.Assignments(ShiftEvening)["告知"]; !ok {
		t.Error("晚场应返回 Evening 表")
	}
}
