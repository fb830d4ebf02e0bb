package solver

import (
	"testing"

	"github.com/yanlian/yanlian/pkg/model"
)

func TestBuildProfile(t *testing.T) {
	slots := []model.Slot{
		{Week: 0, DaySlot: model.DaySlot1, Date: "2026-03-03", Weekday: "Tuesday", Shift: model.ShiftMorning, Scenario: "问诊"},
		{Week: 0, DaySlot: model.DaySlot1, Date: "2026-03-03", Weekday: "Tuesday", Shift: model.ShiftEvening, Scenario: "问诊"},
		{Week: 0, DaySlot: model.DaySlot2, Date: "2026-03-04", Weekday: "Wednesday", Shift: model.ShiftMorning, Scenario: "告知"},
	}

	cfg := &model.Config{
		People: []model.Person{
			{ID: "张三"},
			{ID: "李四", Constraint: &model.PersonConstraint{AllowedDays: []string{"Tuesday"}}},
			{ID: "王五"},
			{ID: "赵六"},
		},
		ScenarioApprovals: map[string][]string{
			"问诊": {"张三", "李四", "王五"},
			"告知": {"张三", "李四"},
		},
	}

	availability := model.AvailabilitySet{
		"2026-03-03": {
			"张三": model.AvailabilityBoth,
			"李四": model.AvailabilityBoth,
			"王五": model.AvailabilityMorning,
		},
		"2026-03-04": {
			"张三": model.AvailabilityBoth,
			"李四": model.AvailabilityBoth,
		},
	}

	profile := buildProfile(slots, cfg, availability)

	cases := []struct {
		name   string
		person string
		want   int
	}{
		{"无限制全可用", "张三", 3},
		{"仅周二出勤", "李四", 2},
		{"仅早场可用且未批准告知", "王五", 1},
		{"未批准任何情景", "赵六", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := profile[tc.person]; got != tc.want {
				t.Errorf("profile[%s] = %d, expected %d", tc.person, got, tc.want)
			}
		})
	}

	// 未登记的日期视为不可用
	slots = append(slots, model.Slot{
		Week: 0, DaySlot: model.DaySlot3, Date: "2026-03-05", Weekday: "Thursday",
		Shift: model.ShiftMorning, Scenario: "问诊",
	})
	profile = buildProfile(slots, cfg, availability)
	if profile["张三"] != 3 {
		t.Errorf("缺席日期不应计入机会: profile[张三] = %d", profile["张三"])
	}
}
