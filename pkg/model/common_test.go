package model

import "testing"

func TestNormalizeAvailability(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected Availability
	}{
		{"布尔true映射为全天", true, AvailabilityBoth},
		{"布尔false映射为不可用", false, AvailabilityNone},
		{"字符串both", "both", AvailabilityBoth},
		{"字符串am", "am", AvailabilityMorning},
		{"字符串pm", "pm", AvailabilityEvening},
		{"字符串morning", "morning", AvailabilityMorning},
		{"字符串evening", "evening", AvailabilityEvening},
		{"未设置映射为不可用", nil, AvailabilityNone},
		{"无法识别的字符串映射为不可用", "maybe", AvailabilityNone},
		{"无法识别的类型映射为不可用", 42, AvailabilityNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := NormalizeAvailability(tt.raw); result != tt.expected {
				t.Errorf("NormalizeAvailability(%v) = %v, expected %v", tt.raw, result, tt.expected)
			}
		})
	}
}

func TestAvailability_Allows(t *testing.T) {
	tests := []struct {
		name     string
		avail    Availability
		shift    Shift
		expected bool
	}{
		{"全天允许早场", AvailabilityBoth, ShiftMorning, true},
		{"全天允许晚场", AvailabilityBoth, ShiftEvening, true},
		{"仅早场允许早场", AvailabilityMorning, ShiftMorning, true},
		{"仅早场拒绝晚场", AvailabilityMorning, ShiftEvening, false},
		{"仅晚场拒绝早场", AvailabilityEvening, ShiftMorning, false},
		{"仅晚场允许晚场", AvailabilityEvening, ShiftEvening, true},
		{"不可用拒绝早场", AvailabilityNone, ShiftMorning, false},
		{"不可用拒绝晚场", AvailabilityNone, ShiftEvening, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.avail.Allows(tt.shift); result != tt.expected {
				t.Errorf("Allows(%v) = %v, expected %v", tt.shift, result, tt.expected)
			}
		})
	}
}

func TestAvailabilitySet_IsAvailable(t *testing.T) {
	set := NormalizeAvailabilitySet(map[string]map[string]any{
		"2026-03-03": {
			"张三": true,
			"李四": "am",
		},
	})

	if !set.IsAvailable("2026-03-03", "张三", ShiftEvening) {
		t.Error("全天可用应允许晚场")
	}
	if set.IsAvailable("2026-03-03", "李四", ShiftEvening) {
		t.Error("仅早场不应允许晚场")
	}
	if set.IsAvailable("2026-03-03", "王五", ShiftMorning) {
		t.Error("未登记的人应按不可用处理")
	}
	if set.IsAvailable("2026-03-04", "张三", ShiftMorning) {
		t.Error("未登记的日期应按不可用处理")
	}
}

func TestDefaultWeekPlan(t *testing.T) {
	week := Week{Days: []DayInfo{
		{Date: "2026-03-02", Weekday: "Monday"},
		{Date: "2026-03-03", Weekday: "Tuesday"},
		{Date: "2026-03-04", Weekday: "Wednesday"},
		{Date: "2026-03-06", Weekday: "Friday"},
	}}

	plan := DefaultWeekPlan(week, DefaultSlotWeekdays())

	if plan[DaySlot1] == nil || *plan[DaySlot1] != "2026-03-03" {
		t.Errorf("slot1 应落在周二, got %v", plan[DaySlot1])
	}
	if plan[DaySlot2] == nil || *plan[DaySlot2] != "2026-03-04" {
		t.Errorf("slot2 应落在周三, got %v", plan[DaySlot2])
	}
	// 该周没有周四，slot3 应标记取消
	if plan[DaySlot3] != nil {
		t.Errorf("slot3 应为取消, got %v", *plan[DaySlot3])
	}
}

func TestWeekdayName(t *testing.T) {
	if name := WeekdayName("2026-03-03"); name != "Tuesday" {
		t.Errorf("WeekdayName() = %v, expected Tuesday", name)
	}
	if name := WeekdayName("not-a-date"); name != "" {
		t.Errorf("非法日期应返回空串, got %v", name)
	}
}

func TestWeek_FindByWeekday(t *testing.T) {
	week := Week{Days: []DayInfo{
		{Date: "2026-03-02", Weekday: "Monday"},
		{Date: "2026-03-03", Weekday: "Tuesday"},
	}}

	if day, ok := week.FindByWeekday("Tuesday"); !ok || day.Date != "2026-03-03" {
		t.Errorf("应找到周二, got %v %v", day, ok)
	}
	if _, ok := week.FindByWeekday("Sunday"); ok {
		t.Error("不应找到周日")
	}
}

func TestMonthWeeks(t *testing.T) {
	// 2026年3月1日为周日：首周从3月2日(周一)开始，末周只有30、31两天
	weeks := MonthWeeks(2026, 3)
	if len(weeks) != 5 {
		t.Fatalf("周数 = %d, 期望 5", len(weeks))
	}
	if weeks[0].Days[0].Date != "2026-03-02" || weeks[0].Days[0].Weekday != "Monday" {
		t.Errorf("首个工作日 = %+v, 期望 2026-03-02 周一", weeks[0].Days[0])
	}
	if len(weeks[0].Days) != 5 {
		t.Errorf("首周工作日数 = %d, 期望 5", len(weeks[0].Days))
	}
	if len(weeks[4].Days) != 2 {
		t.Errorf("末周工作日数 = %d, 期望 2", len(weeks[4].Days))
	}
	for _, week := range weeks {
		for _, day := range week.Days {
			if day.Weekday == "Saturday" || day.Weekday == "Sunday" {
				t.Errorf("不应包含周末: %+v", day)
			}
		}
	}
}

func TestMonthWeeks_FebruaryStartsMidweek(t *testing.T) {
	// 2026年2月1日为周日，2日为周一
	weeks := MonthWeeks(2026, 2)
	if len(weeks) == 0 {
		t.Fatal("二月应至少有一个工作周")
	}
	if weeks[0].Days[0].Date != "2026-02-02" {
		t.Errorf("首个工作日 = %s, 期望 2026-02-02", weeks[0].Days[0].Date)
	}
	last := weeks[len(weeks)-1]
	lastDay := last.Days[len(last.Days)-1]
	if lastDay.Date != "2026-02-27" {
		t.Errorf("末个工作日 = %s, 期望 2026-02-27（周五）", lastDay.Date)
	}
}
