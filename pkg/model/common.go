// Package model 定义演练排班引擎的核心数据模型
package model

import "time"

// DateFormat 日期格式 (YYYY-MM-DD)
const DateFormat = "2006-01-02"

// Shift 班次（每个训练日分早晚两场）
type Shift string

const (
	ShiftMorning Shift = "morning" // 早场
	ShiftEvening Shift = "evening" // 晚场
)

// Shifts 返回固定顺序的班次列表
func Shifts() []Shift {
	return []Shift{ShiftMorning, ShiftEvening}
}

// IsValid 检查班次是否有效
func (s Shift) IsValid() bool {
	return s == ShiftMorning || s == ShiftEvening
}

// Availability 可用性（四值封闭枚举）
type Availability string

const (
	AvailabilityBoth    Availability = "both"        // 全天可用
	AvailabilityMorning Availability = "am"          // 仅早场
	AvailabilityEvening Availability = "pm"          // 仅晚场
	AvailabilityNone    Availability = "unavailable" // 不可用
)

// NormalizeAvailability 将原始可用性值归一化为封闭枚举
// 历史数据中布尔 true 表示全天可用；无法识别的值一律视为不可用
func NormalizeAvailability(raw any) Availability {
	switch v := raw.(type) {
	case bool:
		if v {
			return AvailabilityBoth
		}
		return AvailabilityNone
	case string:
		switch v {
		case "both", "true":
			return AvailabilityBoth
		case "am", "morning":
			return AvailabilityMorning
		case "pm", "evening":
			return AvailabilityEvening
		}
		return AvailabilityNone
	case Availability:
		return NormalizeAvailability(string(v))
	case nil:
		return AvailabilityNone
	}
	return AvailabilityNone
}

// Allows 检查该可用性是否允许指定班次
func (a Availability) Allows(shift Shift) bool {
	switch a {
	case AvailabilityBoth:
		return true
	case AvailabilityMorning:
		return shift == ShiftMorning
	case AvailabilityEvening:
		return shift == ShiftEvening
	}
	return false
}

// AvailabilitySet 归一化后的可用性表：日期 → 人员 → 可用性
type AvailabilitySet map[string]map[string]Availability

// NormalizeAvailabilitySet 归一化整张原始可用性表
func NormalizeAvailabilitySet(raw map[string]map[string]any) AvailabilitySet {
	set := make(AvailabilitySet, len(raw))
	for date, people := range raw {
		m := make(map[string]Availability, len(people))
		for person, value := range people {
			m[person] = NormalizeAvailability(value)
		}
		set[date] = m
	}
	return set
}

// IsAvailable 检查某人在某日期的某班次是否可用
// 未登记的人按不可用处理
func (s AvailabilitySet) IsAvailable(date, person string, shift Shift) bool {
	day, ok := s[date]
	if !ok {
		return false
	}
	return day[person].Allows(shift)
}

// DayInfo 一个工作日：日期及其星期名
type DayInfo struct {
	Date    string `json:"date"`    // YYYY-MM-DD
	Weekday string `json:"weekday"` // Monday..Friday
}

// Week 一个日历周的工作日（按日期升序）
type Week struct {
	Days []DayInfo `json:"days"`
}

// FindByWeekday 返回该周第一个匹配星期名的工作日
func (w Week) FindByWeekday(weekday string) (DayInfo, bool) {
	for _, d := range w.Days {
		if d.Weekday == weekday {
			return d, true
		}
	}
	return DayInfo{}, false
}

// FindByDate 返回该周指定日期的工作日
func (w Week) FindByDate(date string) (DayInfo, bool) {
	for _, d := range w.Days {
		if d.Date == date {
			return d, true
		}
	}
	return DayInfo{}, false
}

// WeekdayName 返回日期对应的星期名，解析失败返回空串
func WeekdayName(date string) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

// MonthWeeks 按自然周（周一起始）分组返回某月的全部工作日
// 周六周日不参加训练，跨月的周只保留本月部分
func MonthWeeks(year, month int) []Week {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	var weeks []Week
	var current Week
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Monday && len(current.Days) > 0 {
			weeks = append(weeks, current)
			current = Week{}
		}
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		current.Days = append(current.Days, DayInfo{
			Date:    d.Format(DateFormat),
			Weekday: d.Weekday().String(),
		})
	}
	if len(current.Days) > 0 {
		weeks = append(weeks, current)
	}
	return weeks
}

// WeekdayLabel 返回星期名的中文标签，未知时原样返回
func WeekdayLabel(weekday string) string {
	switch weekday {
	case "Monday":
		return "周一"
	case "Tuesday":
		return "周二"
	case "Wednesday":
		return "周三"
	case "Thursday":
		return "周四"
	case "Friday":
		return "周五"
	case "Saturday":
		return "周六"
	case "Sunday":
		return "周日"
	}
	return weekday
}

// 训练日槽位标识（每周最多三个训练日）
const (
	DaySlot1 = "slot1"
	DaySlot2 = "slot2"
	DaySlot3 = "slot3"
)

// DaySlots 返回固定顺序的训练日槽位列表
func DaySlots() []string {
	return []string{DaySlot1, DaySlot2, DaySlot3}
}

// WeekPlan 一周的训练日计划：槽位 → 日期（nil 表示当日取消）
type WeekPlan map[string]*string

// DefaultWeekPlan 按槽位偏好星期名推导默认周计划
// 该周没有对应星期的工作日时，槽位标记为取消
func DefaultWeekPlan(week Week, slotWeekdays map[string]string) WeekPlan {
	plan := make(WeekPlan, len(slotWeekdays))
	for _, slot := range DaySlots() {
		weekday, ok := slotWeekdays[slot]
		if !ok {
			plan[slot] = nil
			continue
		}
		if day, found := week.FindByWeekday(weekday); found {
			date := day.Date
			plan[slot] = &date
		} else {
			plan[slot] = nil
		}
	}
	return plan
}

// DefaultSlotWeekdays 返回默认的槽位偏好星期
func DefaultSlotWeekdays() map[string]string {
	return map[string]string{
		DaySlot1: "Tuesday",
		DaySlot2: "Wednesday",
		DaySlot3: "Thursday",
	}
}
