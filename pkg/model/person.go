// Package model 定义演练排班引擎的核心数据模型
package model

// Person 演员
type Person struct {
	ID         string            `json:"id"`
	Color      string            `json:"color,omitempty"` // 日历展示用的颜色标签
	Constraint *PersonConstraint `json:"constraint,omitempty"`
}

// PersonConstraint 演员的个人排班约束（全部可选）
type PersonConstraint struct {
	// AllowedDays 允许出勤的星期名，空表示无限制
	AllowedDays []string `json:"allowed_days,omitempty"`

	// MaxEveningRatio 晚场占比上限 [0,1]，nil 表示无限制
	// 0 表示完全不排晚场
	MaxEveningRatio *float64 `json:"max_evening_ratio,omitempty"`

	// PreferMorning 偏好早场（晚场排序时后置）
	PreferMorning bool `json:"prefer_morning,omitempty"`
}

// AllowsWeekday 检查星期名是否在允许范围内
func (c *PersonConstraint) AllowsWeekday(weekday string) bool {
	if c == nil || len(c.AllowedDays) == 0 {
		return true
	}
	for _, d := range c.AllowedDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// HasEveningCap 检查是否设置了晚场占比上限
func (c *PersonConstraint) HasEveningCap() bool {
	return c != nil && c.MaxEveningRatio != nil
}

// PrefersMorning 检查是否偏好早场
func (c *PersonConstraint) PrefersMorning() bool {
	return c != nil && c.PreferMorning
}
