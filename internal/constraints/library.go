// Package constraints 约束规则库
package constraints

import (
	"github.com/yanlian/yanlian/pkg/scheduler/constraint"
)

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, string, bool, array
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"`     // core 核心约束（永不放松）, relaxable 可松弛约束, soft 排序偏好
	Category    string            `json:"category"` // 分类
	Description string            `json:"description"`
	RelaxedAt   *int              `json:"relaxed_at,omitempty"` // 从该松弛级别起被忽略
	Params      []ConstraintParam `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
	Levels  []LevelDefinition      `json:"levels"`
}

// LevelDefinition 松弛级别定义
type LevelDefinition struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetLevels 返回求解引擎的松弛级别说明
func GetLevels() []LevelDefinition {
	return []LevelDefinition{
		{Level: int(constraint.LevelStrict), Name: constraint.LevelStrict.String(),
			Description: "全部约束生效，优先寻找严格解。"},
		{Level: int(constraint.LevelIgnoreEveningRatio), Name: constraint.LevelIgnoreEveningRatio.String(),
			Description: "忽略演员的晚场占比上限。"},
		{Level: int(constraint.LevelIgnoreDayRestrictions), Name: constraint.LevelIgnoreDayRestrictions.String(),
			Description: "在级别1基础上忽略出勤日限制。"},
		{Level: int(constraint.LevelIgnoreConflicts), Name: constraint.LevelIgnoreConflicts.String(),
			Description: "在级别2基础上忽略情景互斥规则。"},
	}
}

// GetLibrary 获取完整的约束库
func GetLibrary() []ConstraintDefinition {
	return []ConstraintDefinition{
		// =====================================================
		// 核心约束（任何级别都不放松）
		// =====================================================
		{
			Name:        "shift_availability",
			DisplayName: "班次可用性",
			Type:        "core",
			Category:    "时间限制",
			Description: "演员只能排在其填报可用的日期与班次。未填报视为不可用。",
			Params:      []ConstraintParam{},
		},
		{
			Name:        "week_shift_uniqueness",
			DisplayName: "周班次唯一",
			Type:        "core",
			Category:    "排班模式",
			Description: "同一演员在一个日历周内的同一班次只承担一个情景。跨周、跨班次互不影响。",
			Params:      []ConstraintParam{},
		},
		{
			Name:        "scenario_approval",
			DisplayName: "情景批准",
			Type:        "core",
			Category:    "资质要求",
			Description: "只有被批准出演某情景的演员才可以被排入该情景的槽位。",
			Params:      []ConstraintParam{},
		},

		// =====================================================
		// 可松弛约束
		// =====================================================
		{
			Name:        "evening_ratio_cap",
			DisplayName: "晚场占比上限",
			Type:        "relaxable",
			Category:    "偏好",
			Description: "限制演员晚场分配占其总分配的比例。上限为0时完全禁排晚场。",
			RelaxedAt:   levelPtr(constraint.LevelIgnoreEveningRatio),
			Params: []ConstraintParam{
				{Name: "max_evening_ratio", Type: "float", Description: "晚场占比上限", Default: "0.5", Min: "0", Max: "1"},
			},
		},
		{
			Name:        "allowed_days",
			DisplayName: "出勤日限制",
			Type:        "relaxable",
			Category:    "时间限制",
			Description: "演员只在其约定的星期出勤。未配置时默认全部工作日可出勤。",
			RelaxedAt:   levelPtr(constraint.LevelIgnoreDayRestrictions),
			Params: []ConstraintParam{
				{Name: "allowed_days", Type: "array", Description: "允许出勤的星期名", Default: "Tuesday,Wednesday,Thursday"},
			},
		},
		{
			Name:        "scenario_conflict",
			DisplayName: "情景互斥",
			Type:        "relaxable",
			Category:    "排班模式",
			Description: "互斥的两个情景在同一班次内不能由同一演员承担。",
			RelaxedAt:   levelPtr(constraint.LevelIgnoreConflicts),
			Params: []ConstraintParam{
				{Name: "scope", Type: "string", Description: "互斥范围", Default: "same_shift"},
			},
		},

		// =====================================================
		// 排序偏好（不构成硬性限制）
		// =====================================================
		{
			Name:        "usage_balance",
			DisplayName: "分配量均衡",
			Type:        "soft",
			Category:    "公平性",
			Description: "候选人按当前累计分配量升序排序，分配少的演员优先入选。",
			Params:      []ConstraintParam{},
		},
		{
			Name:        "prefer_morning",
			DisplayName: "早场偏好",
			Type:        "soft",
			Category:    "偏好",
			Description: "偏好早场的演员在晚场槽位的候选顺序中后置，但不禁止晚场分配。",
			Params: []ConstraintParam{
				{Name: "prefer_morning", Type: "bool", Description: "是否偏好早场", Default: "false"},
			},
		},
		{
			Name:        "opportunity_scarcity",
			DisplayName: "机会稀缺优先",
			Type:        "soft",
			Category:    "公平性",
			Description: "本月可排机会少的演员在平手时优先，避免机会稀缺者被饿死。",
			Params:      []ConstraintParam{},
		},
	}
}

func levelPtr(level constraint.Level) *int {
	v := int(level)
	return &v
}
