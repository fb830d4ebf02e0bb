// Package solver 提供基于约束搜索的排班求解器
package solver

import (
	"context"
	"time"

	"github.com/yanlian/yanlian/pkg/logger"
	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/constraint"
)

// DefaultMaxExpansions 回溯搜索的默认节点预算
const DefaultMaxExpansions = 50000

// Input 一次求解的输入（求解期间只读）
type Input struct {
	// Weeks 当月各周的工作日（有序）
	Weeks []model.Week `json:"weeks"`

	// WeekPlans 周索引 → 训练日计划；缺省时按偏好星期推导
	WeekPlans map[int]model.WeekPlan `json:"week_plans,omitempty"`

	// Availability 归一化后的可用性表
	Availability model.AvailabilitySet `json:"availability"`

	// Config 配置快照
	Config *model.Config `json:"config"`
}

// Rejection 某演员在某槽位被拒绝的原因
type Rejection struct {
	Person  string                `json:"person"`
	Code    constraint.ReasonCode `json:"code"`
	Message string                `json:"message"`
}

// Diagnostic 未排上槽位的诊断记录
type Diagnostic struct {
	Week       int         `json:"week"`
	DaySlot    string      `json:"day_slot"`
	Date       string      `json:"date"`
	Shift      model.Shift `json:"shift"`
	Scenario   string      `json:"scenario"`
	Approved   []string    `json:"approved"`
	Rejections []Rejection `json:"rejections"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion"`
}

// Statistics 求解统计
type Statistics struct {
	TotalSlots   int     `json:"total_slots"`
	FilledSlots  int     `json:"filled_slots"`
	FillRate     float64 `json:"fill_rate"`
	CanceledDays int     `json:"canceled_days"`
	People       int     `json:"people"`
	Expansions   int     `json:"expansions"`
}

// Result 求解结果
// Errors 为空表示完整解；非空时每个未排槽位恰有一条诊断
type Result struct {
	Schedule   model.Schedule   `json:"schedule"`
	Errors     []Diagnostic     `json:"errors"`
	Statistics *Statistics      `json:"statistics"`
	Level      constraint.Level `json:"level"`
	Complete   bool             `json:"complete"`
	Duration   time.Duration    `json:"duration"`
}

// Engine 回溯搜索求解引擎
type Engine struct {
	logger        *logger.SolverLogger
	maxExpansions int
}

// New 创建求解引擎
func New() *Engine {
	return &Engine{
		logger:        logger.NewSolverLogger(),
		maxExpansions: DefaultMaxExpansions,
	}
}

// SetMaxExpansions 设置搜索节点预算
func (e *Engine) SetMaxExpansions(n int) {
	if n > 0 {
		e.maxExpansions = n
	}
}

// Solve 生成一个月的排班
// 逐级尝试四个松弛级别，首个完整解即返回；
// 全部失败时执行严格级别的贪心兜底并生成诊断
func (e *Engine) Solve(ctx context.Context, in *Input) (*Result, error) {
	start := time.Now()

	slots, _ := enumerate(in)
	e.logger.StartSolve(len(slots), len(in.Config.People))

	profile := buildProfile(slots, in.Config, in.Availability)

	totalExpansions := 0
	for _, level := range constraint.Levels() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cctx := constraint.NewContext(in.Config, in.Availability)
		_, schedule := enumerate(in)
		a := &attempt{
			slots:    slots,
			cctx:     cctx,
			schedule: schedule,
			profile:  profile,
			level:    level,
			budget:   e.maxExpansions,
		}

		if a.run() {
			result := e.buildResult(in, schedule, nil, level, true)
			result.Statistics.Expansions = totalExpansions + a.expansions
			result.Duration = time.Since(start)
			e.logger.SolveComplete(int(level), result.Duration,
				result.Statistics.FilledSlots, result.Statistics.TotalSlots)
			return result, nil
		}

		totalExpansions += a.expansions
		if a.aborted {
			e.logger.BudgetExhausted(int(level), e.maxExpansions)
		} else {
			e.logger.LevelFailed(int(level), a.expansions)
		}
	}

	// 兜底：严格级别贪心填充 + 诊断
	cctx := constraint.NewContext(in.Config, in.Availability)
	_, schedule := enumerate(in)
	diagnostics := e.greedyFill(slots, cctx, schedule, profile)
	e.logger.FallbackUsed(len(diagnostics))

	result := e.buildResult(in, schedule, diagnostics, constraint.LevelStrict, false)
	result.Statistics.Expansions = totalExpansions
	result.Duration = time.Since(start)
	e.logger.SolveComplete(int(constraint.LevelStrict), result.Duration,
		result.Statistics.FilledSlots, result.Statistics.TotalSlots)
	return result, nil
}

// buildResult 组装求解结果
func (e *Engine) buildResult(in *Input, schedule model.Schedule, diagnostics []Diagnostic, level constraint.Level, complete bool) *Result {
	filled, total := schedule.Filled()

	canceled := 0
	for _, week := range schedule {
		for _, day := range week {
			if day == nil {
				canceled++
			}
		}
	}

	stats := &Statistics{
		TotalSlots:   total,
		FilledSlots:  filled,
		CanceledDays: canceled,
		People:       len(in.Config.People),
	}
	if total > 0 {
		stats.FillRate = float64(filled) / float64(total) * 100
	}

	if diagnostics == nil {
		diagnostics = make([]Diagnostic, 0)
	}

	return &Result{
		Schedule:   schedule,
		Errors:     diagnostics,
		Statistics: stats,
		Level:      level,
		Complete:   complete,
	}
}
