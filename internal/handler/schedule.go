package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yanlian/yanlian/internal/config"
	"github.com/yanlian/yanlian/internal/metrics"
	"github.com/yanlian/yanlian/internal/repository"
	"github.com/yanlian/yanlian/pkg/errors"
	"github.com/yanlian/yanlian/pkg/logger"
	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/solver"
	"github.com/yanlian/yanlian/pkg/stats"
	"github.com/yanlian/yanlian/pkg/validator"
)

// ScheduleHandler 排班API处理器
type ScheduleHandler struct {
	engine    *solver.Engine
	timeout   time.Duration
	schedules repository.ScheduleRepositoryInterface
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(cfg *config.SolverConfig) *ScheduleHandler {
	engine := solver.New()
	timeout := 30 * time.Second
	if cfg != nil {
		engine.SetMaxExpansions(cfg.MaxExpansions)
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	return &ScheduleHandler{engine: engine, timeout: timeout}
}

// WithRepository 挂接排班仓储（数据库可用时）
func (h *ScheduleHandler) WithRepository(schedules repository.ScheduleRepositoryInterface) *ScheduleHandler {
	h.schedules = schedules
	return h
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	// RosterID 关联的排班方案ID，持久化时必填
	RosterID string `json:"roster_id,omitempty"`

	// Year/Month 排班月份；Weeks 非空时仅用于持久化标记
	Year  int `json:"year"`
	Month int `json:"month"`

	// Weeks 显式给出当月周结构，省略时按 Year/Month 推导
	Weeks []model.Week `json:"weeks,omitempty"`

	// WeekPlans 周索引 → 训练日计划，省略的周按偏好星期推导
	WeekPlans map[int]model.WeekPlan `json:"week_plans,omitempty"`

	// Availability 原始可用性表：日期 → 演员 → 原始值
	Availability map[string]map[string]any `json:"availability"`

	// Config 配置快照
	Config *model.Config `json:"config"`

	// Persist 是否保存求解结果
	Persist bool `json:"persist,omitempty"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success    bool           `json:"success"`
	ScheduleID string         `json:"schedule_id,omitempty"`
	Data       *solver.Result `json:"data"`
}

// Generate 排班生成API
// POST /api/v1/schedule/generate
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req GenerateRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	if appErr := validateGenerateRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	weeks := req.Weeks
	if len(weeks) == 0 {
		weeks = model.MonthWeeks(req.Year, req.Month)
	}

	logger.Info().
		Int("year", req.Year).
		Int("month", req.Month).
		Int("weeks", len(weeks)).
		Int("people", len(req.Config.People)).
		Bool("persist", req.Persist).
		Msg("接收排班生成请求")

	in := &solver.Input{
		Weeks:        weeks,
		WeekPlans:    req.WeekPlans,
		Availability: model.NormalizeAvailabilitySet(req.Availability),
		Config:       req.Config,
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.engine.Solve(ctx, in)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			respondError(w, errors.New(errors.CodeTimeout,
				fmt.Sprintf("排班计算超时（限时%s）", h.timeout)))
			return
		}
		respondError(w, errors.Wrap(err, errors.CodeInternal, "排班计算失败"))
		return
	}

	rosterLabel := req.RosterID
	if rosterLabel == "" {
		rosterLabel = "adhoc"
	}
	h.recordSolveMetrics(rosterLabel, result, req.Config)

	resp := GenerateResponse{Success: true, Data: result}

	if req.Persist {
		id, appErr := h.persistResult(r.Context(), &req, result)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		resp.ScheduleID = id.String()
	}

	respondJSON(w, http.StatusOK, resp)
}

// recordSolveMetrics 上报求解指标
func (h *ScheduleHandler) recordSolveMetrics(rosterLabel string, result *solver.Result, cfg *model.Config) {
	metrics.RecordSolve(int(result.Level), result.Complete,
		result.Statistics.Expansions, result.Duration)
	metrics.SetFillRate(rosterLabel, result.Statistics.FillRate)
	metrics.SetUnfilledSlots(rosterLabel, len(result.Errors))

	fm := stats.NewFairnessAnalyzer().Analyze(result.Schedule, cfg)
	metrics.SetFairnessGini(rosterLabel, "usage", fm.UsageGini)
	metrics.SetFairnessGini(rosterLabel, "evening", fm.EveningGini)
}

// persistResult 保存求解结果及诊断
func (h *ScheduleHandler) persistResult(ctx context.Context, req *GenerateRequest, result *solver.Result) (uuid.UUID, *errors.AppError) {
	if h.schedules == nil {
		return uuid.Nil, errors.New(errors.CodeInternal, "持久化未启用：数据库不可用")
	}
	rosterID, err := uuid.Parse(req.RosterID)
	if err != nil {
		return uuid.Nil, errors.InvalidInput("roster_id", "持久化时必须为有效的UUID")
	}

	record := &repository.ScheduleRecord{
		RosterID:   rosterID,
		Year:       req.Year,
		Month:      req.Month,
		Level:      int(result.Level),
		Complete:   result.Complete,
		Schedule:   result.Schedule,
		Statistics: result.Statistics,
	}
	if err := h.schedules.Create(ctx, record, result.Errors); err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CodeDatabaseError, "排班结果保存失败")
	}

	logger.Info().
		Str("schedule_id", record.ID.String()).
		Str("roster_id", req.RosterID).
		Int("diagnostics", len(result.Errors)).
		Msg("排班结果已保存")
	return record.ID, nil
}

// validateGenerateRequest 校验排班生成请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Config == nil {
		ve.Add("config", "配置快照不能为空")
		return ve.ToAppError()
	}
	if len(req.Config.People) == 0 {
		ve.Add("config.people", "演员列表不能为空")
	}
	if len(req.Config.DaySlotScenarios) == 0 {
		ve.Add("config.day_slot_scenarios", "训练日情景配置不能为空")
	}
	if len(req.Weeks) == 0 {
		if req.Year < 2000 || req.Year > 2100 {
			ve.Add("year", "年份必须在2000到2100之间")
		}
		if req.Month < 1 || req.Month > 12 {
			ve.Add("month", "月份必须在1到12之间")
		}
	}

	for _, p := range req.Config.People {
		if p.ID == "" {
			ve.Add("config.people", "演员ID不能为空")
			continue
		}
		if p.Constraint != nil && p.Constraint.MaxEveningRatio != nil {
			ratio := *p.Constraint.MaxEveningRatio
			if ratio < 0 || ratio > 1 {
				ve.Add("config.people."+p.ID, "晚场占比上限必须在0到1之间")
			}
		}
	}

	weekCount := len(req.Weeks)
	if weekCount == 0 && req.Month >= 1 && req.Month <= 12 {
		weekCount = len(model.MonthWeeks(req.Year, req.Month))
	}
	for weekIdx, plan := range req.WeekPlans {
		if weekIdx < 0 || weekIdx >= weekCount {
			ve.Add(fmt.Sprintf("week_plans.%d", weekIdx), "周索引超出当月范围")
			continue
		}
		for slot, date := range plan {
			if date == nil {
				continue
			}
			if _, err := time.Parse(model.DateFormat, *date); err != nil {
				ve.Add(fmt.Sprintf("week_plans.%d.%s", weekIdx, slot), "日期格式必须为YYYY-MM-DD")
			}
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// ValidateRequest 排班验证请求
type ValidateRequest struct {
	Schedule model.Schedule `json:"schedule"`

	// Weeks 省略时按 Year/Month 推导
	Year  int          `json:"year,omitempty"`
	Month int          `json:"month,omitempty"`
	Weeks []model.Week `json:"weeks,omitempty"`

	Availability map[string]map[string]any `json:"availability"`
	Config       *model.Config             `json:"config"`

	// Checks 省略时开启全部检查
	Checks *validator.ValidatorConfig `json:"checks,omitempty"`
}

// ValidateResponse 排班验证响应
type ValidateResponse struct {
	Success    bool                  `json:"success"`
	Valid      bool                  `json:"valid"`
	Violations []validator.Violation `json:"violations"`
}

// Validate 排班验证API
// POST /api/v1/schedule/validate
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req ValidateRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if req.Config == nil {
		respondError(w, errors.InvalidInput("config", "配置快照不能为空"))
		return
	}

	weeks := req.Weeks
	if len(weeks) == 0 && req.Month >= 1 && req.Month <= 12 {
		weeks = model.MonthWeeks(req.Year, req.Month)
	}

	v := validator.New(req.Checks)
	violations := v.Validate(req.Schedule, req.Config,
		model.NormalizeAvailabilitySet(req.Availability), weeks)
	if violations == nil {
		violations = make([]validator.Violation, 0)
	}

	logger.Info().
		Int("weeks", len(weeks)).
		Int("violations", len(violations)).
		Msg("接收排班验证请求")

	respondJSON(w, http.StatusOK, ValidateResponse{
		Success:    true,
		Valid:      !validator.HasErrors(violations),
		Violations: violations,
	})
}
