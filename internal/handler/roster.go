package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/yanlian/yanlian/internal/repository"
	"github.com/yanlian/yanlian/pkg/errors"
	"github.com/yanlian/yanlian/pkg/logger"
	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/scheduler/solver"
)

// RosterHandler 名册与历史排班API处理器
type RosterHandler struct {
	rosters   repository.RosterRepositoryInterface
	schedules repository.ScheduleRepositoryInterface
}

// NewRosterHandler 创建名册处理器
func NewRosterHandler(rosters repository.RosterRepositoryInterface, schedules repository.ScheduleRepositoryInterface) *RosterHandler {
	return &RosterHandler{rosters: rosters, schedules: schedules}
}

// RosterRequest 名册创建/更新请求
type RosterRequest struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name"`
	Config *model.Config `json:"config"`
}

// RosterListResponse 名册列表响应
type RosterListResponse struct {
	Success bool                 `json:"success"`
	Total   int                  `json:"total"`
	Data    []*repository.Roster `json:"data"`
}

// Rosters 名册集合API：GET 列表，POST 创建
// GET/POST /api/v1/rosters
func (h *RosterHandler) Rosters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

func (h *RosterHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()
	filter.Search = r.URL.Query().Get("search")
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter = filter.WithLimit(limit)
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter = filter.WithOffset(offset)
	}

	rosters, total, err := h.rosters.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "名册列表查询失败"))
		return
	}
	respondJSON(w, http.StatusOK, RosterListResponse{Success: true, Total: total, Data: rosters})
}

func (h *RosterHandler) create(w http.ResponseWriter, r *http.Request) {
	var req RosterRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if req.Name == "" {
		respondError(w, errors.InvalidInput("name", "名册名称不能为空"))
		return
	}
	if req.Config == nil {
		respondError(w, errors.InvalidInput("config", "配置快照不能为空"))
		return
	}

	roster := &repository.Roster{Name: req.Name, Config: req.Config}
	if err := h.rosters.Create(r.Context(), roster); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "名册创建失败"))
		return
	}

	logger.Info().
		Str("roster_id", roster.ID.String()).
		Str("name", roster.Name).
		Int("people", len(req.Config.People)).
		Msg("名册已创建")
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "data": roster})
}

// GetRoster 名册详情API
// GET /api/v1/rosters/get?id=
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	id, appErr := parseUUIDParam(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	roster, err := h.rosters.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "名册查询失败"))
		return
	}
	if roster == nil {
		respondError(w, errors.NotFound("名册", id.String()))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": roster})
}

// UpdateRoster 名册更新API
// POST /api/v1/rosters/update
func (h *RosterHandler) UpdateRoster(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req RosterRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		respondError(w, errors.InvalidInput("id", "必须为有效的UUID"))
		return
	}

	roster, err := h.rosters.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "名册查询失败"))
		return
	}
	if roster == nil {
		respondError(w, errors.NotFound("名册", req.ID))
		return
	}

	if req.Name != "" {
		roster.Name = req.Name
	}
	if req.Config != nil {
		roster.Config = req.Config
	}
	if err := h.rosters.Update(r.Context(), roster); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "名册更新失败"))
		return
	}

	logger.Info().Str("roster_id", roster.ID.String()).Msg("名册已更新")
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": roster})
}

// DeleteRoster 名册删除API
// POST /api/v1/rosters/delete?id=
func (h *RosterHandler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	id, appErr := parseUUIDParam(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	if err := h.rosters.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "名册删除失败"))
		return
	}

	logger.Info().Str("roster_id", id.String()).Msg("名册已删除")
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ScheduleListResponse 历史排班列表响应
type ScheduleListResponse struct {
	Success bool                         `json:"success"`
	Total   int                          `json:"total"`
	Data    []*repository.ScheduleRecord `json:"data"`
}

// Schedules 历史排班列表API
// GET /api/v1/schedules?roster_id=&year=&month=
func (h *RosterHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	rosterID, appErr := parseUUIDParam(r, "roster_id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	filter := repository.DefaultListFilter()
	year, err1 := strconv.Atoi(r.URL.Query().Get("year"))
	month, err2 := strconv.Atoi(r.URL.Query().Get("month"))
	if err1 == nil && err2 == nil {
		filter = filter.WithMonth(year, month)
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter = filter.WithLimit(limit)
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter = filter.WithOffset(offset)
	}

	records, total, err := h.schedules.List(r.Context(), rosterID, filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "历史排班查询失败"))
		return
	}
	respondJSON(w, http.StatusOK, ScheduleListResponse{Success: true, Total: total, Data: records})
}

// ScheduleDetailResponse 历史排班详情响应
type ScheduleDetailResponse struct {
	Success     bool                       `json:"success"`
	Data        *repository.ScheduleRecord `json:"data"`
	Diagnostics []solver.Diagnostic        `json:"diagnostics"`
}

// GetSchedule 历史排班详情API（含未排槽位诊断）
// GET /api/v1/schedules/get?id=
func (h *RosterHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	id, appErr := parseUUIDParam(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	record, err := h.schedules.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "历史排班查询失败"))
		return
	}
	if record == nil {
		respondError(w, errors.NotFound("排班记录", id.String()))
		return
	}

	diagnostics, err := h.schedules.GetDiagnostics(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "排班诊断查询失败"))
		return
	}
	if diagnostics == nil {
		diagnostics = make([]solver.Diagnostic, 0)
	}

	respondJSON(w, http.StatusOK, ScheduleDetailResponse{
		Success:     true,
		Data:        record,
		Diagnostics: diagnostics,
	})
}

// GetLatestSchedule 某名册某月最新排班API
// GET /api/v1/schedules/latest?roster_id=&year=&month=
func (h *RosterHandler) GetLatestSchedule(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	rosterID, appErr := parseUUIDParam(r, "roster_id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	year, err1 := strconv.Atoi(r.URL.Query().Get("year"))
	month, err2 := strconv.Atoi(r.URL.Query().Get("month"))
	if err1 != nil || err2 != nil {
		respondError(w, errors.InvalidInput("year/month", "必须为整数"))
		return
	}

	record, err := h.schedules.GetLatest(r.Context(), rosterID, year, month)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "历史排班查询失败"))
		return
	}
	if record == nil {
		respondError(w, errors.New(errors.CodeNotFound, "该名册在指定月份没有排班记录"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": record})
}

// parseUUIDParam 解析查询参数中的UUID
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, *errors.AppError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, errors.InvalidInput(name, "不能为空")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.InvalidInput(name, "必须为有效的UUID")
	}
	return id, nil
}
