package handler

import (
	"net/http"

	"github.com/yanlian/yanlian/pkg/errors"
	"github.com/yanlian/yanlian/pkg/logger"
	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/stats"
)

// StatsRequest 统计分析请求
type StatsRequest struct {
	Schedule model.Schedule `json:"schedule"`
	Config   *model.Config  `json:"config"`
}

// FairnessResponse 公平性分析响应
type FairnessResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.FairnessMetrics `json:"data"`
}

// CoverageResponse 覆盖率分析响应
type CoverageResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.CoverageMetrics `json:"data"`
}

// CompareRequest 方案对比请求
type CompareRequest struct {
	First  model.Schedule `json:"first"`
	Second model.Schedule `json:"second"`
	Config *model.Config  `json:"config"`
}

// CompareResponse 方案对比响应
// Data 为各指标的差值（second - first），负值表示第二方案更均衡
type CompareResponse struct {
	Success bool               `json:"success"`
	Data    map[string]float64 `json:"data"`
}

// GetFairnessHandler 公平性分析API
// POST /api/v1/stats/fairness
func GetFairnessHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req StatsRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if req.Config == nil {
		respondError(w, errors.InvalidInput("config", "配置快照不能为空"))
		return
	}

	logger.Info().
		Int("weeks", len(req.Schedule)).
		Int("people", len(req.Config.People)).
		Msg("接收公平性分析请求")

	metrics := stats.NewFairnessAnalyzer().Analyze(req.Schedule, req.Config)
	respondJSON(w, http.StatusOK, FairnessResponse{Success: true, Data: metrics})
}

// GetCoverageHandler 覆盖率分析API
// POST /api/v1/stats/coverage
func GetCoverageHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req StatsRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	logger.Info().
		Int("weeks", len(req.Schedule)).
		Msg("接收覆盖率分析请求")

	metrics := stats.NewCoverageAnalyzer().Analyze(req.Schedule)
	respondJSON(w, http.StatusOK, CoverageResponse{Success: true, Data: metrics})
}

// GetCompareHandler 方案对比API
// POST /api/v1/stats/compare
func GetCompareHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req CompareRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if req.Config == nil {
		respondError(w, errors.InvalidInput("config", "配置快照不能为空"))
		return
	}

	diff := stats.NewFairnessAnalyzer().Compare(req.First, req.Second, req.Config)
	respondJSON(w, http.StatusOK, CompareResponse{Success: true, Data: diff})
}
