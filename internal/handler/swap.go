package handler

import (
	"net/http"

	"github.com/yanlian/yanlian/pkg/errors"
	"github.com/yanlian/yanlian/pkg/logger"
	"github.com/yanlian/yanlian/pkg/model"
	"github.com/yanlian/yanlian/pkg/swap"
)

// ReplacementRequest 顶替/互换建议请求
type ReplacementRequest struct {
	Schedule     model.Schedule            `json:"schedule"`
	Availability map[string]map[string]any `json:"availability"`
	Config       *model.Config             `json:"config"`

	// Target 需要调整的槽位
	Target model.Slot `json:"target"`

	Options *swap.Options `json:"options,omitempty"`
}

// ReplacementResponse 顶替/互换建议响应
type ReplacementResponse struct {
	Success         bool                  `json:"success"`
	Recommendations []swap.Recommendation `json:"recommendations"`
}

// GetReplacementsHandler 顶替/互换建议API
// 演员临时缺席时为其槽位推荐可行的接手或互换方案
// POST /api/v1/schedule/replacements
func GetReplacementsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req ReplacementRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if req.Config == nil {
		respondError(w, errors.InvalidInput("config", "配置快照不能为空"))
		return
	}
	if req.Target.Scenario == "" || req.Target.Date == "" {
		respondError(w, errors.InvalidInput("target", "目标槽位必须包含日期和情景"))
		return
	}
	if req.Target.Weekday == "" {
		req.Target.Weekday = model.WeekdayName(req.Target.Date)
	}

	recs := swap.NewRecommender().Recommend(
		req.Schedule, req.Config,
		model.NormalizeAvailabilitySet(req.Availability),
		req.Target, req.Options)
	if recs == nil {
		recs = make([]swap.Recommendation, 0)
	}

	logger.Info().
		Str("date", req.Target.Date).
		Str("scenario", req.Target.Scenario).
		Int("recommendations", len(recs)).
		Msg("接收调整建议请求")

	respondJSON(w, http.StatusOK, ReplacementResponse{Success: true, Recommendations: recs})
}
