package handler

import (
	"net/http"

	"github.com/yanlian/yanlian/pkg/errors"
	"github.com/yanlian/yanlian/pkg/export"
	"github.com/yanlian/yanlian/pkg/logger"
	"github.com/yanlian/yanlian/pkg/model"
)

// ExportRequest 导出请求
type ExportRequest struct {
	Schedule model.Schedule `json:"schedule"`
	Config   *model.Config  `json:"config"`

	// Title 文本导出的标题，省略时使用默认标题
	Title string `json:"title,omitempty"`

	// CalendarName ICS日历名称，省略时使用默认名称
	CalendarName string `json:"calendar_name,omitempty"`
}

// ExportTextHandler 文本排班表导出API
// POST /api/v1/export/text
func ExportTextHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req ExportRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if req.Config == nil {
		respondError(w, errors.InvalidInput("config", "配置快照不能为空"))
		return
	}

	content := export.NewTextExporter(req.Title).Export(req.Schedule, req.Config)

	logger.Info().
		Int("weeks", len(req.Schedule)).
		Int("bytes", len(content)).
		Msg("导出文本排班表")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

// ExportICSHandler ICS日历导出API
// POST /api/v1/export/ics
func ExportICSHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req ExportRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	content, err := export.NewICSExporter(req.CalendarName).Export(req.Schedule)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "ICS日历生成失败"))
		return
	}

	logger.Info().
		Int("weeks", len(req.Schedule)).
		Int("bytes", len(content)).
		Msg("导出ICS日历")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}
