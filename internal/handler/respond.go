// Package handler 提供HTTP API处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yanlian/yanlian/pkg/errors"
	"github.com/yanlian/yanlian/pkg/logger"
)

// respondJSON 写出JSON响应
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("响应编码失败")
	}
}

// respondError 写出统一格式的错误响应
func respondError(w http.ResponseWriter, appErr *errors.AppError) {
	body := map[string]any{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Details != "" {
		body["details"] = appErr.Details
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	respondJSON(w, appErr.HTTPStatus, body)
}

// decodeJSON 解析JSON请求体
func decodeJSON(r *http.Request, dst any) *errors.AppError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New(errors.CodeInvalidInput, "请求体解析失败").WithDetails(err.Error())
	}
	return nil
}

// requireMethod 检查请求方法
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持"+method+"方法"))
		return false
	}
	return true
}
