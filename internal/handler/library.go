package handler

import (
	"net/http"

	"github.com/yanlian/yanlian/internal/constraints"
)

// GetConstraintLibraryHandler 约束库API
// 返回求解引擎支持的全部约束定义及松弛级别说明
// GET /api/v1/constraints/library
func GetConstraintLibraryHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	respondJSON(w, http.StatusOK, constraints.LibraryResponse{
		Library: constraints.GetLibrary(),
		Levels:  constraints.GetLevels(),
	})
}
