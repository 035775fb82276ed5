// Package handler 提供HTTP请求处理器
package handler

import (
	"net/http"

	"github.com/banbiao/banbiao/pkg/catalog"
	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/model"
)

// CatalogHandler 班次类型目录处理器
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler 创建目录处理器，目录为空时使用内置默认目录
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &CatalogHandler{catalog: cat}
}

// ShiftTypesResponse 班次类型列表响应
type ShiftTypesResponse struct {
	ShiftTypes []*model.ShiftType `json:"shift_types"`
	Count      int                `json:"count"`
}

// ListShiftTypes 按注册顺序返回全部班次类型
func (h *CatalogHandler) ListShiftTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	types := h.catalog.List()
	respondJSON(w, http.StatusOK, ShiftTypesResponse{
		ShiftTypes: types,
		Count:      len(types),
	})
}
