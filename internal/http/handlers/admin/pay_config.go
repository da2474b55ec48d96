package admin

import (
	"errors"
	"strconv"

	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PayConfigListQuery 支付配置列表查询参数
type PayConfigListQuery struct {
	MerchantID string `form:"merchant_id"`
	PayType    string `form:"pay_type"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// CreatePayConfig 创建支付配置
func (h *Handler) CreatePayConfig(c *gin.Context) {
	var input service.PayConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid pay config payload")
		return
	}
	cfg, err := h.ConfigService.Create(input)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, cfg)
}

// UpdatePayConfig 更新支付配置
func (h *Handler) UpdatePayConfig(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var input service.PayConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid pay config payload")
		return
	}
	cfg, err := h.ConfigService.Update(id, input)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, cfg)
}

// DeletePayConfig 删除支付配置
func (h *Handler) DeletePayConfig(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ConfigService.Delete(id); err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetPayConfig 获取支付配置
func (h *Handler) GetPayConfig(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	cfg, err := h.ConfigService.Get(id)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	response.Success(c, cfg)
}

// ListPayConfigs 支付配置列表
func (h *Handler) ListPayConfigs(c *gin.Context) {
	var query PayConfigListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid list query")
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}
	configs, total, err := h.ConfigService.List(repository.PayConfigListFilter{
		MerchantID: query.MerchantID,
		PayType:    query.PayType,
		ActiveOnly: query.ActiveOnly,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		response.Error(c, response.CodeInternal, "list pay configs failed")
		return
	}
	response.SuccessWithPage(c, configs, response.Pagination{
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, response.CodeBadRequest, "invalid pay config id")
		return 0, false
	}
	return uint(id), true
}

func respondConfigError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConfigInvalid):
		response.Error(c, response.CodeBadRequest, err.Error())
	case errors.Is(err, service.ErrConfigConflict):
		response.Error(c, response.CodeConflict, err.Error())
	case errors.Is(err, service.ErrConfigNotExists):
		response.Error(c, response.CodeNotFound, "pay config not found")
	default:
		response.Error(c, response.CodeInternal, "pay config operation failed")
	}
}
