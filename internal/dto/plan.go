package dto

// ── 选课计划模块 DTO ──

// CreatePlanRequest 添加选课计划请求
type CreatePlanRequest struct {
	ExternalCourseID string  `json:"external_course_id" binding:"required"`
	CourseCode       *string `json:"course_code"`
	CourseName       string  `json:"course_name"        binding:"required"`
	Lecturer         *string `json:"lecturer"`
	Room             *string `json:"room"`
	CourseTypeName   string  `json:"course_type_name"   binding:"required"`
	Day              string  `json:"day"                binding:"required"`
	TimeSlotLabel    *string `json:"time_slot_label"`
	StartTime        *string `json:"start_time"`
	EndTime          *string `json:"end_time"`
	PlanType         string  `json:"plan_type"          binding:"required,oneof=primary backup"`
	PriorityOrder    *int    `json:"priority_order"     binding:"omitempty,min=1"`
	LinkedPrimaryID  *string `json:"linked_primary_id"  binding:"omitempty,uuid"`
}

// UpdatePlanRequest 调整备选课优先级请求
type UpdatePlanRequest struct {
	PriorityOrder int `json:"priority_order" binding:"required,min=1"`
}

// ── 响应 ──

// PlanResponse 单条选课计划响应
type PlanResponse struct {
	ID               string  `json:"id"`
	ExternalCourseID string  `json:"external_course_id"`
	CourseCode       *string `json:"course_code,omitempty"`
	CourseName       string  `json:"course_name"`
	Lecturer         *string `json:"lecturer,omitempty"`
	Room             *string `json:"room,omitempty"`
	CourseTypeName   string  `json:"course_type_name,omitempty"`
	CourseTypeLabel  string  `json:"course_type_label,omitempty"`
	Day              string  `json:"day"`
	TimeSlotLabel    *string `json:"time_slot_label,omitempty"`
	StartTime        *string `json:"start_time,omitempty"`
	EndTime          *string `json:"end_time,omitempty"`
	PlanType         string  `json:"plan_type"`
	PriorityOrder    *int    `json:"priority_order,omitempty"`
	LinkedPrimaryID  *string `json:"linked_primary_id,omitempty"`
	Status           string  `json:"status"`
	FailedReason     *string `json:"failed_reason,omitempty"`
	RegisteredAt     *string `json:"registered_at,omitempty"`
}

// PlanListResponse 计划列表响应（按正选/备选分组）
type PlanListResponse struct {
	Primary []PlanResponse `json:"primary"`
	Backup  []PlanResponse `json:"backup"`
}

// ResetPlansResponse 计划状态重置响应
type ResetPlansResponse struct {
	ResetCount int64 `json:"reset_count"`
}

// ClearPlansResponse 清空计划响应
type ClearPlansResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}
