package dto

// ── 配额设置模块 DTO ──

// UpdateQuotaRequest 更新单个课程类别配额请求
type UpdateQuotaRequest struct {
	CourseTypeID  string `json:"course_type_id" binding:"required,uuid"`
	RequiredCount int    `json:"required_count" binding:"required,min=0,max=20"`
}

// UpdateQuotasRequest 批量更新配额请求
type UpdateQuotasRequest struct {
	Quotas []UpdateQuotaRequest `json:"quotas" binding:"required,min=1,dive"`
}

// ── 响应 ──

// QuotaResponse 单个课程类别的有效配额
type QuotaResponse struct {
	CourseTypeID   string `json:"course_type_id"`
	CourseTypeName string `json:"course_type_name"`
	DisplayName    string `json:"display_name"`
	RequiredCount  int    `json:"required_count"`
	IsOverride     bool   `json:"is_override"` // false 表示取的是类别默认值
}

// CourseTypeResponse 课程类别响应
type CourseTypeResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	DisplayName          string `json:"display_name"`
	DefaultRequiredCount int    `json:"default_required_count"`
	RegistrationOrder    int    `json:"registration_order"`
}
