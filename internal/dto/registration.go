package dto

// ── 报名引擎模块 DTO ──

// 用户单轮结果状态
const (
	RunStatusCompleted  = "completed"
	RunStatusAuthFailed = "auth_failed"
	RunStatusError      = "error"
)

// UserRunResult 单个用户在一个报名周期中的结果
type UserRunResult struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Status       string `json:"status"` // completed | auth_failed | error
	SuccessCount int    `json:"success_count"`
	FailedCount  int    `json:"failed_count"`
	Reason       string `json:"reason,omitempty"` // auth_failed / error 时的说明
}

// RunSummaryResponse 一个报名周期的汇总
// Summary 必须包含本周期加载到的每一个用户，即使其任务内部出错
type RunSummaryResponse struct {
	Message string          `json:"message"`
	Summary []UserRunResult `json:"summary"`
}

// SubmissionRecordResponse 审计记录响应
type SubmissionRecordResponse struct {
	ID             string  `json:"id"`
	PlanID         *string `json:"plan_id,omitempty"`
	SubmissionDate string  `json:"submission_date"`
	Result         string  `json:"result"`
	Reason         *string `json:"reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// SubmissionListRequest 审计记录列表查询参数
type SubmissionListRequest struct {
	PaginationRequest
}
