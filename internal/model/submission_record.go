package model

import "time"

// ── 提交结果 ──

const (
	SubmissionResultSuccess = "success"
	SubmissionResultFailed  = "failed"
	SubmissionResultSkipped = "skipped"
)

// SubmissionRecord 报名提交审计记录表 — 对应 submission_records（仅追加）
// 每次实际报名尝试或因冲突主动跳过都产生一条记录；
// 因登录失败未尝试任何计划时不产生记录
type SubmissionRecord struct {
	RecordID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	UserID         string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	PlanID         *string   `gorm:"type:uuid"                                      json:"plan_id,omitempty"`
	SubmissionDate string    `gorm:"type:date;not null"                             json:"submission_date"` // YYYY-MM-DD
	Result         string    `gorm:"type:text;not null"                             json:"result"`          // success | failed | skipped
	Reason         *string   `gorm:"type:text"                                      json:"reason,omitempty"`
	APIResponse    *string   `gorm:"column:api_response;type:jsonb"                 json:"api_response,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (SubmissionRecord) TableName() string { return "submission_records" }
