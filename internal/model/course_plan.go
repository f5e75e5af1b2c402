package model

import "time"

// ── 计划类型 ──

const (
	PlanTypePrimary = "primary"
	PlanTypeBackup  = "backup"
)

// ── 计划状态 ──
// 一个报名周期内状态只写一次：planned → registered | failed | skipped

const (
	PlanStatusPlanned    = "planned"
	PlanStatusRegistered = "registered"
	PlanStatusFailed     = "failed"
	PlanStatusSkipped    = "skipped"
)

// CoursePlan 选课计划表 — 对应 course_plans
// LinkedPrimaryID 仅供前端把备选课挂到某节正课下展示；
// 报名引擎的冲突检测对本轮所有已报成功槽位生效，不使用该关联
type CoursePlan struct {
	PlanID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"plan_id"`
	UserID           string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	CourseTypeID     *string    `gorm:"type:uuid"                                      json:"course_type_id,omitempty"`
	ExternalCourseID string     `gorm:"type:text;not null"                             json:"external_course_id"`
	CourseCode       *string    `gorm:"type:text"                                      json:"course_code,omitempty"`
	CourseName       string     `gorm:"type:text;not null"                             json:"course_name"`
	Lecturer         *string    `gorm:"type:text"                                      json:"lecturer,omitempty"`
	Room             *string    `gorm:"type:text"                                      json:"room,omitempty"`
	Day              string     `gorm:"type:text;not null"                             json:"day"` // Monday ... Sunday
	TimeSlotLabel    *string    `gorm:"type:text"                                      json:"time_slot_label,omitempty"`
	StartTime        *string    `gorm:"type:text"                                      json:"start_time,omitempty"` // HH:MM
	EndTime          *string    `gorm:"type:text"                                      json:"end_time,omitempty"`   // HH:MM
	PlanType         string     `gorm:"type:text;not null"                             json:"plan_type"`
	PriorityOrder    *int       `gorm:"type:int"                                       json:"priority_order,omitempty"` // 仅 backup 使用，越小越优先
	LinkedPrimaryID  *string    `gorm:"type:uuid"                                      json:"linked_primary_id,omitempty"`
	Status           string     `gorm:"type:text;not null;default:'planned'"           json:"status"`
	FailedReason     *string    `gorm:"type:text"                                      json:"failed_reason,omitempty"`
	RegisteredAt     *time.Time `json:"registered_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	CourseType *CourseType `gorm:"foreignKey:CourseTypeID;references:CourseTypeID" json:"course_type,omitempty"`
}

func (CoursePlan) TableName() string { return "course_plans" }
