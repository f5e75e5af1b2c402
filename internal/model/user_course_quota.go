package model

// UserCourseQuota 用户课程类别配额覆盖表 — 对应 user_course_quotas
// 未覆盖时取 CourseType.DefaultRequiredCount
type UserCourseQuota struct {
	QuotaID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"quota_id"`
	UserID        string `gorm:"type:uuid;not null;uniqueIndex:uniq_user_type"  json:"user_id"`
	CourseTypeID  string `gorm:"type:uuid;not null;uniqueIndex:uniq_user_type"  json:"course_type_id"`
	RequiredCount int    `gorm:"not null"                                       json:"required_count"`
	BaseModel

	// 关联
	CourseType *CourseType `gorm:"foreignKey:CourseTypeID;references:CourseTypeID" json:"course_type,omitempty"`
}

func (UserCourseQuota) TableName() string { return "user_course_quotas" }
