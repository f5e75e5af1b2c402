package model

import "time"

// CourseType 课程类别表 — 对应 course_types
// RegistrationOrder 决定报名引擎处理类别的先后：
// 数值小的类别（如正课）先被报名，其成功槽位会约束后续类别备选课的冲突检测
type CourseType struct {
	CourseTypeID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_type_id"`
	Name                 string    `gorm:"type:text;not null;uniqueIndex"                 json:"name"` // main | free_talk | skills
	DisplayName          string    `gorm:"type:text;not null"                             json:"display_name"`
	DefaultRequiredCount int       `gorm:"not null"                                       json:"default_required_count"`
	RegistrationOrder    int       `gorm:"not null"                                       json:"registration_order"`
	CreatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (CourseType) TableName() string { return "course_types" }
