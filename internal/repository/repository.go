package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	CourseType CourseTypeRepository
	Quota      QuotaRepository
	Plan       PlanRepository
	Submission SubmissionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		CourseType: NewCourseTypeRepo(db),
		Quota:      NewQuotaRepo(db),
		Plan:       NewPlanRepo(db),
		Submission: NewSubmissionRepo(db),
	}
}
