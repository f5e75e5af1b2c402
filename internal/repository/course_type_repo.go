package repository

import (
	"context"

	"gorm.io/gorm"

	"talkfirst-planner/backend/internal/model"
)

// CourseTypeRepository 课程类别数据访问接口
type CourseTypeRepository interface {
	GetByID(ctx context.Context, id string) (*model.CourseType, error)
	GetByName(ctx context.Context, name string) (*model.CourseType, error)
	// ListOrdered 按 registration_order 升序返回全部类别
	// 顺序是报名引擎的处理顺序，属于策略数据而非代码结构
	ListOrdered(ctx context.Context) ([]model.CourseType, error)
}

// courseTypeRepo CourseTypeRepository 的 GORM 实现
type courseTypeRepo struct {
	db *gorm.DB
}

// NewCourseTypeRepo 创建 CourseTypeRepository 实例
func NewCourseTypeRepo(db *gorm.DB) CourseTypeRepository {
	return &courseTypeRepo{db: db}
}

func (r *courseTypeRepo) GetByID(ctx context.Context, id string) (*model.CourseType, error) {
	var ct model.CourseType
	err := r.db.WithContext(ctx).
		Where("course_type_id = ?", id).
		First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *courseTypeRepo) GetByName(ctx context.Context, name string) (*model.CourseType, error) {
	var ct model.CourseType
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *courseTypeRepo) ListOrdered(ctx context.Context) ([]model.CourseType, error) {
	var types []model.CourseType
	err := r.db.WithContext(ctx).
		Order("registration_order ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}
