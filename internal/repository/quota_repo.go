package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"talkfirst-planner/backend/internal/model"
)

// QuotaRepository 用户配额覆盖数据访问接口
type QuotaRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.UserCourseQuota, error)
	// Upsert 按 (user_id, course_type_id) 写入或更新配额覆盖
	Upsert(ctx context.Context, quota *model.UserCourseQuota) error
	// GetRequiredCount 解析 (user, courseType) 的有效配额
	// 有覆盖取覆盖值，否则取类别默认值
	GetRequiredCount(ctx context.Context, userID string, courseType *model.CourseType) (int, error)
}

// quotaRepo QuotaRepository 的 GORM 实现
type quotaRepo struct {
	db *gorm.DB
}

// NewQuotaRepo 创建 QuotaRepository 实例
func NewQuotaRepo(db *gorm.DB) QuotaRepository {
	return &quotaRepo{db: db}
}

func (r *quotaRepo) ListByUser(ctx context.Context, userID string) ([]model.UserCourseQuota, error) {
	var quotas []model.UserCourseQuota
	err := r.db.WithContext(ctx).
		Preload("CourseType").
		Where("user_id = ?", userID).
		Find(&quotas).Error
	if err != nil {
		return nil, err
	}
	return quotas, nil
}

func (r *quotaRepo) Upsert(ctx context.Context, quota *model.UserCourseQuota) error {
	var existing model.UserCourseQuota
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_type_id = ?", quota.UserID, quota.CourseTypeID).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(quota).Error
		}
		return err
	}

	existing.RequiredCount = quota.RequiredCount
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *quotaRepo) GetRequiredCount(ctx context.Context, userID string, courseType *model.CourseType) (int, error) {
	var quota model.UserCourseQuota
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_type_id = ?", userID, courseType.CourseTypeID).
		First(&quota).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return courseType.DefaultRequiredCount, nil
		}
		return 0, err
	}
	return quota.RequiredCount, nil
}
