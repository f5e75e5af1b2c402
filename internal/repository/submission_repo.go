package repository

import (
	"context"

	"gorm.io/gorm"

	"talkfirst-planner/backend/internal/model"
)

// SubmissionRepository 报名审计记录数据访问接口（仅追加）
type SubmissionRepository interface {
	Create(ctx context.Context, record *model.SubmissionRecord) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.SubmissionRecord, int64, error)
}

// submissionRepo SubmissionRepository 的 GORM 实现
type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, record *model.SubmissionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *submissionRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.SubmissionRecord, int64, error) {
	var records []model.SubmissionRecord
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.SubmissionRecord{}).
		Where("user_id = ?", userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
