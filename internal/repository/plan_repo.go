package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"talkfirst-planner/backend/internal/model"
)

// PlanRepository 选课计划数据访问接口
type PlanRepository interface {
	Create(ctx context.Context, plan *model.CoursePlan) error
	GetByID(ctx context.Context, id string) (*model.CoursePlan, error)
	ListByUser(ctx context.Context, userID string) ([]model.CoursePlan, error)
	// ListPlannedByUser 返回该用户处于 planned 状态的计划
	// 上一周期已终态的计划不参与本周期，除非调用方先重置状态
	ListPlannedByUser(ctx context.Context, userID string) ([]model.CoursePlan, error)
	// CountPrimaryByType 统计该用户某类别下的正选计划数
	CountPrimaryByType(ctx context.Context, userID, courseTypeID string) (int64, error)
	// SetStatus 写入计划终态；reason 与 registeredAt 按需传 nil
	SetStatus(ctx context.Context, planID, status string, reason *string, registeredAt *time.Time) error
	// ResetStatuses 将该用户所有终态计划重置为 planned，供下一周期重新评估
	ResetStatuses(ctx context.Context, userID string) (int64, error)
	// UpdatePriority 改写备选课优先级；归属与类型校验由业务层完成
	UpdatePriority(ctx context.Context, planID string, priorityOrder int) error
	Delete(ctx context.Context, id string) error
	// DeleteByUser 清空该用户全部计划，返回删除条数
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// planRepo PlanRepository 的 GORM 实现
type planRepo struct {
	db *gorm.DB
}

// NewPlanRepo 创建 PlanRepository 实例
func NewPlanRepo(db *gorm.DB) PlanRepository {
	return &planRepo{db: db}
}

func (r *planRepo) Create(ctx context.Context, plan *model.CoursePlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepo) GetByID(ctx context.Context, id string) (*model.CoursePlan, error) {
	var plan model.CoursePlan
	err := r.db.WithContext(ctx).
		Preload("CourseType").
		Where("plan_id = ?", id).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) ListByUser(ctx context.Context, userID string) ([]model.CoursePlan, error) {
	var plans []model.CoursePlan
	err := r.db.WithContext(ctx).
		Preload("CourseType").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepo) ListPlannedByUser(ctx context.Context, userID string) ([]model.CoursePlan, error) {
	var plans []model.CoursePlan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.PlanStatusPlanned).
		Order("created_at ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepo) CountPrimaryByType(ctx context.Context, userID, courseTypeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CoursePlan{}).
		Where("user_id = ? AND course_type_id = ? AND plan_type = ?",
			userID, courseTypeID, model.PlanTypePrimary).
		Count(&count).Error
	return count, err
}

func (r *planRepo) SetStatus(ctx context.Context, planID, status string, reason *string, registeredAt *time.Time) error {
	updates := map[string]interface{}{
		"status":        status,
		"failed_reason": reason,
	}
	if registeredAt != nil {
		updates["registered_at"] = registeredAt
	}
	return r.db.WithContext(ctx).
		Model(&model.CoursePlan{}).
		Where("plan_id = ?", planID).
		Updates(updates).Error
}

func (r *planRepo) ResetStatuses(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CoursePlan{}).
		Where("user_id = ? AND status <> ?", userID, model.PlanStatusPlanned).
		Updates(map[string]interface{}{
			"status":        model.PlanStatusPlanned,
			"failed_reason": nil,
			"registered_at": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *planRepo) UpdatePriority(ctx context.Context, planID string, priorityOrder int) error {
	return r.db.WithContext(ctx).
		Model(&model.CoursePlan{}).
		Where("plan_id = ?", planID).
		Update("priority_order", priorityOrder).Error
}

func (r *planRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("plan_id = ?", id).
		Delete(&model.CoursePlan{}).Error
}

func (r *planRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CoursePlan{})
	return result.RowsAffected, result.Error
}
