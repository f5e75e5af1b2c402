package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"talkfirst-planner/backend/internal/dto"
	"talkfirst-planner/backend/internal/model"
	"talkfirst-planner/backend/internal/repository"
)

// ── 配额设置模块业务错误 ──

var ErrCourseTypeNotFound = errors.New("课程类别不存在")

// QuotaService 课程类别与用户配额业务接口
type QuotaService interface {
	// ListCourseTypes 返回按报名顺序排列的课程类别
	ListCourseTypes(ctx context.Context) ([]dto.CourseTypeResponse, error)
	// GetQuotas 返回该用户每个类别的有效配额（覆盖值或默认值）
	GetQuotas(ctx context.Context, userID string) ([]dto.QuotaResponse, error)
	// UpdateQuotas 批量写入用户配额覆盖
	UpdateQuotas(ctx context.Context, userID string, req *dto.UpdateQuotasRequest) ([]dto.QuotaResponse, error)
}

type quotaService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewQuotaService 创建 QuotaService 实例
func NewQuotaService(repo *repository.Repository, logger *zap.Logger) QuotaService {
	return &quotaService{repo: repo, logger: logger}
}

func (s *quotaService) ListCourseTypes(ctx context.Context) ([]dto.CourseTypeResponse, error) {
	types, err := s.repo.CourseType.ListOrdered(ctx)
	if err != nil {
		s.logger.Error("查询课程类别失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.CourseTypeResponse, 0, len(types))
	for _, ct := range types {
		resp = append(resp, dto.CourseTypeResponse{
			ID:                   ct.CourseTypeID,
			Name:                 ct.Name,
			DisplayName:          ct.DisplayName,
			DefaultRequiredCount: ct.DefaultRequiredCount,
			RegistrationOrder:    ct.RegistrationOrder,
		})
	}
	return resp, nil
}

func (s *quotaService) GetQuotas(ctx context.Context, userID string) ([]dto.QuotaResponse, error) {
	types, err := s.repo.CourseType.ListOrdered(ctx)
	if err != nil {
		s.logger.Error("查询课程类别失败", zap.Error(err))
		return nil, err
	}
	overrides, err := s.repo.Quota.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询配额覆盖失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	overrideMap := make(map[string]int, len(overrides))
	for _, q := range overrides {
		overrideMap[q.CourseTypeID] = q.RequiredCount
	}

	resp := make([]dto.QuotaResponse, 0, len(types))
	for _, ct := range types {
		qr := dto.QuotaResponse{
			CourseTypeID:   ct.CourseTypeID,
			CourseTypeName: ct.Name,
			DisplayName:    ct.DisplayName,
			RequiredCount:  ct.DefaultRequiredCount,
		}
		if count, ok := overrideMap[ct.CourseTypeID]; ok {
			qr.RequiredCount = count
			qr.IsOverride = true
		}
		resp = append(resp, qr)
	}
	return resp, nil
}

func (s *quotaService) UpdateQuotas(ctx context.Context, userID string, req *dto.UpdateQuotasRequest) ([]dto.QuotaResponse, error) {
	for _, item := range req.Quotas {
		if _, err := s.repo.CourseType.GetByID(ctx, item.CourseTypeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseTypeNotFound
			}
			s.logger.Error("查询课程类别失败", zap.Error(err))
			return nil, err
		}

		quota := &model.UserCourseQuota{
			UserID:        userID,
			CourseTypeID:  item.CourseTypeID,
			RequiredCount: item.RequiredCount,
		}
		if err := s.repo.Quota.Upsert(ctx, quota); err != nil {
			s.logger.Error("写入配额覆盖失败",
				zap.String("user_id", userID),
				zap.String("course_type_id", item.CourseTypeID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	return s.GetQuotas(ctx, userID)
}
