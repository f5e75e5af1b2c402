package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"talkfirst-planner/backend/internal/dto"
	"talkfirst-planner/backend/internal/model"
	"talkfirst-planner/backend/internal/repository"
)

// ── 选课计划模块业务错误 ──

var (
	ErrPlanNotFound        = errors.New("选课计划不存在")
	ErrPlanNotOwned        = errors.New("无权操作他人的选课计划")
	ErrInvalidCourseType   = errors.New("无效的课程类别")
	ErrBackupNeedsLink     = errors.New("备选课必须挂接到一节正选课")
	ErrBackupNeedsPriority = errors.New("备选课必须设置优先级")
	ErrPrimaryQuotaReached = errors.New("该类别的正选课数量已达配额上限")
	ErrPrimaryOverlap      = errors.New("与已有正选课时间冲突")
	ErrNotBackupPlan       = errors.New("仅备选课可调整优先级")
)

// PlanService 选课计划业务接口
// 正选课之间的时间重叠在这里提交时就被拦截，
// 报名引擎因此无需对正选课做冲突预检
type PlanService interface {
	List(ctx context.Context, userID string) (*dto.PlanListResponse, error)
	Create(ctx context.Context, userID string, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	// UpdatePriority 调整备选课优先级；正选课没有优先级，拒绝该操作
	UpdatePriority(ctx context.Context, userID, planID string, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	Delete(ctx context.Context, userID, planID string) error
	// DeleteAll 清空该用户的全部选课计划
	DeleteAll(ctx context.Context, userID string) (*dto.ClearPlansResponse, error)
	// ResetStatuses 将该用户全部终态计划重置为 planned
	// 这是"上一周期失败/跳过的计划是否再次参与"的策略开关，归调用方而非引擎
	ResetStatuses(ctx context.Context, userID string) (*dto.ResetPlansResponse, error)
}

type planService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(repo *repository.Repository, logger *zap.Logger) PlanService {
	return &planService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *planService) List(ctx context.Context, userID string) (*dto.PlanListResponse, error) {
	plans, err := s.repo.Plan.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询选课计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := &dto.PlanListResponse{
		Primary: make([]dto.PlanResponse, 0),
		Backup:  make([]dto.PlanResponse, 0),
	}
	for i := range plans {
		pr := toPlanResponse(&plans[i])
		if plans[i].PlanType == model.PlanTypePrimary {
			resp.Primary = append(resp.Primary, pr)
		} else {
			resp.Backup = append(resp.Backup, pr)
		}
	}
	return resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *planService) Create(ctx context.Context, userID string, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	// 1. 解析课程类别
	courseType, err := s.repo.CourseType.GetByName(ctx, req.CourseTypeName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCourseType
		}
		s.logger.Error("查询课程类别失败", zap.Error(err))
		return nil, err
	}

	// 2. 备选课校验：必须有挂接正课与优先级
	if req.PlanType == model.PlanTypeBackup {
		if req.LinkedPrimaryID == nil {
			return nil, ErrBackupNeedsLink
		}
		if req.PriorityOrder == nil {
			return nil, ErrBackupNeedsPriority
		}
		if _, err := s.repo.Plan.GetByID(ctx, *req.LinkedPrimaryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, err
		}
	}

	// 3. 正选课校验：数量不超配额，且与已有正选课不重叠
	if req.PlanType == model.PlanTypePrimary {
		quota, err := s.repo.Quota.GetRequiredCount(ctx, userID, courseType)
		if err != nil {
			s.logger.Error("解析配额失败", zap.Error(err))
			return nil, err
		}
		count, err := s.repo.Plan.CountPrimaryByType(ctx, userID, courseType.CourseTypeID)
		if err != nil {
			s.logger.Error("统计正选课失败", zap.Error(err))
			return nil, err
		}
		if count >= int64(quota) {
			return nil, ErrPrimaryQuotaReached
		}

		if req.StartTime != nil && req.EndTime != nil {
			if err := s.checkPrimaryOverlap(ctx, userID, req); err != nil {
				return nil, err
			}
		}
	}

	// 4. 落库
	plan := &model.CoursePlan{
		UserID:           userID,
		CourseTypeID:     &courseType.CourseTypeID,
		ExternalCourseID: req.ExternalCourseID,
		CourseCode:       req.CourseCode,
		CourseName:       req.CourseName,
		Lecturer:         req.Lecturer,
		Room:             req.Room,
		Day:              req.Day,
		TimeSlotLabel:    req.TimeSlotLabel,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		PlanType:         req.PlanType,
		PriorityOrder:    req.PriorityOrder,
		LinkedPrimaryID:  req.LinkedPrimaryID,
		Status:           model.PlanStatusPlanned,
	}
	if err := s.repo.Plan.Create(ctx, plan); err != nil {
		s.logger.Error("创建选课计划失败", zap.Error(err))
		return nil, err
	}

	plan.CourseType = courseType
	pr := toPlanResponse(plan)
	return &pr, nil
}

// checkPrimaryOverlap 新正选课与该用户已有正选课的重叠检测
func (s *planService) checkPrimaryOverlap(ctx context.Context, userID string, req *dto.CreatePlanRequest) error {
	existing, err := s.repo.Plan.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	start := parseTimeToMinutes(*req.StartTime)
	end := parseTimeToMinutes(*req.EndTime)

	for i := range existing {
		p := &existing[i]
		if p.PlanType != model.PlanTypePrimary || p.StartTime == nil || p.EndTime == nil {
			continue
		}
		if overlaps(p.Day, parseTimeToMinutes(*p.StartTime), parseTimeToMinutes(*p.EndTime),
			req.Day, start, end) {
			return ErrPrimaryOverlap
		}
	}
	return nil
}

// ────────────────────── UpdatePriority ──────────────────────

func (s *planService) UpdatePriority(ctx context.Context, userID, planID string, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	plan, err := s.repo.Plan.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询选课计划失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrPlanNotOwned
	}
	if plan.PlanType != model.PlanTypeBackup {
		return nil, ErrNotBackupPlan
	}

	if err := s.repo.Plan.UpdatePriority(ctx, planID, req.PriorityOrder); err != nil {
		s.logger.Error("调整备选课优先级失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, err
	}

	priority := req.PriorityOrder
	plan.PriorityOrder = &priority
	pr := toPlanResponse(plan)
	return &pr, nil
}

// ────────────────────── Delete ──────────────────────

func (s *planService) Delete(ctx context.Context, userID, planID string) error {
	plan, err := s.repo.Plan.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		s.logger.Error("查询选课计划失败", zap.String("plan_id", planID), zap.Error(err))
		return err
	}
	if plan.UserID != userID {
		return ErrPlanNotOwned
	}

	if err := s.repo.Plan.Delete(ctx, planID); err != nil {
		s.logger.Error("删除选课计划失败", zap.String("plan_id", planID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── DeleteAll ──────────────────────

func (s *planService) DeleteAll(ctx context.Context, userID string) (*dto.ClearPlansResponse, error) {
	count, err := s.repo.Plan.DeleteByUser(ctx, userID)
	if err != nil {
		s.logger.Error("清空选课计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("已清空用户选课计划", zap.String("user_id", userID), zap.Int64("count", count))
	return &dto.ClearPlansResponse{DeletedCount: count}, nil
}

// ────────────────────── ResetStatuses ──────────────────────

func (s *planService) ResetStatuses(ctx context.Context, userID string) (*dto.ResetPlansResponse, error) {
	count, err := s.repo.Plan.ResetStatuses(ctx, userID)
	if err != nil {
		s.logger.Error("重置计划状态失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.ResetPlansResponse{ResetCount: count}, nil
}

// ── 内部辅助 ──

func toPlanResponse(plan *model.CoursePlan) dto.PlanResponse {
	resp := dto.PlanResponse{
		ID:               plan.PlanID,
		ExternalCourseID: plan.ExternalCourseID,
		CourseCode:       plan.CourseCode,
		CourseName:       plan.CourseName,
		Lecturer:         plan.Lecturer,
		Room:             plan.Room,
		Day:              plan.Day,
		TimeSlotLabel:    plan.TimeSlotLabel,
		StartTime:        plan.StartTime,
		EndTime:          plan.EndTime,
		PlanType:         plan.PlanType,
		PriorityOrder:    plan.PriorityOrder,
		LinkedPrimaryID:  plan.LinkedPrimaryID,
		Status:           plan.Status,
		FailedReason:     plan.FailedReason,
	}
	if plan.CourseType != nil {
		resp.CourseTypeName = plan.CourseType.Name
		resp.CourseTypeLabel = plan.CourseType.DisplayName
	}
	if plan.RegisteredAt != nil {
		t := plan.RegisteredAt.Format(time.RFC3339)
		resp.RegisteredAt = &t
	}
	return resp
}
