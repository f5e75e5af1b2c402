package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"talkfirst-planner/backend/config"
	"talkfirst-planner/backend/internal/dto"
	"talkfirst-planner/backend/internal/model"
	"talkfirst-planner/backend/internal/repository"
	pkgerrors "talkfirst-planner/backend/pkg/errors"
	"talkfirst-planner/backend/pkg/talkfirst"
)

const conflictSkipReason = "Time conflict with registered courses"

// CycleLocker 报名周期互斥锁
// 生产环境由 pkg/redis.Client 实现；为 nil 时降级为不加锁
type CycleLocker interface {
	AcquireCycleLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseCycleLock(ctx context.Context) error
}

// RegistrationService 自动报名引擎接口
//
// 设计说明：
//   - RunCycle 是引擎对外的唯一操作，由定时触发器（cron）同步调用
//   - 每个用户一个并发任务；单用户内类别与条目严格串行，
//     因为每次决策都依赖此前成功槽位累积出的冲突集合
//   - 所有单条目/单用户错误都被吸收为状态字段与审计记录，
//     只有在加载任何用户之前的基础设施故障才作为 error 传播
type RegistrationService interface {
	// RunCycle 执行一个完整报名周期，汇总中包含每一个被加载的用户
	RunCycle(ctx context.Context) (*dto.RunSummaryResponse, error)
	// ListSubmissions 查询当前用户的报名审计记录
	ListSubmissions(ctx context.Context, userID string, req *dto.SubmissionListRequest) ([]dto.SubmissionRecordResponse, int64, error)
}

type registrationService struct {
	cfg    *config.Config
	repo   *repository.Repository
	client talkfirst.Client
	locker CycleLocker
	logger *zap.Logger
}

// NewRegistrationService 创建 RegistrationService 实例
func NewRegistrationService(
	cfg *config.Config,
	repo *repository.Repository,
	client talkfirst.Client,
	locker CycleLocker,
	logger *zap.Logger,
) RegistrationService {
	return &registrationService{
		cfg:    cfg,
		repo:   repo,
		client: client,
		locker: locker,
		logger: logger,
	}
}

// ════════════════════════════════════════════════════════════
// RunCycle — 全用户并发报名周期
// ════════════════════════════════════════════════════════════

func (s *registrationService) RunCycle(ctx context.Context) (*dto.RunSummaryResponse, error) {
	// 0. 周期互斥锁（Redis SetNX；TTL 作为进程崩溃兜底）
	if s.locker != nil {
		acquired, err := s.locker.AcquireCycleLock(ctx, s.cfg.Registration.CycleLockTTL)
		if err != nil {
			// Redis 出错时降级放行，不阻塞报名
			s.logger.Warn("获取周期锁失败，跳过互斥检查", zap.Error(err))
		} else if !acquired {
			return nil, pkgerrors.ErrCycleInProgress
		} else {
			defer func() {
				if err := s.locker.ReleaseCycleLock(context.WithoutCancel(ctx)); err != nil {
					s.logger.Warn("释放周期锁失败", zap.Error(err))
				}
			}()
		}
	}

	s.logger.Info("报名周期开始")

	// 1. 加载全部用户与按 registration_order 排序的类别
	users, err := s.repo.User.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载用户列表失败: %w", err)
	}
	courseTypes, err := s.repo.CourseType.ListOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载课程类别失败: %w", err)
	}

	// 2. 每用户一个并发任务
	//    每个任务只读写自己 user_id 范围内的行，彼此无共享可变状态；
	//    结果按下标写入各自槽位，汇总必然包含每一个用户
	results := make([]dto.UserRunResult, len(users))
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = s.runUserTask(ctx, &users[idx], courseTypes)
		}(i)
	}
	wg.Wait()

	var totalSuccess, totalFailed int
	for _, r := range results {
		totalSuccess += r.SuccessCount
		totalFailed += r.FailedCount
	}
	s.logger.Info("报名周期结束",
		zap.Int("users", len(users)),
		zap.Int("total_success", totalSuccess),
		zap.Int("total_failed", totalFailed),
	)

	return &dto.RunSummaryResponse{
		Message: "Automated registration cycle completed",
		Summary: results,
	}, nil
}

// runUserTask 单用户任务边界：捕获 panic，转换为合成失败结果
// 任何一个用户的内部错误都不允许中断兄弟任务或整个周期
func (s *registrationService) runUserTask(ctx context.Context, user *model.User, courseTypes []model.CourseType) (result dto.UserRunResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("用户报名任务发生 panic",
				zap.String("user_id", user.UserID),
				zap.Any("panic", r),
			)
			result = dto.UserRunResult{
				UserID:   user.UserID,
				Username: user.Username,
				Status:   dto.RunStatusError,
				Reason:   fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	return s.registerUser(ctx, user, courseTypes)
}

// ════════════════════════════════════════════════════════════
// registerUser — 单用户分配算法
// ════════════════════════════════════════════════════════════
//
// 按类别处理顺序依次：先报正选课，不足配额时按优先级走备选课，
// 备选课先对本轮所有已报成功槽位（跨类别）做时间冲突检测，
// 冲突则跳过且不调用外部服务。每次成功立即计入冲突集合，
// 保证后续备选课能看到本轮更早产生的全部占用。
//
// 中途的计划加载或配额解析错误将整个任务标记为 error，
// 但此前类别已写入的终态保持不变，不做回滚。

func (s *registrationService) registerUser(ctx context.Context, user *model.User, courseTypes []model.CourseType) dto.UserRunResult {
	result := dto.UserRunResult{
		UserID:   user.UserID,
		Username: user.Username,
		Status:   dto.RunStatusCompleted,
	}

	// 1. 登录外部服务；失败对该用户本轮是终止性的，不触碰任何计划
	if user.TFUsername == nil || *user.TFUsername == "" {
		result.Status = dto.RunStatusAuthFailed
		result.Reason = "未配置 TalkFirst 选课凭据"
		return result
	}
	password := ""
	if user.TFPassword != nil {
		password = *user.TFPassword
	}

	token, err := s.client.Login(ctx, *user.TFUsername, password)
	if err != nil {
		s.logger.Warn("用户登录外部服务失败",
			zap.String("user_id", user.UserID),
			zap.Error(err),
		)
		result.Status = dto.RunStatusAuthFailed
		result.Reason = "Auth failed"
		return result
	}

	// 2. 加载该用户处于 planned 状态的计划
	plans, err := s.repo.Plan.ListPlannedByUser(ctx, user.UserID)
	if err != nil {
		s.logger.Error("加载用户计划失败",
			zap.String("user_id", user.UserID),
			zap.Error(err),
		)
		result.Status = dto.RunStatusError
		result.Reason = err.Error()
		return result
	}

	// 本轮已报成功槽位（仅该用户、仅本轮），只增不减
	var accepted []acceptedSlot

	// 3. 按处理顺序逐类别分配
	for i := range courseTypes {
		ct := &courseTypes[i]

		// 3a. 解析有效配额（覆盖值优先，否则取类别默认值）
		quota, err := s.repo.Quota.GetRequiredCount(ctx, user.UserID, ct)
		if err != nil {
			s.logger.Error("解析配额失败",
				zap.String("user_id", user.UserID),
				zap.String("course_type", ct.Name),
				zap.Error(err),
			)
			result.Status = dto.RunStatusError
			result.Reason = err.Error()
			return result
		}

		registered := 0

		// 3b. 正选课：按输入稳定顺序全部尝试，不做冲突预检
		//     （正选课之间的重叠在提交计划时已被拦截）
		for j := range plans {
			plan := &plans[j]
			if !planMatches(plan, ct.CourseTypeID, model.PlanTypePrimary) {
				continue
			}
			if s.attemptRegistration(ctx, user.UserID, plan, token, &accepted, &result) {
				registered++
			}
		}

		// 3c. 配额未满时按优先级走备选课
		if registered < quota {
			backups := collectBackups(plans, ct.CourseTypeID)

			for _, plan := range backups {
				if registered >= quota {
					break
				}

				// 对本轮所有已报成功槽位做冲突检测（跨类别），
				// 冲突即跳过，不调用外部服务
				if conflictsWithAccepted(accepted, plan) {
					s.markSkipped(ctx, user.UserID, plan)
					continue
				}

				if s.attemptRegistration(ctx, user.UserID, plan, token, &accepted, &result) {
					registered++
				}
			}
		}
	}

	return result
}

// attemptRegistration 对单个计划执行一次真实报名尝试
// 成功返回 true 并把该槽位计入冲突集合；同一槽位一个周期内不重试
func (s *registrationService) attemptRegistration(
	ctx context.Context,
	userID string,
	plan *model.CoursePlan,
	token string,
	accepted *[]acceptedSlot,
	result *dto.UserRunResult,
) bool {
	outcome, err := s.client.RegisterSlot(ctx, plan.ExternalCourseID, token)
	if err != nil {
		// 传输层错误折叠为业务失败
		outcome = &talkfirst.RegistrationOutcome{Success: false, Message: err.Error()}
	}

	auditResult := model.SubmissionResultFailed
	if outcome.Success {
		auditResult = model.SubmissionResultSuccess
	}
	s.appendAudit(ctx, userID, plan.PlanID, auditResult, outcome.Message, outcome.RawResponse)

	if outcome.Success {
		now := time.Now()
		if err := s.repo.Plan.SetStatus(ctx, plan.PlanID, model.PlanStatusRegistered, nil, &now); err != nil {
			s.logger.Error("更新计划状态失败",
				zap.String("plan_id", plan.PlanID),
				zap.Error(err),
			)
		}
		if slot, ok := toAcceptedSlot(plan); ok {
			*accepted = append(*accepted, slot)
		}
		result.SuccessCount++
		return true
	}

	reason := outcome.Message
	if err := s.repo.Plan.SetStatus(ctx, plan.PlanID, model.PlanStatusFailed, &reason, nil); err != nil {
		s.logger.Error("更新计划状态失败",
			zap.String("plan_id", plan.PlanID),
			zap.Error(err),
		)
	}
	result.FailedCount++
	return false
}

// markSkipped 因时间冲突主动跳过（不算失败，与失败在审计中可区分）
func (s *registrationService) markSkipped(ctx context.Context, userID string, plan *model.CoursePlan) {
	reason := conflictSkipReason
	if err := s.repo.Plan.SetStatus(ctx, plan.PlanID, model.PlanStatusSkipped, &reason, nil); err != nil {
		s.logger.Error("更新计划状态失败",
			zap.String("plan_id", plan.PlanID),
			zap.Error(err),
		)
	}
	s.appendAudit(ctx, userID, plan.PlanID, model.SubmissionResultSkipped, reason, "")
}

// appendAudit 追加一条报名审计记录；写入失败只记日志，不中断分配
func (s *registrationService) appendAudit(ctx context.Context, userID, planID, result, reason, rawResponse string) {
	record := &model.SubmissionRecord{
		UserID:         userID,
		PlanID:         &planID,
		SubmissionDate: time.Now().Format("2006-01-02"),
		Result:         result,
	}
	if reason != "" {
		record.Reason = &reason
	}
	if rawResponse != "" {
		record.APIResponse = &rawResponse
	}

	if err := s.repo.Submission.Create(ctx, record); err != nil {
		s.logger.Error("写入审计记录失败",
			zap.String("plan_id", planID),
			zap.Error(err),
		)
	}
}

// ════════════════════════════════════════════════════════════
// ListSubmissions — 审计记录查询
// ════════════════════════════════════════════════════════════

func (s *registrationService) ListSubmissions(ctx context.Context, userID string, req *dto.SubmissionListRequest) ([]dto.SubmissionRecordResponse, int64, error) {
	records, total, err := s.repo.Submission.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询审计记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.SubmissionRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, dto.SubmissionRecordResponse{
			ID:             r.RecordID,
			PlanID:         r.PlanID,
			SubmissionDate: r.SubmissionDate,
			Result:         r.Result,
			Reason:         r.Reason,
			CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, total, nil
}

// ════════════════════════════════════════════════════════════
// 算法辅助函数
// ════════════════════════════════════════════════════════════

// acceptedSlot 本轮已报成功槽位（仅用于冲突检测的临时集合）
type acceptedSlot struct {
	day   string
	start int // 当日分钟数
	end   int
}

func planMatches(plan *model.CoursePlan, courseTypeID, planType string) bool {
	return plan.PlanType == planType &&
		plan.CourseTypeID != nil && *plan.CourseTypeID == courseTypeID
}

// collectBackups 收集某类别的备选课并按优先级升序排列
// 无优先级的排在所有有优先级的之后；相同优先级保持输入顺序
func collectBackups(plans []model.CoursePlan, courseTypeID string) []*model.CoursePlan {
	var backups []*model.CoursePlan
	for i := range plans {
		if planMatches(&plans[i], courseTypeID, model.PlanTypeBackup) {
			backups = append(backups, &plans[i])
		}
	}
	sort.SliceStable(backups, func(i, j int) bool {
		return backupPriority(backups[i].PriorityOrder) < backupPriority(backups[j].PriorityOrder)
	})
	return backups
}

func backupPriority(p *int) int {
	if p == nil {
		return math.MaxInt32
	}
	return *p
}

// toAcceptedSlot 把已报成功的计划转为冲突检测槽位
// 缺少时间信息的计划无法参与冲突检测，返回 ok=false
func toAcceptedSlot(plan *model.CoursePlan) (acceptedSlot, bool) {
	if plan.StartTime == nil || plan.EndTime == nil {
		return acceptedSlot{}, false
	}
	return acceptedSlot{
		day:   plan.Day,
		start: parseTimeToMinutes(*plan.StartTime),
		end:   parseTimeToMinutes(*plan.EndTime),
	}, true
}

func conflictsWithAccepted(accepted []acceptedSlot, plan *model.CoursePlan) bool {
	slot, ok := toAcceptedSlot(plan)
	if !ok {
		return false
	}
	for _, a := range accepted {
		if overlaps(a.day, a.start, a.end, slot.day, slot.start, slot.end) {
			return true
		}
	}
	return false
}

// overlaps 判断两个同为当日区间的时段是否冲突
// 半开区间相交判定；不处理跨午夜区间
func overlaps(day1 string, start1, end1 int, day2 string, start2, end2 int) bool {
	if day1 != day2 {
		return false
	}
	return start1 < end2 && start2 < end1
}

// parseTimeToMinutes 把 "HH:MM" 解析为当日分钟数
// 格式合法性由调用方保证
func parseTimeToMinutes(t string) int {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}
