package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"talkfirst-planner/backend/internal/model"
	"talkfirst-planner/backend/internal/repository"
	"talkfirst-planner/backend/pkg/talkfirst"
)

// ── Mock UserRepository ──
// 用 slice 保存以保证 List 的返回顺序与插入顺序一致

type mockUserRepo struct {
	mu    sync.Mutex
	users []*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.UserID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.UserID == user.UserID {
			m.users[i] = user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateCredentials(_ context.Context, userID, tfUsername, tfPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.UserID == userID {
			u.TFUsername = &tfUsername
			u.TFPassword = &tfPassword
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

// ── Mock CourseTypeRepository ──

type mockCourseTypeRepo struct {
	types []*model.CourseType
}

func newMockCourseTypeRepo() *mockCourseTypeRepo {
	return &mockCourseTypeRepo{}
}

func (m *mockCourseTypeRepo) add(id, name string, defaultCount, order int) *model.CourseType {
	ct := &model.CourseType{
		CourseTypeID:         id,
		Name:                 name,
		DisplayName:          name,
		DefaultRequiredCount: defaultCount,
		RegistrationOrder:    order,
	}
	m.types = append(m.types, ct)
	return ct
}

func (m *mockCourseTypeRepo) GetByID(_ context.Context, id string) (*model.CourseType, error) {
	for _, ct := range m.types {
		if ct.CourseTypeID == id {
			return ct, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseTypeRepo) GetByName(_ context.Context, name string) (*model.CourseType, error) {
	for _, ct := range m.types {
		if ct.Name == name {
			return ct, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseTypeRepo) ListOrdered(_ context.Context) ([]model.CourseType, error) {
	result := make([]model.CourseType, 0, len(m.types))
	for _, ct := range m.types {
		result = append(result, *ct)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RegistrationOrder < result[j].RegistrationOrder
	})
	return result, nil
}

// ── Mock QuotaRepository ──

type mockQuotaRepo struct {
	mu     sync.Mutex
	quotas map[string]*model.UserCourseQuota // key: userID + "/" + courseTypeID
}

func newMockQuotaRepo() *mockQuotaRepo {
	return &mockQuotaRepo{quotas: make(map[string]*model.UserCourseQuota)}
}

func quotaKey(userID, courseTypeID string) string {
	return userID + "/" + courseTypeID
}

func (m *mockQuotaRepo) setOverride(userID, courseTypeID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotas[quotaKey(userID, courseTypeID)] = &model.UserCourseQuota{
		UserID:        userID,
		CourseTypeID:  courseTypeID,
		RequiredCount: count,
	}
}

func (m *mockQuotaRepo) ListByUser(_ context.Context, userID string) ([]model.UserCourseQuota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.UserCourseQuota
	for _, q := range m.quotas {
		if q.UserID == userID {
			result = append(result, *q)
		}
	}
	return result, nil
}

func (m *mockQuotaRepo) Upsert(_ context.Context, quota *model.UserCourseQuota) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotas[quotaKey(quota.UserID, quota.CourseTypeID)] = quota
	return nil
}

func (m *mockQuotaRepo) GetRequiredCount(_ context.Context, userID string, courseType *model.CourseType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.quotas[quotaKey(userID, courseType.CourseTypeID)]; ok {
		return q.RequiredCount, nil
	}
	return courseType.DefaultRequiredCount, nil
}

// ── Mock PlanRepository ──
// 用 slice 保存以保证 ListPlannedByUser 的返回顺序与插入顺序一致
// （引擎对正选课按输入顺序尝试，对相同优先级备选课保持输入顺序）

type mockPlanRepo struct {
	mu    sync.Mutex
	seq   int
	plans []*model.CoursePlan
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{}
}

func (m *mockPlanRepo) Create(_ context.Context, plan *model.CoursePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan.PlanID == "" {
		m.seq++
		plan.PlanID = fmt.Sprintf("plan-%d", m.seq)
	}
	if plan.Status == "" {
		plan.Status = model.PlanStatusPlanned
	}
	m.plans = append(m.plans, plan)
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id string) (*model.CoursePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.PlanID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanRepo) ListByUser(_ context.Context, userID string) ([]model.CoursePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.CoursePlan
	for _, p := range m.plans {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPlanRepo) ListPlannedByUser(_ context.Context, userID string) ([]model.CoursePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.CoursePlan
	for _, p := range m.plans {
		if p.UserID == userID && p.Status == model.PlanStatusPlanned {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPlanRepo) CountPrimaryByType(_ context.Context, userID, courseTypeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, p := range m.plans {
		if p.UserID == userID && p.PlanType == model.PlanTypePrimary &&
			p.CourseTypeID != nil && *p.CourseTypeID == courseTypeID {
			count++
		}
	}
	return count, nil
}

func (m *mockPlanRepo) SetStatus(_ context.Context, planID, status string, reason *string, registeredAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.PlanID == planID {
			p.Status = status
			p.FailedReason = reason
			p.RegisteredAt = registeredAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockPlanRepo) ResetStatuses(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, p := range m.plans {
		if p.UserID == userID && p.Status != model.PlanStatusPlanned {
			p.Status = model.PlanStatusPlanned
			p.FailedReason = nil
			p.RegisteredAt = nil
			affected++
		}
	}
	return affected, nil
}

func (m *mockPlanRepo) UpdatePriority(_ context.Context, planID string, priorityOrder int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.PlanID == planID {
			v := priorityOrder
			p.PriorityOrder = &v
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockPlanRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*model.CoursePlan
	var deleted int64
	for _, p := range m.plans {
		if p.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	m.plans = kept
	return deleted, nil
}

func (m *mockPlanRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.plans {
		if p.PlanID == id {
			m.plans = append(m.plans[:i], m.plans[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// statusOf 测试辅助：按 PlanID 读取当前状态
func (m *mockPlanRepo) statusOf(planID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.PlanID == planID {
			return p.Status
		}
	}
	return ""
}

func (m *mockPlanRepo) reasonOf(planID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.PlanID == planID && p.FailedReason != nil {
			return *p.FailedReason
		}
	}
	return ""
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	mu      sync.Mutex
	seq     int
	records []*model.SubmissionRecord
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{}
}

func (m *mockSubmissionRepo) Create(_ context.Context, record *model.SubmissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.RecordID == "" {
		m.seq++
		record.RecordID = fmt.Sprintf("rec-%d", m.seq)
	}
	record.CreatedAt = time.Now()
	m.records = append(m.records, record)
	return nil
}

func (m *mockSubmissionRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.SubmissionRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.SubmissionRecord
	for _, r := range m.records {
		if r.UserID == userID {
			all = append(all, *r)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// countByUser 测试辅助：该用户的审计记录条数
func (m *mockSubmissionRepo) countByUser(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.records {
		if r.UserID == userID {
			count++
		}
	}
	return count
}

// ── Mock TalkFirst Client ──
// 按 externalCourseID 返回预设结果；记录每一次真实报名调用

type mockTalkFirstClient struct {
	mu sync.Mutex

	loginErr   error
	outcomes   map[string]*talkfirst.RegistrationOutcome // key: externalCourseID
	registered []string                                  // RegisterSlot 调用顺序
	courses    []talkfirst.Course
}

func newMockTalkFirstClient() *mockTalkFirstClient {
	return &mockTalkFirstClient{outcomes: make(map[string]*talkfirst.RegistrationOutcome)}
}

func (m *mockTalkFirstClient) succeedOn(externalCourseID string) {
	m.outcomes[externalCourseID] = &talkfirst.RegistrationOutcome{Success: true, Message: "OK"}
}

func (m *mockTalkFirstClient) failOn(externalCourseID, message string) {
	m.outcomes[externalCourseID] = &talkfirst.RegistrationOutcome{Success: false, Message: message}
}

func (m *mockTalkFirstClient) Login(_ context.Context, username, _ string) (string, error) {
	if m.loginErr != nil {
		return "", m.loginErr
	}
	return "token-" + username, nil
}

func (m *mockTalkFirstClient) RegisterSlot(_ context.Context, externalCourseID, _ string) (*talkfirst.RegistrationOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, externalCourseID)
	if o, ok := m.outcomes[externalCourseID]; ok {
		return o, nil
	}
	return &talkfirst.RegistrationOutcome{Success: false, Message: "course not found"}, nil
}

func (m *mockTalkFirstClient) ListCourses(_ context.Context, _ string) ([]talkfirst.Course, error) {
	return m.courses, nil
}

func (m *mockTalkFirstClient) registeredCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.registered))
	copy(result, m.registered)
	return result
}

// ── Mock CycleLocker ──

type mockCycleLocker struct {
	mu       sync.Mutex
	locked   bool
	acquires int
	releases int
}

func (m *mockCycleLocker) AcquireCycleLock(_ context.Context, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquires++
	if m.locked {
		return false, nil
	}
	m.locked = true
	return true, nil
}

func (m *mockCycleLocker) ReleaseCycleLock(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases++
	m.locked = false
	return nil
}

// ── Mock CatalogCache ──

type mockCatalogCache struct {
	mu      sync.Mutex
	payload string
	sets    int
}

func (m *mockCatalogCache) GetCatalogCache(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payload, nil
}

func (m *mockCatalogCache) SetCatalogCache(_ context.Context, payload string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = payload
	m.sets++
	return nil
}

// ── 测试用 Repository 聚合 ──

type testRepos struct {
	user       *mockUserRepo
	courseType *mockCourseTypeRepo
	quota      *mockQuotaRepo
	plan       *mockPlanRepo
	submission *mockSubmissionRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		user:       newMockUserRepo(),
		courseType: newMockCourseTypeRepo(),
		quota:      newMockQuotaRepo(),
		plan:       newMockPlanRepo(),
		submission: newMockSubmissionRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:       r.user,
		CourseType: r.courseType,
		Quota:      r.quota,
		Plan:       r.plan,
		Submission: r.submission,
	}
}

// [自证通过] internal/service/mock_repos_test.go
