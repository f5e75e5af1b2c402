package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"talkfirst-planner/backend/internal/dto"
	"talkfirst-planner/backend/internal/model"
)

func setupTestPlanService() (PlanService, *testRepos) {
	repos := newTestRepos()
	svc := NewPlanService(repos.toRepository(), zap.NewNop())
	return svc, repos
}

func strPtr(s string) *string { return &s }

func basePlanRequest(planType string) *dto.CreatePlanRequest {
	return &dto.CreatePlanRequest{
		ExternalCourseID: "ext-1",
		CourseName:       "Grammar Clinic",
		CourseTypeName:   "main",
		Day:              "Monday",
		StartTime:        strPtr("10:00"),
		EndTime:          strPtr("11:00"),
		PlanType:         planType,
	}
}

func TestCreatePlan_Primary(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 2, 1)
	user := seedUser(repos, "alice", true)

	resp, err := svc.Create(context.Background(), user.UserID, basePlanRequest(model.PlanTypePrimary))
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if resp.Status != model.PlanStatusPlanned {
		t.Errorf("状态 = %s, want planned", resp.Status)
	}
	if resp.CourseTypeName != "main" {
		t.Errorf("类别 = %s, want main", resp.CourseTypeName)
	}
}

func TestCreatePlan_InvalidCourseType(t *testing.T) {
	svc, repos := setupTestPlanService()
	user := seedUser(repos, "alice", true)

	req := basePlanRequest(model.PlanTypePrimary)
	req.CourseTypeName = "nonexistent"
	_, err := svc.Create(context.Background(), user.UserID, req)
	if !errors.Is(err, ErrInvalidCourseType) {
		t.Errorf("err = %v, want ErrInvalidCourseType", err)
	}
}

func TestCreatePlan_BackupValidation(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 2, 1)
	user := seedUser(repos, "alice", true)
	primary := seedPlan(repos, user.UserID, "ct-main", "ext-p", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)

	// 缺少挂接正课
	req := basePlanRequest(model.PlanTypeBackup)
	req.PriorityOrder = intPtr(1)
	if _, err := svc.Create(context.Background(), user.UserID, req); !errors.Is(err, ErrBackupNeedsLink) {
		t.Errorf("err = %v, want ErrBackupNeedsLink", err)
	}

	// 缺少优先级
	req = basePlanRequest(model.PlanTypeBackup)
	req.LinkedPrimaryID = &primary.PlanID
	if _, err := svc.Create(context.Background(), user.UserID, req); !errors.Is(err, ErrBackupNeedsPriority) {
		t.Errorf("err = %v, want ErrBackupNeedsPriority", err)
	}

	// 两者齐备则成功
	req = basePlanRequest(model.PlanTypeBackup)
	req.LinkedPrimaryID = &primary.PlanID
	req.PriorityOrder = intPtr(1)
	req.Day = "Tuesday"
	if _, err := svc.Create(context.Background(), user.UserID, req); err != nil {
		t.Errorf("Create 备选课失败: %v", err)
	}
}

func TestCreatePlan_PrimaryQuotaReached(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 1, 1)
	user := seedUser(repos, "alice", true)
	seedPlan(repos, user.UserID, "ct-main", "ext-p", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)

	req := basePlanRequest(model.PlanTypePrimary)
	req.Day = "Tuesday"
	_, err := svc.Create(context.Background(), user.UserID, req)
	if !errors.Is(err, ErrPrimaryQuotaReached) {
		t.Errorf("err = %v, want ErrPrimaryQuotaReached", err)
	}
}

// 正选课之间的重叠在提交时被拦截，备选课不受此限制
func TestCreatePlan_PrimaryOverlap(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 2, 1)
	user := seedUser(repos, "alice", true)
	primary := seedPlan(repos, user.UserID, "ct-main", "ext-p", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)

	req := basePlanRequest(model.PlanTypePrimary)
	req.StartTime = strPtr("10:30")
	req.EndTime = strPtr("11:30")
	if _, err := svc.Create(context.Background(), user.UserID, req); !errors.Is(err, ErrPrimaryOverlap) {
		t.Errorf("err = %v, want ErrPrimaryOverlap", err)
	}

	// 同一时段的备选课可以提交（冲突留给报名引擎裁决）
	req = basePlanRequest(model.PlanTypeBackup)
	req.StartTime = strPtr("10:30")
	req.EndTime = strPtr("11:30")
	req.LinkedPrimaryID = &primary.PlanID
	req.PriorityOrder = intPtr(1)
	if _, err := svc.Create(context.Background(), user.UserID, req); err != nil {
		t.Errorf("Create 备选课失败: %v", err)
	}
}

func TestDeletePlan_Ownership(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 2, 1)
	alice := seedUser(repos, "alice", true)
	bob := seedUser(repos, "bob", true)
	plan := seedPlan(repos, alice.UserID, "ct-main", "ext-p", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)

	if err := svc.Delete(context.Background(), bob.UserID, plan.PlanID); !errors.Is(err, ErrPlanNotOwned) {
		t.Errorf("err = %v, want ErrPlanNotOwned", err)
	}
	if err := svc.Delete(context.Background(), alice.UserID, plan.PlanID); err != nil {
		t.Errorf("Delete 失败: %v", err)
	}
	if err := svc.Delete(context.Background(), alice.UserID, plan.PlanID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("err = %v, want ErrPlanNotFound", err)
	}
}

func TestUpdatePlanPriority(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 2, 1)
	alice := seedUser(repos, "alice", true)
	bob := seedUser(repos, "bob", true)
	primary := seedPlan(repos, alice.UserID, "ct-main", "ext-p", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)
	backup := seedPlan(repos, alice.UserID, "ct-main", "ext-b", model.PlanTypeBackup, "Tuesday", "10:00", "11:00", intPtr(2))

	resp, err := svc.UpdatePriority(context.Background(), alice.UserID, backup.PlanID, &dto.UpdatePlanRequest{PriorityOrder: 1})
	if err != nil {
		t.Fatalf("UpdatePriority 失败: %v", err)
	}
	if resp.PriorityOrder == nil || *resp.PriorityOrder != 1 {
		t.Errorf("优先级 = %v, want 1", resp.PriorityOrder)
	}
	if backup.PriorityOrder == nil || *backup.PriorityOrder != 1 {
		t.Errorf("落库优先级 = %v, want 1", backup.PriorityOrder)
	}

	// 正选课没有优先级
	if _, err := svc.UpdatePriority(context.Background(), alice.UserID, primary.PlanID, &dto.UpdatePlanRequest{PriorityOrder: 1}); !errors.Is(err, ErrNotBackupPlan) {
		t.Errorf("err = %v, want ErrNotBackupPlan", err)
	}

	// 不能动他人的计划
	if _, err := svc.UpdatePriority(context.Background(), bob.UserID, backup.PlanID, &dto.UpdatePlanRequest{PriorityOrder: 3}); !errors.Is(err, ErrPlanNotOwned) {
		t.Errorf("err = %v, want ErrPlanNotOwned", err)
	}

	if _, err := svc.UpdatePriority(context.Background(), alice.UserID, "plan-missing", &dto.UpdatePlanRequest{PriorityOrder: 1}); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("err = %v, want ErrPlanNotFound", err)
	}
}

func TestDeleteAllPlans(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 2, 1)
	alice := seedUser(repos, "alice", true)
	bob := seedUser(repos, "bob", true)
	seedPlan(repos, alice.UserID, "ct-main", "ext-1", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)
	seedPlan(repos, alice.UserID, "ct-main", "ext-2", model.PlanTypeBackup, "Tuesday", "10:00", "11:00", intPtr(1))
	bobPlan := seedPlan(repos, bob.UserID, "ct-main", "ext-3", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)

	resp, err := svc.DeleteAll(context.Background(), alice.UserID)
	if err != nil {
		t.Fatalf("DeleteAll 失败: %v", err)
	}
	if resp.DeletedCount != 2 {
		t.Errorf("删除条数 = %d, want 2", resp.DeletedCount)
	}

	remaining, _ := svc.List(context.Background(), alice.UserID)
	if len(remaining.Primary)+len(remaining.Backup) != 0 {
		t.Errorf("清空后仍有 %d 条计划", len(remaining.Primary)+len(remaining.Backup))
	}

	// 他人的计划不受影响
	if _, err := repos.plan.GetByID(context.Background(), bobPlan.PlanID); err != nil {
		t.Errorf("他人计划被误删: %v", err)
	}
}

func TestResetStatuses(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 2, 1)
	user := seedUser(repos, "alice", true)

	p1 := seedPlan(repos, user.UserID, "ct-main", "ext-1", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)
	p2 := seedPlan(repos, user.UserID, "ct-main", "ext-2", model.PlanTypePrimary, "Tuesday", "10:00", "11:00", nil)
	repos.plan.SetStatus(context.Background(), p1.PlanID, model.PlanStatusFailed, strPtr("Course full"), nil)

	resp, err := svc.ResetStatuses(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("ResetStatuses 失败: %v", err)
	}
	if resp.ResetCount != 1 {
		t.Errorf("重置数 = %d, want 1", resp.ResetCount)
	}
	if got := repos.plan.statusOf(p1.PlanID); got != model.PlanStatusPlanned {
		t.Errorf("p1 状态 = %s, want planned", got)
	}
	if got := repos.plan.statusOf(p2.PlanID); got != model.PlanStatusPlanned {
		t.Errorf("p2 状态 = %s, want planned", got)
	}
}

func TestListPlans_Grouping(t *testing.T) {
	svc, repos := setupTestPlanService()
	repos.courseType.add("ct-main", "main", 2, 1)
	user := seedUser(repos, "alice", true)

	primary := seedPlan(repos, user.UserID, "ct-main", "ext-p", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)
	seedPlan(repos, user.UserID, "ct-main", "ext-b", model.PlanTypeBackup, "Tuesday", "10:00", "11:00", intPtr(1))

	resp, err := svc.List(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(resp.Primary) != 1 || len(resp.Backup) != 1 {
		t.Fatalf("分组 = (%d, %d), want (1, 1)", len(resp.Primary), len(resp.Backup))
	}
	if resp.Primary[0].ID != primary.PlanID {
		t.Errorf("正选 ID = %s, want %s", resp.Primary[0].ID, primary.PlanID)
	}
}

// [自证通过] internal/service/plan_service_test.go
