package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"talkfirst-planner/backend/internal/model"
	"talkfirst-planner/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRegistered = errors.New("本周期暂无已报成功的课程")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 课表导出业务接口
//
// 设计说明：
//   - 导出对象是当前用户本周期已报成功（registered）的课程
//   - Excel 为单 Sheet 列表；ICS 以下一次对应星期的日期生成事件，
//     供用户导入日历应用
//   - 均以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportScheduleExcel 导出已报课程为 Excel
	ExportScheduleExcel(ctx context.Context, userID string) (*bytes.Buffer, string, error)
	// ExportScheduleICS 导出已报课程为 iCalendar
	ExportScheduleICS(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// listRegistered 取该用户已报成功的课程，按星期+开始时间排序
func (s *exportService) listRegistered(ctx context.Context, userID string) ([]model.CoursePlan, error) {
	plans, err := s.repo.Plan.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询选课计划失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	var registered []model.CoursePlan
	for _, p := range plans {
		if p.Status == model.PlanStatusRegistered {
			registered = append(registered, p)
		}
	}
	if len(registered) == 0 {
		return nil, ErrExportNoRegistered
	}

	sort.SliceStable(registered, func(i, j int) bool {
		di, dj := dayIndex(registered[i].Day), dayIndex(registered[j].Day)
		if di != dj {
			return di < dj
		}
		return derefStr(registered[i].StartTime) < derefStr(registered[j].StartTime)
	})
	return registered, nil
}

// ════════════════════════════════════════════════════════════
// ExportScheduleExcel
// ════════════════════════════════════════════════════════════
//
// 格式: | 星期 | 时间 | 课程 | 类别 | 讲师 | 教室 |

func (s *exportService) ExportScheduleExcel(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	registered, err := s.listRegistered(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "本周课表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 28)
	f.SetColWidth(sheetName, "D", "D", 16)
	f.SetColWidth(sheetName, "E", "E", 18)
	f.SetColWidth(sheetName, "F", "F", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	headers := []string{"星期", "时间", "课程", "类别", "讲师", "教室"}
	for i, hd := range headers {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cellName, hd)
		f.SetCellStyle(sheetName, cellName, cellName, headerStyle)
	}

	// 数据行
	for row, p := range registered {
		timeText := derefStr(p.TimeSlotLabel)
		if timeText == "" && p.StartTime != nil && p.EndTime != nil {
			timeText = fmt.Sprintf("%s-%s", *p.StartTime, *p.EndTime)
		}
		typeText := ""
		if p.CourseType != nil {
			typeText = p.CourseType.DisplayName
		}

		values := []string{p.Day, timeText, p.CourseName, typeText, derefStr(p.Lecturer), derefStr(p.Room)}
		for col, v := range values {
			cellName, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cellName, v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// ExportScheduleICS
// ════════════════════════════════════════════════════════════

func (s *exportService) ExportScheduleICS(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	registered, err := s.listRegistered(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//talkfirst-planner//schedule//EN")

	now := time.Now()
	for _, p := range registered {
		if p.StartTime == nil || p.EndTime == nil {
			continue
		}

		date := nextWeekday(now, p.Day)
		start := atTimeOfDay(date, *p.StartTime)
		end := atTimeOfDay(date, *p.EndTime)

		event := cal.AddEvent(fmt.Sprintf("%s@talkfirst-planner", p.PlanID))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(p.CourseName)
		if p.Room != nil {
			event.SetLocation(*p.Room)
		}
		if p.Lecturer != nil {
			event.SetDescription(fmt.Sprintf("Lecturer: %s", *p.Lecturer))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("课表_%s.ics", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

var weekdayIndex = map[string]int{
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
	"Saturday":  6,
	"Sunday":    7,
}

func dayIndex(day string) int {
	if idx, ok := weekdayIndex[day]; ok {
		return idx
	}
	return 8
}

// nextWeekday 返回 from 之后（含当天）下一个指定星期的日期
func nextWeekday(from time.Time, day string) time.Time {
	target, ok := weekdayIndex[day]
	if !ok {
		return from
	}
	current := int(from.Weekday())
	if current == 0 {
		current = 7 // time.Sunday == 0
	}
	delta := (target - current + 7) % 7
	return from.AddDate(0, 0, delta)
}

func atTimeOfDay(date time.Time, hhmm string) time.Time {
	minutes := parseTimeToMinutes(hhmm)
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
