package talkfirst

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"talkfirst-planner/backend/config"
)

var (
	ErrLoginFailed = errors.New("TalkFirst 登录失败")
)

// RegistrationOutcome 单个课程槽位的报名结果
// 业务失败（如名额已满）与传输失败统一折叠为 Success=false + Message
type RegistrationOutcome struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RawResponse string `json:"raw_response,omitempty"` // 外部服务原始响应，仅用于审计
}

// Course TalkFirst 课程目录条目
type Course struct {
	ID            string `json:"id"`
	CourseCode    string `json:"course_code"`
	CourseName    string `json:"course_name"`
	ClassTypeName string `json:"class_type_name"` // MAIN-CLASS | FREE-TALK | SKILLACTIVITIES
	Lecturer      string `json:"lecturer"`
	Room          string `json:"room"`
	Day           string `json:"day"`
	TimeSlotLabel string `json:"time_slot_label"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

// Client TalkFirst 选课服务客户端接口
// 报名引擎只依赖该接口；测试中以脚本化 mock 注入确定性结果
type Client interface {
	// Login 登录换取 Token；任何错误对该用户的本轮报名都是终止性的
	Login(ctx context.Context, username, password string) (string, error)
	// RegisterSlot 报名指定课程槽位；业务层失败不作为 error 返回
	RegisterSlot(ctx context.Context, externalCourseID, token string) (*RegistrationOutcome, error)
	// ListCourses 拉取本周可选课程目录
	ListCourses(ctx context.Context, token string) ([]Course, error)
}

// HTTPClient Client 的真实网络实现
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewHTTPClient 创建 TalkFirst HTTP 客户端
func NewHTTPClient(cfg *config.TalkFirstConfig, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// ── 通用响应包络 ──

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("登录请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("解析登录响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK || env.Code != "200" {
		c.logger.Warn("TalkFirst 登录被拒绝",
			zap.String("username", username),
			zap.Int("status", resp.StatusCode),
			zap.String("code", env.Code),
		)
		return "", ErrLoginFailed
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		return "", ErrLoginFailed
	}

	return data.Token, nil
}

func (c *HTTPClient) RegisterSlot(ctx context.Context, externalCourseID, token string) (*RegistrationOutcome, error) {
	body, _ := json.Marshal(map[string]string{"id": externalCourseID})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		// 传输失败折叠为业务失败，由调用方记入审计
		return &RegistrationOutcome{Success: false, Message: err.Error()}, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &RegistrationOutcome{
			Success:     false,
			Message:     "外部服务响应无法解析",
			RawResponse: string(raw),
		}, nil
	}

	if resp.StatusCode == http.StatusOK && env.Code == "200" {
		return &RegistrationOutcome{
			Success:     true,
			Message:     "Registration successful",
			RawResponse: string(raw),
		}, nil
	}

	msg := env.Message
	if msg == "" {
		msg = "Session is full or unavailable"
	}
	return &RegistrationOutcome{
		Success:     false,
		Message:     msg,
		RawResponse: string(raw),
	}, nil
}

func (c *HTTPClient) ListCourses(ctx context.Context, token string) ([]Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/class/search", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("拉取课程目录失败: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("解析课程目录响应失败: %w", err)
	}
	if env.Code != "200" {
		return nil, fmt.Errorf("课程目录请求被拒绝: code=%s message=%s", env.Code, env.Message)
	}

	// TalkFirst 的目录条目是深度嵌套结构，仅取排课所需字段
	var items []struct {
		ID        string `json:"id"`
		Code      string `json:"code"`
		Name      string `json:"name"`
		ClassType struct {
			Key string `json:"key"`
		} `json:"classType"`
		Lecturer struct {
			Label string `json:"label"`
		} `json:"lecturer"`
		Room     string `json:"room"`
		Day      string `json:"day"`
		TimeSlot struct {
			Label string `json:"label"`
			From  string `json:"from"`
			To    string `json:"to"`
		} `json:"timeSlot"`
	}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("解析课程目录条目失败: %w", err)
	}

	courses := make([]Course, 0, len(items))
	for _, it := range items {
		courses = append(courses, Course{
			ID:            it.ID,
			CourseCode:    it.Code,
			CourseName:    it.Name,
			ClassTypeName: it.ClassType.Key,
			Lecturer:      it.Lecturer.Label,
			Room:          it.Room,
			Day:           it.Day,
			TimeSlotLabel: it.TimeSlot.Label,
			StartTime:     it.TimeSlot.From,
			EndTime:       it.TimeSlot.To,
		})
	}

	return courses, nil
}
