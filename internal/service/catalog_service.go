package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"talkfirst-planner/backend/config"
	"talkfirst-planner/backend/internal/dto"
	"talkfirst-planner/backend/internal/repository"
	"talkfirst-planner/backend/pkg/talkfirst"
)

// ── 课程目录模块业务错误 ──

var ErrNoCredentials = errors.New("尚未配置 TalkFirst 选课凭据")

// CatalogCache 课程目录缓存
// 生产环境由 pkg/redis.Client 实现；为 nil 时每次直连外部服务
type CatalogCache interface {
	GetCatalogCache(ctx context.Context) (string, error)
	SetCatalogCache(ctx context.Context, payload string, ttl time.Duration) error
}

// CatalogService 课程目录代理接口
// 目录对所有用户相同，用 Redis 做全局短 TTL 缓存，避免面板频繁打外部 API
type CatalogService interface {
	ListCourses(ctx context.Context, userID string) (*dto.CatalogResponse, error)
}

type catalogService struct {
	cfg    *config.Config
	repo   *repository.Repository
	client talkfirst.Client
	cache  CatalogCache
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(
	cfg *config.Config,
	repo *repository.Repository,
	client talkfirst.Client,
	cache CatalogCache,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		cfg:    cfg,
		repo:   repo,
		client: client,
		cache:  cache,
		logger: logger,
	}
}

func (s *catalogService) ListCourses(ctx context.Context, userID string) (*dto.CatalogResponse, error) {
	// 1. 缓存命中直接返回
	if s.cache != nil {
		payload, err := s.cache.GetCatalogCache(ctx)
		if err != nil {
			s.logger.Warn("读取目录缓存失败", zap.Error(err))
		} else if payload != "" {
			var courses []talkfirst.Course
			if err := json.Unmarshal([]byte(payload), &courses); err == nil {
				return &dto.CatalogResponse{Courses: courses, Cached: true}, nil
			}
		}
	}

	// 2. 用当前用户的凭据登录外部服务拉取目录
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if user.TFUsername == nil || *user.TFUsername == "" {
		return nil, ErrNoCredentials
	}
	password := ""
	if user.TFPassword != nil {
		password = *user.TFPassword
	}

	token, err := s.client.Login(ctx, *user.TFUsername, password)
	if err != nil {
		return nil, err
	}

	courses, err := s.client.ListCourses(ctx, token)
	if err != nil {
		s.logger.Error("拉取课程目录失败", zap.Error(err))
		return nil, err
	}

	// 3. 回填缓存；失败只记日志
	if s.cache != nil {
		if payload, err := json.Marshal(courses); err == nil {
			if err := s.cache.SetCatalogCache(ctx, string(payload), s.cfg.Registration.CatalogCacheTTL); err != nil {
				s.logger.Warn("写入目录缓存失败", zap.Error(err))
			}
		}
	}

	return &dto.CatalogResponse{Courses: courses, Cached: false}, nil
}
