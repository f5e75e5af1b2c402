package dto

import "talkfirst-planner/backend/pkg/talkfirst"

// ── 课程目录模块 DTO ──

// CatalogResponse 课程目录响应
type CatalogResponse struct {
	Courses []talkfirst.Course `json:"courses"`
	Cached  bool               `json:"cached"` // 是否命中 Redis 缓存
}
