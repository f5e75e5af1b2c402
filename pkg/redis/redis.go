package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"talkfirst-planner/backend/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、课程目录缓存、报名周期互斥锁与登录限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 课程目录缓存 ──

const catalogKey = "talkfirst:catalog"

// GetCatalogCache 读取课程目录缓存，未命中返回 ("", nil)
func (c *Client) GetCatalogCache(ctx context.Context) (string, error) {
	val, err := c.rdb.Get(ctx, catalogKey).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetCatalogCache 写入课程目录缓存
func (c *Client) SetCatalogCache(ctx context.Context, payload string, ttl time.Duration) error {
	return c.rdb.Set(ctx, catalogKey, payload, ttl).Err()
}

// ── 报名周期互斥锁 ──

const cycleLockKey = "registration:cycle:lock"

// AcquireCycleLock 尝试获取报名周期锁
// 返回 false 表示已有周期在执行；TTL 作为进程崩溃后的兜底释放
func (c *Client) AcquireCycleLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, cycleLockKey, time.Now().Format(time.RFC3339), ttl).Result()
}

// ReleaseCycleLock 释放报名周期锁
func (c *Client) ReleaseCycleLock(ctx context.Context) error {
	return c.rdb.Del(ctx, cycleLockKey).Err()
}

// ── 限流 ──

// CheckRateLimit 固定窗口计数限流
// 窗口内首次访问时设置过期，超过 limit 返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, "rate_limit:"+key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, "rate_limit:"+key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
