package database

import (
	"context"
	"fmt"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// NewRedis 初始化与Redis偏好存储的连接并验证其可用性。
// 与SQLite句柄一样，客户端在进程启动时构造一次并显式注入。
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用Ping命令来测试连接是否成功
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("无法连接到Redis: %w", err)
	}

	fmt.Println("Redis 连接成功！")
	return rdb, nil
}
