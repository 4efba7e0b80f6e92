package chat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// quotaKeyPrefix 是每日聊天配额计数器在Redis中的键名前缀
	quotaKeyPrefix = "chat:quota:"
	// quotaTTL 比一个自然日稍长，作为过期缓冲
	quotaTTL = 25 * time.Hour
)

// Quota 用Redis计数器限制每个用户每天的聊天次数。
// 键按用户和日期组合，计数器随当天结束自然过期。
type Quota struct {
	rdb   *redis.Client
	limit int
}

// NewQuota 创建每日配额限制器。limit<=0表示不限制。
func NewQuota(rdb *redis.Client, limit int) *Quota {
	return &Quota{rdb: rdb, limit: limit}
}

func quotaKey(userID uint, day string) string {
	return quotaKeyPrefix + strconv.FormatUint(uint64(userID), 10) + ":" + day
}

// Allow 为一次聊天请求记账并判断是否放行。
func (q *Quota) Allow(ctx context.Context, userID uint) (bool, error) {
	if q.limit <= 0 {
		return true, nil
	}

	key := quotaKey(userID, time.Now().Format("2006-01-02"))
	count, err := q.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("聊天配额计数失败: %w", err)
	}
	if count == 1 {
		// 首次计数时设置过期，键随当天结束自然消失
		q.rdb.Expire(ctx, key, quotaTTL)
	}
	return count <= int64(q.limit), nil
}
