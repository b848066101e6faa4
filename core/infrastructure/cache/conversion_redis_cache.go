package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"convlog/common/database"
	"convlog/common/log"
	"convlog/core/domain/repository"
	"convlog/core/infrastructure/message/transfer"

	"github.com/redis/go-redis/v9"
)

const (
	redisRecordKey    = "convlog:record"
	redisConvertedKey = "convlog:stats:converted"
)

// ConversionRedisCache 多个 converter 节点共享 sourceHash -> recordID
type ConversionRedisCache struct {
	redis *database.RedisManager
	ttl   time.Duration
}

func NewConversionRedisCache(redis *database.RedisManager, ttl time.Duration) repository.ConversionCacheRepository {
	return &ConversionRedisCache{redis: redis, ttl: ttl}
}

func (c *ConversionRedisCache) GetRecordID(ctx context.Context, sourceHash string) (string, error) {
	id, err := c.redis.Get(ctx, fmt.Sprintf("%s:%s", redisRecordKey, sourceHash))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrCacheMiss
		}
		log.Error("redis 查询记录ID失败: %v", err)
		return "", transfer.ErrRedis
	}
	return id, nil
}

func (c *ConversionRedisCache) SetRecordID(ctx context.Context, sourceHash, recordID string) error {
	if err := c.redis.Set(ctx, fmt.Sprintf("%s:%s", redisRecordKey, sourceHash), recordID, c.ttl); err != nil {
		log.Error("redis 写入记录ID失败: %v", err)
		return transfer.ErrRedis
	}
	return nil
}

// IncrConverted 全局转换计数
func (c *ConversionRedisCache) IncrConverted(ctx context.Context) (int64, error) {
	n, err := c.redis.Incr(ctx, redisConvertedKey)
	if err != nil {
		return 0, transfer.ErrRedis
	}
	return n, nil
}
