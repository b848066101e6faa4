package container

import (
	"errors"

	"convlog/common/config"
	"convlog/common/database"
	"convlog/common/log"
)

// BaseContainer 基础容器，管理共享的数据库连接
type BaseContainer struct {
	mongo *database.MongoManager
	redis *database.RedisManager
}

// NewBase 创建基础容器，任一连接失败时释放已建立的连接
func NewBase(conf config.DatabaseConf) (*BaseContainer, error) {
	mongo, err := database.NewMongo(conf.MongoConf)
	if err != nil {
		return nil, err
	}
	redis, err := database.NewRedis(conf.RedisConf)
	if err != nil {
		_ = mongo.Close()
		return nil, err
	}

	log.Info("mongodb、redis 数据库服务启动成功")
	return &BaseContainer{
		mongo: mongo,
		redis: redis,
	}, nil
}

func (c *BaseContainer) GetMongo() *database.MongoManager {
	return c.mongo
}

func (c *BaseContainer) GetRedis() *database.RedisManager {
	return c.redis
}

// Close 关闭所有资源
func (c *BaseContainer) Close() error {
	e1 := c.mongo.Close()
	e2 := c.redis.Close()
	if e1 != nil {
		log.Error("mongo 关闭失败: %v", e1)
	}
	if e2 != nil {
		log.Error("redis 关闭失败: %v", e2)
	}
	return errors.Join(e1, e2)
}
