package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"convlog/common/config"
	"convlog/common/database"
	"convlog/common/log"
	"convlog/common/utils"
	"convlog/core/infrastructure/cache"
	"convlog/core/infrastructure/message/node"
	"convlog/core/infrastructure/persistence"
	"convlog/runtime/convert/application"
	"convlog/runtime/convert/application/service/impl"
)

// ConverterContainer 转换节点的依赖：mongo、redis、本地缓存、nats worker
type ConverterContainer struct {
	*BaseContainer
	ConvertService *impl.ConvertServiceImpl
	Worker         *node.NatsWorker
	Monitor        *application.Monitor
	NodeID         string
	localCache     *cache.ConversionCache
	closed         bool
	mu             sync.Mutex
}

func NewConverterContainer(conf config.ConverterConfiguration) (*ConverterContainer, error) {
	base, err := NewBase(conf.DatabaseConf)
	if err != nil {
		return nil, fmt.Errorf("基础容器初始化失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conversionRepository := persistence.NewConversionRepository(base.mongo)
	if err := conversionRepository.EnsureIndexes(ctx); err != nil {
		log.Warn("创建 mongo 索引失败: %v", err)
	}

	localCache, err := cache.NewConversionCache(conf.CacheConf.MaxCost, time.Duration(conf.CacheConf.LocalTTL)*time.Second)
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	remoteCache := cache.NewConversionRedisCache(base.redis, time.Duration(conf.CacheConf.RedisTTL)*time.Second)

	convertService := impl.NewConvertService(conf.SkipBrokenKyoku,
		impl.WithRepository(conversionRepository),
		impl.WithRemoteCache(remoteCache),
		impl.WithLocalCache(localCache),
	)
	config.OnChange(func(cfg config.ConverterConfiguration) {
		convertService.SetSkipBrokenKyoku(cfg.SkipBrokenKyoku)
	})

	// 同一 subject 下的节点组成队列组，请求只会被其中一个节点处理
	natsClient := node.NewNatsClient(conf.Subject, config.ServerTypeConverter)
	limiter := utils.NewRateLimiter(conf.Rate, conf.Burst)
	worker := node.NewNatsWorker(natsClient, conf.ID, conf.Workers, limiter)
	worker.RegisterHandlers(application.Handlers(convertService))

	interval := time.Duration(conf.MonitorInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &ConverterContainer{
		BaseContainer:  base,
		ConvertService: convertService,
		Worker:         worker,
		Monitor:        application.NewMonitor(convertService.Stats(), worker, interval),
		NodeID:         conf.ID,
		localCache:     localCache,
	}, nil
}

// Close 关闭容器资源（幂等操作，可以安全地多次调用）
func (c *ConverterContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	var errs []error
	if c.Monitor != nil {
		c.Monitor.Stop()
	}
	if c.Worker != nil {
		if err := c.Worker.Close(); err != nil {
			log.Error("NatsWorker 关闭失败: %v", err)
			errs = append(errs, err)
		}
	}
	if c.localCache != nil {
		c.localCache.Close()
	}
	if c.BaseContainer != nil {
		if err := c.BaseContainer.Close(); err != nil {
			log.Error("BaseContainer 关闭失败: %v", err)
			errs = append(errs, err)
		}
	}

	c.closed = true

	if len(errs) > 0 {
		return fmt.Errorf("关闭资源时发生 %d 个错误", len(errs))
	}

	log.Info("ConverterContainer 已关闭")
	return nil
}

// NewShowService 只读场景（show 命令）只需要 mongo
func NewShowService(conf config.ConverterConfiguration) (*impl.ConvertServiceImpl, func() error, error) {
	mongo, err := database.NewMongo(conf.MongoConf)
	if err != nil {
		return nil, nil, err
	}
	svc := impl.NewConvertService(conf.SkipBrokenKyoku, impl.WithRepository(persistence.NewConversionRepository(mongo)))
	return svc, mongo.Close, nil
}
