package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"convlog/common/config"
	"convlog/common/log"
	"convlog/core/container"
)

// Run 初始化容器 -> 启动 nats worker 与监控 -> 等待信号后优雅关闭
func Run(ctx context.Context, conf config.ConverterConfiguration) error {
	converterContainer, err := container.NewConverterContainer(conf)
	if err != nil {
		log.Error("converter 容器初始化失败: %v", err)
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := converterContainer.Worker.Run(ctx, conf.NatsConfig.URL); err != nil {
		log.Error("nats worker 启动失败: %v", err)
		_ = converterContainer.Close()
		return err
	}
	go converterContainer.Monitor.Start(ctx)
	log.Info("converter 服务启动, nodeID=%s, subject=%s, workers=%d", conf.ID, conf.Subject, conf.Workers)

	stop := func() {
		log.Info("正在关闭 converter 服务...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		done := make(chan struct{})
		go func() {
			if err := converterContainer.Close(); err != nil {
				log.Warn("关闭 converter 容器失败: %v", err)
			}
			close(done)
		}()

		select {
		case <-done:
			log.Info("converter 服务已关闭")
		case <-shutdownCtx.Done():
			log.Warn("关闭 converter 服务超时（5秒）")
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(c)
	for {
		select {
		case <-ctx.Done():
			stop()
			return nil
		case s := <-c:
			switch s {
			case syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT:
				stop()
				log.Info("中断信号，服务停止")
				return nil
			case syscall.SIGHUP:
				stop()
				log.Info("挂起信号，服务停止")
				return nil
			default:
				return nil
			}
		}
	}
}
