package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Consumer 后台消费者（events 模式下的 consumer.RequestConsumer）
type Consumer interface {
	Start(ctx context.Context) error
}

// App 组合 HTTP 服务与可选的请求流消费者
type App struct {
	server   *Server
	consumer Consumer
	logger   *zap.Logger

	shutdownTimeout time.Duration
}

// NewApp consumer 为 nil 时只提供 HTTP 接口
func NewApp(server *Server, consumer Consumer, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		server:          server,
		consumer:        consumer,
		logger:          logger,
		shutdownTimeout: 5 * time.Second,
	}
}

// Run 阻塞直到 ctx 取消或 HTTP 服务异常退出，然后停止 HTTP 服务并等待消费者退出
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.consumer.Start(ctx); err != nil {
				a.logger.Error("Placement request consumer stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		if runErr != nil {
			a.logger.Error("HTTP server failed", zap.Error(runErr))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer shutdownCancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown", zap.Error(err))
	}
	wg.Wait()
	return runErr
}
