package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"channel_bot/internal/app"
	"channel_bot/internal/config"
	"channel_bot/internal/logger"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("Failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		logger.L().Fatalf("Failed to initialize app: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 轮询循环阻塞运行，收到退出信号后返回
	_ = application.Telegram.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := application.Close(shutdownCtx); err != nil {
		logger.L().Errorf("Shutdown error: %v", err)
	}
	logger.L().Info("Bye")
}
