package app

import (
	"context"
	"fmt"
	"time"

	"channel_bot/internal/config"
	"channel_bot/internal/logger"
	"channel_bot/internal/mongo"
	"channel_bot/internal/telegram"
)

// App 应用服务容器
// 负责管理所有服务的生命周期（初始化、运行、关闭）
type App struct {
	MongoDB  *mongo.Client
	Telegram *telegram.Bot
}

// New 初始化应用及其所有服务
// 按顺序初始化各个服务，任何服务初始化失败都会返回错误
func New(cfg *config.Config) (*App, error) {
	app := &App{}

	mongoClient, err := mongo.NewClient(mongo.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDBName,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("init MongoDB failed: %w", err)
	}
	app.MongoDB = mongoClient
	logger.L().Info("MongoDB initialized successfully")

	bot, err := telegram.InitFromConfig(cfg, mongoClient.Database())
	if err != nil {
		_ = app.Close(context.Background())
		return nil, fmt.Errorf("init Telegram bot failed: %w", err)
	}
	app.Telegram = bot

	return app, nil
}

// Close 优雅关闭所有服务
// 应该在应用退出时调用，确保资源正确释放
func (a *App) Close(ctx context.Context) error {
	if a.Telegram != nil {
		if err := a.Telegram.Stop(ctx); err != nil {
			logger.L().Errorf("Failed to stop Telegram bot: %v", err)
		}
	}
	if a.MongoDB != nil {
		if err := a.MongoDB.Close(ctx); err != nil {
			return fmt.Errorf("close MongoDB failed: %w", err)
		}
	}
	return nil
}
