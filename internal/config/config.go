package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config 应用程序配置
type Config struct {
	TelegramToken    string  // Telegram Bot API Token
	BotOwnerIDs      []int64 // Bot管理员ID列表（可接收运行报告）
	MongoURI         string  // MongoDB连接URI
	MongoDBName      string  // MongoDB数据库名称
	WorkerCount      int     // Handler 工作池协程数量
	WorkerQueueSize  int     // Handler 任务队列大小
	ActionLogEnabled bool    // 是否写入 action_logs 集合
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "channel_bot"
	}

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDBName:      mongoDBName,
		WorkerCount:      8,
		WorkerQueueSize:  256,
		ActionLogEnabled: true,
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	// 解析BOT_OWNER_IDS
	if ownerIDsStr := os.Getenv("BOT_OWNER_IDS"); ownerIDsStr != "" {
		ids, err := parseOwnerIDs(ownerIDsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse BOT_OWNER_IDS: %w", err)
		}
		cfg.BotOwnerIDs = ids
	}

	if workersStr := strings.TrimSpace(os.Getenv("WORKER_COUNT")); workersStr != "" {
		workers, err := strconv.Atoi(workersStr)
		if err != nil || workers < 1 {
			return nil, fmt.Errorf("invalid WORKER_COUNT: %s", workersStr)
		}
		cfg.WorkerCount = workers
	}

	if queueStr := strings.TrimSpace(os.Getenv("WORKER_QUEUE_SIZE")); queueStr != "" {
		size, err := strconv.Atoi(queueStr)
		if err != nil || size < 1 {
			return nil, fmt.Errorf("invalid WORKER_QUEUE_SIZE: %s", queueStr)
		}
		cfg.WorkerQueueSize = size
	}

	if enabledStr := strings.TrimSpace(os.Getenv("ACTION_LOG_ENABLED")); enabledStr != "" {
		value, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ACTION_LOG_ENABLED: %w", err)
		}
		cfg.ActionLogEnabled = value
	}

	return cfg, nil
}

// parseOwnerIDs 解析逗号分隔的用户ID字符串
// 支持格式: "123456789" 或 "123456789,987654321"
func parseOwnerIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid owner ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
