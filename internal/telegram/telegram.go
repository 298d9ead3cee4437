package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"go.mongodb.org/mongo-driver/mongo"

	"channel_bot/internal/config"
	"channel_bot/internal/logger"
	"channel_bot/internal/telegram/automation"
	"channel_bot/internal/telegram/forward"
	"channel_bot/internal/telegram/repository"
)

// Config Telegram Bot 配置
type Config struct {
	Token            string  // Bot Token
	OwnerIDs         []int64 // Bot 管理员用户 IDs
	Workers          int     // 工作池协程数量
	QueueSize        int     // 工作池队列大小
	ActionLogEnabled bool    // 是否写入动作日志
	Debug            bool    // 是否开启调试模式
}

// Bot Telegram Bot 服务
type Bot struct {
	bot       *bot.Bot
	db        *mongo.Database
	ownerIDs  []int64
	pool      *WorkerPool
	startedAt time.Time

	channelRepo  repository.ChannelRepository
	settingsRepo repository.SettingsRepository
	taskRepo     repository.TaskRepository
	logRepo      repository.ActionLogRepository
	userRepo     repository.UserRepository

	engine    *automation.Engine
	forwarder *forward.Service
}

// New 创建 Telegram Bot 实例
func New(cfg Config, db *mongo.Database) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token cannot be empty")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 8
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 256
	}

	telegramBot := &Bot{
		db:           db,
		ownerIDs:     cfg.OwnerIDs,
		startedAt:    time.Now(),
		channelRepo:  repository.NewChannelRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		taskRepo:     repository.NewTaskRepository(db),
		userRepo:     repository.NewUserRepository(db),
		forwarder:    forward.NewService(),
	}
	if cfg.ActionLogEnabled {
		telegramBot.logRepo = repository.NewActionLogRepository(db)
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(telegramBot.asyncHandler(telegramBot.routeUpdate)),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	telegramBot.bot = b

	// 平台适配器就绪后再组装自动化引擎
	api := newChannelAPI(b)
	var actions automation.ActionSink
	if telegramBot.logRepo != nil {
		actions = telegramBot.logRepo
	}
	telegramBot.engine = automation.NewEngine(
		api,
		telegramBot.channelRepo,
		telegramBot.settingsRepo,
		actions,
		automation.NewAdminCache(api),
	)

	telegramBot.pool = NewWorkerPool(cfg.Workers, cfg.QueueSize)
	telegramBot.registerHandlers()

	if err := telegramBot.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	logger.L().Info("Telegram bot initialized successfully")
	return telegramBot, nil
}

// InitFromConfig 从应用配置初始化 Telegram Bot
func InitFromConfig(cfg *config.Config, db *mongo.Database) (*Bot, error) {
	telegramCfg := Config{
		Token:            cfg.TelegramToken,
		OwnerIDs:         cfg.BotOwnerIDs,
		Workers:          cfg.WorkerCount,
		QueueSize:        cfg.WorkerQueueSize,
		ActionLogEnabled: cfg.ActionLogEnabled,
	}
	return New(telegramCfg, db)
}

// Start 启动 Bot（阻塞式，应在 goroutine 中运行）
func (b *Bot) Start(ctx context.Context) error {
	logger.L().Info("Starting Telegram bot...")
	b.bot.Start(ctx)
	logger.L().Info("Telegram bot stopped")
	return nil
}

// Stop 停止 Bot 并等待工作池排空
func (b *Bot) Stop(ctx context.Context) error {
	logger.L().Info("Stopping Telegram bot...")
	b.pool.Shutdown()
	return nil
}

// ensureIndexes 确保所有数据库索引存在
func (b *Bot) ensureIndexes(ctx context.Context) error {
	if err := b.channelRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure channel indexes: %w", err)
	}
	if err := b.settingsRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure settings indexes: %w", err)
	}
	if err := b.taskRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure task indexes: %w", err)
	}
	if err := b.userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure user indexes: %w", err)
	}
	if b.logRepo != nil {
		if err := b.logRepo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to ensure action log indexes: %w", err)
		}
	}

	logger.L().Debug("All indexes ensured")
	return nil
}
