package repository

import (
	"context"

	"channel_bot/internal/telegram/models"
)

// ChannelRepository 频道数据访问接口
type ChannelRepository interface {
	// CreateOrUpdate 注册或更新频道（按 channel_id upsert）
	CreateOrUpdate(ctx context.Context, channel *models.Channel) error

	// GetByChannelID 获取活跃的受管理频道
	GetByChannelID(ctx context.Context, channelID int64) (*models.Channel, error)

	// ListByOwner 列出用户管理的所有活跃频道
	ListByOwner(ctx context.Context, ownerUserID int64) ([]*models.Channel, error)

	// Remove 将频道标记为不活跃；返回是否有记录被更新
	Remove(ctx context.Context, ownerUserID, channelID int64) (bool, error)

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// SettingsRepository 频道自动化配置的数据访问接口
type SettingsRepository interface {
	// Ensure 确保频道存在配置文档，缺失时写入默认配置
	Ensure(ctx context.Context, channelID, ownerUserID int64) (*models.ChannelSettings, error)

	// Get 获取频道配置
	Get(ctx context.Context, channelID int64) (*models.ChannelSettings, error)

	// Update 整体替换频道配置
	Update(ctx context.Context, settings *models.ChannelSettings) error

	// Delete 删除频道配置（频道移除时调用）
	Delete(ctx context.Context, channelID int64) error

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// TaskRepository 转发任务数据访问接口
type TaskRepository interface {
	// Create 创建任务并分配 owner 内递增的任务序号
	Create(ctx context.Context, task *models.ForwardTask) error

	// Get 获取用户的指定任务
	Get(ctx context.Context, ownerID, taskID int64) (*models.ForwardTask, error)

	// ListByOwner 列出用户的全部任务
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.ForwardTask, error)

	// ListBySource 列出以该聊天为来源的全部任务
	ListBySource(ctx context.Context, sourceID int64) ([]*models.ForwardTask, error)

	// Update 更新任务
	Update(ctx context.Context, task *models.ForwardTask) error

	// Delete 删除任务；返回是否有记录被删除
	Delete(ctx context.Context, ownerID, taskID int64) (bool, error)

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// ActionLogRepository 自动化动作日志的数据访问接口
type ActionLogRepository interface {
	// Insert 写入一条动作日志
	Insert(ctx context.Context, entry *models.ActionLog) error

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	// CreateOrUpdate 注册或更新用户（按 telegram_id upsert）
	CreateOrUpdate(ctx context.Context, user *models.User) error

	// UpdateLastActive 更新用户最后活跃时间
	UpdateLastActive(ctx context.Context, telegramID int64) error

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}
