package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/logger"
)

// registerHandlers 注册所有命令处理器（异步执行）
func (b *Bot) registerHandlers() {
	// 普通命令
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact,
		b.asyncHandler(b.withUser(b.handleStart)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact,
		b.asyncHandler(b.withUser(b.handleHelp)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/ping", bot.MatchTypeExact,
		b.asyncHandler(b.withUser(b.handlePing)))

	// Owner 命令
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact,
		b.asyncHandler(b.requireOwner(b.handleStats)))

	// 频道管理命令
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addchannel", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleAddChannel)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/channels", bot.MatchTypeExact,
		b.asyncHandler(b.withUser(b.handleListChannels)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/removechannel", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleRemoveChannel)))

	// 频道自动化配置命令
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/dup", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleDuplicateSettings)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/replies", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleReplySettings)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/caption", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleCaptionSettings)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reactions", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleReactionSettings)))

	// 转发任务命令
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newtask", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleNewTask)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/tasks", bot.MatchTypeExact,
		b.asyncHandler(b.withUser(b.handleListTasks)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/deltask", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleDeleteTask)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/task", bot.MatchTypePrefix,
		b.asyncHandler(b.withUser(b.handleEditTask)))

	logger.L().Debug("All handlers registered with async execution")
}

// handleStart 处理 /start 命令
func (b *Bot) handleStart(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 你好, %s!\n\n我可以帮你管理频道并在聊天之间转发消息。\n\n使用 /help 查看全部命令。",
		update.Message.From.FirstName,
	)
	b.sendMessage(ctx, update.Message.Chat.ID, welcomeText)
}

// handleHelp 处理 /help 命令
func (b *Bot) handleHelp(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	helpText := `📖 <b>可用命令</b>

<b>频道管理</b>
/addchannel &lt;@username|id&gt; - 添加受管理频道
/channels - 查看我的频道
/removechannel &lt;id&gt; - 移除频道

<b>频道自动化</b>
/dup &lt;channel_id&gt; ... - 重复消息检测设置
/replies &lt;channel_id&gt; ... - 回复清理设置
/caption &lt;channel_id&gt; ... - 自动 caption 设置
/reactions &lt;channel_id&gt; ... - 自动反应设置

<b>转发任务</b>
/newtask &lt;source_id&gt; &lt;target_id&gt; - 创建转发任务
/tasks - 查看我的任务
/task &lt;id&gt; ... - 修改任务
/deltask &lt;id&gt; - 删除任务

命令不带参数时会显示详细用法。`
	b.sendMessage(ctx, update.Message.Chat.ID, helpText)
}

// handlePing 处理 /ping 命令
func (b *Bot) handlePing(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	if update.Message.From != nil {
		_ = b.userRepo.UpdateLastActive(ctx, update.Message.From.ID)
	}

	b.sendMessage(ctx, update.Message.Chat.ID, "🏓 Pong!")
}

// handleStats 处理 /stats 命令（仅 Bot Owner）
func (b *Bot) handleStats(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	uptime := time.Since(b.startedAt).Round(time.Second)
	statsText := fmt.Sprintf(
		"📊 <b>运行状态</b>\n\n运行时长: %s\n队列积压: %d",
		uptime, b.pool.QueueDepth())
	b.sendMessage(ctx, update.Message.Chat.ID, statsText)
}
