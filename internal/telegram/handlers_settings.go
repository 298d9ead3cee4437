package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/telegram/models"
)

const duplicateUsage = `用法: /dup <channel_id> <子命令>

on | off - 开关重复检测
criteria <text,caption,media_file_id,fuzzy_text> - 匹配条件（按顺序逐一尝试）
scope <channel|global> - 检测范围
window <messages|minutes> <N> - 检测窗口
strategy <delete_new|delete_old> - 命中后的处理策略
status - 查看当前配置`

// handleDuplicateSettings 处理 /dup 命令
func (b *Bot) handleDuplicateSettings(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 3 {
		b.sendMessage(ctx, chatID, duplicateUsage)
		return
	}

	settings, err := b.ownedChannelSettings(ctx, update.Message.From.ID, parts[1])
	if err != nil {
		b.sendErrorMessage(ctx, chatID, err.Error())
		return
	}

	switch parts[2] {
	case "on":
		settings.Duplicates.Enabled = true
	case "off":
		settings.Duplicates.Enabled = false
	case "criteria":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /dup <channel_id> criteria text,media_file_id")
			return
		}
		criteria, err := models.ParseCriteria(strings.Join(parts[3:], ","))
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		settings.Duplicates.Criteria = criteria
	case "scope":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /dup <channel_id> scope <channel|global>")
			return
		}
		scope, err := models.ParseDuplicateScope(parts[3])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		settings.Duplicates.Scope = scope
	case "window":
		if len(parts) < 5 {
			b.sendErrorMessage(ctx, chatID, "用法: /dup <channel_id> window <messages|minutes> <N>")
			return
		}
		windowType, err := models.ParseWindowType(parts[3])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		value, err := strconv.Atoi(parts[4])
		if err != nil || value < 1 {
			b.sendErrorMessage(ctx, chatID, "窗口大小必须是正整数")
			return
		}
		settings.Duplicates.WindowType = windowType
		settings.Duplicates.WindowValue = value
	case "strategy":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /dup <channel_id> strategy <delete_new|delete_old>")
			return
		}
		strategy, err := models.ParseDuplicateStrategy(parts[3])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		settings.Duplicates.Strategy = strategy
	case "status":
		b.sendMessage(ctx, chatID, formatDuplicatePolicy(settings))
		return
	default:
		b.sendMessage(ctx, chatID, duplicateUsage)
		return
	}

	if b.saveSettings(ctx, chatID, settings) {
		b.sendSuccessMessage(ctx, chatID, "重复检测配置已更新")
	}
}

const replyUsage = `用法: /replies <channel_id> <子命令>

on | off - 开关回复清理
mode <keep_latest|delete_all_after_time|delete_if_count_gt_n> - 清理模式
time <分钟> - 时间上限（delete_all_after_time 模式）
max <N> - 保留条数（keep_latest / delete_if_count_gt_n 模式）
admins <ignore|include> - 是否豁免管理员的回复
status - 查看当前配置`

// handleReplySettings 处理 /replies 命令
func (b *Bot) handleReplySettings(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 3 {
		b.sendMessage(ctx, chatID, replyUsage)
		return
	}

	settings, err := b.ownedChannelSettings(ctx, update.Message.From.ID, parts[1])
	if err != nil {
		b.sendErrorMessage(ctx, chatID, err.Error())
		return
	}

	switch parts[2] {
	case "on":
		settings.Replies.Enabled = true
	case "off":
		settings.Replies.Enabled = false
	case "mode":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /replies <channel_id> mode <模式>")
			return
		}
		mode, err := models.ParseReplyMode(parts[3])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		settings.Replies.Mode = mode
	case "time":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /replies <channel_id> time <分钟>")
			return
		}
		minutes, err := strconv.Atoi(parts[3])
		if err != nil || minutes < 1 {
			b.sendErrorMessage(ctx, chatID, "时间上限必须是正整数（分钟）")
			return
		}
		settings.Replies.TimeLimitMinutes = minutes
	case "max":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /replies <channel_id> max <N>")
			return
		}
		max, err := strconv.Atoi(parts[3])
		if err != nil || max < 1 {
			b.sendErrorMessage(ctx, chatID, "保留条数必须是正整数")
			return
		}
		settings.Replies.MaxReplies = max
	case "admins":
		if len(parts) < 4 || (parts[3] != "ignore" && parts[3] != "include") {
			b.sendErrorMessage(ctx, chatID, "用法: /replies <channel_id> admins <ignore|include>")
			return
		}
		settings.Replies.IgnoreAdminReplies = parts[3] == "ignore"
	case "status":
		b.sendMessage(ctx, chatID, formatReplyPolicy(settings))
		return
	default:
		b.sendMessage(ctx, chatID, replyUsage)
		return
	}

	if b.saveSettings(ctx, chatID, settings) {
		b.sendSuccessMessage(ctx, chatID, "回复清理配置已更新")
	}
}

const captionUsage = `用法: /caption <channel_id> <子命令>

on | off - 开关自动 caption
template <文本> - 模板，支持 {channel_title} {channel_username} {message_id} {date}
target <media|text|both> - 应用到媒体消息 / 纯文本消息
existing <append|replace|skip> - 已有 caption 的处理方式
status - 查看当前配置`

// handleCaptionSettings 处理 /caption 命令
func (b *Bot) handleCaptionSettings(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 3 {
		b.sendMessage(ctx, chatID, captionUsage)
		return
	}

	settings, err := b.ownedChannelSettings(ctx, update.Message.From.ID, parts[1])
	if err != nil {
		b.sendErrorMessage(ctx, chatID, err.Error())
		return
	}

	switch parts[2] {
	case "on":
		settings.Caption.Enabled = true
	case "off":
		settings.Caption.Enabled = false
	case "template":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /caption <channel_id> template <文本>")
			return
		}
		settings.Caption.Template = strings.Join(parts[3:], " ")
	case "target":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /caption <channel_id> target <media|text|both>")
			return
		}
		switch parts[3] {
		case "media":
			settings.Caption.ApplyToMedia = true
			settings.Caption.ApplyToText = false
		case "text":
			settings.Caption.ApplyToMedia = false
			settings.Caption.ApplyToText = true
		case "both":
			settings.Caption.ApplyToMedia = true
			settings.Caption.ApplyToText = true
		default:
			b.sendErrorMessage(ctx, chatID, "用法: /caption <channel_id> target <media|text|both>")
			return
		}
	case "existing":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /caption <channel_id> existing <append|replace|skip>")
			return
		}
		behavior, err := models.ParseCaptionBehavior(parts[3])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		settings.Caption.OnExistingCaption = behavior
	case "status":
		b.sendMessage(ctx, chatID, formatCaptionPolicy(settings))
		return
	default:
		b.sendMessage(ctx, chatID, captionUsage)
		return
	}

	if b.saveSettings(ctx, chatID, settings) {
		b.sendSuccessMessage(ctx, chatID, "自动 caption 配置已更新")
	}
}

const reactionUsage = `用法: /reactions <channel_id> <子命令>

on | off - 开关自动反应
emojis <👍 🔥 ...> - 反应 emoji 列表（空格分隔）
scope <all|media_only|admin_posts_only> - 触发范围
status - 查看当前配置`

// handleReactionSettings 处理 /reactions 命令
func (b *Bot) handleReactionSettings(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 3 {
		b.sendMessage(ctx, chatID, reactionUsage)
		return
	}

	settings, err := b.ownedChannelSettings(ctx, update.Message.From.ID, parts[1])
	if err != nil {
		b.sendErrorMessage(ctx, chatID, err.Error())
		return
	}

	switch parts[2] {
	case "on":
		settings.Reactions.Enabled = true
	case "off":
		settings.Reactions.Enabled = false
	case "emojis":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /reactions <channel_id> emojis 👍 🔥")
			return
		}
		settings.Reactions.Emojis = parts[3:]
	case "scope":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /reactions <channel_id> scope <all|media_only|admin_posts_only>")
			return
		}
		scope, err := models.ParseReactionScope(parts[3])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		settings.Reactions.Scope = scope
	case "status":
		b.sendMessage(ctx, chatID, formatReactionPolicy(settings))
		return
	default:
		b.sendMessage(ctx, chatID, reactionUsage)
		return
	}

	if b.saveSettings(ctx, chatID, settings) {
		b.sendSuccessMessage(ctx, chatID, "自动反应配置已更新")
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "✅ 开启"
	}
	return "⛔️ 关闭"
}

func formatDuplicatePolicy(s *models.ChannelSettings) string {
	p := s.Duplicates
	criteria := make([]string, len(p.Criteria))
	for i, c := range p.Criteria {
		criteria[i] = string(c)
	}
	return fmt.Sprintf(
		"🔁 <b>重复检测</b>（频道 <code>%d</code>）\n\n状态: %s\n条件: %s\n范围: %s\n窗口: %d %s\n策略: %s",
		s.ChannelID, onOff(p.Enabled), strings.Join(criteria, ", "),
		p.Scope, p.WindowValue, p.WindowType, p.Strategy)
}

func formatReplyPolicy(s *models.ChannelSettings) string {
	p := s.Replies
	admins := "计入"
	if p.IgnoreAdminReplies {
		admins = "豁免"
	}
	return fmt.Sprintf(
		"🧹 <b>回复清理</b>（频道 <code>%d</code>）\n\n状态: %s\n模式: %s\n时间上限: %d 分钟\n保留条数: %d\n管理员回复: %s",
		s.ChannelID, onOff(p.Enabled), p.Mode, p.TimeLimitMinutes, p.MaxReplies, admins)
}

func formatCaptionPolicy(s *models.ChannelSettings) string {
	p := s.Caption
	targets := make([]string, 0, 2)
	if p.ApplyToMedia {
		targets = append(targets, "媒体")
	}
	if p.ApplyToText {
		targets = append(targets, "纯文本")
	}
	if len(targets) == 0 {
		targets = append(targets, "无")
	}
	template := p.Template
	if template == "" {
		template = "（未设置）"
	}
	return fmt.Sprintf(
		"🏷 <b>自动 Caption</b>（频道 <code>%d</code>）\n\n状态: %s\n应用到: %s\n已有 caption: %s\n模板: %s",
		s.ChannelID, onOff(p.Enabled), strings.Join(targets, " + "), p.OnExistingCaption, template)
}

func formatReactionPolicy(s *models.ChannelSettings) string {
	p := s.Reactions
	return fmt.Sprintf(
		"👍 <b>自动反应</b>（频道 <code>%d</code>）\n\n状态: %s\n范围: %s\nEmoji: %s",
		s.ChannelID, onOff(p.Enabled), p.Scope, strings.Join(p.Emojis, " "))
}
