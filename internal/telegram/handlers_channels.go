package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/logger"
	"channel_bot/internal/telegram/models"
)

// handleAddChannel 处理 /addchannel 命令
// 要求发起者本人是该频道的管理员，Bot 也需已加入频道
func (b *Bot) handleAddChannel(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.sendErrorMessage(ctx, chatID,
			"用法: /addchannel <@username|channel_id>\n例如: /addchannel @mychannel")
		return
	}

	ref := parts[1]
	var chatRef any = ref
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		chatRef = id
	}

	chat, err := botInstance.GetChat(ctx, &bot.GetChatParams{ChatID: chatRef})
	if err != nil {
		logger.L().Warnf("Failed to resolve channel %q: %v", ref, err)
		b.sendErrorMessage(ctx, chatID, "无法访问该频道，请确认 Bot 已被添加为频道管理员")
		return
	}
	if chat.Type != "channel" {
		b.sendErrorMessage(ctx, chatID, "目标不是频道")
		return
	}

	member, err := botInstance.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chat.ID,
		UserID: update.Message.From.ID,
	})
	if err != nil || member == nil ||
		(member.Type != botModels.ChatMemberTypeOwner && member.Type != botModels.ChatMemberTypeAdministrator) {
		b.sendErrorMessage(ctx, chatID, "只有频道管理员才能将频道交给 Bot 管理")
		return
	}

	channel := &models.Channel{
		ChannelID:   chat.ID,
		OwnerUserID: update.Message.From.ID,
		Username:    chat.Username,
		Title:       chat.Title,
		Active:      true,
	}
	if err := b.channelRepo.CreateOrUpdate(ctx, channel); err != nil {
		logger.L().Errorf("Failed to save channel %d: %v", chat.ID, err)
		b.sendErrorMessage(ctx, chatID, "保存频道失败，请稍后重试")
		return
	}
	if _, err := b.settingsRepo.Ensure(ctx, chat.ID, update.Message.From.ID); err != nil {
		logger.L().Errorf("Failed to ensure settings for channel %d: %v", chat.ID, err)
	}

	b.sendSuccessMessage(ctx, chatID,
		fmt.Sprintf("频道 <b>%s</b> 已纳入管理（ID: <code>%d</code>）", chat.Title, chat.ID))
}

// handleListChannels 处理 /channels 命令
func (b *Bot) handleListChannels(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	channels, err := b.channelRepo.ListByOwner(ctx, update.Message.From.ID)
	if err != nil {
		logger.L().Errorf("Failed to list channels for user %d: %v", update.Message.From.ID, err)
		b.sendErrorMessage(ctx, chatID, "获取频道列表失败，请稍后重试")
		return
	}
	if len(channels) == 0 {
		b.sendMessage(ctx, chatID, "📭 还没有受管理的频道，使用 /addchannel 添加")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>我的频道</b>\n\n")
	for _, ch := range channels {
		sb.WriteString(fmt.Sprintf("• <b>%s</b> — <code>%d</code>", ch.Title, ch.ChannelID))
		if ch.Username != "" {
			sb.WriteString(" (@" + ch.Username + ")")
		}
		sb.WriteString("\n")
	}
	b.sendMessage(ctx, chatID, sb.String())
}

// handleRemoveChannel 处理 /removechannel 命令
func (b *Bot) handleRemoveChannel(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.sendErrorMessage(ctx, chatID, "用法: /removechannel <channel_id>")
		return
	}
	channelID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.sendErrorMessage(ctx, chatID, "无效的频道 ID")
		return
	}

	removed, err := b.channelRepo.Remove(ctx, update.Message.From.ID, channelID)
	if err != nil {
		logger.L().Errorf("Failed to remove channel %d: %v", channelID, err)
		b.sendErrorMessage(ctx, chatID, "移除频道失败，请稍后重试")
		return
	}
	if !removed {
		b.sendErrorMessage(ctx, chatID, "没有找到该频道，或你不是它的管理者")
		return
	}

	if err := b.settingsRepo.Delete(ctx, channelID); err != nil {
		logger.L().Warnf("Failed to delete settings for channel %d: %v", channelID, err)
	}

	b.sendSuccessMessage(ctx, chatID, fmt.Sprintf("频道 <code>%d</code> 已移除", channelID))
}

// ownedChannelSettings 解析命令中的频道 ID，校验归属后返回其配置
func (b *Bot) ownedChannelSettings(ctx context.Context, userID int64, arg string) (*models.ChannelSettings, error) {
	channelID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("无效的频道 ID")
	}

	channel, err := b.channelRepo.GetByChannelID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("没有找到该频道，请先使用 /addchannel 添加")
	}
	if channel.OwnerUserID != userID {
		return nil, fmt.Errorf("你不是该频道的管理者")
	}

	settings, err := b.settingsRepo.Ensure(ctx, channelID, channel.OwnerUserID)
	if err != nil {
		logger.L().Errorf("Failed to load settings for channel %d: %v", channelID, err)
		return nil, fmt.Errorf("读取频道配置失败，请稍后重试")
	}
	return settings, nil
}

// saveSettings 校验并保存频道配置
func (b *Bot) saveSettings(ctx context.Context, chatID int64, settings *models.ChannelSettings) bool {
	if err := settings.Validate(); err != nil {
		b.sendErrorMessage(ctx, chatID, err.Error())
		return false
	}
	if err := b.settingsRepo.Update(ctx, settings); err != nil {
		logger.L().Errorf("Failed to update settings for channel %d: %v", settings.ChannelID, err)
		b.sendErrorMessage(ctx, chatID, "保存配置失败，请稍后重试")
		return false
	}
	return true
}
