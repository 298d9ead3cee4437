package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/logger"
	"channel_bot/internal/telegram/automation"
	"channel_bot/internal/telegram/forward"
)

// routeUpdate 默认 update 路由：频道消息先过自动化引擎，再喂给转发任务
// 命令消息由已注册的 handler 拦截，不会到达这里
func (b *Bot) routeUpdate(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	switch {
	case update.ChannelPost != nil:
		b.handleChannelPost(ctx, update.ChannelPost)
	case update.Message != nil:
		b.handleSourceMessage(ctx, update.Message)
	}
}

// handleChannelPost 处理频道发帖
func (b *Bot) handleChannelPost(ctx context.Context, post *botModels.Message) {
	incoming := incomingFromMessage(post)
	if incoming.Text == "" && incoming.Caption == "" && !incoming.HasMedia {
		// 服务消息（置顶、改名等）不进入引擎
		return
	}

	deleted := b.engine.HandleChannelMessage(ctx, incoming)
	if deleted {
		logger.L().Infof("Channel post removed as duplicate: channel_id=%d message_id=%d",
			post.Chat.ID, post.ID)
		return
	}

	b.runForwardTasks(ctx, post)
}

// handleSourceMessage 处理群组/私聊消息，仅用于驱动转发任务
func (b *Bot) handleSourceMessage(ctx context.Context, msg *botModels.Message) {
	if strings.HasPrefix(msg.Text, "/") {
		// 未注册的命令不转发
		return
	}
	b.runForwardTasks(ctx, msg)
}

// runForwardTasks 执行以该聊天为来源的所有转发任务
func (b *Bot) runForwardTasks(ctx context.Context, msg *botModels.Message) {
	tasks, err := b.taskRepo.ListBySource(ctx, msg.Chat.ID)
	if err != nil {
		logger.L().Errorf("Failed to list forward tasks: source_id=%d err=%v", msg.Chat.ID, err)
		return
	}

	for _, task := range tasks {
		newID, err := b.forwarder.Deliver(ctx, b.bot, task, msg)
		if err != nil {
			logger.L().Errorf("Forward task %d failed: source_id=%d message_id=%d err=%v",
				task.TaskID, msg.Chat.ID, msg.ID, err)
			continue
		}
		if newID != 0 {
			logger.L().Debugf("Forward task %d delivered message %d -> %d",
				task.TaskID, msg.ID, newID)
		}
	}
}

// incomingFromMessage 将平台消息转换为引擎事件
func incomingFromMessage(msg *botModels.Message) *automation.IncomingMessage {
	incoming := &automation.IncomingMessage{
		ChannelID:   msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        msg.Text,
		Caption:     msg.Caption,
		MediaFileID: forward.MediaFileID(msg),
		HasMedia:    forward.HasMedia(msg),
		SentAt:      time.Unix(int64(msg.Date), 0),
	}

	if msg.From != nil {
		incoming.SenderID = msg.From.ID
	}
	if msg.SenderChat != nil && msg.SenderChat.ID == msg.Chat.ID {
		incoming.SenderIsAnonymousAdmin = true
	}
	if msg.ReplyToMessage != nil {
		incoming.ReplyToMessageID = msg.ReplyToMessage.ID
		incoming.ReplyToSentAt = time.Unix(int64(msg.ReplyToMessage.Date), 0)
	}
	return incoming
}
