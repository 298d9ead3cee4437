package telegram

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/logger"
	"channel_bot/internal/telegram/models"
)

// asyncHandler 中间件：将 handler 提交到工作池异步执行
func (b *Bot) asyncHandler(handler bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		b.pool.Submit(HandlerTask{
			Ctx:         ctx,
			BotInstance: botInstance,
			Update:      update,
			Handler:     handler,
		})
	}
}

// withUser 中间件：登记命令发起者的用户档案
func (b *Bot) withUser(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		if update.Message != nil && update.Message.From != nil {
			from := update.Message.From
			user := &models.User{
				TelegramID:   from.ID,
				Username:     from.Username,
				FirstName:    from.FirstName,
				LastActiveAt: time.Now(),
			}
			if err := b.userRepo.CreateOrUpdate(ctx, user); err != nil {
				logger.L().Warnf("Failed to upsert user %d: %v", from.ID, err)
			}
		}

		next(ctx, botInstance, update)
	}
}

// requireOwner 中间件：仅允许 Bot Owner 执行
func (b *Bot) requireOwner(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}

		if !b.isBotOwner(update.Message.From.ID) {
			logger.L().Warnf("Non-owner user %d attempted to use owner command", update.Message.From.ID)
			b.sendErrorMessage(ctx, update.Message.Chat.ID, "此命令仅限 Bot Owner 使用")
			return
		}

		next(ctx, botInstance, update)
	}
}

// isBotOwner 判断用户是否在 Owner 名单内
func (b *Bot) isBotOwner(userID int64) bool {
	for _, id := range b.ownerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
