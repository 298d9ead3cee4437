package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// channelAPI 基于 go-telegram/bot 的平台操作适配器
// 同时满足自动化引擎的 ChannelAPI 和 MemberChecker 两个接口
type channelAPI struct {
	bot *bot.Bot
}

func newChannelAPI(b *bot.Bot) *channelAPI {
	return &channelAPI{bot: b}
}

// DeleteChatMessages 批量删除消息
func (a *channelAPI) DeleteChatMessages(ctx context.Context, chatID int64, messageIDs []int) error {
	if len(messageIDs) == 0 {
		return nil
	}
	ok, err := a.bot.DeleteMessages(ctx, &bot.DeleteMessagesParams{
		ChatID:     chatID,
		MessageIDs: messageIDs,
	})
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if !ok {
		return fmt.Errorf("delete messages rejected: chat_id=%d", chatID)
	}
	return nil
}

// EditCaption 修改媒体消息的 caption
func (a *channelAPI) EditCaption(ctx context.Context, chatID int64, messageID int, caption string) error {
	_, err := a.bot.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
		ChatID:    chatID,
		MessageID: messageID,
		Caption:   caption,
	})
	if err != nil {
		return fmt.Errorf("failed to edit caption: %w", err)
	}
	return nil
}

// EditText 修改文本消息的正文
func (a *channelAPI) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := a.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to edit text: %w", err)
	}
	return nil
}

// React 给消息添加一个 emoji 反应
func (a *channelAPI) React(ctx context.Context, chatID int64, messageID int, emoji string) error {
	_, err := a.bot.SetMessageReaction(ctx, &bot.SetMessageReactionParams{
		ChatID:    chatID,
		MessageID: messageID,
		Reaction: []botModels.ReactionType{
			{
				Type: botModels.ReactionTypeTypeEmoji,
				ReactionTypeEmoji: &botModels.ReactionTypeEmoji{
					Type:  "emoji",
					Emoji: emoji,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set reaction: %w", err)
	}
	return nil
}

// IsChatAdmin 查询用户是否为群组/频道的管理员或创建者
func (a *channelAPI) IsChatAdmin(ctx context.Context, chatID int64, userID int64) (bool, error) {
	member, err := a.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}
	if member == nil {
		return false, nil
	}
	return member.Type == botModels.ChatMemberTypeOwner ||
		member.Type == botModels.ChatMemberTypeAdministrator, nil
}
