package forward

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/logger"
	"channel_bot/internal/telegram/models"
)

// Sender 转发管道依赖的发送操作，*bot.Bot 直接满足该接口
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*botModels.Message, error)
	CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*botModels.MessageID, error)
}

// Service 转发管道：过滤 → 去重 → 回复转换 → 文本清理 → 发送 → 登记
type Service struct {
	signatures *SignatureCache
	history    *HistoryLedger
}

// NewService 创建转发管道
func NewService() *Service {
	return &Service{
		signatures: NewSignatureCache(),
		history:    NewHistoryLedger(),
	}
}

// Deliver 按任务规则转发一条消息
// 返回目标端的消息 ID；被过滤或去重跳过时返回 0 且无错误
// 发送失败时不登记签名与历史，下次同样的消息仍会尝试转发
func (s *Service) Deliver(ctx context.Context, sender Sender, task *models.ForwardTask, msg *botModels.Message) (int, error) {
	if !MatchesFilter(msg, task) {
		return 0, nil
	}

	signature := ""
	if task.SkipDuplicates {
		signature = Signature(msg)
	}
	if signature != "" && s.signatures.Seen(task.TaskID, signature) {
		logger.L().Debugf("Skipping duplicate message: task_id=%d message_id=%d", task.TaskID, msg.ID)
		return 0, nil
	}

	repliedToID := 0
	if msg.ReplyToMessage != nil {
		repliedToID = msg.ReplyToMessage.ID
	}
	replyTo := s.history.FindForwardedReply(task, repliedToID)

	caption := SanitizeText(BuildCaption(msg, task), task.RemoveLinks)

	var sentID int
	if msg.Text != "" && !HasMedia(msg) {
		text := caption
		if text == "" {
			text = SanitizeText(msg.Text, task.RemoveLinks)
		}
		if strings.TrimSpace(text) == "" {
			return 0, nil
		}

		params := &bot.SendMessageParams{
			ChatID: task.TargetID,
			Text:   text,
		}
		if replyTo != 0 {
			params.ReplyParameters = &botModels.ReplyParameters{MessageID: replyTo}
		}
		sent, err := sender.SendMessage(ctx, params)
		if err != nil {
			logger.L().Errorf("Failed to forward message: task_id=%d message_id=%d err=%v", task.TaskID, msg.ID, err)
			return 0, err
		}
		sentID = sent.ID
	} else {
		params := &bot.CopyMessageParams{
			ChatID:     task.TargetID,
			FromChatID: msg.Chat.ID,
			MessageID:  msg.ID,
		}
		if caption != "" {
			params.Caption = caption
		}
		if replyTo != 0 {
			params.ReplyParameters = &botModels.ReplyParameters{MessageID: replyTo}
		}
		sent, err := sender.CopyMessage(ctx, params)
		if err != nil {
			logger.L().Errorf("Failed to copy message: task_id=%d message_id=%d err=%v", task.TaskID, msg.ID, err)
			return 0, err
		}
		sentID = sent.ID
	}

	// 仅在发送成功后登记，失败的尝试不污染缓存
	s.history.Register(task, msg.ID, sentID)
	if signature != "" {
		s.signatures.Remember(task.TaskID, signature)
	}
	return sentID, nil
}

// ForgetTask 任务删除时清空其去重签名缓存
// 转发历史账本保留，同配置重建任务后回复映射仍然有效
func (s *Service) ForgetTask(taskID int64) {
	s.signatures.Clear(taskID)
}
