package automation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"channel_bot/internal/logger"
	"channel_bot/internal/telegram/models"
)

// ChannelAPI 引擎依赖的平台操作
// 所有调用失败都只记录日志，不会中断事件的后续处理
type ChannelAPI interface {
	DeleteChatMessages(ctx context.Context, chatID int64, messageIDs []int) error
	EditCaption(ctx context.Context, chatID int64, messageID int, caption string) error
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	React(ctx context.Context, chatID int64, messageID int, emoji string) error
}

// ChannelSource 受管理频道的查询接口
type ChannelSource interface {
	GetByChannelID(ctx context.Context, channelID int64) (*models.Channel, error)
}

// SettingsSource 频道配置的查询接口（每个事件重新读取，引擎不缓存）
type SettingsSource interface {
	Get(ctx context.Context, channelID int64) (*models.ChannelSettings, error)
}

// ActionSink 自动化动作日志的写入接口
type ActionSink interface {
	Insert(ctx context.Context, entry *models.ActionLog) error
}

// IncomingMessage 引擎消费的频道事件
type IncomingMessage struct {
	ChannelID              int64
	MessageID              int
	Text                   string
	Caption                string
	MediaFileID            string
	HasMedia               bool
	SenderID               int64 // 0 表示无来源用户（频道署名发帖）
	SenderIsAnonymousAdmin bool  // 以频道身份发帖
	ReplyToMessageID       int   // 0 表示非回复
	ReplyToSentAt          time.Time
	SentAt                 time.Time
}

// Engine 频道自动化引擎：重复检测、回复清理、自动 caption、自动反应
type Engine struct {
	api      ChannelAPI
	channels ChannelSource
	settings SettingsSource
	actions  ActionSink // 可为 nil（禁用动作日志）
	detector *Detector
	replies  *ReplyTracker
	admins   *AdminCache
}

// NewEngine 创建自动化引擎
func NewEngine(api ChannelAPI, channels ChannelSource, settings SettingsSource, actions ActionSink, admins *AdminCache) *Engine {
	return &Engine{
		api:      api,
		channels: channels,
		settings: settings,
		actions:  actions,
		detector: NewDetector(),
		replies:  NewReplyTracker(),
		admins:   admins,
	}
}

// HandleChannelMessage 处理一条频道消息，返回该消息是否已被删除
// 频道未被管理或配置缺失时视为全部功能关闭，消息原样放行
func (e *Engine) HandleChannelMessage(ctx context.Context, msg *IncomingMessage) bool {
	channel, err := e.channels.GetByChannelID(ctx, msg.ChannelID)
	if err != nil || channel == nil {
		return false
	}

	settings, err := e.settings.Get(ctx, msg.ChannelID)
	if err != nil || settings == nil {
		logger.L().Debugf("No settings for channel %d, skipping automation", msg.ChannelID)
		return false
	}

	eventID := uuid.NewString()

	if deleted := e.processDuplicates(ctx, eventID, channel, settings, msg); deleted {
		return true
	}
	e.processReplies(ctx, eventID, channel, settings, msg)
	e.processCaption(ctx, eventID, channel, settings, msg)
	e.processReactions(ctx, eventID, channel, settings, msg)
	return false
}

// processDuplicates 重复检测；返回 true 表示新消息已被删除
func (e *Engine) processDuplicates(ctx context.Context, eventID string, channel *models.Channel, settings *models.ChannelSettings, msg *IncomingMessage) bool {
	rec := buildRecord(msg)
	result := e.detector.Process(settings.Duplicates, channel.OwnerUserID, rec, time.Now())

	switch result.Decision {
	case DecisionReject:
		if err := e.api.DeleteChatMessages(ctx, msg.ChannelID, []int{msg.MessageID}); err != nil {
			logger.L().Errorf("Failed to delete duplicate message: channel_id=%d message_id=%d err=%v",
				msg.ChannelID, msg.MessageID, err)
		}
		e.logAction(ctx, eventID, channel, models.ActionDuplicateDeleted, map[string]interface{}{
			"message_id": msg.MessageID,
			"reason":     string(result.Criterion),
		})
		return true

	case DecisionKeepReplaced:
		if err := e.api.DeleteChatMessages(ctx, result.Matched.ChannelID, []int{result.Matched.MessageID}); err != nil {
			logger.L().Errorf("Failed to delete old duplicate: channel_id=%d message_id=%d err=%v",
				result.Matched.ChannelID, result.Matched.MessageID, err)
		}
		e.logAction(ctx, eventID, channel, models.ActionDuplicateOldDeleted, map[string]interface{}{
			"message_id": result.Matched.MessageID,
			"reason":     string(result.Criterion),
		})
	}
	return false
}

// processReplies 回复清理
func (e *Engine) processReplies(ctx context.Context, eventID string, channel *models.Channel, settings *models.ChannelSettings, msg *IncomingMessage) {
	policy := settings.Replies
	if !policy.Enabled || msg.ReplyToMessageID == 0 {
		return
	}

	// 仅在需要豁免时才解析管理员身份（懒查询，记忆化）
	isAdmin := false
	if policy.IgnoreAdminReplies && msg.SenderID != 0 {
		isAdmin = e.admins.IsAdmin(ctx, msg.ChannelID, msg.SenderID)
	}

	rootSentAt := msg.ReplyToSentAt
	if rootSentAt.IsZero() {
		rootSentAt = msg.SentAt
	}

	rec := ReplyRecord{
		MessageID: msg.MessageID,
		SenderID:  msg.SenderID,
		IsAdmin:   isAdmin,
		SentAt:    msg.SentAt,
	}
	toDelete := e.replies.Track(policy, msg.ChannelID, msg.ReplyToMessageID, rec, rootSentAt, time.Now())
	if len(toDelete) == 0 {
		return
	}

	if err := e.api.DeleteChatMessages(ctx, msg.ChannelID, toDelete); err != nil {
		logger.L().Errorf("Failed to delete replies: channel_id=%d count=%d err=%v",
			msg.ChannelID, len(toDelete), err)
	}
	e.logAction(ctx, eventID, channel, models.ActionReplyCleanup, map[string]interface{}{
		"deleted": toDelete,
	})
}

// processCaption 自动 caption
func (e *Engine) processCaption(ctx context.Context, eventID string, channel *models.Channel, settings *models.ChannelSettings, msg *IncomingMessage) {
	policy := settings.Caption
	if !policy.Enabled || policy.Template == "" {
		return
	}

	isTextPost := msg.Text != "" && !msg.HasMedia
	targetMedia := msg.HasMedia && policy.ApplyToMedia
	targetText := isTextPost && policy.ApplyToText
	if !targetMedia && !targetText {
		return
	}

	rendered := RenderCaption(policy.Template, channel, msg.MessageID, msg.SentAt)

	if targetMedia {
		updated, ok := MergeCaption(msg.Caption, rendered, policy.OnExistingCaption)
		if !ok {
			return
		}
		if err := e.api.EditCaption(ctx, msg.ChannelID, msg.MessageID, updated); err != nil {
			logger.L().Warnf("Failed to edit caption: channel_id=%d message_id=%d err=%v",
				msg.ChannelID, msg.MessageID, err)
			return
		}
	} else {
		updated, ok := MergeCaption(msg.Text, rendered, policy.OnExistingCaption)
		if !ok {
			return
		}
		if err := e.api.EditText(ctx, msg.ChannelID, msg.MessageID, updated); err != nil {
			logger.L().Warnf("Failed to edit text: channel_id=%d message_id=%d err=%v",
				msg.ChannelID, msg.MessageID, err)
			return
		}
	}

	e.logAction(ctx, eventID, channel, models.ActionCaptionApplied, map[string]interface{}{
		"message_id": msg.MessageID,
	})
}

// processReactions 自动反应
func (e *Engine) processReactions(ctx context.Context, eventID string, channel *models.Channel, settings *models.ChannelSettings, msg *IncomingMessage) {
	policy := settings.Reactions
	if !policy.Enabled || len(policy.Emojis) == 0 {
		return
	}

	if policy.Scope == models.ReactMediaOnly && !msg.HasMedia {
		return
	}
	if policy.Scope == models.ReactAdminPosts {
		senderIsAdmin := msg.SenderIsAnonymousAdmin
		if !senderIsAdmin && msg.SenderID != 0 {
			senderIsAdmin = e.admins.IsAdmin(ctx, msg.ChannelID, msg.SenderID)
		}
		if !senderIsAdmin {
			return
		}
	}

	for _, emoji := range policy.Emojis {
		if err := e.api.React(ctx, msg.ChannelID, msg.MessageID, emoji); err != nil {
			logger.L().Debugf("Failed to react: channel_id=%d message_id=%d emoji=%s err=%v",
				msg.ChannelID, msg.MessageID, emoji, err)
			continue
		}
	}

	e.logAction(ctx, eventID, channel, models.ActionReactionsAdded, map[string]interface{}{
		"message_id": msg.MessageID,
		"emojis":     policy.Emojis,
	})
}

// logAction 写入动作日志；失败仅记录，不影响事件处理
func (e *Engine) logAction(ctx context.Context, eventID string, channel *models.Channel, action string, meta map[string]interface{}) {
	if e.actions == nil {
		return
	}
	entry := &models.ActionLog{
		EventID:     eventID,
		ChannelID:   channel.ChannelID,
		OwnerUserID: channel.OwnerUserID,
		Action:      action,
		Meta:        meta,
		CreatedAt:   time.Now(),
	}
	if err := e.actions.Insert(ctx, entry); err != nil {
		logger.L().Warnf("Failed to insert action log: channel_id=%d action=%s err=%v",
			channel.ChannelID, action, err)
	}
}

// buildRecord 提取消息的比对字段：text/caption 做 trim+lower 归一化
func buildRecord(msg *IncomingMessage) Record {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	return Record{
		ChannelID:   msg.ChannelID,
		MessageID:   msg.MessageID,
		Text:        strings.ToLower(strings.TrimSpace(text)),
		Caption:     strings.ToLower(strings.TrimSpace(msg.Caption)),
		MediaFileID: msg.MediaFileID,
		SentAt:      msg.SentAt,
	}
}
