package automation

import (
	"strconv"
	"strings"
	"time"

	"channel_bot/internal/telegram/models"
)

// RenderCaption 渲染 caption 模板
// 支持占位符 {channel_title} {channel_username} {message_id} {date}
func RenderCaption(template string, channel *models.Channel, messageID int, sentAt time.Time) string {
	username := ""
	if channel.Username != "" {
		username = "@" + channel.Username
	}

	replacer := strings.NewReplacer(
		"{channel_title}", channel.Title,
		"{channel_username}", username,
		"{message_id}", strconv.Itoa(messageID),
		"{date}", sentAt.Format("2006-01-02"),
	)
	return replacer.Replace(template)
}

// MergeCaption 将渲染后的模板合并到已有 caption 上
// 返回 false 表示应跳过该消息（skip 行为且已有 caption）
func MergeCaption(existing, rendered string, behavior models.CaptionBehavior) (string, bool) {
	if behavior == models.CaptionSkip && existing != "" {
		return "", false
	}
	if behavior == models.CaptionReplace || existing == "" {
		return rendered, true
	}
	return strings.TrimSpace(existing + "\n" + rendered), true
}
