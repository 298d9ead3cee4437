package forward

import (
	"regexp"
	"strings"

	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/telegram/models"
)

// urlPattern 匹配 scheme 前缀链接、www. 前缀链接以及 Telegram 深链域名
var urlPattern = regexp.MustCompile(`(?i)(\b(?:https?://|www\.)\S+|\b(?:t\.me|telegram\.me|telegram\.dog)/\S+)`)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	spaceAroundNL   = regexp.MustCompile(` ?\n ?`)
)

// SanitizeText 可选地移除链接并整理空白
// removeLinks 关闭时原样返回；清理后为空则返回空字符串
func SanitizeText(text string, removeLinks bool) string {
	if text == "" || !removeLinks {
		return text
	}

	cleaned := urlPattern.ReplaceAllString(text, "")
	cleaned = horizontalSpace.ReplaceAllString(cleaned, " ")
	cleaned = spaceAroundNL.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}

// BuildCaption 根据任务模板组装 caption
// 任务未配置模板时保留原 caption；纯文本消息用正文充当原文
func BuildCaption(msg *botModels.Message, task *models.ForwardTask) string {
	if task.Caption == "" {
		return msg.Caption
	}

	original := msg.Caption
	if msg.Text != "" && !HasMedia(msg) {
		original = msg.Text
	}

	if original != "" {
		return strings.TrimSpace(task.Caption + "\n\n" + original)
	}
	return task.Caption
}
