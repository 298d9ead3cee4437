package forward

import (
	"strings"
	"sync"

	botModels "github.com/go-telegram/bot/models"
)

// signatureHistoryLimit 每个任务保留的签名数量上限
const signatureHistoryLimit = 1000

// Signature 计算消息的去重签名
// 纯文本消息为 "text:"+正文；携带可识别媒体的消息为 "media:"+文件
// 唯一标识；两者都不满足时返回空串（该消息不参与去重）
func Signature(msg *botModels.Message) string {
	if msg.Text != "" && !HasMedia(msg) {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return ""
		}
		return "text:" + text
	}

	if uid := mediaFileUniqueID(msg); uid != "" {
		return "media:" + uid
	}
	return ""
}

// mediaFileUniqueID 返回媒体附件的稳定唯一标识
func mediaFileUniqueID(msg *botModels.Message) string {
	switch {
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileUniqueID
	case msg.Video != nil:
		return msg.Video.FileUniqueID
	case msg.Document != nil:
		return msg.Document.FileUniqueID
	case msg.Animation != nil:
		return msg.Animation.FileUniqueID
	case msg.Audio != nil:
		return msg.Audio.FileUniqueID
	case msg.Voice != nil:
		return msg.Voice.FileUniqueID
	case msg.VideoNote != nil:
		return msg.VideoNote.FileUniqueID
	case msg.Sticker != nil:
		return msg.Sticker.FileUniqueID
	}
	return ""
}

// SignatureCache 每任务的去重签名缓存（FIFO，容量 1000）
// 只做存在性判断；重复插入同一签名不再去重，仅触发容量裁剪
type SignatureCache struct {
	mu     sync.Mutex
	byTask map[int64][]string
}

// NewSignatureCache 创建签名缓存
func NewSignatureCache() *SignatureCache {
	return &SignatureCache{byTask: make(map[int64][]string)}
}

// Seen 任务是否已见过该签名
func (c *SignatureCache) Seen(taskID int64, signature string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.byTask[taskID] {
		if s == signature {
			return true
		}
	}
	return false
}

// Remember 登记签名，超出容量时淘汰最旧的
func (c *SignatureCache) Remember(taskID int64, signature string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := append(c.byTask[taskID], signature)
	for len(history) > signatureHistoryLimit {
		history = history[1:]
	}
	c.byTask[taskID] = history
}

// Clear 删除任务的全部签名（任务被删除时调用）
func (c *SignatureCache) Clear(taskID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byTask, taskID)
}
