package automation

import (
	"sync"
	"time"

	"channel_bot/internal/telegram/models"
)

// windowCapacity 单个窗口保留的最大记录数
const windowCapacity = 500

// Record 近期消息记录，用于重复比对
type Record struct {
	ChannelID   int64
	MessageID   int
	Text        string // 归一化后的 text（或 caption）
	Caption     string // 归一化后的 caption
	MediaFileID string
	SentAt      time.Time
}

// recentWindow 有界消息窗口，满时淘汰最旧记录
type recentWindow struct {
	entries []Record
}

func (w *recentWindow) append(rec Record) {
	w.entries = append(w.entries, rec)
	if len(w.entries) > windowCapacity {
		w.entries = append(w.entries[:0], w.entries[1:]...)
	}
}

// trim 在匹配前按窗口策略裁剪：
// messages 窗口只保留最近 N 条，minutes 窗口丢弃超龄记录
func (w *recentWindow) trim(policy models.DuplicatePolicy, now time.Time) {
	switch policy.WindowType {
	case models.WindowMinutes:
		cutoff := now.Add(-time.Duration(policy.WindowValue) * time.Minute)
		drop := 0
		for drop < len(w.entries) && w.entries[drop].SentAt.Before(cutoff) {
			drop++
		}
		if drop > 0 {
			w.entries = append(w.entries[:0], w.entries[drop:]...)
		}
	default: // messages
		if extra := len(w.entries) - policy.WindowValue; extra > 0 {
			w.entries = append(w.entries[:0], w.entries[extra:]...)
		}
	}
}

// remove 删除指定消息的记录，不存在时为空操作
func (w *recentWindow) remove(channelID int64, messageID int) {
	for i, rec := range w.entries {
		if rec.MessageID == messageID && rec.ChannelID == channelID {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			return
		}
	}
}

// windowStore 按 key 组织的窗口集合，map 访问由自身互斥锁保护
// 窗口内容的串行化由调用方的 keyLocks 保证
type windowStore struct {
	mu      sync.Mutex
	windows map[int64]*recentWindow
}

func newWindowStore() *windowStore {
	return &windowStore{windows: make(map[int64]*recentWindow)}
}

func (s *windowStore) get(key int64) *recentWindow {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &recentWindow{}
		s.windows[key] = w
	}
	return w
}
