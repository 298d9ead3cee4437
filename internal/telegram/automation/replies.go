package automation

import (
	"fmt"
	"sync"
	"time"

	"channel_bot/internal/telegram/models"
)

// replyQueueCapacity 单个回复队列保留的最大记录数
const replyQueueCapacity = 500

// ReplyRecord 回复记录
type ReplyRecord struct {
	MessageID int
	SenderID  int64
	IsAdmin   bool
	SentAt    time.Time
}

type replyKey struct {
	ChannelID int64
	RootID    int
}

// ReplyTracker 按 (频道, 根消息) 跟踪回复并计算应清理的消息
// 豁免记录（开启 ignore_admin_replies 时的管理员回复）永远不会被
// 标记删除，也不计入数量上限
type ReplyTracker struct {
	locks  *keyLocks
	mu     sync.Mutex
	queues map[replyKey][]ReplyRecord
}

// NewReplyTracker 创建回复跟踪器
func NewReplyTracker() *ReplyTracker {
	return &ReplyTracker{
		locks:  newKeyLocks(),
		queues: make(map[replyKey][]ReplyRecord),
	}
}

// Track 记录一条新回复并返回按当前策略应删除的消息 ID
// 被标记的记录已从队列移除；平台删除失败不回滚队列状态
// rootSentAt 为根消息发送时间，delete_all_after_time 模式下新回复
// 额外按根消息的年龄评估
func (t *ReplyTracker) Track(policy models.ReplyPolicy, channelID int64, rootID int, rec ReplyRecord, rootSentAt, now time.Time) []int {
	key := replyKey{ChannelID: channelID, RootID: rootID}
	unlock := t.locks.lock(fmt.Sprintf("r:%d:%d", channelID, rootID))
	defer unlock()

	queue := t.getQueue(key)
	queue = append(queue, rec)
	if len(queue) > replyQueueCapacity {
		queue = append(queue[:0], queue[1:]...)
	}

	exempt := func(r ReplyRecord) bool {
		return policy.IgnoreAdminReplies && r.IsAdmin
	}

	marked := make(map[int]bool)
	switch policy.Mode {
	case models.ReplyKeepLatest:
		// 仅保留最新一条，此前的非豁免记录全部标记
		for _, prev := range queue[:len(queue)-1] {
			if !exempt(prev) {
				marked[prev.MessageID] = true
			}
		}

	case models.ReplyDeleteAfterTime:
		limit := time.Duration(policy.TimeLimitMinutes) * time.Minute
		// 新回复额外按根消息的年龄评估
		if now.Sub(rootSentAt) > limit && !exempt(rec) {
			marked[rec.MessageID] = true
		}
		for _, prev := range queue {
			if now.Sub(prev.SentAt) > limit && !exempt(prev) {
				marked[prev.MessageID] = true
			}
		}

	case models.ReplyDeleteIfCountGtN:
		maxCount := policy.MaxReplies
		if maxCount < 1 {
			maxCount = 1
		}
		var countable []ReplyRecord
		for _, r := range queue {
			if !exempt(r) {
				countable = append(countable, r)
			}
		}
		// 超出上限时从最旧的开始标记
		for i := 0; len(countable)-i > maxCount; i++ {
			marked[countable[i].MessageID] = true
		}
	}

	if len(marked) == 0 {
		t.setQueue(key, queue)
		return nil
	}

	toDelete := make([]int, 0, len(marked))
	kept := queue[:0]
	for _, r := range queue {
		if marked[r.MessageID] {
			toDelete = append(toDelete, r.MessageID)
		} else {
			kept = append(kept, r)
		}
	}
	t.setQueue(key, kept)
	return toDelete
}

func (t *ReplyTracker) getQueue(key replyKey) []ReplyRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queues[key]
}

func (t *ReplyTracker) setQueue(key replyKey, queue []ReplyRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queues[key] = queue
}
