package forward

import (
	"sync"

	"channel_bot/internal/telegram/models"
)

// forwardHistoryLimit 单个账本保留的映射数量上限
const forwardHistoryLimit = 5000

type historyKey struct {
	TaskID   int64
	SourceID int64
	TargetID int64
}

type forwardPair struct {
	OriginalID  int
	ForwardedID int
}

// HistoryLedger 原消息→已转发消息的映射账本
// 按 (task, source, target) 分键，FIFO 上限 5000，用于回复链接转换
type HistoryLedger struct {
	mu    sync.Mutex
	byKey map[historyKey][]forwardPair
}

// NewHistoryLedger 创建转发历史账本
func NewHistoryLedger() *HistoryLedger {
	return &HistoryLedger{byKey: make(map[historyKey][]forwardPair)}
}

func ledgerKey(task *models.ForwardTask) historyKey {
	return historyKey{TaskID: task.TaskID, SourceID: task.SourceID, TargetID: task.TargetID}
}

// Register 登记一次成功的转发
func (l *HistoryLedger) Register(task *models.ForwardTask, originalID, forwardedID int) {
	key := ledgerKey(task)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := append(l.byKey[key], forwardPair{OriginalID: originalID, ForwardedID: forwardedID})
	if len(history) > forwardHistoryLimit {
		history = history[1:]
	}
	l.byKey[key] = history
}

// FindForwardedReply 查找被回复消息在目标端的对应消息 ID
// 从最新记录向旧扫描；任务关闭回复转发或未找到时返回 0
func (l *HistoryLedger) FindForwardedReply(task *models.ForwardTask, repliedToID int) int {
	if !task.ForwardReplies || repliedToID == 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.byKey[ledgerKey(task)]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].OriginalID == repliedToID {
			return history[i].ForwardedID
		}
	}
	return 0
}
