package automation

import (
	"fmt"
	"time"

	"channel_bot/internal/telegram/models"
)

// Decision 重复检测结论
type Decision int

const (
	// DecisionKeep 无重复，消息已记录并保留
	DecisionKeep Decision = iota
	// DecisionReject 新消息为重复，应删除新消息
	DecisionReject
	// DecisionKeepReplaced 保留新消息，命中的旧消息应删除
	DecisionKeepReplaced
)

// MatchResult 一次重复判定的结果
// Reject/KeepReplaced 时 Matched 与 Criterion 有效
type MatchResult struct {
	Decision  Decision
	Matched   Record
	Criterion models.DuplicateCriterion
}

// Detector 频道重复消息检测器
// 每个频道与每个 owner 各维护一个有界窗口；同一 key 上的判定与
// 窗口变更在持锁状态下完成，与平台删除调用分离
type Detector struct {
	locks    *keyLocks
	channels *windowStore // key: channel id
	owners   *windowStore // key: owner user id
}

// NewDetector 创建检测器
func NewDetector() *Detector {
	return &Detector{
		locks:    newKeyLocks(),
		channels: newWindowStore(),
		owners:   newWindowStore(),
	}
}

// Process 对候选消息做重复判定并提交窗口变更
// 返回结论后由调用方执行平台删除；删除失败不回滚窗口状态
func (d *Detector) Process(policy models.DuplicatePolicy, ownerID int64, rec Record, now time.Time) MatchResult {
	// 锁顺序固定：先频道窗口，后 owner 窗口
	unlock := d.locks.lock(channelKey(rec.ChannelID), ownerKey(ownerID))
	defer unlock()

	if !policy.Enabled {
		d.store(ownerID, rec)
		return MatchResult{Decision: DecisionKeep}
	}

	pool := d.channels.get(rec.ChannelID)
	if policy.Scope == models.ScopeGlobal {
		pool = d.owners.get(ownerID)
	}

	// 匹配前先按窗口策略裁剪
	pool.trim(policy, now)

	matched, criterion, ok := findMatch(rec, pool.entries, policy.Criteria)
	if !ok {
		d.store(ownerID, rec)
		return MatchResult{Decision: DecisionKeep}
	}

	if policy.Strategy == models.StrategyDeleteNew {
		// 不记录新消息
		return MatchResult{Decision: DecisionReject, Matched: matched, Criterion: criterion}
	}

	// delete_old：移除旧记录，登记新消息
	d.channels.get(matched.ChannelID).remove(matched.ChannelID, matched.MessageID)
	d.owners.get(ownerID).remove(matched.ChannelID, matched.MessageID)
	d.store(ownerID, rec)
	return MatchResult{Decision: DecisionKeepReplaced, Matched: matched, Criterion: criterion}
}

// store 将记录追加到频道窗口与 owner 全局窗口
func (d *Detector) store(ownerID int64, rec Record) {
	d.channels.get(rec.ChannelID).append(rec)
	d.owners.get(ownerID).append(rec)
}

// findMatch 从最新到最旧扫描候选，按配置顺序逐条测试匹配条件，
// 命中即停；候选集不包含待判定消息自身
func findMatch(rec Record, candidates []Record, criteria []models.DuplicateCriterion) (Record, models.DuplicateCriterion, bool) {
	for i := len(candidates) - 1; i >= 0; i-- {
		for _, criterion := range criteria {
			if matchesCriterion(rec, candidates[i], criterion) {
				return candidates[i], criterion, true
			}
		}
	}
	return Record{}, "", false
}

// matchesCriterion 两侧字段均非空且相等（fuzzy_text 为相似度达阈值）才算命中
func matchesCriterion(rec, candidate Record, criterion models.DuplicateCriterion) bool {
	switch criterion {
	case models.CriterionText:
		return rec.Text != "" && rec.Text == candidate.Text
	case models.CriterionCaption:
		return rec.Caption != "" && rec.Caption == candidate.Caption
	case models.CriterionMediaFile:
		return rec.MediaFileID != "" && rec.MediaFileID == candidate.MediaFileID
	case models.CriterionFuzzyText:
		if rec.Text == "" || candidate.Text == "" {
			return false
		}
		return similarityRatio(rec.Text, candidate.Text) >= fuzzyThreshold
	}
	return false
}

func channelKey(channelID int64) string { return fmt.Sprintf("c:%d", channelID) }
func ownerKey(ownerID int64) string     { return fmt.Sprintf("o:%d", ownerID) }
