package models

import (
	"fmt"
	"strings"
	"time"
)

// 重复检测匹配条件
type DuplicateCriterion string

const (
	CriterionText      DuplicateCriterion = "text"
	CriterionCaption   DuplicateCriterion = "caption"
	CriterionMediaFile DuplicateCriterion = "media_file_id"
	CriterionFuzzyText DuplicateCriterion = "fuzzy_text"
)

// 重复检测窗口范围
type DuplicateScope string

const (
	ScopeChannel DuplicateScope = "channel" // 仅当前频道
	ScopeGlobal  DuplicateScope = "global"  // 同一 owner 的所有频道
)

// 重复检测窗口类型
type WindowType string

const (
	WindowMessages WindowType = "messages" // 按消息条数
	WindowMinutes  WindowType = "minutes"  // 按时间
)

// 重复消息处理策略
type DuplicateStrategy string

const (
	StrategyDeleteNew DuplicateStrategy = "delete_new" // 删除新消息
	StrategyDeleteOld DuplicateStrategy = "delete_old" // 删除旧消息
)

// 回复清理模式
type ReplyMode string

const (
	ReplyKeepLatest       ReplyMode = "keep_latest"
	ReplyDeleteAfterTime  ReplyMode = "delete_all_after_time"
	ReplyDeleteIfCountGtN ReplyMode = "delete_if_count_gt_n"
)

// 已有 caption 的处理方式
type CaptionBehavior string

const (
	CaptionAppend  CaptionBehavior = "append"
	CaptionReplace CaptionBehavior = "replace"
	CaptionSkip    CaptionBehavior = "skip"
)

// 自动反应的触发范围
type ReactionScope string

const (
	ReactAll        ReactionScope = "all"
	ReactMediaOnly  ReactionScope = "media_only"
	ReactAdminPosts ReactionScope = "admin_posts_only"
)

// DuplicatePolicy 重复消息检测配置
type DuplicatePolicy struct {
	Enabled     bool                 `bson:"enabled"`
	Criteria    []DuplicateCriterion `bson:"criteria"` // 按配置顺序逐一匹配
	Scope       DuplicateScope       `bson:"scope"`
	WindowType  WindowType           `bson:"window_type"`
	WindowValue int                  `bson:"window_value"`
	Strategy    DuplicateStrategy    `bson:"strategy"`
}

// ReplyPolicy 回复清理配置
type ReplyPolicy struct {
	Enabled            bool      `bson:"enabled"`
	Mode               ReplyMode `bson:"mode"`
	TimeLimitMinutes   int       `bson:"time_limit_minutes"`
	MaxReplies         int       `bson:"max_replies"`
	IgnoreAdminReplies bool      `bson:"ignore_admin_replies"`
}

// CaptionPolicy 自动 caption 配置
type CaptionPolicy struct {
	Enabled           bool            `bson:"enabled"`
	ApplyToMedia      bool            `bson:"apply_to_media"`
	ApplyToText       bool            `bson:"apply_to_text"`
	OnExistingCaption CaptionBehavior `bson:"on_existing_caption"`
	Template          string          `bson:"template"`
}

// ReactionPolicy 自动反应配置
type ReactionPolicy struct {
	Enabled bool          `bson:"enabled"`
	Emojis  []string      `bson:"emojis"`
	Scope   ReactionScope `bson:"scope"`
}

// ChannelSettings 单个频道的自动化配置
type ChannelSettings struct {
	ChannelID   int64           `bson:"channel_id"`
	OwnerUserID int64           `bson:"owner_user_id"`
	Duplicates  DuplicatePolicy `bson:"duplicates"`
	Replies     ReplyPolicy     `bson:"replies"`
	Caption     CaptionPolicy   `bson:"caption"`
	Reactions   ReactionPolicy  `bson:"reactions"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}

// DefaultChannelSettings 新频道的默认配置
func DefaultChannelSettings(channelID, ownerUserID int64) *ChannelSettings {
	now := time.Now()
	return &ChannelSettings{
		ChannelID:   channelID,
		OwnerUserID: ownerUserID,
		Duplicates: DuplicatePolicy{
			Enabled:     false,
			Criteria:    []DuplicateCriterion{CriterionText},
			Scope:       ScopeChannel,
			WindowType:  WindowMessages,
			WindowValue: 20,
			Strategy:    StrategyDeleteNew,
		},
		Replies: ReplyPolicy{
			Enabled:            false,
			Mode:               ReplyKeepLatest,
			TimeLimitMinutes:   60,
			MaxReplies:         3,
			IgnoreAdminReplies: true,
		},
		Caption: CaptionPolicy{
			Enabled:           false,
			ApplyToMedia:      true,
			OnExistingCaption: CaptionAppend,
		},
		Reactions: ReactionPolicy{
			Enabled: false,
			Emojis:  []string{"👍"},
			Scope:   ReactAll,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ParseCriterion 解析匹配条件字符串
func ParseCriterion(s string) (DuplicateCriterion, error) {
	switch DuplicateCriterion(strings.ToLower(strings.TrimSpace(s))) {
	case CriterionText:
		return CriterionText, nil
	case CriterionCaption:
		return CriterionCaption, nil
	case CriterionMediaFile:
		return CriterionMediaFile, nil
	case CriterionFuzzyText:
		return CriterionFuzzyText, nil
	}
	return "", fmt.Errorf("unknown criterion %q (valid: text, caption, media_file_id, fuzzy_text)", s)
}

// ParseCriteria 解析逗号分隔的匹配条件列表，保留配置顺序
func ParseCriteria(s string) ([]DuplicateCriterion, error) {
	parts := strings.Split(s, ",")
	criteria := make([]DuplicateCriterion, 0, len(parts))
	seen := make(map[DuplicateCriterion]bool, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCriterion(part)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		criteria = append(criteria, c)
	}
	if len(criteria) == 0 {
		return nil, fmt.Errorf("at least one criterion is required")
	}
	return criteria, nil
}

// ParseDuplicateScope 解析窗口范围
func ParseDuplicateScope(s string) (DuplicateScope, error) {
	switch DuplicateScope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeChannel:
		return ScopeChannel, nil
	case ScopeGlobal:
		return ScopeGlobal, nil
	}
	return "", fmt.Errorf("unknown scope %q (valid: channel, global)", s)
}

// ParseWindowType 解析窗口类型
func ParseWindowType(s string) (WindowType, error) {
	switch WindowType(strings.ToLower(strings.TrimSpace(s))) {
	case WindowMessages:
		return WindowMessages, nil
	case WindowMinutes:
		return WindowMinutes, nil
	}
	return "", fmt.Errorf("unknown window type %q (valid: messages, minutes)", s)
}

// ParseDuplicateStrategy 解析处理策略
func ParseDuplicateStrategy(s string) (DuplicateStrategy, error) {
	switch DuplicateStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyDeleteNew:
		return StrategyDeleteNew, nil
	case StrategyDeleteOld:
		return StrategyDeleteOld, nil
	}
	return "", fmt.Errorf("unknown strategy %q (valid: delete_new, delete_old)", s)
}

// ParseReplyMode 解析回复清理模式
func ParseReplyMode(s string) (ReplyMode, error) {
	switch ReplyMode(strings.ToLower(strings.TrimSpace(s))) {
	case ReplyKeepLatest:
		return ReplyKeepLatest, nil
	case ReplyDeleteAfterTime:
		return ReplyDeleteAfterTime, nil
	case ReplyDeleteIfCountGtN:
		return ReplyDeleteIfCountGtN, nil
	}
	return "", fmt.Errorf("unknown reply mode %q (valid: keep_latest, delete_all_after_time, delete_if_count_gt_n)", s)
}

// ParseCaptionBehavior 解析已有 caption 的处理方式
func ParseCaptionBehavior(s string) (CaptionBehavior, error) {
	switch CaptionBehavior(strings.ToLower(strings.TrimSpace(s))) {
	case CaptionAppend:
		return CaptionAppend, nil
	case CaptionReplace:
		return CaptionReplace, nil
	case CaptionSkip:
		return CaptionSkip, nil
	}
	return "", fmt.Errorf("unknown caption behavior %q (valid: append, replace, skip)", s)
}

// ParseReactionScope 解析自动反应范围
func ParseReactionScope(s string) (ReactionScope, error) {
	switch ReactionScope(strings.ToLower(strings.TrimSpace(s))) {
	case ReactAll:
		return ReactAll, nil
	case ReactMediaOnly:
		return ReactMediaOnly, nil
	case ReactAdminPosts:
		return ReactAdminPosts, nil
	}
	return "", fmt.Errorf("unknown reaction scope %q (valid: all, media_only, admin_posts_only)", s)
}

// Validate 校验配置的取值范围（在设置边界调用一次，引擎内部不再解释）
func (s *ChannelSettings) Validate() error {
	if s.Duplicates.Enabled {
		if len(s.Duplicates.Criteria) == 0 {
			return fmt.Errorf("duplicates: at least one criterion is required")
		}
		if s.Duplicates.WindowValue < 1 {
			return fmt.Errorf("duplicates: window value must be >= 1, got %d", s.Duplicates.WindowValue)
		}
	}
	if s.Replies.Enabled {
		if s.Replies.TimeLimitMinutes < 1 {
			return fmt.Errorf("replies: time limit must be >= 1 minute, got %d", s.Replies.TimeLimitMinutes)
		}
		if s.Replies.MaxReplies < 1 {
			return fmt.Errorf("replies: max replies must be >= 1, got %d", s.Replies.MaxReplies)
		}
	}
	if s.Reactions.Enabled && len(s.Reactions.Emojis) == 0 {
		return fmt.Errorf("reactions: at least one emoji is required")
	}
	return nil
}
