package automation

import (
	"context"
	"sync"

	"channel_bot/internal/logger"
)

// MemberChecker 查询用户在频道中是否为管理员
type MemberChecker interface {
	IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

type adminKey struct {
	ChannelID int64
	UserID    int64
}

// AdminCache 管理员身份缓存
// 无过期时间，进程生命周期内有效；查询失败按非管理员处理
type AdminCache struct {
	mu      sync.Mutex
	checker MemberChecker
	values  map[adminKey]bool
}

// NewAdminCache 创建管理员身份缓存
func NewAdminCache(checker MemberChecker) *AdminCache {
	return &AdminCache{
		checker: checker,
		values:  make(map[adminKey]bool),
	}
}

// IsAdmin 返回用户是否为频道管理员，结果记忆化
func (c *AdminCache) IsAdmin(ctx context.Context, channelID, userID int64) bool {
	key := adminKey{ChannelID: channelID, UserID: userID}

	c.mu.Lock()
	cached, ok := c.values[key]
	c.mu.Unlock()
	if ok {
		return cached
	}

	isAdmin, err := c.checker.IsChatAdmin(ctx, channelID, userID)
	if err != nil {
		logger.L().Warnf("Admin status lookup failed: channel_id=%d user_id=%d err=%v", channelID, userID, err)
		return false
	}

	c.mu.Lock()
	c.values[key] = isAdmin
	c.mu.Unlock()
	return isAdmin
}
