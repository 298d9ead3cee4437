package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 自动化动作类型
const (
	ActionDuplicateDeleted    = "duplicate_deleted"
	ActionDuplicateOldDeleted = "duplicate_old_deleted"
	ActionReplyCleanup        = "reply_cleanup"
	ActionCaptionApplied      = "caption_applied"
	ActionReactionsAdded      = "reactions_added"
)

// ActionLog 自动化动作日志
type ActionLog struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty"`
	EventID     string                 `bson:"event_id"` // 单次处理的关联 ID
	ChannelID   int64                  `bson:"channel_id"`
	OwnerUserID int64                  `bson:"owner_user_id"`
	Action      string                 `bson:"action"`
	Meta        map[string]interface{} `bson:"meta,omitempty"`
	CreatedAt   time.Time              `bson:"created_at"`
}
