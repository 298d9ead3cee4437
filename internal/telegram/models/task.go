package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 媒体类型常量（消息恰好归入其中一类）
const (
	MediaTypeText      = "text"
	MediaTypePhoto     = "photo"
	MediaTypeVideo     = "video"
	MediaTypeAudio     = "audio"
	MediaTypeVoice     = "voice"
	MediaTypeDocument  = "document"
	MediaTypeAnimation = "animation"
	MediaTypeSticker   = "sticker"
	MediaTypeOther     = "other"

	// MediaTypeAll 通配：任务允许所有类型
	MediaTypeAll = "all"
)

// KnownMediaTypes 可配置到任务过滤器的类型（不含 other）
var KnownMediaTypes = []string{
	MediaTypeText, MediaTypePhoto, MediaTypeVideo, MediaTypeAudio,
	MediaTypeVoice, MediaTypeDocument, MediaTypeAnimation, MediaTypeSticker,
}

// ForwardTask 单条转发规则
type ForwardTask struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	TaskID         int64              `bson:"task_id"` // owner 内递增序号
	OwnerID        int64              `bson:"owner_id"`
	SourceID       int64              `bson:"source_id"`
	SourceName     string             `bson:"source_name"`
	TargetID       int64              `bson:"target_id"`
	TargetName     string             `bson:"target_name"`
	MediaTypes     []string           `bson:"media_types"` // 允许的类型集合，或 ["all"]
	Caption        string             `bson:"caption,omitempty"`
	ForwardReplies bool               `bson:"forward_replies"`
	MinMediaSize   *int64             `bson:"min_media_size,omitempty"` // 字节
	MaxMediaSize   *int64             `bson:"max_media_size,omitempty"` // 字节
	SkipDuplicates bool               `bson:"skip_duplicates"`
	RemoveLinks    bool               `bson:"remove_links"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// AllowsMediaType 判断类型过滤器是否放行该类别
// 空集合不放行任何消息；"other" 永远不会通过受限过滤器
func (t *ForwardTask) AllowsMediaType(category string) bool {
	if len(t.MediaTypes) == 0 {
		return false
	}
	for _, mt := range t.MediaTypes {
		if mt == MediaTypeAll {
			return true
		}
	}
	if category == MediaTypeOther {
		return false
	}
	for _, mt := range t.MediaTypes {
		if mt == category {
			return true
		}
	}
	return false
}
