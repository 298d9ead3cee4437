package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Channel 受管理的频道
type Channel struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ChannelID   int64              `bson:"channel_id"`    // Telegram 频道 ID
	OwnerUserID int64              `bson:"owner_user_id"` // 管理该频道的用户 ID
	Username    string             `bson:"username,omitempty"`
	Title       string             `bson:"title"`
	Active      bool               `bson:"active"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}
