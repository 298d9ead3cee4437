package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User Bot 用户
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	TelegramID   int64              `bson:"telegram_id"`
	Username     string             `bson:"username,omitempty"`
	FirstName    string             `bson:"first_name,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
	LastActiveAt time.Time          `bson:"last_active_at"`
}
