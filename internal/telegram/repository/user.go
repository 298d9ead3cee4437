package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"channel_bot/internal/telegram/models"
)

// MongoUserRepository 用户数据访问层（MongoDB 实现）
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *mongo.Database) UserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

// CreateOrUpdate 注册或更新用户（按 telegram_id upsert）
func (r *MongoUserRepository) CreateOrUpdate(ctx context.Context, user *models.User) error {
	now := time.Now()

	filter := bson.M{"telegram_id": user.TelegramID}
	update := bson.M{
		"$set": bson.M{
			"username":       user.Username,
			"first_name":     user.FirstName,
			"updated_at":     now,
			"last_active_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// UpdateLastActive 更新用户最后活跃时间
func (r *MongoUserRepository) UpdateLastActive(ctx context.Context, telegramID int64) error {
	filter := bson.M{"telegram_id": telegramID}
	update := bson.M{"$set": bson.M{"last_active_at": time.Now()}}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}

// EnsureIndexes 确保索引存在
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "telegram_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}
