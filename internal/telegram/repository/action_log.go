package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"channel_bot/internal/telegram/models"
)

// MongoActionLogRepository 动作日志数据访问层（MongoDB 实现）
type MongoActionLogRepository struct {
	collection *mongo.Collection
}

// NewActionLogRepository 创建动作日志 Repository
func NewActionLogRepository(db *mongo.Database) ActionLogRepository {
	return &MongoActionLogRepository{
		collection: db.Collection("action_logs"),
	}
}

// Insert 写入一条动作日志
func (r *MongoActionLogRepository) Insert(ctx context.Context, entry *models.ActionLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert action log: %w", err)
	}
	return nil
}

// EnsureIndexes 确保索引存在
func (r *MongoActionLogRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "channel_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create action log indexes: %w", err)
	}
	return nil
}
