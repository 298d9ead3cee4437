package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"channel_bot/internal/telegram/models"
)

// MongoSettingsRepository 频道配置数据访问层（MongoDB 实现）
type MongoSettingsRepository struct {
	collection *mongo.Collection
}

// NewSettingsRepository 创建频道配置 Repository
func NewSettingsRepository(db *mongo.Database) SettingsRepository {
	return &MongoSettingsRepository{
		collection: db.Collection("channel_settings"),
	}
}

// Ensure 确保频道存在配置文档，缺失时写入默认配置
func (r *MongoSettingsRepository) Ensure(ctx context.Context, channelID, ownerUserID int64) (*models.ChannelSettings, error) {
	existing, err := r.Get(ctx, channelID)
	if err == nil {
		return existing, nil
	}

	settings := models.DefaultChannelSettings(channelID, ownerUserID)
	if _, err := r.collection.InsertOne(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to insert default settings: %w", err)
	}
	return settings, nil
}

// Get 获取频道配置
func (r *MongoSettingsRepository) Get(ctx context.Context, channelID int64) (*models.ChannelSettings, error) {
	var settings models.ChannelSettings

	err := r.collection.FindOne(ctx, bson.M{"channel_id": channelID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("settings not found for channel %d", channelID)
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// Update 整体替换频道配置
func (r *MongoSettingsRepository) Update(ctx context.Context, settings *models.ChannelSettings) error {
	settings.UpdatedAt = time.Now()

	filter := bson.M{"channel_id": settings.ChannelID}
	if _, err := r.collection.ReplaceOne(ctx, filter, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// Delete 删除频道配置
func (r *MongoSettingsRepository) Delete(ctx context.Context, channelID int64) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"channel_id": channelID}); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}

// EnsureIndexes 确保索引存在
func (r *MongoSettingsRepository) EnsureIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "channel_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create settings indexes: %w", err)
	}
	return nil
}
