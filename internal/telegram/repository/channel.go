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

// MongoChannelRepository 频道数据访问层（MongoDB 实现）
type MongoChannelRepository struct {
	collection *mongo.Collection
}

// NewChannelRepository 创建频道 Repository
func NewChannelRepository(db *mongo.Database) ChannelRepository {
	return &MongoChannelRepository{
		collection: db.Collection("channels"),
	}
}

// CreateOrUpdate 注册或更新频道（按 channel_id upsert）
func (r *MongoChannelRepository) CreateOrUpdate(ctx context.Context, channel *models.Channel) error {
	now := time.Now()

	filter := bson.M{"channel_id": channel.ChannelID}
	update := bson.M{
		"$set": bson.M{
			"owner_user_id": channel.OwnerUserID,
			"username":      channel.Username,
			"title":         channel.Title,
			"active":        true,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}
	return nil
}

// GetByChannelID 获取活跃的受管理频道
func (r *MongoChannelRepository) GetByChannelID(ctx context.Context, channelID int64) (*models.Channel, error) {
	var channel models.Channel
	filter := bson.M{"channel_id": channelID, "active": true}

	err := r.collection.FindOne(ctx, filter).Decode(&channel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("channel not found: %d", channelID)
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return &channel, nil
}

// ListByOwner 列出用户管理的所有活跃频道
func (r *MongoChannelRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]*models.Channel, error) {
	filter := bson.M{"owner_user_id": ownerUserID, "active": true}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer cursor.Close(ctx)

	var channels []*models.Channel
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}
	return channels, nil
}

// Remove 将频道标记为不活跃
func (r *MongoChannelRepository) Remove(ctx context.Context, ownerUserID, channelID int64) (bool, error) {
	filter := bson.M{"channel_id": channelID, "owner_user_id": ownerUserID}
	update := bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to remove channel: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// EnsureIndexes 确保索引存在
func (r *MongoChannelRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "channel_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_user_id", Value: 1}},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create channel indexes: %w", err)
	}
	return nil
}
