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

// MongoTaskRepository 转发任务数据访问层（MongoDB 实现）
type MongoTaskRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewTaskRepository 创建转发任务 Repository
func NewTaskRepository(db *mongo.Database) TaskRepository {
	return &MongoTaskRepository{
		collection: db.Collection("forward_tasks"),
		counters:   db.Collection("counters"),
	}
}

// Create 创建任务并分配 owner 内递增的任务序号
func (r *MongoTaskRepository) Create(ctx context.Context, task *models.ForwardTask) error {
	taskID, err := r.nextTaskID(ctx, task.OwnerID)
	if err != nil {
		return err
	}

	now := time.Now()
	task.TaskID = taskID
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// nextTaskID 通过 counters 集合原子递增获得下一个任务序号
func (r *MongoTaskRepository) nextTaskID(ctx context.Context, ownerID int64) (int64, error) {
	filter := bson.M{"_id": fmt.Sprintf("task_seq:%d", ownerID)}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := r.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to allocate task id: %w", err)
	}
	return doc.Seq, nil
}

// Get 获取用户的指定任务
func (r *MongoTaskRepository) Get(ctx context.Context, ownerID, taskID int64) (*models.ForwardTask, error) {
	var task models.ForwardTask
	filter := bson.M{"owner_id": ownerID, "task_id": taskID}

	err := r.collection.FindOne(ctx, filter).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("task %d not found", taskID)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// ListByOwner 列出用户的全部任务
func (r *MongoTaskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.ForwardTask, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.M{"task_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.ForwardTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// ListBySource 列出以该聊天为来源的全部任务
func (r *MongoTaskRepository) ListBySource(ctx context.Context, sourceID int64) ([]*models.ForwardTask, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"source_id": sourceID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by source: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.ForwardTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// Update 更新任务
func (r *MongoTaskRepository) Update(ctx context.Context, task *models.ForwardTask) error {
	task.UpdatedAt = time.Now()

	filter := bson.M{"owner_id": task.OwnerID, "task_id": task.TaskID}
	if _, err := r.collection.ReplaceOne(ctx, filter, task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete 删除任务
func (r *MongoTaskRepository) Delete(ctx context.Context, ownerID, taskID int64) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"owner_id": ownerID, "task_id": taskID})
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// EnsureIndexes 确保索引存在
func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "task_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "source_id", Value: 1}},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}
