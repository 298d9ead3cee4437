package repository

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"channel_bot/internal/telegram/models"
)

func TestMongoActionLogRepositoryInsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success fills created_at", func(mt *mtest.T) {
		repo := &MongoActionLogRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		entry := &models.ActionLog{
			EventID:     "evt-1",
			ChannelID:   -1001,
			OwnerUserID: 7,
			Action:      models.ActionDuplicateDeleted,
			Meta:        map[string]interface{}{"message_id": 42},
		}
		if err := repo.Insert(context.Background(), entry); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if entry.CreatedAt.IsZero() {
			t.Fatalf("expected created_at to be filled")
		}
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := &MongoActionLogRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Name:    "WriteError",
			Message: "mock write failure",
		}))

		err := repo.Insert(context.Background(), &models.ActionLog{Action: models.ActionReplyCleanup})
		if err == nil {
			t.Fatalf("expected error but got nil")
		}
		if !strings.Contains(err.Error(), "failed to insert action log") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestMongoActionLogRepositoryEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := &MongoActionLogRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.EnsureIndexes(context.Background()); err != nil {
			t.Fatalf("EnsureIndexes failed: %v", err)
		}
	})

	mt.Run("index error", func(mt *mtest.T) {
		repo := &MongoActionLogRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "mock index error",
		}))

		err := repo.EnsureIndexes(context.Background())
		if err == nil {
			t.Fatalf("expected error but got nil")
		}
		if !strings.Contains(err.Error(), "failed to create action log indexes") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
