package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"copier_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestCopyRecordRepositoryCreateRecord(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := &copyRecordRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		record := &models.CopyRecord{
			JobID:           "job-1",
			SourceChat:      "-1002345678901",
			SourceMessageID: 100,
			TargetGroupID:   -100900,
			TopicThreadID:   42,
			CopiedMessageID: 7,
			Status:          models.CopyStatusCopied,
		}

		if err := repo.CreateRecord(context.Background(), record); err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
		if record.CreatedAt.IsZero() {
			t.Fatalf("expected created_at to be set")
		}
	})

	mt.Run("insert error", func(mt *mtest.T) {
		repo := &copyRecordRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "mock duplicate key",
		}))

		err := repo.CreateRecord(context.Background(), &models.CopyRecord{
			JobID:           "job-1",
			SourceMessageID: 100,
			Status:          models.CopyStatusCopied,
		})
		if err == nil {
			t.Fatalf("expected error but got nil")
		}
		if !strings.Contains(err.Error(), "failed to create copy record") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCopyRecordRepositoryListByJobID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := &copyRecordRepository{collection: mt.Coll}
		now := time.Now().UTC().Truncate(time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(
			0,
			copyRecordNamespace(mt),
			mtest.FirstBatch,
			bson.D{
				{Key: "job_id", Value: "job-1"},
				{Key: "source_message_id", Value: int64(100)},
				{Key: "status", Value: models.CopyStatusCopied},
				{Key: "created_at", Value: now},
			},
			bson.D{
				{Key: "job_id", Value: "job-1"},
				{Key: "source_message_id", Value: int64(101)},
				{Key: "status", Value: models.CopyStatusFailed},
				{Key: "reason", Value: "chat not found"},
				{Key: "created_at", Value: now},
			},
		))

		records, err := repo.ListByJobID(context.Background(), "job-1")
		if err != nil {
			t.Fatalf("ListByJobID failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("unexpected record count: got %d, want %d", len(records), 2)
		}
		if records[1].Status != models.CopyStatusFailed {
			t.Fatalf("unexpected status: %q", records[1].Status)
		}
	})

	mt.Run("empty result", func(mt *mtest.T) {
		repo := &copyRecordRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(
			0,
			copyRecordNamespace(mt),
			mtest.FirstBatch,
		))

		records, err := repo.ListByJobID(context.Background(), "job-none")
		if err != nil {
			t.Fatalf("ListByJobID failed: %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("expected no records, got %d", len(records))
		}
	})

	mt.Run("find error", func(mt *mtest.T) {
		repo := &copyRecordRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "mock find error",
		}))

		_, err := repo.ListByJobID(context.Background(), "job-1")
		if err == nil {
			t.Fatalf("expected error but got nil")
		}
		if !strings.Contains(err.Error(), "failed to query copy records") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCopyRecordRepositoryEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := &copyRecordRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.EnsureIndexes(context.Background(), 172800); err != nil {
			t.Fatalf("EnsureIndexes failed: %v", err)
		}
	})

	mt.Run("create indexes error", func(mt *mtest.T) {
		repo := &copyRecordRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "mock index error",
		}))

		err := repo.EnsureIndexes(context.Background(), 172800)
		if err == nil {
			t.Fatalf("expected error but got nil")
		}
		if !strings.Contains(err.Error(), "failed to create indexes") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func copyRecordNamespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}
