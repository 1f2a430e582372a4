package repository

import (
	"context"
	"fmt"
	"time"

	"copier_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type copyRecordRepository struct {
	collection *mongo.Collection
}

// NewCopyRecordRepository 创建复制记录仓储实例
func NewCopyRecordRepository(db *mongo.Database) CopyRecordRepository {
	return &copyRecordRepository{
		collection: db.Collection("copy_records"),
	}
}

// CreateRecord 写入一条复制记录
func (r *copyRecordRepository) CreateRecord(ctx context.Context, record *models.CopyRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to create copy record: %w", err)
	}
	return nil
}

// ListByJobID 按任务 ID 查询全部记录，按源消息 ID 升序
func (r *copyRecordRepository) ListByJobID(ctx context.Context, jobID string) ([]*models.CopyRecord, error) {
	filter := bson.M{"job_id": jobID}
	opts := options.Find().SetSort(bson.D{{Key: "source_message_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query copy records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.CopyRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode copy records: %w", err)
	}
	return records, nil
}

// EnsureIndexes 确保索引存在
func (r *copyRecordRepository) EnsureIndexes(ctx context.Context, retentionSeconds int32) error {
	indexes := []mongo.IndexModel{
		// job_id 索引（查询某任务的全部记录）
		{
			Keys: bson.D{{Key: "job_id", Value: 1}},
		},
		// TTL 索引，过期自动清理
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(retentionSeconds),
		},
		// 同一任务内源消息唯一，防止重复记录
		{
			Keys: bson.D{
				{Key: "job_id", Value: 1},
				{Key: "source_message_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes for copy_records: %w", err)
	}
	return nil
}
