package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"copier_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type topicRepository struct {
	collection *mongo.Collection
}

// NewTopicRepository 创建话题登记仓储实例
func NewTopicRepository(db *mongo.Database) TopicRepository {
	return &topicRepository{
		collection: db.Collection("topics"),
	}
}

// GetByName 按名称查询群组内的话题登记
func (r *topicRepository) GetByName(ctx context.Context, groupID int64, name string) (*models.Topic, error) {
	filter := bson.M{"group_id": groupID, "name": name}

	var topic models.Topic
	err := r.collection.FindOne(ctx, filter).Decode(&topic)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query topic: %w", err)
	}
	return &topic, nil
}

// Save 登记话题，同名记录直接覆盖
func (r *topicRepository) Save(ctx context.Context, topic *models.Topic) error {
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now()
	}

	filter := bson.M{"group_id": topic.GroupID, "name": topic.Name}
	update := bson.M{"$set": bson.M{
		"group_id":   topic.GroupID,
		"thread_id":  topic.ThreadID,
		"name":       topic.Name,
		"created_at": topic.CreatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save topic: %w", err)
	}
	return nil
}

// EnsureIndexes 确保索引存在
func (r *topicRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// 组内话题名唯一
		{
			Keys: bson.D{
				{Key: "group_id", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes for topics: %w", err)
	}
	return nil
}
