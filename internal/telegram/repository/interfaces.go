package repository

import (
	"context"

	"copier_bot/internal/telegram/models"
)

// TopicRepository 话题登记表数据访问接口
type TopicRepository interface {
	// GetByName 按名称查询群组内的话题登记，不存在返回 (nil, nil)
	GetByName(ctx context.Context, groupID int64, name string) (*models.Topic, error)

	// Save 登记话题（同名幂等）
	Save(ctx context.Context, topic *models.Topic) error

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// CopyRecordRepository 复制记录数据访问接口
type CopyRecordRepository interface {
	// CreateRecord 写入一条复制记录
	CreateRecord(ctx context.Context, record *models.CopyRecord) error

	// ListByJobID 按任务 ID 查询全部记录，按源消息 ID 升序
	ListByJobID(ctx context.Context, jobID string) ([]*models.CopyRecord, error)

	// EnsureIndexes 确保索引存在，retentionSeconds 为 TTL 时长
	EnsureIndexes(ctx context.Context, retentionSeconds int32) error
}
