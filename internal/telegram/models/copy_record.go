package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CopyRecord 复制记录（任务的逐条审计痕迹）
type CopyRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	JobID           string             `bson:"job_id"`                    // 任务 ID (UUID)
	SourceChat      string             `bson:"source_chat"`               // 源会话标识
	SourceMessageID int64              `bson:"source_message_id"`         // 源消息 ID
	TargetGroupID   int64              `bson:"target_group_id"`           // 目标群组 ID
	TopicThreadID   int64              `bson:"topic_thread_id"`           // 目标话题 thread_id
	CopiedMessageID int64              `bson:"copied_message_id"`         // 复制出的新消息 ID（失败为 0）
	Status          string             `bson:"status"`                    // copied/failed
	Reason          string             `bson:"reason,omitempty"`          // 失败原因
	CreatedAt       time.Time          `bson:"created_at"`                // 创建时间（TTL 索引）
}

const (
	CopyStatusCopied = "copied"
	CopyStatusFailed = "failed"
)
