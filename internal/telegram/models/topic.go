package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Topic 话题登记记录。
// 话题在 Telegram 侧是持久对象，登记下来之后新进程先查再建，
// 同名话题不会被重复创建。
type Topic struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	GroupID   int64              `bson:"group_id"`   // 目标群组 ID
	ThreadID  int64              `bson:"thread_id"`  // 话题的 message_thread_id
	Name      string             `bson:"name"`       // 话题名（组内唯一）
	CreatedAt time.Time          `bson:"created_at"` // 登记时间
}
