package copier

import (
	"context"

	botModels "github.com/go-telegram/bot/models"
)

// Client 复制管线对消息平台的全部依赖。
// 生产实现由 internal/telegram 包基于 Bot API 提供，测试用假实现替换。
// 所有方法都可能返回 bot.TooManyRequestsError（带 RetryAfter），
// GetMessage 对已删除的消息返回 ErrMessageNotFound。
type Client interface {
	// GetMessage 按 ID 拉取一条源消息
	GetMessage(ctx context.Context, chat ChatRef, messageID int) (*botModels.Message, error)

	// CopyMessage 把源消息整体复刻到目标话题，返回新消息 ID。
	// 平台侧的 copyMessage 同样不带转发标记，
	// 用于没有专门 Send 方法的内容类型（投票、位置、联系人等）。
	// 内容无法复刻时返回 ErrUnsupportedContent。
	CopyMessage(ctx context.Context, topic Topic, src MessageRef) (int, error)

	// Send* 在目标话题里重建一条消息，返回新消息 ID
	SendText(ctx context.Context, topic Topic, desc Descriptor) (int, error)
	SendPhoto(ctx context.Context, topic Topic, desc Descriptor) (int, error)
	SendVideo(ctx context.Context, topic Topic, desc Descriptor) (int, error)
	SendDocument(ctx context.Context, topic Topic, desc Descriptor) (int, error)
	SendSticker(ctx context.Context, topic Topic, desc Descriptor) (int, error)
	SendAudio(ctx context.Context, topic Topic, desc Descriptor) (int, error)
	SendVoice(ctx context.Context, topic Topic, desc Descriptor) (int, error)
	SendAnimation(ctx context.Context, topic Topic, desc Descriptor) (int, error)

	TopicCreator
}

// TopicCreator 话题管理所需的最小平台能力
type TopicCreator interface {
	CreateForumTopic(ctx context.Context, groupID int64, name string) (Topic, error)
}
