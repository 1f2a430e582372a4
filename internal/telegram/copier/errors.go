package copier

import "errors"

// 任务启动前的用户输入错误与前置条件错误。
// 逐条消息的错误不在此列，它们被记录到任务的 failures 中，不会中断任务。
var (
	// ErrInvalidLink 消息链接无法解析
	ErrInvalidLink = errors.New("invalid message link")

	// ErrChatMismatch 起止链接指向不同的源会话
	ErrChatMismatch = errors.New("start and end links point to different chats")

	// ErrInvalidOrder 起始消息 ID 大于结束消息 ID
	ErrInvalidOrder = errors.New("start message id is greater than end message id")

	// ErrMessageNotFound 源消息不存在（已删除或不可见），按缺口处理
	ErrMessageNotFound = errors.New("message not found")

	// ErrTopicCreateFailed 目标话题创建失败，任务无法开始
	ErrTopicCreateFailed = errors.New("topic create failed")

	// ErrUnsupportedContent 内容类型无法在目标话题重建
	ErrUnsupportedContent = errors.New("unsupported message content")
)
