package telegram

import (
	"context"
	"errors"
	"strings"

	"copier_bot/internal/logger"
	"copier_bot/internal/telegram/copier"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// botClient 基于 Bot API 的 copier.Client 生产实现
type botClient struct {
	bot           *bot.Bot
	stagingChatID int64 // 中转会话，0 表示尚未绑定
}

func newBotClient(b *bot.Bot, stagingChatID int64) *botClient {
	return &botClient{bot: b, stagingChatID: stagingChatID}
}

// withStaging 返回绑定了中转会话的副本。
// 配置里指定了固定中转会话时原样返回。
func (c *botClient) withStaging(chatID int64) *botClient {
	if c.stagingChatID != 0 {
		return c
	}
	clone := *c
	clone.stagingChatID = chatID
	return &clone
}

// GetMessage 按 ID 拉取一条源消息。
// Bot API 没有直接按 ID 读消息的方法：先把源消息转发到中转会话，
// 从返回的消息对象里拿到全部内容与媒体句柄，再把中转副本删掉。
// 源消息已删除时返回 copier.ErrMessageNotFound。
func (c *botClient) GetMessage(ctx context.Context, chat copier.ChatRef, messageID int) (*botModels.Message, error) {
	staged, err := c.bot.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     c.stagingChatID,
		FromChatID: chatIDValue(chat),
		MessageID:  messageID,
	})
	if err != nil {
		if isMessageMissing(err) {
			return nil, copier.ErrMessageNotFound
		}
		return nil, err
	}

	// 中转副本清理失败只弄脏中转会话，不影响复制
	if _, derr := c.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    c.stagingChatID,
		MessageID: staged.ID,
	}); derr != nil {
		logger.L().Debugf("Failed to clean staged copy %d in chat %d: %v", staged.ID, c.stagingChatID, derr)
	}

	return staged, nil
}

// CopyMessage 把源消息整体复刻到目标话题。
// copyMessage 由平台处理全部媒体类型且不带转发标记，
// 是投票、位置、联系人这类没有专门 Send 方法的内容的兜底。
func (c *botClient) CopyMessage(ctx context.Context, topic copier.Topic, src copier.MessageRef) (int, error) {
	copied, err := c.bot.CopyMessage(ctx, &bot.CopyMessageParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		FromChatID:      chatIDValue(src.Chat),
		MessageID:       src.MessageID,
	})
	if err != nil {
		if isUncopyable(err) {
			return 0, copier.ErrUnsupportedContent
		}
		return 0, err
	}
	return copied.ID, nil
}

func (c *botClient) SendText(ctx context.Context, topic copier.Topic, desc copier.Descriptor) (int, error) {
	msg, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		Text:            desc.Text,
		Entities:        desc.Entities,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *botClient) SendPhoto(ctx context.Context, topic copier.Topic, desc copier.Descriptor) (int, error) {
	msg, err := c.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		Photo:           &botModels.InputFileString{Data: desc.FileID},
		Caption:         desc.Caption,
		CaptionEntities: desc.CaptionEntities,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *botClient) SendVideo(ctx context.Context, topic copier.Topic, desc copier.Descriptor) (int, error) {
	msg, err := c.bot.SendVideo(ctx, &bot.SendVideoParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		Video:           &botModels.InputFileString{Data: desc.FileID},
		Caption:         desc.Caption,
		CaptionEntities: desc.CaptionEntities,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *botClient) SendDocument(ctx context.Context, topic copier.Topic, desc copier.Descriptor) (int, error) {
	msg, err := c.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		Document:        &botModels.InputFileString{Data: desc.FileID},
		Caption:         desc.Caption,
		CaptionEntities: desc.CaptionEntities,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *botClient) SendSticker(ctx context.Context, topic copier.Topic, desc copier.Descriptor) (int, error) {
	msg, err := c.bot.SendSticker(ctx, &bot.SendStickerParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		Sticker:         &botModels.InputFileString{Data: desc.FileID},
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *botClient) SendAudio(ctx context.Context, topic copier.Topic, desc copier.Descriptor) (int, error) {
	msg, err := c.bot.SendAudio(ctx, &bot.SendAudioParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		Audio:           &botModels.InputFileString{Data: desc.FileID},
		Caption:         desc.Caption,
		CaptionEntities: desc.CaptionEntities,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *botClient) SendVoice(ctx context.Context, topic copier.Topic, desc copier.Descriptor) (int, error) {
	msg, err := c.bot.SendVoice(ctx, &bot.SendVoiceParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		Voice:           &botModels.InputFileString{Data: desc.FileID},
		Caption:         desc.Caption,
		CaptionEntities: desc.CaptionEntities,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *botClient) SendAnimation(ctx context.Context, topic copier.Topic, desc copier.Descriptor) (int, error) {
	msg, err := c.bot.SendAnimation(ctx, &bot.SendAnimationParams{
		ChatID:          topic.GroupID,
		MessageThreadID: topic.ThreadID,
		Animation:       &botModels.InputFileString{Data: desc.FileID},
		Caption:         desc.Caption,
		CaptionEntities: desc.CaptionEntities,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *botClient) CreateForumTopic(ctx context.Context, groupID int64, name string) (copier.Topic, error) {
	topic, err := c.bot.CreateForumTopic(ctx, &bot.CreateForumTopicParams{
		ChatID: groupID,
		Name:   name,
	})
	if err != nil {
		return copier.Topic{}, err
	}
	return copier.Topic{
		GroupID:  groupID,
		ThreadID: topic.MessageThreadID,
		Name:     name,
	}, nil
}

// chatIDValue 把会话引用转成 Bot API 接受的 ChatID 形式
func chatIDValue(chat copier.ChatRef) any {
	if chat.Username != "" {
		return "@" + chat.Username
	}
	return chat.ID
}

// isMessageMissing 源消息已删除或不可达
func isMessageMissing(err error) bool {
	if !errors.Is(err, bot.ErrorBadRequest) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "message_id_invalid")
}

// isUncopyable 平台拒绝复刻该消息（服务消息等）
func isUncopyable(err error) bool {
	if !errors.Is(err, bot.ErrorBadRequest) {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "can't be copied")
}
