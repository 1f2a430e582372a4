package copier

import (
	botModels "github.com/go-telegram/bot/models"
)

// 内容类型常量
const (
	KindText      = "text"
	KindPhoto     = "photo"
	KindVideo     = "video"
	KindDocument  = "document"
	KindSticker   = "sticker"
	KindAudio     = "audio"
	KindVoice     = "voice"
	KindAnimation = "animation"
	KindOther     = "other"
)

// Descriptor 平台无关的内容描述。
// 源消息被转写成 Descriptor 后在目标话题重新发送，
// 这里刻意不保留源会话、源消息 ID 以及转发来源等任何归属信息，
// 发出去的消息因此不带 "Forwarded from" 标记。
type Descriptor struct {
	Kind            string                    // 内容类型（Kind* 常量之一）
	FileID          string                    // 媒体文件句柄，文本消息为空
	Text            string                    // 文本内容（仅 KindText / 降级的 KindOther）
	Caption         string                    // 媒体说明文字
	Entities        []botModels.MessageEntity // 文本的格式化片段
	CaptionEntities []botModels.MessageEntity // 说明文字的格式化片段
}

// HasText 描述是否携带可发送的文本内容
func (d Descriptor) HasText() bool {
	return d.Text != "" || d.Caption != ""
}

// Transcode 把一条源消息转写为内容描述。
// 复合消息（媒体 + 说明文字）同时保留媒体与说明；
// 未知类型降级为 KindOther 并尽量带上文本内容，永不报错。
// 源消息上的 ForwardOrigin 在这里被丢弃。
func Transcode(msg *botModels.Message) Descriptor {
	if msg == nil {
		return Descriptor{Kind: KindOther}
	}

	switch {
	case len(msg.Photo) > 0:
		// 取分辨率最高的一档
		return Descriptor{
			Kind:            KindPhoto,
			FileID:          msg.Photo[len(msg.Photo)-1].FileID,
			Caption:         msg.Caption,
			CaptionEntities: msg.CaptionEntities,
		}
	case msg.Video != nil:
		return Descriptor{
			Kind:            KindVideo,
			FileID:          msg.Video.FileID,
			Caption:         msg.Caption,
			CaptionEntities: msg.CaptionEntities,
		}
	case msg.Animation != nil:
		// 动图消息会同时带 Document 字段，必须先于 Document 判断
		return Descriptor{
			Kind:            KindAnimation,
			FileID:          msg.Animation.FileID,
			Caption:         msg.Caption,
			CaptionEntities: msg.CaptionEntities,
		}
	case msg.Document != nil:
		return Descriptor{
			Kind:            KindDocument,
			FileID:          msg.Document.FileID,
			Caption:         msg.Caption,
			CaptionEntities: msg.CaptionEntities,
		}
	case msg.Sticker != nil:
		return Descriptor{
			Kind:   KindSticker,
			FileID: msg.Sticker.FileID,
		}
	case msg.Audio != nil:
		return Descriptor{
			Kind:            KindAudio,
			FileID:          msg.Audio.FileID,
			Caption:         msg.Caption,
			CaptionEntities: msg.CaptionEntities,
		}
	case msg.Voice != nil:
		return Descriptor{
			Kind:            KindVoice,
			FileID:          msg.Voice.FileID,
			Caption:         msg.Caption,
			CaptionEntities: msg.CaptionEntities,
		}
	case msg.Text != "":
		return Descriptor{
			Kind:     KindText,
			Text:     msg.Text,
			Entities: msg.Entities,
		}
	default:
		// 不支持的类型：尽量带上文本，发送阶段再决定能否降级发出
		return Descriptor{
			Kind:            KindOther,
			Text:            msg.Text,
			Caption:         msg.Caption,
			Entities:        msg.Entities,
			CaptionEntities: msg.CaptionEntities,
		}
	}
}
