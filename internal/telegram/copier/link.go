package copier

import (
	"fmt"
	"strconv"
	"strings"
)

// 私有频道链接中的内部 ID 需要加上 -100 前缀才是 Bot API 使用的 chat id
const privateChatIDBase = 1_000_000_000_000

// ChatRef 标识一个源会话。
// 私有频道链接（t.me/c/...）解析出数字 ID，公开频道链接解析出用户名，
// 两者不会同时存在。
type ChatRef struct {
	ID       int64  // -100 前缀形式的 chat id，公开频道为 0
	Username string // 公开频道用户名（不含 @），私有频道为空
}

// Key 返回用于比较与缓存的会话标识
func (c ChatRef) Key() string {
	if c.Username != "" {
		return "@" + c.Username
	}
	return strconv.FormatInt(c.ID, 10)
}

// Equal 判断两个链接是否指向同一个会话
func (c ChatRef) Equal(other ChatRef) bool {
	return c.ID == other.ID && strings.EqualFold(c.Username, other.Username)
}

// MessageRef 标识源会话中的一条消息
type MessageRef struct {
	Chat      ChatRef
	MessageID int
}

// CopyRange 待复制的消息 ID 闭区间，StartID <= EndID，两端属于同一会话
type CopyRange struct {
	Chat    ChatRef
	StartID int
	EndID   int
}

// Count 返回区间覆盖的消息 ID 数量（含已删除的缺口）
func (r CopyRange) Count() int {
	return r.EndID - r.StartID + 1
}

// ParseMessageLink 解析 Telegram 消息链接。
// 支持的形式：
//
//	https://t.me/c/2345678901/100        私有频道
//	https://t.me/c/2345678901/55/100     私有频道内话题，末段为消息 ID
//	https://t.me/some_channel/100        公开频道
//	https://t.me/some_channel/55/100     公开频道内话题
//
// 解析失败返回 ErrInvalidLink。
func ParseMessageLink(link string) (MessageRef, error) {
	raw := strings.TrimSpace(link)
	raw = strings.TrimPrefix(raw, "https://")
	raw = strings.TrimPrefix(raw, "http://")

	var rest string
	switch {
	case strings.HasPrefix(raw, "t.me/"):
		rest = strings.TrimPrefix(raw, "t.me/")
	case strings.HasPrefix(raw, "telegram.me/"):
		rest = strings.TrimPrefix(raw, "telegram.me/")
	default:
		return MessageRef{}, fmt.Errorf("%w: %q", ErrInvalidLink, link)
	}

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 2 {
		return MessageRef{}, fmt.Errorf("%w: %q", ErrInvalidLink, link)
	}

	// 末段始终是消息 ID，话题链接中间多出的线程 ID 直接忽略
	messageID, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || messageID <= 0 {
		return MessageRef{}, fmt.Errorf("%w: bad message id in %q", ErrInvalidLink, link)
	}

	if parts[0] == "c" {
		if len(parts) < 3 {
			return MessageRef{}, fmt.Errorf("%w: %q", ErrInvalidLink, link)
		}
		internalID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || internalID <= 0 {
			return MessageRef{}, fmt.Errorf("%w: bad chat id in %q", ErrInvalidLink, link)
		}
		return MessageRef{
			Chat:      ChatRef{ID: -(privateChatIDBase + internalID)},
			MessageID: messageID,
		}, nil
	}

	username := parts[0]
	if username == "" || strings.ContainsAny(username, "?#") {
		return MessageRef{}, fmt.Errorf("%w: bad username in %q", ErrInvalidLink, link)
	}
	return MessageRef{
		Chat:      ChatRef{Username: username},
		MessageID: messageID,
	}, nil
}

// ResolveRange 把起止两条链接解析为一个复制区间。
// 两条链接必须属于同一个会话且起始 ID 不大于结束 ID。
// 纯解析校验，无任何副作用。
func ResolveRange(startLink, endLink string) (CopyRange, error) {
	start, err := ParseMessageLink(startLink)
	if err != nil {
		return CopyRange{}, fmt.Errorf("start link: %w", err)
	}

	end, err := ParseMessageLink(endLink)
	if err != nil {
		return CopyRange{}, fmt.Errorf("end link: %w", err)
	}

	if !start.Chat.Equal(end.Chat) {
		return CopyRange{}, fmt.Errorf("%w: %s vs %s", ErrChatMismatch, start.Chat.Key(), end.Chat.Key())
	}

	if start.MessageID > end.MessageID {
		return CopyRange{}, fmt.Errorf("%w: %d > %d", ErrInvalidOrder, start.MessageID, end.MessageID)
	}

	return CopyRange{
		Chat:    start.Chat,
		StartID: start.MessageID,
		EndID:   end.MessageID,
	}, nil
}
