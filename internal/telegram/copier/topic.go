package copier

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"copier_bot/internal/logger"
)

// 话题缓存容量。同一个进程通常只会反复使用少数几个话题名。
const topicCacheSize = 128

// Topic 目标群组里的一个话题。
// 由 TopicManager 创建并持有，复制任务只拿引用作为发送目标。
type Topic struct {
	GroupID  int64  // 目标群组 ID
	ThreadID int    // 话题的 message_thread_id
	Name     string // 话题名
}

// TopicStore 话题登记表。
// 话题在平台侧是持久对象，登记之后新进程可以先查再建，
// 避免重复创建同名话题。查不到时返回 (nil, nil)。
type TopicStore interface {
	GetByName(ctx context.Context, groupID int64, name string) (*Topic, error)
	Save(ctx context.Context, topic *Topic) error
}

// TopicManager 负责确保目标话题存在。
// 按 (groupID, name) 幂等：先查进程内缓存，再查登记表，最后才请求平台创建。
type TopicManager struct {
	api   TopicCreator
	store TopicStore // 可为 nil，此时只有进程内缓存
	mu    sync.Mutex
	cache *lru.Cache
}

// NewTopicManager 创建话题管理器
func NewTopicManager(api TopicCreator, store TopicStore) *TopicManager {
	// 容量为常量且大于 0，New 不会失败
	cache, _ := lru.New(topicCacheSize)
	return &TopicManager{
		api:   api,
		store: store,
		cache: cache,
	}
}

// EnsureTopic 返回群组内指定名称的话题，不存在时创建。
// 创建失败包装为 ErrTopicCreateFailed，对上层任务是致命错误。
// 整个流程持锁，同名并发调用会被串行化为单次创建。
func (m *TopicManager) EnsureTopic(ctx context.Context, groupID int64, name string) (Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := topicCacheKey(groupID, name)
	if cached, ok := m.cache.Get(key); ok {
		return cached.(Topic), nil
	}

	if m.store != nil {
		known, err := m.store.GetByName(ctx, groupID, name)
		if err != nil {
			logger.L().Warnf("Topic registry lookup failed for %q in %d: %v", name, groupID, err)
		} else if known != nil {
			m.cache.Add(key, *known)
			return *known, nil
		}
	}

	topic, err := m.api.CreateForumTopic(ctx, groupID, name)
	if err != nil {
		return Topic{}, fmt.Errorf("%w: %q in group %d: %v", ErrTopicCreateFailed, name, groupID, err)
	}
	logger.L().Infof("Created topic %q in group %d: thread_id=%d", name, groupID, topic.ThreadID)

	if m.store != nil {
		if err := m.store.Save(ctx, &topic); err != nil {
			// 登记失败不影响本次任务，下个进程会多创建一次同名话题
			logger.L().Warnf("Failed to register topic %q in %d: %v", name, groupID, err)
		}
	}

	m.cache.Add(key, topic)
	return topic, nil
}

func topicCacheKey(groupID int64, name string) string {
	return fmt.Sprintf("%d:%s", groupID, name)
}
