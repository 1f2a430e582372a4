package copier

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeTopicStore 基于内存 map 的 TopicStore 假实现
type fakeTopicStore struct {
	mu     sync.Mutex
	topics map[string]Topic
	getErr error
	saves  int
}

func newFakeTopicStore() *fakeTopicStore {
	return &fakeTopicStore{topics: make(map[string]Topic)}
}

func (s *fakeTopicStore) GetByName(ctx context.Context, groupID int64, name string) (*Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	topic, ok := s.topics[topicCacheKey(groupID, name)]
	if !ok {
		return nil, nil
	}
	return &topic, nil
}

func (s *fakeTopicStore) Save(ctx context.Context, topic *Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves++
	s.topics[topicCacheKey(topic.GroupID, topic.Name)] = *topic
	return nil
}

func TestEnsureTopicCreatesOnce(t *testing.T) {
	fc := newFakeClient()
	m := NewTopicManager(fc, newFakeTopicStore())

	first, err := m.EnsureTopic(context.Background(), -100200, "News")
	if err != nil {
		t.Fatalf("EnsureTopic() error = %v", err)
	}
	second, err := m.EnsureTopic(context.Background(), -100200, "News")
	if err != nil {
		t.Fatalf("EnsureTopic() second call error = %v", err)
	}

	if first != second {
		t.Errorf("EnsureTopic() not idempotent: %+v vs %+v", first, second)
	}
	if len(fc.createdTopics) != 1 {
		t.Errorf("created %d topics, want 1", len(fc.createdTopics))
	}
}

func TestEnsureTopicDistinctNames(t *testing.T) {
	fc := newFakeClient()
	m := NewTopicManager(fc, nil)

	a, err := m.EnsureTopic(context.Background(), -100200, "News")
	if err != nil {
		t.Fatalf("EnsureTopic() error = %v", err)
	}
	b, err := m.EnsureTopic(context.Background(), -100200, "Archive")
	if err != nil {
		t.Fatalf("EnsureTopic() error = %v", err)
	}

	if a.ThreadID == b.ThreadID {
		t.Errorf("different names got same thread id %d", a.ThreadID)
	}
	if len(fc.createdTopics) != 2 {
		t.Errorf("created %d topics, want 2", len(fc.createdTopics))
	}
}

func TestEnsureTopicUsesRegistry(t *testing.T) {
	fc := newFakeClient()
	store := newFakeTopicStore()
	store.topics[topicCacheKey(-100200, "News")] = Topic{GroupID: -100200, ThreadID: 55, Name: "News"}

	m := NewTopicManager(fc, store)
	topic, err := m.EnsureTopic(context.Background(), -100200, "News")
	if err != nil {
		t.Fatalf("EnsureTopic() error = %v", err)
	}

	if topic.ThreadID != 55 {
		t.Errorf("ThreadID = %d, want registered 55", topic.ThreadID)
	}
	if len(fc.createdTopics) != 0 {
		t.Errorf("created %d topics, want 0 (registry hit)", len(fc.createdTopics))
	}
}

func TestEnsureTopicSurvivesRestart(t *testing.T) {
	fc := newFakeClient()
	store := newFakeTopicStore()

	first := NewTopicManager(fc, store)
	created, err := first.EnsureTopic(context.Background(), -100200, "News")
	if err != nil {
		t.Fatalf("EnsureTopic() error = %v", err)
	}

	// 新的管理器模拟进程重启，缓存为空但登记表还在
	restarted := NewTopicManager(fc, store)
	found, err := restarted.EnsureTopic(context.Background(), -100200, "News")
	if err != nil {
		t.Fatalf("EnsureTopic() after restart error = %v", err)
	}

	if found != created {
		t.Errorf("restart returned %+v, want %+v", found, created)
	}
	if len(fc.createdTopics) != 1 {
		t.Errorf("created %d topics, want 1", len(fc.createdTopics))
	}
}

func TestEnsureTopicCreateFailure(t *testing.T) {
	fc := newFakeClient()
	fc.createErr = errors.New("forum topics disabled")

	m := NewTopicManager(fc, nil)
	_, err := m.EnsureTopic(context.Background(), -100200, "News")
	if !errors.Is(err, ErrTopicCreateFailed) {
		t.Fatalf("EnsureTopic() error = %v, want ErrTopicCreateFailed", err)
	}
}

func TestEnsureTopicRegistryErrorFallsBackToCreate(t *testing.T) {
	fc := newFakeClient()
	store := newFakeTopicStore()
	store.getErr = errors.New("registry down")

	m := NewTopicManager(fc, store)
	topic, err := m.EnsureTopic(context.Background(), -100200, "News")
	if err != nil {
		t.Fatalf("EnsureTopic() error = %v", err)
	}

	if topic.Name != "News" {
		t.Errorf("Name = %q, want %q", topic.Name, "News")
	}
	if len(fc.createdTopics) != 1 {
		t.Errorf("created %d topics, want 1", len(fc.createdTopics))
	}
}
