package telegram

import (
	"sync"

	"copier_bot/internal/telegram/copier"
)

// copySession 一个发起人的操作进度：先建话题，再依次提交起止链接。
// 每个用户一份，替代原来跨请求共享的全局状态。
type copySession struct {
	topic     copier.Topic
	hasTopic  bool
	startLink string
	job       *copier.Job
}

// sessionStore 按用户 ID 维护会话，读写都在锁内
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*copySession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*copySession)}
}

func (s *sessionStore) session(userID int64) *copySession {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &copySession{}
		s.sessions[userID] = sess
	}
	return sess
}

// Reset 清空用户会话（不取消已启动的任务）
func (s *sessionStore) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// SetTopic 记录用户当前的目标话题，并清掉旧的链接进度
func (s *sessionStore) SetTopic(userID int64, topic copier.Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(userID)
	sess.topic = topic
	sess.hasTopic = true
	sess.startLink = ""
}

// Topic 返回用户当前的目标话题
func (s *sessionStore) Topic(userID int64) (copier.Topic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(userID)
	return sess.topic, sess.hasTopic
}

// AddLink 收下一条消息链接。
// 第一条作为起始链接暂存（ready=false），第二条与之配对返回（ready=true）
// 并清空暂存，准备下一轮。
func (s *sessionStore) AddLink(userID int64, link string) (start, end string, ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if sess.startLink == "" {
		sess.startLink = link
		return link, "", false
	}

	start = sess.startLink
	sess.startLink = ""
	return start, link, true
}

// ClearStartLink 丢弃暂存的起始链接（配对失败后重来）
func (s *sessionStore) ClearStartLink(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(userID).startLink = ""
}

// SetJob 记录用户正在运行的任务
func (s *sessionStore) SetJob(userID int64, job *copier.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(userID).job = job
}

// ActiveJob 返回用户尚未结束的任务
func (s *sessionStore) ActiveJob(userID int64) (*copier.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if sess.job == nil {
		return nil, false
	}
	if sess.job.Snapshot().State.Terminal() {
		sess.job = nil
		return nil, false
	}
	return sess.job, true
}
