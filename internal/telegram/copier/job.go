package copier

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// State 复制任务状态机的状态
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Terminal 是否为终态
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Failure 一条未能复制的消息及原因
type Failure struct {
	MessageID int
	Reason    string
}

// Snapshot 任务进度的一致性快照，供进度上报方按自己的节奏拉取
type Snapshot struct {
	ID        string
	State     State
	Total     int // 区间覆盖的消息 ID 总数（含缺口）
	Attempted int // 已处理的消息数（成功 + 失败，不含缺口）
	Succeeded int
	Failed    int
	Cursor    int // 当前正在处理的消息 ID
	Failures  []Failure
}

// Job 一次复制任务。
// 状态只由编排器的处理循环修改，外部通过 Snapshot 读取、通过 Cancel 取消。
// 任务状态只存在于进程内存中，进程退出即丢失。
type Job struct {
	ID    string
	Range CopyRange
	Topic Topic

	mu        sync.Mutex
	state     State
	cursor    int
	attempted int
	succeeded int
	failed    int
	failures  []Failure

	cancel context.CancelFunc
	done   chan struct{}
}

func newJob(rng CopyRange, topic Topic) *Job {
	return &Job{
		ID:    uuid.New().String(),
		Range: rng,
		Topic: topic,
		state: StateIdle,
		done:  make(chan struct{}),
	}
}

// Snapshot 返回当前进度快照，不改变任务状态
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	failures := make([]Failure, len(j.failures))
	copy(failures, j.failures)

	return Snapshot{
		ID:        j.ID,
		State:     j.state,
		Total:     j.Range.Count(),
		Attempted: j.attempted,
		Succeeded: j.succeeded,
		Failed:    j.failed,
		Cursor:    j.cursor,
		Failures:  failures,
	}
}

// Cancel 请求取消任务。
// 在下一条消息开始处理前生效，已经发出的发送调用不会被打断。
func (j *Job) Cancel() {
	j.mu.Lock()
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done 任务进入终态后关闭
func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

func (j *Job) setCursor(id int) {
	j.mu.Lock()
	j.cursor = id
	j.mu.Unlock()
}

func (j *Job) recordSuccess() {
	j.mu.Lock()
	j.attempted++
	j.succeeded++
	j.mu.Unlock()
}

func (j *Job) recordFailure(messageID int, reason string) {
	j.mu.Lock()
	j.attempted++
	j.failed++
	j.failures = append(j.failures, Failure{MessageID: messageID, Reason: reason})
	j.mu.Unlock()
}
