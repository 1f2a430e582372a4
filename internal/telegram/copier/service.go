package copier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"copier_bot/internal/logger"
)

const (
	defaultSendTimeout = 15 * time.Second

	// 发送闸门：单任务内每秒最多的平台调用数，逐条 delay 之外的保险
	sendRatePerSecond = 5
)

// 审计记录状态
const (
	ResultStatusCopied = "copied"
	ResultStatusFailed = "failed"
)

// Result 一条消息的复制结果，写入审计存储
type Result struct {
	JobID         string
	SourceChat    string
	MessageID     int
	DestMessageID int
	GroupID       int64
	ThreadID      int
	Status        string
	Reason        string
}

// RecordStore 复制结果的审计落地。
// 只追加证据，不做断点续传：任务本身的进度仍在内存里。
type RecordStore interface {
	SaveResult(ctx context.Context, res Result) error
}

// Service 复制编排器。
// 每个任务是一条顺序管线：取消检查 → 拉取 → 转写 → 发送 → 节流延时，
// 目标话题里的消息顺序与源消息 ID 升序一致。
// 不同任务互相独立，可以并发运行。
type Service struct {
	client  Client
	fetcher *Fetcher
	records RecordStore // 可为 nil
	delay   time.Duration
}

// NewService 创建复制编排器。
// delay 为每条消息处理完成后的间隔，防止触发平台整体限流。
func NewService(client Client, records RecordStore, delay time.Duration) *Service {
	return &Service{
		client:  client,
		fetcher: NewFetcher(client),
		records: records,
		delay:   delay,
	}
}

// StartJob 启动一次复制任务并立即返回。
// 任务在独立的 goroutine 中顺序处理，进度通过 Job.Snapshot 读取，
// Job.Cancel 在下一条消息开始前生效。
func (s *Service) StartJob(rng CopyRange, topic Topic) *Job {
	job := newJob(rng, topic)

	// 任务生命周期长于发起它的 handler，不挂在请求上下文之下
	ctx, cancel := context.WithCancel(context.Background())
	job.cancel = cancel

	go s.run(ctx, job)
	return job
}

// run 任务主循环，状态机 Running → {Completed, Aborted}
func (s *Service) run(ctx context.Context, job *Job) {
	defer close(job.done)
	defer job.cancel()

	job.setState(StateRunning)
	logger.L().Infof("Copy job started: job_id=%s chat=%s range=[%d,%d] topic=%q thread_id=%d",
		job.ID, job.Range.Chat.Key(), job.Range.StartID, job.Range.EndID, job.Topic.Name, job.Topic.ThreadID)

	limiter := NewRateLimiter(sendRatePerSecond)
	defer limiter.Close()

	for id := job.Range.StartID; id <= job.Range.EndID; id++ {
		// 取消只在每条消息的边界生效，发出的调用不被打断
		if ctx.Err() != nil {
			s.abort(job)
			return
		}
		job.setCursor(id)

		msg, err := s.fetcher.Fetch(ctx, job.Range.Chat, id)
		if errors.Is(err, ErrMessageNotFound) {
			// 缺口：消息已删除，不计入任何计数
			logger.L().Debugf("Message %d no longer exists, skipping: job_id=%s", id, job.ID)
			continue
		}
		if ctx.Err() != nil {
			s.abort(job)
			return
		}
		if err != nil {
			job.recordFailure(id, fmt.Sprintf("fetch: %v", err))
			s.saveResult(job, id, 0, ResultStatusFailed, err.Error())
			s.pause(ctx)
			continue
		}

		src := MessageRef{Chat: job.Range.Chat, MessageID: id}
		destID, err := s.sendWithRetry(ctx, limiter, job.Topic, src, Transcode(msg))
		if err != nil {
			if ctx.Err() != nil {
				s.abort(job)
				return
			}
			logger.L().Warnf("Failed to copy message %d: job_id=%s err=%v", id, job.ID, err)
			job.recordFailure(id, err.Error())
			s.saveResult(job, id, 0, ResultStatusFailed, err.Error())
		} else {
			job.recordSuccess()
			s.saveResult(job, id, destID, ResultStatusCopied, "")
		}

		s.pause(ctx)
	}

	job.setState(StateCompleted)
	snap := job.Snapshot()
	logger.L().Infof("Copy job completed: job_id=%s attempted=%d succeeded=%d failed=%d",
		job.ID, snap.Attempted, snap.Succeeded, snap.Failed)
}

func (s *Service) abort(job *Job) {
	job.setState(StateAborted)
	snap := job.Snapshot()
	logger.L().Infof("Copy job aborted: job_id=%s attempted=%d succeeded=%d failed=%d",
		job.ID, snap.Attempted, snap.Succeeded, snap.Failed)
}

// sendWithRetry 发送一条内容描述。
// 限流响应按平台给出的 retry_after 等待后在原地重试，不推进游标也不计失败；
// 其余错误直接返回，由调用方记录。
func (s *Service) sendWithRetry(ctx context.Context, limiter *RateLimiter, topic Topic, src MessageRef, desc Descriptor) (int, error) {
	for attempt := 0; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return 0, err
		}

		callCtx, cancel := context.WithTimeout(ctx, defaultSendTimeout)
		destID, err := s.dispatch(callCtx, topic, src, desc)
		cancel()

		if err == nil {
			return destID, nil
		}

		delay, limited := rateLimitDelay(err)
		if !limited {
			return 0, err
		}
		if attempt >= maxRateLimitRetries {
			return 0, fmt.Errorf("rate limited %d times: %w", attempt+1, err)
		}

		logger.L().Warnf("Rate limited, retrying in %v (attempt %d/%d)", delay, attempt+1, maxRateLimitRetries)
		if !sleepCtx(ctx, delay) {
			return 0, ctx.Err()
		}
	}
}

// dispatch 按内容类型选择对应的发送操作
func (s *Service) dispatch(ctx context.Context, topic Topic, src MessageRef, desc Descriptor) (int, error) {
	switch desc.Kind {
	case KindText:
		return s.client.SendText(ctx, topic, desc)
	case KindPhoto:
		return s.client.SendPhoto(ctx, topic, desc)
	case KindVideo:
		return s.client.SendVideo(ctx, topic, desc)
	case KindDocument:
		return s.client.SendDocument(ctx, topic, desc)
	case KindSticker:
		return s.client.SendSticker(ctx, topic, desc)
	case KindAudio:
		return s.client.SendAudio(ctx, topic, desc)
	case KindVoice:
		return s.client.SendVoice(ctx, topic, desc)
	case KindAnimation:
		return s.client.SendAnimation(ctx, topic, desc)
	default:
		// 没有专门 Send 方法的类型（投票、位置、联系人等）整体复刻
		destID, err := s.client.CopyMessage(ctx, topic, src)
		if err == nil || !errors.Is(err, ErrUnsupportedContent) {
			return destID, err
		}
		// 复刻被平台拒绝时尽量降级为纯文本，完全没有文本内容的只能记失败
		if !desc.HasText() {
			return 0, err
		}
		fallback := desc
		if fallback.Text == "" {
			fallback.Text = fallback.Caption
			fallback.Entities = fallback.CaptionEntities
		}
		return s.client.SendText(ctx, topic, fallback)
	}
}

// saveResult 写一条审计记录，失败只记日志，不影响任务
func (s *Service) saveResult(job *Job, messageID, destID int, status, reason string) {
	if s.records == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := Result{
		JobID:         job.ID,
		SourceChat:    job.Range.Chat.Key(),
		MessageID:     messageID,
		DestMessageID: destID,
		GroupID:       job.Topic.GroupID,
		ThreadID:      job.Topic.ThreadID,
		Status:        status,
		Reason:        reason,
	}
	if err := s.records.SaveResult(ctx, res); err != nil {
		logger.L().Warnf("Failed to save copy record: job_id=%s message_id=%d err=%v", job.ID, messageID, err)
	}
}

// pause 每条消息处理完成后的节流延时
func (s *Service) pause(ctx context.Context) {
	sleepCtx(ctx, s.delay)
}
