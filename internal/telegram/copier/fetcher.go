package copier

import (
	"context"
	"errors"
	"fmt"
	"time"

	botModels "github.com/go-telegram/bot/models"

	"copier_bot/internal/logger"
)

const (
	defaultFetchAttempts = 3
	defaultFetchTimeout  = 10 * time.Second
	defaultFetchBackoff  = time.Second
)

// Fetcher 按 ID 逐条拉取源消息，对瞬态错误做有界指数退避重试。
// 已删除的消息返回 ErrMessageNotFound，由调用方按缺口处理；
// 重试耗尽的错误只影响对应的那一条消息，不会中断整个区间。
type Fetcher struct {
	client   Client
	attempts int
	timeout  time.Duration
	backoff  time.Duration
}

// NewFetcher 创建消息拉取器
func NewFetcher(client Client) *Fetcher {
	return &Fetcher{
		client:   client,
		attempts: defaultFetchAttempts,
		timeout:  defaultFetchTimeout,
		backoff:  defaultFetchBackoff,
	}
}

// Fetch 拉取一条源消息。
// 返回 ErrMessageNotFound 表示缺口；其余错误已经过 attempts 次重试。
func (f *Fetcher) Fetch(ctx context.Context, chat ChatRef, messageID int) (*botModels.Message, error) {
	var lastErr error

	for attempt := 1; attempt <= f.attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		msg, err := f.client.GetMessage(callCtx, chat, messageID)
		cancel()

		if err == nil {
			return msg, nil
		}
		if errors.Is(err, ErrMessageNotFound) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt < f.attempts {
			delay := fetchRetryDelay(err, f.backoff, attempt)
			logger.L().Warnf("Fetch attempt %d/%d failed for message %d: %v, retrying in %v",
				attempt, f.attempts, messageID, err, delay)
			if !sleepCtx(ctx, delay) {
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("fetch message %d after %d attempts: %w", messageID, f.attempts, lastErr)
}

// fetchRetryDelay 第 attempt 次失败后的等待时长。
// 限流响应按平台给出的 retry_after 等待，其余瞬态错误走指数退避。
func fetchRetryDelay(err error, base time.Duration, attempt int) time.Duration {
	if delay, limited := rateLimitDelay(err); limited {
		return delay
	}
	return fetchBackoffDelay(base, attempt)
}

// fetchBackoffDelay 第 attempt 次失败后的退避时长：base * 2^(attempt-1)
func fetchBackoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

// sleepCtx 可被取消的睡眠，返回 false 表示上下文已取消
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
