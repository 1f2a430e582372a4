package copier

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-telegram/bot"
)

func TestRateLimitDelay(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    time.Duration
		limited bool
	}{
		{
			name: "too many requests with retry after",
			err: &bot.TooManyRequestsError{
				Message:    "too many requests",
				RetryAfter: 4,
			},
			want:    4 * time.Second,
			limited: true,
		},
		{
			name: "too many requests without retry after",
			err: &bot.TooManyRequestsError{
				Message:    "too many requests",
				RetryAfter: 0,
			},
			want:    defaultRetryAfter,
			limited: true,
		},
		{
			name: "wrapped too many requests",
			err: fmt.Errorf("send: %w", &bot.TooManyRequestsError{
				Message:    "too many requests",
				RetryAfter: 2,
			}),
			want:    2 * time.Second,
			limited: true,
		},
		{
			name:    "forbidden is not rate limit",
			err:     fmt.Errorf("%w, bot was kicked", bot.ErrorForbidden),
			limited: false,
		},
		{
			name:    "bad request is not rate limit",
			err:     fmt.Errorf("%w, chat not found", bot.ErrorBadRequest),
			limited: false,
		},
		{
			name:    "generic error is not rate limit",
			err:     errors.New("temporary network error"),
			limited: false,
		},
		{
			name:    "nil error",
			err:     nil,
			limited: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, limited := rateLimitDelay(tt.err)
			if limited != tt.limited {
				t.Fatalf("expected limited=%v, got %v", tt.limited, limited)
			}
			if limited && got != tt.want {
				t.Fatalf("expected delay %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFetchRetryDelay(t *testing.T) {
	base := time.Second

	// 限流响应按 retry_after 等待，与第几次重试无关
	limited := &bot.TooManyRequestsError{Message: "too many requests", RetryAfter: 7}
	for attempt := 1; attempt <= 3; attempt++ {
		if got := fetchRetryDelay(limited, base, attempt); got != 7*time.Second {
			t.Fatalf("attempt %d: expected retry_after delay 7s, got %v", attempt, got)
		}
	}

	wrapped := fmt.Errorf("fetch: %w", &bot.TooManyRequestsError{Message: "too many requests", RetryAfter: 2})
	if got := fetchRetryDelay(wrapped, base, 1); got != 2*time.Second {
		t.Fatalf("expected wrapped retry_after delay 2s, got %v", got)
	}

	// 普通瞬态错误走指数退避
	transient := errors.New("temporary network error")
	if got := fetchRetryDelay(transient, base, 1); got != time.Second {
		t.Fatalf("expected backoff 1s, got %v", got)
	}
	if got := fetchRetryDelay(transient, base, 2); got != 2*time.Second {
		t.Fatalf("expected backoff 2s, got %v", got)
	}
}

func TestFetchBackoffDelay(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{name: "attempt 1", attempt: 1, want: time.Second},
		{name: "attempt 2", attempt: 2, want: 2 * time.Second},
		{name: "attempt 3", attempt: 3, want: 4 * time.Second},
		{name: "attempt 0 normalized", attempt: 0, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fetchBackoffDelay(time.Second, tt.attempt)
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
