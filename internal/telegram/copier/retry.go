package copier

import (
	"errors"
	"time"

	"github.com/go-telegram/bot"
)

const (
	// 同一条消息上允许的限流重试次数，超过则按发送失败记录
	maxRateLimitRetries = 5

	// 平台未给出 retry_after 时的兜底等待
	defaultRetryAfter = 3 * time.Second
)

// rateLimitDelay 判断错误是否为平台限流，并给出应等待的时长。
// 限流不计入失败，等待后在原位置重试同一条消息。
func rateLimitDelay(err error) (time.Duration, bool) {
	var tooMany *bot.TooManyRequestsError
	if !errors.As(err, &tooMany) {
		return 0, false
	}
	if tooMany.RetryAfter <= 0 {
		return defaultRetryAfter, true
	}
	return time.Duration(tooMany.RetryAfter) * time.Second, true
}
