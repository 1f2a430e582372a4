package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"copier_bot/internal/logger"
	"copier_bot/internal/telegram/copier"

	"github.com/go-telegram/bot"
)

const (
	// 进度消息的编辑节奏
	progressInterval = 3 * time.Second

	// 最终报告里最多列出的失败消息 ID 数
	maxReportedFailures = 20
)

// watchJob 周期性拉取任务快照并编辑进度消息，任务结束后发最终报告。
// 只读快照，不碰任务状态；编辑失败不影响任务。
func (b *Bot) watchJob(job *copier.Job, chatID int64, progressMessageID int, topicName string) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.editProgress(chatID, progressMessageID, formatProgress(job.Snapshot()))
		case <-job.Done():
			snap := job.Snapshot()
			b.editProgress(chatID, progressMessageID, formatProgress(snap))
			b.sendReport(chatID, topicName, snap)
			return
		}
	}
}

func (b *Bot) editProgress(chatID int64, messageID int, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := b.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		// 文本没变化时 Telegram 也会报错，只记 debug
		logger.L().Debugf("Failed to edit progress message %d: %v", messageID, err)
	}
}

func (b *Bot) sendReport(chatID int64, topicName string, snap copier.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b.sendMessage(ctx, chatID, formatReport(topicName, snap))
}

// formatProgress 进度消息文本
func formatProgress(snap copier.Snapshot) string {
	return fmt.Sprintf(
		"⏳ Progress: %d/%d\n✅ Copied: %d\n❌ Failed: %d",
		snap.Attempted, snap.Total, snap.Succeeded, snap.Failed,
	)
}

// formatReport 最终报告文本，失败的消息 ID 列出来供用户手工补救
func formatReport(topicName string, snap copier.Snapshot) string {
	var sb strings.Builder

	if snap.State == copier.StateAborted {
		sb.WriteString("🛑 Stopped!\n\n")
	} else {
		sb.WriteString("✅ Done!\n\n")
	}
	fmt.Fprintf(&sb, "Topic: %s\n", topicName)
	fmt.Fprintf(&sb, "Total: %d\n", snap.Total)
	fmt.Fprintf(&sb, "Success: %d\n", snap.Succeeded)
	fmt.Fprintf(&sb, "Failed: %d", snap.Failed)

	if len(snap.Failures) > 0 {
		sb.WriteString("\n\nFailed message ids:")
		for i, failure := range snap.Failures {
			if i == maxReportedFailures {
				fmt.Fprintf(&sb, "\n… and %d more", len(snap.Failures)-maxReportedFailures)
				break
			}
			fmt.Fprintf(&sb, "\n- %d", failure.MessageID)
		}
	}

	return sb.String()
}
