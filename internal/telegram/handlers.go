package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"copier_bot/internal/logger"
	"copier_bot/internal/telegram/copier"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// registerHandlers 注册所有命令处理器（异步执行）
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact,
		b.asyncHandler(b.RequireAuthorized(b.handleStart)))

	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/create_topic", bot.MatchTypePrefix,
		b.asyncHandler(b.RequireAuthorized(b.handleCreateTopic)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/createtopic", bot.MatchTypePrefix,
		b.asyncHandler(b.RequireAuthorized(b.handleCreateTopic)))

	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact,
		b.asyncHandler(b.RequireAuthorized(b.handleStatus)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact,
		b.asyncHandler(b.RequireAuthorized(b.handleCancel)))

	logger.L().Debug("All handlers registered with async execution")
}

// handleStart 处理 /start 命令
func (b *Bot) handleStart(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	usageText := "🚀 Content Copier Bot\n\n" +
		"1. /create_topic TOPIC_NAME\n" +
		"2. Send START message link\n" +
		"3. Send END message link\n" +
		"4. The bot copies every message in the range into the topic, without forward tags\n\n" +
		"/status - show copy progress\n" +
		"/cancel - stop the running copy"

	b.sendMessage(ctx, update.Message.Chat.ID, usageText)
}

// handleCreateTopic 处理 /create_topic 命令：确保目标话题存在并开始收集链接
func (b *Bot) handleCreateTopic(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.sendErrorMessage(ctx, chatID, "Usage: /create_topic TOPIC_NAME")
		return
	}
	name := strings.TrimSpace(strings.Join(parts[1:], " "))

	if _, running := b.sessions.ActiveJob(userID); running {
		b.sendErrorMessage(ctx, chatID, "A copy job is still running, use /cancel first")
		return
	}

	b.sessions.Reset(userID)

	topic, err := b.topics.EnsureTopic(ctx, b.cfg.DestinationGroupID, name)
	if err != nil {
		logger.L().Errorf("Topic creation failed for user %d: %v", userID, err)
		b.sendErrorMessage(ctx, chatID, "Failed to create topic")
		return
	}

	b.sessions.SetTopic(userID, topic)
	b.sendSuccessMessage(ctx, chatID,
		fmt.Sprintf("Topic %q is ready!\nNow send the START message link:", topic.Name))
}

// handleLinkMessage 处理私聊里发来的消息链接（默认 handler）。
// 第一条作为起始链接，第二条作为结束链接并启动复制任务。
func (b *Bot) handleLinkMessage(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if update.Message.Chat.Type != "private" {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	topic, ok := b.sessions.Topic(userID)
	if !ok {
		b.sendErrorMessage(ctx, chatID, "First create a topic with /create_topic")
		return
	}
	if _, running := b.sessions.ActiveJob(userID); running {
		b.sendErrorMessage(ctx, chatID, "A copy job is still running, use /cancel first")
		return
	}

	if _, err := copier.ParseMessageLink(text); err != nil {
		b.sendErrorMessage(ctx, chatID, "Invalid link. Send a proper Telegram message link.")
		return
	}

	startLink, endLink, ready := b.sessions.AddLink(userID, text)
	if !ready {
		b.sendMessage(ctx, chatID, "🔗 Got the START link! Now send the END link:")
		return
	}

	rng, err := copier.ResolveRange(startLink, endLink)
	if err != nil {
		b.sessions.ClearStartLink(userID)
		b.sendErrorMessage(ctx, chatID, resolveErrorText(err))
		return
	}

	// 配置了固定源频道时，拒绝指向其他会话的链接
	if !sourceAllowed(b.cfg.SourceChatID, rng.Chat) {
		b.sendErrorMessage(ctx, chatID, "Links must point to the configured source channel")
		return
	}

	b.startCopyJob(ctx, userID, chatID, rng, topic)
}

// startCopyJob 启动复制任务并挂上进度上报
func (b *Bot) startCopyJob(ctx context.Context, userID, chatID int64, rng copier.CopyRange, topic copier.Topic) {
	client := b.client.withStaging(chatID)
	service := copier.NewService(client, b.records, b.cfg.CopyDelay)

	job := service.StartJob(rng, topic)
	b.sessions.SetJob(userID, job)

	logger.L().Infof("Copy job requested: user=%d job_id=%s range=[%d,%d] topic=%q",
		userID, job.ID, rng.StartID, rng.EndID, topic.Name)

	progressMsg, err := b.sendMessageWithResult(ctx, chatID,
		fmt.Sprintf("⏳ Copying %d messages...", rng.Count()))
	if err != nil {
		logger.L().Errorf("Failed to send progress message: %v", err)
		return
	}

	go b.watchJob(job, chatID, progressMsg.ID, topic.Name)
}

// handleStatus 处理 /status 命令
func (b *Bot) handleStatus(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	job, ok := b.sessions.ActiveJob(update.Message.From.ID)
	if !ok {
		b.sendMessage(ctx, update.Message.Chat.ID, "No copy job is running.")
		return
	}

	b.sendMessage(ctx, update.Message.Chat.ID, formatProgress(job.Snapshot()))
}

// handleCancel 处理 /cancel 命令。
// 取消在当前这条消息处理完之后生效。
func (b *Bot) handleCancel(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	job, ok := b.sessions.ActiveJob(update.Message.From.ID)
	if !ok {
		b.sendMessage(ctx, update.Message.Chat.ID, "No copy job is running.")
		return
	}

	job.Cancel()
	b.sendMessage(ctx, update.Message.Chat.ID, "🛑 Cancel requested, the job stops after the current message.")
}

// sourceAllowed 校验链接是否指向配置的源频道。
// 用户名链接解析不出 chat id，无法与配置比对，配置了固定源时一并拒绝。
func sourceAllowed(sourceChatID int64, chat copier.ChatRef) bool {
	if sourceChatID == 0 {
		return true
	}
	return chat.ID == sourceChatID
}

// resolveErrorText 把区间解析错误翻译成用户可读的提示
func resolveErrorText(err error) string {
	switch {
	case errors.Is(err, copier.ErrChatMismatch):
		return "START and END links must point to the same chat!"
	case errors.Is(err, copier.ErrInvalidOrder):
		return "END link must come after START link!"
	default:
		return "Invalid link. Send a proper Telegram message link."
	}
}
