package telegram

import (
	"context"

	"copier_bot/internal/logger"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// RequireAuthorized 中间件：仅允许配置里授权的用户使用
func (b *Bot) RequireAuthorized(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}

		if _, ok := b.authorized[update.Message.From.ID]; !ok {
			logger.L().Warnf("Unauthorized user %d attempted to use the bot", update.Message.From.ID)
			b.sendErrorMessage(ctx, update.Message.Chat.ID, "Unauthorized")
			return
		}

		next(ctx, botInstance, update)
	}
}
