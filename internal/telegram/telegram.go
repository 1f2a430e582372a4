package telegram

import (
	"context"
	"fmt"

	"copier_bot/internal/config"
	"copier_bot/internal/logger"
	"copier_bot/internal/telegram/copier"
	"copier_bot/internal/telegram/repository"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Bot Telegram Bot 服务
type Bot struct {
	bot        *bot.Bot
	cfg        *config.Config
	db         *mongo.Database
	client     *botClient
	topics     *copier.TopicManager
	records    copier.RecordStore
	recordRepo repository.CopyRecordRepository
	topicRepo  repository.TopicRepository
	sessions   *sessionStore
	workerPool *WorkerPool
	authorized map[int64]struct{}
}

// New 创建 Telegram Bot 实例
func New(cfg *config.Config, db *mongo.Database) (*Bot, error) {
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("telegram token cannot be empty")
	}

	topicRepo := repository.NewTopicRepository(db)
	recordRepo := repository.NewCopyRecordRepository(db)

	authorized := make(map[int64]struct{}, len(cfg.AuthorizedUserIDs))
	for _, id := range cfg.AuthorizedUserIDs {
		authorized[id] = struct{}{}
	}

	telegramBot := &Bot{
		cfg:        cfg,
		db:         db,
		topicRepo:  topicRepo,
		recordRepo: recordRepo,
		records:    recordStore{repo: recordRepo},
		sessions:   newSessionStore(),
		workerPool: NewWorkerPool(4, 64),
		authorized: authorized,
	}

	// 私聊里发来的消息链接没有命令前缀，走默认 handler
	opts := []bot.Option{
		bot.WithDefaultHandler(telegramBot.asyncHandler(
			telegramBot.RequireAuthorized(telegramBot.handleLinkMessage))),
	}

	b, err := bot.New(cfg.TelegramToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	telegramBot.bot = b
	telegramBot.client = newBotClient(b, cfg.StagingChatID)
	telegramBot.topics = copier.NewTopicManager(telegramBot.client, topicStore{repo: topicRepo})

	// 注册 handlers
	telegramBot.registerHandlers()

	// 初始化数据库索引
	if err := telegramBot.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	logger.L().Info("Telegram bot initialized successfully")
	return telegramBot, nil
}

// Start 启动 Bot（阻塞式，ctx 取消后返回）
func (b *Bot) Start(ctx context.Context) error {
	logger.L().Info("Starting Telegram bot...")
	b.bot.Start(ctx)
	logger.L().Info("Telegram bot stopped")
	return nil
}

// Stop 停止 Bot，等待工作池里的 handler 跑完
func (b *Bot) Stop(ctx context.Context) error {
	logger.L().Info("Stopping Telegram bot...")
	b.workerPool.Shutdown()
	return nil
}

// asyncHandler 把 handler 包装为工作池任务
func (b *Bot) asyncHandler(handler bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		b.workerPool.Submit(HandlerTask{
			Ctx:         ctx,
			BotInstance: botInstance,
			Update:      update,
			Handler:     handler,
		})
	}
}

// ensureIndexes 确保所有数据库索引存在
func (b *Bot) ensureIndexes(ctx context.Context) error {
	if err := b.topicRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure topic indexes: %w", err)
	}
	logger.L().Debug("Topic indexes ensured")

	retention := int32(b.cfg.RecordRetention.Seconds())
	if err := b.recordRepo.EnsureIndexes(ctx, retention); err != nil {
		return fmt.Errorf("failed to ensure copy record indexes: %w", err)
	}
	logger.L().Debug("Copy record indexes ensured")

	return nil
}
