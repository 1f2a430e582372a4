package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用程序配置
type Config struct {
	TelegramToken      string        // Telegram Bot API Token
	AuthorizedUserIDs  []int64       // 允许发起复制的用户 ID 列表
	SourceChatID       int64         // 源频道 ID（可选，用于校验链接确实指向配置的源）
	DestinationGroupID int64         // 目标群组 ID（话题在其中创建）
	StagingChatID      int64         // 中转会话 ID（可选，0 表示用发起人的私聊中转）
	CopyDelay          time.Duration // 每条消息之间的间隔
	MongoURI           string        // MongoDB 连接 URI
	MongoDBName        string        // MongoDB 数据库名称
	RecordRetention    time.Duration // 复制记录的保留时长（TTL 索引）
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDBName:   os.Getenv("MONGO_DB_NAME"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.MongoDBName == "" {
		cfg.MongoDBName = "copier_bot"
	}

	ids, err := parseUserIDs(os.Getenv("AUTHORIZED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse AUTHORIZED_USER_IDS: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("AUTHORIZED_USER_IDS is required")
	}
	cfg.AuthorizedUserIDs = ids

	cfg.DestinationGroupID, err = parseChatID("DESTINATION_GROUP_ID")
	if err != nil {
		return nil, err
	}
	if cfg.DestinationGroupID == 0 {
		return nil, fmt.Errorf("DESTINATION_GROUP_ID is required")
	}

	// 可选项
	cfg.SourceChatID, err = parseChatID("SOURCE_CHAT_ID")
	if err != nil {
		return nil, err
	}
	cfg.StagingChatID, err = parseChatID("STAGING_CHAT_ID")
	if err != nil {
		return nil, err
	}

	// 每条消息之间的间隔（默认 1500ms）
	cfg.CopyDelay = 1500 * time.Millisecond
	if delayStr := strings.TrimSpace(os.Getenv("COPY_DELAY_MS")); delayStr != "" {
		ms, err := strconv.Atoi(delayStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse COPY_DELAY_MS: %w", err)
		}
		if ms < 0 {
			return nil, fmt.Errorf("COPY_DELAY_MS must be >= 0, got %d", ms)
		}
		cfg.CopyDelay = time.Duration(ms) * time.Millisecond
	}

	// 复制记录保留时长（默认 48 小时）
	cfg.RecordRetention = 48 * time.Hour
	if hoursStr := strings.TrimSpace(os.Getenv("RECORD_RETENTION_HOURS")); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RECORD_RETENTION_HOURS: %w", err)
		}
		if hours < 1 {
			return nil, fmt.Errorf("RECORD_RETENTION_HOURS must be >= 1, got %d", hours)
		}
		cfg.RecordRetention = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}

// parseUserIDs 解析逗号分隔的用户 ID 字符串
// 支持格式: "123456789" 或 "123456789,987654321"
func parseUserIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// parseChatID 解析可选的会话 ID 环境变量，未设置时返回 0
func parseChatID(name string) (int64, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return id, nil
}
