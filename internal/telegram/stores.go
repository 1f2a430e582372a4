package telegram

import (
	"context"

	"copier_bot/internal/telegram/copier"
	"copier_bot/internal/telegram/models"
	"copier_bot/internal/telegram/repository"
)

// topicStore 把话题仓储适配成 copier.TopicStore
type topicStore struct {
	repo repository.TopicRepository
}

func (s topicStore) GetByName(ctx context.Context, groupID int64, name string) (*copier.Topic, error) {
	rec, err := s.repo.GetByName(ctx, groupID, name)
	if err != nil || rec == nil {
		return nil, err
	}
	return &copier.Topic{
		GroupID:  rec.GroupID,
		ThreadID: int(rec.ThreadID),
		Name:     rec.Name,
	}, nil
}

func (s topicStore) Save(ctx context.Context, topic *copier.Topic) error {
	return s.repo.Save(ctx, &models.Topic{
		GroupID:  topic.GroupID,
		ThreadID: int64(topic.ThreadID),
		Name:     topic.Name,
	})
}

// recordStore 把复制记录仓储适配成 copier.RecordStore
type recordStore struct {
	repo repository.CopyRecordRepository
}

func (s recordStore) SaveResult(ctx context.Context, res copier.Result) error {
	return s.repo.CreateRecord(ctx, &models.CopyRecord{
		JobID:           res.JobID,
		SourceChat:      res.SourceChat,
		SourceMessageID: int64(res.MessageID),
		TargetGroupID:   res.GroupID,
		TopicThreadID:   int64(res.ThreadID),
		CopiedMessageID: int64(res.DestMessageID),
		Status:          res.Status,
		Reason:          res.Reason,
	})
}
