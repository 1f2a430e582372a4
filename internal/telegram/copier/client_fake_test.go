package copier

import (
	"context"
	"errors"
	"sync"

	botModels "github.com/go-telegram/bot/models"
)

// sentItem 发送到假客户端的一条记录
type sentItem struct {
	Kind     string
	Text     string
	FileID   string
	Caption  string
	Topic    Topic
	Copied   bool // 通过整体复刻而非 Send* 送达
	SourceID int  // 复刻的源消息 ID
}

// fakeClient 可编排行为的 Client 假实现
type fakeClient struct {
	mu         sync.Mutex
	messages   map[int]*botModels.Message
	transient  map[int]int // 每条消息在成功前还要失败的次数
	fetchCalls map[int]int
	sendErrs   []error // 每次发送按序弹出，nil 表示成功
	sent       []sentItem
	nextID     int
	onSend     func(sentCount int)

	createdTopics []string
	createErr     error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		messages:   make(map[int]*botModels.Message),
		transient:  make(map[int]int),
		fetchCalls: make(map[int]int),
		nextID:     1,
	}
}

func (f *fakeClient) addText(id int, text string) {
	f.messages[id] = &botModels.Message{ID: id, Text: text}
}

func (f *fakeClient) addPhoto(id int, fileID, caption string) {
	f.messages[id] = &botModels.Message{
		ID:      id,
		Photo:   []botModels.PhotoSize{{FileID: fileID}},
		Caption: caption,
	}
}

func (f *fakeClient) queueSendErr(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErrs = append(f.sendErrs, errs...)
}

func (f *fakeClient) sentItems() []sentItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]sentItem, len(f.sent))
	copy(items, f.sent)
	return items
}

func (f *fakeClient) GetMessage(ctx context.Context, chat ChatRef, messageID int) (*botModels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchCalls[messageID]++
	if f.transient[messageID] > 0 {
		f.transient[messageID]--
		return nil, errors.New("temporary fetch error")
	}

	msg, ok := f.messages[messageID]
	if !ok {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

func (f *fakeClient) send(item sentItem) (int, error) {
	f.mu.Lock()
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			f.mu.Unlock()
			return 0, err
		}
	}

	f.sent = append(f.sent, item)
	id := f.nextID
	f.nextID++
	count := len(f.sent)
	hook := f.onSend
	f.mu.Unlock()

	if hook != nil {
		hook(count)
	}
	return id, nil
}

func (f *fakeClient) sendDesc(kind string, topic Topic, desc Descriptor) (int, error) {
	return f.send(sentItem{
		Kind:    kind,
		Text:    desc.Text,
		FileID:  desc.FileID,
		Caption: desc.Caption,
		Topic:   topic,
	})
}

func (f *fakeClient) CopyMessage(ctx context.Context, topic Topic, src MessageRef) (int, error) {
	return f.send(sentItem{
		Kind:     KindOther,
		Topic:    topic,
		Copied:   true,
		SourceID: src.MessageID,
	})
}

func (f *fakeClient) SendText(ctx context.Context, topic Topic, desc Descriptor) (int, error) {
	return f.sendDesc(KindText, topic, desc)
}

func (f *fakeClient) SendPhoto(ctx context.Context, topic Topic, desc Descriptor) (int, error) {
	return f.sendDesc(KindPhoto, topic, desc)
}

func (f *fakeClient) SendVideo(ctx context.Context, topic Topic, desc Descriptor) (int, error) {
	return f.sendDesc(KindVideo, topic, desc)
}

func (f *fakeClient) SendDocument(ctx context.Context, topic Topic, desc Descriptor) (int, error) {
	return f.sendDesc(KindDocument, topic, desc)
}

func (f *fakeClient) SendSticker(ctx context.Context, topic Topic, desc Descriptor) (int, error) {
	return f.sendDesc(KindSticker, topic, desc)
}

func (f *fakeClient) SendAudio(ctx context.Context, topic Topic, desc Descriptor) (int, error) {
	return f.sendDesc(KindAudio, topic, desc)
}

func (f *fakeClient) SendVoice(ctx context.Context, topic Topic, desc Descriptor) (int, error) {
	return f.sendDesc(KindVoice, topic, desc)
}

func (f *fakeClient) SendAnimation(ctx context.Context, topic Topic, desc Descriptor) (int, error) {
	return f.sendDesc(KindAnimation, topic, desc)
}

func (f *fakeClient) CreateForumTopic(ctx context.Context, groupID int64, name string) (Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return Topic{}, f.createErr
	}
	f.createdTopics = append(f.createdTopics, name)
	return Topic{
		GroupID:  groupID,
		ThreadID: 100 + len(f.createdTopics),
		Name:     name,
	}, nil
}
