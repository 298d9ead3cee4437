package forward

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/telegram/models"
)

type fakeSender struct {
	nextID int
	fail   bool
	sent   []*bot.SendMessageParams
	copied []*bot.CopyMessageParams
}

func (f *fakeSender) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*botModels.Message, error) {
	if f.fail {
		return nil, fmt.Errorf("send failed")
	}
	f.sent = append(f.sent, params)
	f.nextID++
	return &botModels.Message{ID: f.nextID}, nil
}

func (f *fakeSender) CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*botModels.MessageID, error) {
	if f.fail {
		return nil, fmt.Errorf("copy failed")
	}
	f.copied = append(f.copied, params)
	f.nextID++
	return &botModels.MessageID{ID: f.nextID}, nil
}

func allTask() *models.ForwardTask {
	return &models.ForwardTask{
		TaskID:         1,
		OwnerID:        7,
		SourceID:       -100,
		TargetID:       -200,
		MediaTypes:     []string{models.MediaTypeAll},
		ForwardReplies: true,
	}
}

func TestServiceDeliverText(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{nextID: 500}
	msg := textMessage("hello")

	id, err := svc.Deliver(context.Background(), sender, allTask(), msg)
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if id != 501 {
		t.Fatalf("expected id 501, got %d", id)
	}
	if len(sender.sent) != 1 || sender.sent[0].Text != "hello" {
		t.Fatalf("unexpected send params: %+v", sender.sent)
	}
	if chatID, ok := sender.sent[0].ChatID.(int64); !ok || chatID != -200 {
		t.Fatalf("expected target chat -200, got %v", sender.sent[0].ChatID)
	}
}

func TestServiceDeliverMediaUsesCopy(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{}
	msg := videoMessage(100)

	if _, err := svc.Deliver(context.Background(), sender, allTask(), msg); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if len(sender.copied) != 1 || len(sender.sent) != 0 {
		t.Fatalf("expected media to be copied, sent=%d copied=%d", len(sender.sent), len(sender.copied))
	}
}

func TestServiceDeliverFilteredOut(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{}
	task := allTask()
	task.MediaTypes = []string{models.MediaTypePhoto}

	id, err := svc.Deliver(context.Background(), sender, task, videoMessage(100))
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if id != 0 || len(sender.copied) != 0 {
		t.Fatalf("expected filtered message to be skipped")
	}
}

func TestServiceDeliverSkipsDuplicates(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{}
	task := allTask()
	task.SkipDuplicates = true

	if _, err := svc.Deliver(context.Background(), sender, task, textMessage("same")); err != nil {
		t.Fatalf("first Deliver failed: %v", err)
	}

	// 相同签名的第二条被跳过
	id, err := svc.Deliver(context.Background(), sender, task, textMessage("same"))
	if err != nil {
		t.Fatalf("second Deliver failed: %v", err)
	}
	if id != 0 || len(sender.sent) != 1 {
		t.Fatalf("expected duplicate to be skipped, sent=%d", len(sender.sent))
	}

	// 去重关闭的任务不受影响
	other := allTask()
	other.TaskID = 2
	if _, err := svc.Deliver(context.Background(), sender, other, textMessage("same")); err != nil {
		t.Fatalf("Deliver for other task failed: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected other task to forward, sent=%d", len(sender.sent))
	}
}

func TestServiceDeliverReplyMapping(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{nextID: 500}
	task := allTask()

	original := textMessage("root")
	original.ID = 10
	if _, err := svc.Deliver(context.Background(), sender, task, original); err != nil {
		t.Fatalf("Deliver root failed: %v", err)
	}

	reply := textMessage("reply")
	reply.ID = 11
	reply.ReplyToMessage = &botModels.Message{ID: 10}
	if _, err := svc.Deliver(context.Background(), sender, task, reply); err != nil {
		t.Fatalf("Deliver reply failed: %v", err)
	}

	params := sender.sent[1]
	if params.ReplyParameters == nil || params.ReplyParameters.MessageID != 501 {
		t.Fatalf("expected reply to forwarded message 501, got %+v", params.ReplyParameters)
	}
}

func TestServiceDeliverReplyToUnknownMessage(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{}

	reply := textMessage("reply")
	reply.ReplyToMessage = &botModels.Message{ID: 99}
	if _, err := svc.Deliver(context.Background(), sender, allTask(), reply); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	// 原消息不在账本中：作为普通消息转发
	if sender.sent[0].ReplyParameters != nil {
		t.Fatalf("expected no reply parameters, got %+v", sender.sent[0].ReplyParameters)
	}
}

func TestServiceDeliverFailureNotRegistered(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{fail: true}
	task := allTask()
	task.SkipDuplicates = true

	if _, err := svc.Deliver(context.Background(), sender, task, textMessage("hello")); err == nil {
		t.Fatalf("expected error from failed send")
	}

	// 失败的尝试不登记签名：重试仍会发送
	sender.fail = false
	id, err := svc.Deliver(context.Background(), sender, task, textMessage("hello"))
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if id == 0 || len(sender.sent) != 1 {
		t.Fatalf("expected retry to forward, id=%d sent=%d", id, len(sender.sent))
	}
}

func TestServiceDeliverCustomCaption(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{}
	task := allTask()
	task.Caption = "via bot"

	msg := videoMessage(100)
	msg.Caption = "original"
	if _, err := svc.Deliver(context.Background(), sender, task, msg); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if got := sender.copied[0].Caption; got != "via bot\n\noriginal" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestServiceDeliverLinkRemoval(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{}
	task := allTask()
	task.RemoveLinks = true

	if _, err := svc.Deliver(context.Background(), sender, task, textMessage("read https://example.com now")); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if got := sender.sent[0].Text; got != "read now" {
		t.Fatalf("expected links stripped, got %q", got)
	}

	// 清理后为空的消息直接跳过
	id, err := svc.Deliver(context.Background(), sender, task, textMessage("https://example.com"))
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if id != 0 || len(sender.sent) != 1 {
		t.Fatalf("expected empty message to be skipped")
	}
}

func TestServiceForgetTask(t *testing.T) {
	svc := NewService()
	sender := &fakeSender{}
	task := allTask()
	task.SkipDuplicates = true

	if _, err := svc.Deliver(context.Background(), sender, task, textMessage("same")); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	svc.ForgetTask(task.TaskID)

	// 签名缓存清空后同样的消息重新可转发
	id, err := svc.Deliver(context.Background(), sender, task, textMessage("same"))
	if err != nil {
		t.Fatalf("Deliver after ForgetTask failed: %v", err)
	}
	if id == 0 || len(sender.sent) != 2 {
		t.Fatalf("expected message to forward after ForgetTask")
	}
}
