package notify

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeBot struct {
	mu     sync.Mutex
	sent   []int64
	failOn map[int64]bool
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[msg.ChatID] {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	f.sent = append(f.sent, msg.ChatID)
	return tgbotapi.Message{Text: msg.Text}, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestNewTelegram_DisabledWithoutToken(t *testing.T) {
	n, err := NewTelegram("", []int64{1, 2}, quietLogger())
	if err != nil {
		t.Fatalf("NewTelegram returned error: %v", err)
	}
	if n.Status().Configured {
		t.Error("Expected notifier to be unconfigured")
	}

	res := n.NotifyAdmins(context.Background(), "hello")
	if res.Sent != 0 || res.Failed != 2 {
		t.Errorf("Expected 0 sent / 2 failed, got %+v", res)
	}
	if err := n.SendTo(context.Background(), 1, "hi"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}

func TestNotifyAdmins_AllSettled(t *testing.T) {
	bot := &fakeBot{failOn: map[int64]bool{2: true}}
	n := &Telegram{bot: bot, adminChats: []int64{1, 2, 3}, logger: quietLogger()}

	res := n.NotifyAdmins(context.Background(), "new entry")
	if res.Sent != 2 || res.Failed != 1 {
		t.Errorf("Expected 2 sent / 1 failed, got %+v", res)
	}
	if len(bot.sent) != 2 {
		t.Errorf("Expected two deliveries, got %v", bot.sent)
	}
}

func TestSendTo_CancelledContext(t *testing.T) {
	bot := &fakeBot{}
	n := &Telegram{bot: bot, logger: quietLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.SendTo(ctx, 1, "late"); err == nil {
		t.Error("Expected cancelled context to stop the send")
	}
	if len(bot.sent) != 0 {
		t.Error("Expected nothing to be sent")
	}
}

// stuckBot never answers until released
type stuckBot struct {
	release chan struct{}
}

func (b *stuckBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	<-b.release
	return tgbotapi.Message{}, nil
}

func TestNotifyAdmins_HonoursDeadline(t *testing.T) {
	bot := &stuckBot{release: make(chan struct{})}
	defer close(bot.release)
	n := &Telegram{bot: bot, adminChats: []int64{1, 2}, logger: quietLogger()}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan Result, 1)
	go func() { done <- n.NotifyAdmins(ctx, "hello") }()

	select {
	case res := <-done:
		if res.Sent != 0 || res.Failed != 2 {
			t.Errorf("Expected 0 sent / 2 failed, got %+v", res)
		}
		for _, e := range res.Errors {
			if !strings.Contains(e, context.DeadlineExceeded.Error()) {
				t.Errorf("Expected deadline error, got %q", e)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyAdmins did not return after its deadline")
	}
}

func TestNotifyAdmins_NoAdminChats(t *testing.T) {
	n := &Telegram{bot: &fakeBot{}, logger: quietLogger()}

	res := n.NotifyAdmins(context.Background(), "hello")
	if res.Sent != 0 || res.Failed != 0 {
		t.Errorf("Expected nothing sent or failed, got %+v", res)
	}
	if len(res.Errors) != 1 || res.Errors[0] != ErrNoAdminChats.Error() {
		t.Errorf("Expected %q, got %v", ErrNoAdminChats, res.Errors)
	}
}
