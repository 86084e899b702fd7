// Package notify delivers Telegram messages to admins and workers
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrDisabled is returned when no bot token is configured
var ErrDisabled = errors.New("telegram notifications are not configured")

// ErrNoAdminChats is returned when the bot has no admin chats to fan out to
var ErrNoAdminChats = errors.New("no telegram admin chats configured")

// requestTimeout bounds each call to the Telegram API
const requestTimeout = 10 * time.Second

// Result summarises a fan-out send
type Result struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// Status describes the notifier for the status endpoint
type Status struct {
	Configured  bool   `json:"configured"`
	BotUsername string `json:"botUsername,omitempty"`
	AdminChats  int    `json:"adminChats"`
}

// sender is the part of the bot API we use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends messages through a Telegram bot
type Telegram struct {
	bot        sender
	username   string
	adminChats []int64
	logger     *log.Logger
}

// NewTelegram connects the bot. An empty token yields a disabled notifier.
func NewTelegram(token string, adminChats []int64, logger *log.Logger) (*Telegram, error) {
	t := &Telegram{adminChats: adminChats, logger: logger}
	if token == "" {
		logger.Println("TELEGRAM_BOT_TOKEN not set; Telegram notifications disabled")
		return t, nil
	}

	client := &http.Client{Timeout: requestTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return t, fmt.Errorf("connect telegram bot: %w", err)
	}
	bot.Debug = false
	logger.Printf("Authorized on Telegram account %s", bot.Self.UserName)

	t.bot = bot
	t.username = bot.Self.UserName
	return t, nil
}

// Status reports whether the bot is configured
func (t *Telegram) Status() Status {
	return Status{
		Configured:  t.bot != nil,
		BotUsername: t.username,
		AdminChats:  len(t.adminChats),
	}
}

// SendTo sends a plain-text message to one chat. It returns when ctx is done
// even if the bot call is still in flight.
func (t *Telegram) SendTo(ctx context.Context, chatID int64, text string) error {
	if t.bot == nil {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send to %d: %w", chatID, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send to %d: %w", chatID, ctx.Err())
	}
}

// NotifyAdmins sends text to every admin chat concurrently and waits for all
// of them. Failures are logged and counted, never returned.
func (t *Telegram) NotifyAdmins(ctx context.Context, text string) Result {
	if t.bot == nil {
		return Result{Failed: len(t.adminChats), Errors: []string{ErrDisabled.Error()}}
	}
	if len(t.adminChats) == 0 {
		return Result{Errors: []string{ErrNoAdminChats.Error()}}
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		res Result
	)
	for _, chatID := range t.adminChats {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			err := t.SendTo(ctx, chatID, text)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, err.Error())
				t.logger.Printf("Telegram notification failed: %v", err)
				return
			}
			res.Sent++
		}(chatID)
	}
	wg.Wait()
	return res
}
