package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/notify"
	"github.com/gin-gonic/gin"
)

type telegramMessage struct {
	Message string `json:"message" binding:"required,max=4000"`
	// UserID sends to one worker's linked chat instead of the admins
	UserID uint `json:"userId"`
}

// NotifyTelegram forwards a worker's message to every admin chat
func (h *Handler) NotifyTelegram(c *gin.Context) {
	user := currentUser(c)

	var req telegramMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	text := fmt.Sprintf("Message from %s (%s)\n%s", user.DisplayName(), user.EmployeeID, strings.TrimSpace(req.Message))
	h.respondResult(c, h.sendToAdmins(c.Request.Context(), text))
}

// TelegramStatus reports whether the bot is configured
func (h *Handler) TelegramStatus(c *gin.Context) {
	if h.Notifier == nil {
		c.JSON(http.StatusOK, notify.Status{})
		return
	}
	c.JSON(http.StatusOK, h.Notifier.Status())
}

// TelegramTest sends a test message to the admin chats
func (h *Handler) TelegramTest(c *gin.Context) {
	text := fmt.Sprintf("Test notification from Timeclock API at %s", h.now().In(h.location()).Format("2006-01-02 15:04"))
	h.respondResult(c, h.sendToAdmins(c.Request.Context(), text))
}

// TelegramNotify sends an admin message to the admin chats or to one worker
func (h *Handler) TelegramNotify(c *gin.Context) {
	var req telegramMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if req.UserID == 0 {
		h.respondResult(c, h.sendToAdmins(c.Request.Context(), req.Message))
		return
	}

	var worker models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&worker, req.UserID).Error; err != nil {
		h.fail(c, err)
		return
	}
	if worker.TelegramChatID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": worker.Username + " has not linked a Telegram chat"})
		return
	}

	res := notify.Result{Sent: 1}
	if err := h.sendTo(c.Request.Context(), *worker.TelegramChatID, req.Message); err != nil {
		h.Logger.Printf("Telegram message to %s failed: %v", worker.Username, err)
		res = notify.Result{Failed: 1, Errors: []string{err.Error()}}
	}
	h.respondResult(c, res)
}

func (h *Handler) sendToAdmins(ctx context.Context, text string) notify.Result {
	if h.Notifier == nil {
		return notify.Result{Errors: []string{notify.ErrDisabled.Error()}}
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	return h.Notifier.NotifyAdmins(ctx, text)
}

func (h *Handler) sendTo(ctx context.Context, chatID int64, text string) error {
	if h.Notifier == nil {
		return notify.ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	return h.Notifier.SendTo(ctx, chatID, text)
}

// respondResult always answers 200; delivery failures are reported, not raised
func (h *Handler) respondResult(c *gin.Context, res notify.Result) {
	c.JSON(http.StatusOK, gin.H{
		"success": res.Sent > 0,
		"sent":    res.Sent,
		"failed":  res.Failed,
		"errors":  res.Errors,
	})
}
