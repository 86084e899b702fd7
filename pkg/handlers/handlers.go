package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/auth"
	"github.com/arnavshah/timeclock-api/pkg/config"
	"github.com/arnavshah/timeclock-api/pkg/database"
	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/notify"
	"github.com/arnavshah/timeclock-api/pkg/report"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Version is reported by the info endpoint
const Version = "1.0.0"

// notifyTimeout bounds background notification sends
const notifyTimeout = 15 * time.Second

// Notifier is the notification channel used by the handlers
type Notifier interface {
	NotifyAdmins(ctx context.Context, text string) notify.Result
	SendTo(ctx context.Context, chatID int64, text string) error
	Status() notify.Status
}

// Handler contains dependencies for the route handlers
type Handler struct {
	DB       *gorm.DB
	Tokens   *auth.Tokens
	Notifier Notifier
	Reports  *report.Repo
	Renderer report.Renderer
	Config   *config.Config
	Logger   *log.Logger

	// Now defaults to time.Now
	Now func() time.Time

	notifications sync.WaitGroup
}

// New wires a Handler from its dependencies
func New(db *gorm.DB, cfg *config.Config, notifier Notifier, renderer report.Renderer) (*Handler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &Handler{
		DB:       db,
		Tokens:   auth.NewTokens(cfg.JWTSecret),
		Notifier: notifier,
		Reports:  report.NewRepo(sqlDB, database.DriverName(db)),
		Renderer: renderer,
		Config:   cfg,
		Logger:   cfg.Logger,
	}, nil
}

// Routes registers every endpoint on r
func (h *Handler) Routes(r *gin.Engine) {
	mustRegisterValidators()

	r.Use(h.CORSMiddleware())

	r.GET("/", h.Info)
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/branches/public/active", h.PublicBranches)

	authed := api.Group("")
	authed.Use(h.AuthMiddleware())

	timeRoutes := authed.Group("/time")
	{
		timeRoutes.POST("", h.CreateTimeEntry)
		timeRoutes.GET("/my-entries", h.MyTimeEntries)
		timeRoutes.GET("/summary", h.MonthSummary)
		timeRoutes.GET("/my-pdf/:month/:year", h.MyPDF)
		timeRoutes.PUT("/:id", h.UpdateTimeEntry)
		timeRoutes.DELETE("/:id", h.DeleteTimeEntry)

		timeRoutes.GET("/all", h.AdminOnly(), h.AllTimeEntries)
		timeRoutes.GET("/worker-pdf/:userId/:month/:year", h.AdminOnly(), h.WorkerPDF)
		timeRoutes.GET("/worker-csv/:userId/:month/:year", h.AdminOnly(), h.WorkerCSV)
	}

	schedules := authed.Group("/schedules")
	{
		schedules.GET("", h.ListSchedules)
		schedules.GET("/conflicts/check", h.CheckConflicts)
		schedules.GET("/weekly/:year/:week", h.WeeklySchedules)
		schedules.GET("/:id", h.GetSchedule)
		schedules.PATCH("/:id/confirm", h.ConfirmSchedule)

		schedules.POST("", h.AdminOnly(), h.CreateSchedule)
		schedules.PUT("/:id", h.AdminOnly(), h.UpdateSchedule)
		schedules.DELETE("/:id", h.AdminOnly(), h.DeleteSchedule)
	}

	branches := authed.Group("/branches")
	{
		branches.GET("", h.ListBranches)
		branches.GET("/:id", h.GetBranch)
		branches.GET("/:id/hours/:day", h.BranchHours)

		branches.POST("", h.AdminOnly(), h.CreateBranch)
		branches.PUT("/:id", h.AdminOnly(), h.UpdateBranch)
		branches.DELETE("/:id", h.AdminOnly(), h.DeleteBranch)
	}

	authed.GET("/profile", h.GetProfile)
	authed.PUT("/profile", h.UpdateProfile)

	announcements := authed.Group("/announcements")
	{
		announcements.GET("", h.ListAnnouncements)
		announcements.POST("", h.AdminOnly(), h.CreateAnnouncement)
		announcements.PUT("/:id", h.AdminOnly(), h.UpdateAnnouncement)
		announcements.DELETE("/:id", h.AdminOnly(), h.DeleteAnnouncement)
	}

	authed.POST("/notify/telegram", h.NotifyTelegram)
	authed.GET("/telegram/status", h.TelegramStatus)
	authed.GET("/telegram/test", h.AdminOnly(), h.TelegramTest)
	authed.POST("/telegram/notify", h.AdminOnly(), h.TelegramNotify)
}

// Info describes the service
func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Timeclock API",
		"version": Version,
	})
}

// Health pings the database
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.Logger.Printf("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CORSMiddleware allows the configured frontend origin
func (h *Handler) CORSMiddleware() gin.HandlerFunc {
	origin := "*"
	if h.Config != nil && h.Config.FrontendURL != "" {
		origin = strings.TrimRight(h.Config.FrontendURL, "/")
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")
		if origin != "*" {
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// AuthMiddleware verifies the bearer token and re-checks it against the stored user
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = token[7:]
		}

		claims, err := h.Tokens.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		var user models.User
		if err := h.DB.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User no longer exists"})
			return
		}
		if !claims.Matches(&user) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is out of date, please log in again"})
			return
		}

		c.Set("user", &user)
		c.Next()
	}
}

// AdminOnly rejects callers without the admin flag
func (h *Handler) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		c.Next()
	}
}

// currentUser returns the user loaded by AuthMiddleware
func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) location() *time.Location {
	if h.Config != nil && h.Config.Location != nil {
		return h.Config.Location
	}
	return models.ClockLocation
}

// today is the current calendar date in the configured zone
func (h *Handler) today() time.Time {
	n := h.now().In(h.location())
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// notifyAdminsAsync sends in the background. The caller never waits on it.
func (h *Handler) notifyAdminsAsync(text string) {
	if h.Notifier == nil {
		return
	}
	h.notifications.Add(1)
	go func() {
		defer h.notifications.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		res := h.Notifier.NotifyAdmins(ctx, text)
		if res.Failed > 0 {
			h.Logger.Printf("Admin notification: %d sent, %d failed", res.Sent, res.Failed)
		}
	}()
}

// WaitNotifications blocks until background notifications finish or ctx is done
func (h *Handler) WaitNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.notifications.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dateFilter narrows q to dates in [from, to]; malformed bounds are ignored
func dateFilter(q *gorm.DB, from, to string) *gorm.DB {
	if _, err := models.ParseDate(from); err == nil {
		q = q.Where("date >= ?", from)
	}
	if _, err := models.ParseDate(to); err == nil {
		q = q.Where("date <= ?", to)
	}
	return q
}
