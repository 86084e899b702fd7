package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/auth"
	"github.com/arnavshah/timeclock-api/pkg/config"
	"github.com/arnavshah/timeclock-api/pkg/database"
	"github.com/arnavshah/timeclock-api/pkg/handlers"
	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/notify"
	"github.com/arnavshah/timeclock-api/pkg/report"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := cfg.Logger
	models.ClockLocation = cfg.Location

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Printf("Could not create default admin: %v", err)
	}

	// A missing or broken bot token leaves notifications disabled
	bot, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.AdminChatIDs, logger)
	if err != nil {
		logger.Printf("Telegram disabled: %v", err)
	}

	renderer := report.NewRodRenderer(cfg.ChromeBin, logger)
	defer renderer.Close()

	database.StartJanitor(ctx, db, cfg.ScheduleTTL, database.JanitorInterval, logger)

	h, err := handlers.New(db, cfg, bot, renderer)
	if err != nil {
		logger.Fatalf("handlers: %v", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	h.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("could not run server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown: %v", err)
	}
	if err := h.WaitNotifications(shutdownCtx); err != nil {
		logger.Printf("Pending notifications dropped: %v", err)
	}
}
