package handler

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/auth"
	"github.com/arnavshah/timeclock-api/pkg/config"
	"github.com/arnavshah/timeclock-api/pkg/database"
	"github.com/arnavshah/timeclock-api/pkg/handlers"
	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/notify"
	"github.com/arnavshah/timeclock-api/pkg/report"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	r       *gin.Engine
	once    sync.Once
	initErr error
)

func setup() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	logger := cfg.Logger
	models.ClockLocation = cfg.Location

	// Functions are short lived, so a single attempt is enough
	db, err := database.Open(cfg)
	if err != nil {
		initErr = err
		return
	}
	if err := database.Migrate(db); err != nil {
		initErr = err
		return
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Printf("Could not create default admin: %v", err)
	}
	if n, err := database.PurgeExpiredSchedules(context.Background(), db, cfg.ScheduleTTL, time.Now()); err != nil {
		logger.Printf("Schedule purge failed: %v", err)
	} else if n > 0 {
		logger.Printf("Purged %d expired schedules", n)
	}

	bot, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.AdminChatIDs, logger)
	if err != nil {
		logger.Printf("Telegram disabled: %v", err)
	}

	h, err := handlers.New(db, cfg, bot, report.NewRodRenderer(cfg.ChromeBin, logger))
	if err != nil {
		initErr = err
		return
	}

	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	h.Routes(r)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	once.Do(setup)
	if initErr != nil {
		log.Printf("startup failed: %v", initErr)
		http.Error(w, `{"message":"Service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
