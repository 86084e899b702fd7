package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileConfig is the optional TOML file. Environment variables win over it.
type FileConfig struct {
	Port        string `toml:"port"`
	DatabaseURL string `toml:"database_url"`
	DataPath    string `toml:"data_path"`
	FrontendURL string `toml:"frontend_url"`
	Timezone    string `toml:"timezone"`
	ChromeBin   string `toml:"chrome_bin"`

	Telegram struct {
		AdminChatIDs []int64 `toml:"admin_chat_ids"`
	} `toml:"telegram"`

	Time struct {
		EditWindowDays    *int     `toml:"edit_window_days"`
		OvertimeThreshold *float64 `toml:"overtime_threshold_hours"`
	} `toml:"time"`

	Schedule struct {
		TTLDays  *int `toml:"ttl_days"`
		BulkDays *int `toml:"bulk_days"`
	} `toml:"schedule"`
}

// Config centralises all environment and runtime configuration.
type Config struct {
	Logger *log.Logger

	Port        string
	DatabaseURL string
	DataPath    string
	JWTSecret   string
	FrontendURL string

	TelegramBotToken string
	AdminChatIDs     []int64

	Timezone string
	Location *time.Location

	EditWindowDays    int
	OvertimeThreshold float64
	ScheduleTTL       time.Duration
	BulkDays          int
	DBRetryInterval   time.Duration
	ChromeBin         string

	AdminUsername string
	AdminPassword string
}

// LoadDotEnv loads the first .env found in the usual places
func LoadDotEnv() {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
}

// Load builds the Config from an optional TOML file and the environment.
func Load() (*Config, error) {
	logger := NewLogger()

	var file FileConfig
	path := os.Getenv("TIMECLOCK_CONFIG")
	if path == "" {
		if _, err := os.Stat("timeclock.toml"); err == nil {
			path = "timeclock.toml"
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		logger.Printf("Loaded config file %s", path)
	}

	return FromEnv(&file, logger)
}

// FromEnv resolves every setting, environment first, then file, then default.
func FromEnv(file *FileConfig, logger *log.Logger) (*Config, error) {
	if file == nil {
		file = &FileConfig{}
	}
	if logger == nil {
		logger = NewLogger()
	}

	cfg := &Config{
		Logger:           logger,
		Port:             getEnvOrDefault("PORT", orString(file.Port, "8000")),
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", file.DatabaseURL),
		DataPath:         getEnvOrDefault("DATA_PATH", orString(file.DataPath, "timeclock.db")),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		FrontendURL:      getEnvOrDefault("FRONTEND_URL", file.FrontendURL),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		Timezone:         getEnvOrDefault("TIMEZONE", orString(file.Timezone, "Local")),
		ChromeBin:        getEnvOrDefault("CHROME_BIN", file.ChromeBin),
		AdminUsername:    getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	cfg.AdminChatIDs = file.Telegram.AdminChatIDs
	if raw := os.Getenv("TELEGRAM_ADMIN_CHAT_IDS"); raw != "" {
		ids, err := ParseChatIDs(raw)
		if err != nil {
			return nil, err
		}
		cfg.AdminChatIDs = ids
	}

	if cfg.EditWindowDays, err = getIntEnv("EDIT_WINDOW_DAYS", orInt(file.Time.EditWindowDays, 2)); err != nil {
		return nil, err
	}
	if cfg.OvertimeThreshold, err = getFloatEnv("OVERTIME_THRESHOLD_HOURS", orFloat(file.Time.OvertimeThreshold, 8)); err != nil {
		return nil, err
	}
	ttlDays, err := getIntEnv("SCHEDULE_TTL_DAYS", orInt(file.Schedule.TTLDays, 180))
	if err != nil {
		return nil, err
	}
	cfg.ScheduleTTL = time.Duration(ttlDays) * 24 * time.Hour
	if cfg.BulkDays, err = getIntEnv("BULK_DAYS", orInt(file.Schedule.BulkDays, 28)); err != nil {
		return nil, err
	}
	if cfg.BulkDays <= 0 {
		return nil, fmt.Errorf("BULK_DAYS must be positive")
	}

	cfg.DBRetryInterval = 5 * time.Second
	if raw := os.Getenv("DB_RETRY_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid DB_RETRY_INTERVAL %q", raw)
		}
		cfg.DBRetryInterval = d
	}

	logger.Printf("Config loaded: port=%s tz=%s admin_chats=%d", cfg.Port, cfg.Location, len(cfg.AdminChatIDs))
	return cfg, nil
}

// UsesPostgres reports whether DATABASE_URL selects Postgres over SQLite
func (c *Config) UsesPostgres() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// NewLogger returns the application logger
func NewLogger() *log.Logger {
	return log.New(os.Stdout, "[timeclock] ", log.LstdFlags)
}

// ParseChatIDs parses a comma separated list of Telegram chat ids
func ParseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q in TELEGRAM_ADMIN_CHAT_IDS", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnvOrDefault(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func getIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func getFloatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return f, nil
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
