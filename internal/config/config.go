package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	SessionSecret  string
	GinMode        string
	CatalogPath    string
	DefaultGroup   string
	LogLevel       slog.Level
}

// LoadDotEnv 读取可选的 .env 文件，文件不存在时静默忽略。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		driver = "sqlite"
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "bobalog.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "bobalog-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabaseDriver: driver,
		DatabasePath:   databasePath,
		DatabaseDSN:    strings.TrimSpace(os.Getenv("DATABASE_DSN")),
		SessionSecret:  sessionSecret,
		GinMode:        ginMode,
		CatalogPath:    strings.TrimSpace(os.Getenv("ACHIEVEMENT_CATALOG")),
		DefaultGroup:   strings.TrimSpace(os.Getenv("DEFAULT_GROUP")),
		LogLevel:       parseLogLevel(os.Getenv("LOG_LEVEL")),
	}
}

// Validate 检查驱动与连接串的组合是否可用。
func (c AppConfig) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite":
		return nil
	case "postgres":
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required when DB_DRIVER=postgres")
		}
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver)
	}
}

// GroupMode 表示是否运行在多人共享的群组版。
func (c AppConfig) GroupMode() bool {
	return c.DatabaseDriver == "postgres"
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
