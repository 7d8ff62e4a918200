package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobalog/internal/config"
	"github.com/bobalog/internal/db"
	"github.com/bobalog/internal/handler"
	"github.com/bobalog/internal/logging"
	"github.com/bobalog/internal/router"
	"github.com/bobalog/internal/service"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.NewLogger("bobalog", cfg.LogLevel)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
		Silent: cfg.GinMode == gin.ReleaseMode,
	}); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load achievement catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := service.NewBroadcaster()
	if cfg.GroupMode() {
		listener := service.NewPGListener(cfg.DatabaseDSN, feed, logger)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("change listener stopped", slog.Any("error", err))
			}
		}()
	}

	api := handler.NewAPI(db.DB, handler.Options{
		Catalog:      catalog,
		Broadcaster:  feed,
		DefaultGroup: cfg.DefaultGroup,
		Logger:       logger,
	})

	// 设置并运行 Gin 服务器
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, cfg.SessionSecret, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("server starting",
		slog.String("addr", cfg.ListenAddr),
		slog.String("driver", cfg.DatabaseDriver),
		slog.Bool("group_mode", cfg.GroupMode()),
		slog.Int("achievements", len(catalog)),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to run server: %v", err)
	}
}

func loadCatalog(path string) (service.Catalog, error) {
	if path == "" {
		return service.DefaultCatalog()
	}
	return service.LoadCatalog(path)
}
