package handler

import (
	"log/slog"
	"time"

	"github.com/bobalog/internal/service"
	"gorm.io/gorm"
)

const defaultKeepAlive = 25 * time.Second

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	dashboard    *service.DashboardService
	configs      *service.UserConfigService
	system       *service.SystemSettingService
	insights     insightGenerator
	feed         *service.Broadcaster
	defaultGroup string
	logger       *slog.Logger
	keepAlive    time.Duration
	now          func() time.Time
}

// Options 描述构造 API 时可选的依赖。
type Options struct {
	Catalog      service.Catalog
	Broadcaster  *service.Broadcaster
	DefaultGroup string
	Logger       *slog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	catalog := opts.Catalog
	if len(catalog) == 0 {
		parsed, err := service.DefaultCatalog()
		if err != nil {
			logger.Error("load embedded achievement catalog", slog.Any("error", err))
		}
		catalog = parsed
	}

	feed := opts.Broadcaster
	if feed == nil {
		feed = service.NewBroadcaster()
	}

	systemService := service.NewSystemSettingService(gdb)

	return &API{
		db:           gdb,
		dashboard:    service.NewDashboardService(catalog),
		configs:      service.NewUserConfigService(gdb),
		system:       systemService,
		insights:     service.NewInsightService(systemService, logger),
		feed:         feed,
		defaultGroup: opts.DefaultGroup,
		logger:       logger,
		keepAlive:    defaultKeepAlive,
		now:          time.Now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Broadcaster 返回变更广播器，供 postgres 监听器转发远端变更。
func (a *API) Broadcaster() *service.Broadcaster {
	return a.feed
}

func (a *API) store(group string) *service.DrinkStore {
	return service.NewDrinkStore(a.db, group, a.feed)
}
