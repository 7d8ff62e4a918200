package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bobalog/internal/handler"
	"github.com/bobalog/internal/logging"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionCookieName = "bobalog_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if gin.IsDebugging() {
		r.Use(gin.Logger())
	} else {
		r.Use(requestLogger(logger))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/session", api.GetSession)
		apiGroup.POST("/session", api.CreateSession)
		apiGroup.DELETE("/session", api.DeleteSession)

		apiGroup.GET("/meta", api.GetMeta)
		apiGroup.GET("/avatar", api.GetAvatar)

		apiGroup.GET("/settings", api.GetSystemSettings)
		apiGroup.PUT("/settings", api.UpdateSystemSettings)
		apiGroup.POST("/settings/test", api.TestAIConnection)

		// 需要昵称的路由
		owned := apiGroup.Group("")
		owned.Use(api.RequireNickname())
		{
			owned.GET("/config", api.GetUserConfig)
			owned.PUT("/config", api.UpdateUserConfig)

			owned.GET("/records", api.ListRecords)
			owned.POST("/records", api.CreateRecord)
			owned.PUT("/records/:id", api.UpdateRecord)
			owned.DELETE("/records/:id", api.DeleteRecord)
			owned.DELETE("/records", api.ResetRecords)

			owned.GET("/export", api.ExportRecords)
			owned.POST("/import", api.ImportRecords)

			owned.GET("/stats", api.GetStats)
			owned.GET("/achievements", api.GetAchievements)
			owned.GET("/collection", api.GetCollection)
			owned.GET("/month-summary", api.GetMonthSummary)
			owned.GET("/heatmap", api.GetHeatmap)
			owned.POST("/insights", api.GenerateInsights)
			owned.GET("/events", api.StreamChanges)
		}
	}

	return r
}

// requestLogger 以结构化日志记录每个请求，替代 release 模式下的 gin.Logger。
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		var group string
		if session, ok := c.Get(sessions.DefaultKey); ok {
			group, _ = session.(sessions.Session).Get("group").(string)
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logging.WithGroup(logger, group).Log(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
