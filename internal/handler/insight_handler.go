package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/bobalog/internal/db"
	"github.com/bobalog/internal/service"
	"github.com/gin-gonic/gin"
)

type insightGenerator interface {
	Generate(ctx context.Context, records []db.DrinkRecord) (service.InsightResult, error)
}

// GenerateInsights 让 AI 分析当前群组的全部记录，同时返回结构化结果与渲染好的 HTML。
func (a *API) GenerateInsights(c *gin.Context) {
	_, group := a.identity(c)
	records, err := a.store(group).List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "讀取紀錄失敗")
		return
	}

	result, err := a.insights.Generate(c.Request.Context(), records)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRecordsToAnalyze):
			respondError(c, http.StatusBadRequest, "還沒有任何紀錄可以分析")
		case errors.Is(err, service.ErrAIAPIKeyMissing):
			respondError(c, http.StatusBadRequest, "請先設定 AI API Key")
		default:
			a.logger.Warn("generate insights", "group", group, "error", err)
			respondError(c, http.StatusBadGateway, "AI 分析失敗，請稍後再試")
		}
		return
	}

	rendered, err := service.RenderInsightHTML(result)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "渲染分析結果失敗")
		return
	}

	c.JSON(http.StatusOK, gin.H{"insight": result, "html": rendered})
}
