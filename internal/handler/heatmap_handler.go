package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobalog/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	defaultHeatmapDays = 365
	maxHeatmapDays     = 731
)

// GetHeatmap 返回饮用日历，默认显示截至今天的一年。
func (a *API) GetHeatmap(c *gin.Context) {
	now := a.now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if raw := strings.TrimSpace(c.Query("end")); raw != "" {
		parsed, err := time.Parse(service.DateLayout, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "無效的結束日期")
			return
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -(defaultHeatmapDays - 1))
	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		parsed, err := time.Parse(service.DateLayout, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "無效的開始日期")
			return
		}
		start = parsed
	}

	if end.Sub(start) > maxHeatmapDays*24*time.Hour {
		respondError(c, http.StatusBadRequest, "日期區間過長")
		return
	}

	_, group := a.identity(c)
	records, err := a.store(group).List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "讀取紀錄失敗")
		return
	}

	heatmap, err := service.BuildHeatmap(records, start, end)
	if err != nil {
		respondError(c, http.StatusBadRequest, "結束日期不可早於開始日期")
		return
	}

	c.JSON(http.StatusOK, heatmap)
}
