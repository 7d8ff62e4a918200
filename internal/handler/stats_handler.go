package handler

import (
	"net/http"
	"strings"

	"github.com/bobalog/internal/service"
	"github.com/gin-gonic/gin"
)

type sugarOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// GetMeta 返回表单所需的品牌、加料、冰块与甜度选项。
func (a *API) GetMeta(c *gin.Context) {
	sugar := make([]sugarOption, 0, 11)
	for value := 0; value <= 10; value++ {
		sugar = append(sugar, sugarOption{Value: value, Label: service.SugarLabel(value)})
	}

	c.JSON(http.StatusOK, gin.H{
		"brands":      service.Brands,
		"customBrand": service.CustomBrandOption,
		"toppings":    service.CommonToppings,
		"iceLevels":   service.IceLevels,
		"sugarLevels": sugar,
	})
}

// GetStats 返回统计页数据；快照未变化时响应 304。
func (a *API) GetStats(c *gin.Context) {
	_, group := a.identity(c)
	dashboard, err := a.dashboard.Stats(c.Request.Context(), a.store(group), group, c.Query("quarter"))
	if err != nil {
		a.logger.Error("compute dashboard", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "統計資料讀取失敗")
		return
	}

	etag := `"` + dashboard.Fingerprint + `"`
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if strings.TrimSpace(c.GetHeader("If-None-Match")) == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetAchievements 返回按分类分组的勋章墙。
func (a *API) GetAchievements(c *gin.Context) {
	_, group := a.identity(c)
	board, err := a.dashboard.Achievements(c.Request.Context(), a.store(group), group)
	if err != nil {
		a.logger.Error("compute achievements", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "成就資料讀取失敗")
		return
	}

	c.JSON(http.StatusOK, board)
}

type collectionEntry struct {
	service.CollectionItem
	HallOfFame bool `json:"hallOfFame"`
}

// GetCollection 返回饮品图鉴，支持关键字与名人堂筛选。
func (a *API) GetCollection(c *gin.Context) {
	_, group := a.identity(c)
	records, err := a.store(group).List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "讀取紀錄失敗")
		return
	}

	items := service.FilterCollection(service.BuildCollection(records), c.Query("search"), queryBool(c, "hall_of_fame"))
	entries := make([]collectionEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, collectionEntry{CollectionItem: item, HallOfFame: item.HallOfFame()})
	}

	c.JSON(http.StatusOK, gin.H{"items": entries, "total": len(entries)})
}

// GetMonthSummary 返回本月战况，并对照当前昵称的预算与杯数上限。
func (a *API) GetMonthSummary(c *gin.Context) {
	nickname, group := a.identity(c)
	records, err := a.store(group).List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "讀取紀錄失敗")
		return
	}

	settings, err := a.configs.Get(c.Request.Context(), group, nickname)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "讀取個人設定失敗")
		return
	}

	c.JSON(http.StatusOK, service.MonthSummary(records, a.now(), settings))
}
