package handler

import (
	"errors"
	"net/http"

	"github.com/bobalog/internal/service"
	"github.com/gin-gonic/gin"
)

// GetUserConfig 返回当前昵称的预算与杯数上限。
func (a *API) GetUserConfig(c *gin.Context) {
	nickname, group := a.identity(c)
	settings, err := a.configs.Get(c.Request.Context(), group, nickname)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "讀取個人設定失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": settings})
}

// UpdateUserConfig 保存当前昵称的预算与杯数上限，非正数视为清除。
func (a *API) UpdateUserConfig(c *gin.Context) {
	var payload service.UserSettings
	if !bindJSON(c, &payload, "設定格式錯誤") {
		return
	}

	nickname, group := a.identity(c)
	settings, err := a.configs.Save(c.Request.Context(), group, nickname, payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecord) {
			respondError(c, http.StatusBadRequest, "請先輸入暱稱")
			return
		}
		a.logger.Error("save user config", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "儲存個人設定失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": settings})
}
