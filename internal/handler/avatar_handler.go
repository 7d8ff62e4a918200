package handler

import (
	"net/http"
	"strings"

	"github.com/bobalog/internal/service"
	"github.com/gin-gonic/gin"
)

// GetAvatar 按饮品名称渲染杯子头像（PNG）。
func (a *API) GetAvatar(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	size := service.ParseAvatarSize(c.Query("size"))

	data, err := service.RenderAvatarPNG(name, size, queryBool(c, "toppings"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "頭像產生失敗")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", data)
}
