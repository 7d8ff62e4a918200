package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StreamChanges 以 SSE 推送当前群组的变更信号，客户端收到 change 后重新拉取记录。
// 多次变更会合并为一次推送。
func (a *API) StreamChanges(c *gin.Context) {
	_, group := a.identity(c)
	changes, cancel := a.feed.Subscribe(group)
	defer cancel()

	keepAlive := a.keepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"group": group})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("change", gin.H{"group": group})
			return true
		case <-ticker.C:
			c.SSEvent("ping", a.now().Unix())
			return true
		}
	})
}
