package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionKeyNickname = "nickname"
	sessionKeyGroup    = "group"

	contextKeyNickname = "__nickname"
	contextKeyGroup    = "__group"

	maxNicknameRunes = 30
	maxGroupRunes    = 64
)

type sessionRequest struct {
	Nickname    string `json:"nickname"`
	Group       string `json:"group"`
	CreateGroup bool   `json:"createGroup"`
}

// identity 返回当前会话的昵称与群组；未指定群组时使用默认群组。
func (a *API) identity(c *gin.Context) (string, string) {
	if nickname, ok := c.Get(contextKeyNickname); ok {
		group, _ := c.Get(contextKeyGroup)
		return nickname.(string), group.(string)
	}

	session := sessions.Default(c)
	nickname, _ := session.Get(sessionKeyNickname).(string)
	group, _ := session.Get(sessionKeyGroup).(string)
	if strings.TrimSpace(group) == "" {
		group = a.defaultGroup
	}
	return nickname, group
}

// RequireNickname 要求会话中已有昵称，否则返回 401。
func (a *API) RequireNickname() gin.HandlerFunc {
	return func(c *gin.Context) {
		nickname, group := a.identity(c)
		if strings.TrimSpace(nickname) == "" {
			respondError(c, http.StatusUnauthorized, "nickname required")
			c.Abort()
			return
		}
		c.Set(contextKeyNickname, nickname)
		c.Set(contextKeyGroup, group)
		c.Next()
	}
}

// GetSession 返回当前昵称与群组。
func (a *API) GetSession(c *gin.Context) {
	nickname, group := a.identity(c)
	c.JSON(http.StatusOK, gin.H{
		"nickname":  nickname,
		"group":     group,
		"signedIn":  nickname != "",
		"groupMode": group != "",
	})
}

// CreateSession 记录昵称（以及可选的群组）到 cookie 会话。
func (a *API) CreateSession(c *gin.Context) {
	var payload sessionRequest
	if !bindJSON(c, &payload, "請輸入暱稱") {
		return
	}

	nickname := strings.TrimSpace(payload.Nickname)
	if nickname == "" || utf8.RuneCountInString(nickname) > maxNicknameRunes {
		respondError(c, http.StatusBadRequest, "請輸入暱稱")
		return
	}

	group := strings.TrimSpace(payload.Group)
	if payload.CreateGroup {
		group = uuid.NewString()
	}
	if utf8.RuneCountInString(group) > maxGroupRunes {
		respondError(c, http.StatusBadRequest, "群組代碼過長")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyNickname, nickname)
	session.Set(sessionKeyGroup, group)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "會話保存失敗")
		return
	}

	if group == "" {
		group = a.defaultGroup
	}
	c.JSON(http.StatusOK, gin.H{"nickname": nickname, "group": group})
}

// DeleteSession 清除会话。
func (a *API) DeleteSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "會話保存失敗")
		return
	}
	c.Status(http.StatusNoContent)
}
