package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newSessionEngine(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/api/session", api.GetSession)
	r.POST("/api/session", api.CreateSession)
	r.DELETE("/api/session", api.DeleteSession)
	r.GET("/api/records", api.RequireNickname(), api.ListRecords)
	r.GET("/api/events", api.RequireNickname(), api.StreamChanges)
	r.POST("/api/records", api.RequireNickname(), api.CreateRecord)
	return r
}

func login(t *testing.T, r *gin.Engine, payload string) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, w.Result().Cookies()
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

func TestCreateSessionRejectsEmptyNickname(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	r := newSessionEngine(api)

	w, _ := login(t, r, `{"nickname":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	r := newSessionEngine(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/records", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without nickname, got %d", w.Code)
	}

	w, cookies := login(t, r, `{"nickname":"小明","group":"office"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/api/session", nil), cookies))
	var session struct {
		Nickname string `json:"nickname"`
		Group    string `json:"group"`
		SignedIn bool   `json:"signedIn"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if session.Nickname != "小明" || session.Group != "office" || !session.SignedIn {
		t.Fatalf("unexpected session %+v", session)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodGet, "/api/records", nil), cookies))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 with nickname, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withCookies(httptest.NewRequest(http.MethodDelete, "/api/session", nil), cookies))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
}

func TestCreateSessionCanCreateGroup(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	r := newSessionEngine(api)

	w, _ := login(t, r, `{"nickname":"小明","createGroup":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body struct {
		Group string `json:"group"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, err := uuid.Parse(body.Group); err != nil {
		t.Fatalf("expected a generated group id, got %q", body.Group)
	}
}

func TestSessionFallsBackToDefaultGroup(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	api.defaultGroup = "shared"
	r := newSessionEngine(api)

	w, _ := login(t, r, `{"nickname":"小明"}`)
	var body struct {
		Group string `json:"group"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Group != "shared" {
		t.Fatalf("expected default group, got %q", body.Group)
	}
}
