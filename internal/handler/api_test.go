package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobalog/internal/db"
	"github.com/bobalog/internal/service"
	"github.com/gin-gonic/gin"
)

func setupTestDB(t *testing.T) (*API, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(db.Options{
		Driver: db.DriverSQLite,
		Path:   "file:" + name + "?mode=memory&cache=shared",
		Silent: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	db.DB = gdb

	api := NewAPI(db.DB, Options{})
	api.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	return api, func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// newTestContext 构造带昵称与群组的请求上下文，跳过 cookie 会话。
func newTestContext(w *httptest.ResponseRecorder, req *http.Request, nickname, group string) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(contextKeyNickname, nickname)
	c.Set(contextKeyGroup, group)
	return c
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedRecords(t *testing.T, api *API, group string, records ...db.DrinkRecord) {
	t.Helper()
	store := api.store(group)
	for _, record := range records {
		if err := store.Put(context.Background(), record); err != nil {
			t.Fatalf("failed to seed record %s: %v", record.ID, err)
		}
	}
}

func sampleRecord(id, drinker, brand, name string, rating int, date string) db.DrinkRecord {
	return db.DrinkRecord{
		ID:          id,
		DrinkerName: drinker,
		Brand:       brand,
		DrinkName:   name,
		SugarLevel:  service.SugarLabel(3),
		SugarValue:  3,
		IceLevel:    service.IceLess,
		Price:       55,
		Rating:      rating,
		Date:        date,
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}
