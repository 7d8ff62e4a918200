package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bobalog/internal/db"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type recordingNotifier struct {
	mu     sync.Mutex
	groups []string
}

func (n *recordingNotifier) Notify(group string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.groups = append(n.groups, group)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.groups)
}

func TestDrinkStorePutListAndOverwrite(t *testing.T) {
	gdb := setupServiceTestDB(t)
	notifier := &recordingNotifier{}
	store := NewDrinkStore(gdb, "", notifier)
	ctx := context.Background()

	records := []db.DrinkRecord{
		drink("a", withID("1"), withDate("2026-01-01")),
		drink("b", withID("2"), withDate("2026-01-03")),
		drink("c", withID("3"), withDate("2026-01-02")),
	}
	for _, record := range records {
		if err := store.Put(ctx, record); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	listed, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 3 || listed[0].ID != "2" || listed[1].ID != "3" || listed[2].ID != "1" {
		t.Fatalf("expected date desc order, got %#v", listed)
	}

	updated := records[0]
	updated.DrinkName = "改名"
	updated.Rating = 5
	if err := store.Put(ctx, updated); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := store.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.DrinkName != "改名" || got.Rating != 5 {
		t.Fatalf("expected whole record replaced, got %#v", got)
	}

	if notifier.count() != 4 {
		t.Fatalf("expected 4 notifications, got %d", notifier.count())
	}
}

func TestDrinkStoreRejectsEmptyID(t *testing.T) {
	store := NewDrinkStore(setupServiceTestDB(t), "", nil)
	if err := store.Put(context.Background(), drink("a", withID(" "))); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestDrinkStoreDeleteAndClear(t *testing.T) {
	gdb := setupServiceTestDB(t)
	notifier := &recordingNotifier{}
	store := NewDrinkStore(gdb, "", notifier)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		if err := store.Put(ctx, drink("x"+id, withID(id))); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	if err := store.Delete(ctx, "2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "2"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	before := notifier.count()
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting an absent id should be a no-op, got %v", err)
	}
	if notifier.count() != before {
		t.Fatalf("no-op delete should not notify")
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	listed, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty store, got %d", len(listed))
	}
}

func TestDrinkStoreIsScopedByGroup(t *testing.T) {
	gdb := setupServiceTestDB(t)
	ctx := context.Background()
	alpha := NewDrinkStore(gdb, "alpha", nil)
	beta := NewDrinkStore(gdb, "beta", nil)

	if err := alpha.Put(ctx, drink("a", withID("a1"))); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := beta.Put(ctx, drink("b", withID("b1"))); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	listed, err := alpha.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "a1" || listed[0].GroupID != "alpha" {
		t.Fatalf("unexpected alpha records %#v", listed)
	}

	if err := beta.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if listed, _ := alpha.List(ctx); len(listed) != 1 {
		t.Fatalf("clearing beta must not touch alpha, got %d", len(listed))
	}
	if _, err := beta.Get(ctx, "a1"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("beta should not see alpha records, got %v", err)
	}
}

func TestDrinkStoreImportMergesByID(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := NewDrinkStore(gdb, "", nil)
	ctx := context.Background()

	for _, id := range []string{"1", "2"} {
		if err := store.Put(ctx, drink("x"+id, withID(id))); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	raw := []byte(`[
		{"id":"2","drinkName":"重複","date":"2026-01-01"},
		{"id":"3","drinkerName":"阿華","brand":"50嵐","drinkName":"新的","date":"2026-02-01","rating":4},
		{"drinkName":"沒有 ID"}
	]`)
	result, err := store.Import(ctx, raw)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Added != 1 || result.Skipped != 1 || result.Duplicates != 1 || result.Total != 3 {
		t.Fatalf("unexpected import result %#v", result)
	}

	listed, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 records, got %d", len(listed))
	}
	kept, err := store.Get(ctx, "2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if kept.DrinkName != "x2" {
		t.Fatalf("duplicate import must not overwrite, got %q", kept.DrinkName)
	}

	if _, err := store.Import(ctx, []byte(`{"id":"4"}`)); !errors.Is(err, ErrInvalidImportPayload) {
		t.Fatalf("expected ErrInvalidImportPayload, got %v", err)
	}
}

func TestDrinkStoreImportSameBackupIntoTwoGroups(t *testing.T) {
	gdb := setupServiceTestDB(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	alpha := NewDrinkStore(gdb, "alpha", notifier)
	beta := NewDrinkStore(gdb, "beta", notifier)

	if err := beta.Put(ctx, drink("beta 原本的", withID("shared"))); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	raw := []byte(`[{"id":"shared","drinkerName":"阿華","brand":"50嵐","drinkName":"四季春","date":"2026-02-01","rating":4}]`)
	result, err := alpha.Import(ctx, raw)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Added != 1 || result.Duplicates != 0 || result.Total != 1 {
		t.Fatalf("unexpected import result %#v", result)
	}

	listed, err := alpha.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "shared" || listed[0].DrinkName != "四季春" {
		t.Fatalf("alpha should hold the imported record, got %#v", listed)
	}
	kept, err := beta.Get(ctx, "shared")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if kept.DrinkName != "beta 原本的" {
		t.Fatalf("import into alpha must not touch beta, got %q", kept.DrinkName)
	}

	again, err := alpha.Import(ctx, raw)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if again.Added != 0 || again.Duplicates != 1 || again.Total != 1 {
		t.Fatalf("unexpected repeated import result %#v", again)
	}
	if notifier.count() != 2 {
		t.Fatalf("expected notifications for the put and the first import only, got %d", notifier.count())
	}
}

func TestDrinkStorePutDoesNotTakeOverOtherGroup(t *testing.T) {
	gdb := setupServiceTestDB(t)
	ctx := context.Background()
	alpha := NewDrinkStore(gdb, "alpha", nil)
	beta := NewDrinkStore(gdb, "beta", nil)

	if err := beta.Put(ctx, drink("紅茶", withID("same"))); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := alpha.Put(ctx, drink("綠茶", withID("same"))); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	fromBeta, err := beta.Get(ctx, "same")
	if err != nil || fromBeta.DrinkName != "紅茶" || fromBeta.GroupID != "beta" {
		t.Fatalf("beta record must stay intact, got %#v (%v)", fromBeta, err)
	}
	fromAlpha, err := alpha.Get(ctx, "same")
	if err != nil || fromAlpha.DrinkName != "綠茶" || fromAlpha.GroupID != "alpha" {
		t.Fatalf("alpha should own its own copy, got %#v (%v)", fromAlpha, err)
	}
}

func TestDrinkStoreExportRoundTrip(t *testing.T) {
	gdb := setupServiceTestDB(t)
	ctx := context.Background()
	store := NewDrinkStore(gdb, "src", nil)

	original := drink("四季春", withID("e1"), withToppings("珍珠"), withPrice(45.5))
	if err := store.Put(ctx, original); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	data, err := store.ExportJSON(ctx)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Contains(string(data), "src") {
		t.Fatalf("export must not leak the group id: %s", data)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	result, err := store.Import(ctx, data)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Added != 1 || result.Total != 1 {
		t.Fatalf("unexpected import result %#v", result)
	}

	restored, err := store.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	original.GroupID = "src"
	if *restored != original {
		t.Fatalf("expected %#v, got %#v", original, *restored)
	}
}
