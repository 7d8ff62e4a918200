package service

import (
	"context"
	"testing"
)

func TestUserConfigServiceSaveAndGet(t *testing.T) {
	svc := NewUserConfigService(setupServiceTestDB(t))
	ctx := context.Background()

	empty, err := svc.Get(ctx, "", "小明")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if empty.MonthlyBudget != nil || empty.MonthlyCupLimit != nil {
		t.Fatalf("expected empty settings, got %#v", empty)
	}

	budget := 1500.0
	limit := 20
	if _, err := svc.Save(ctx, "", "小明", UserSettings{MonthlyBudget: &budget, MonthlyCupLimit: &limit}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := svc.Get(ctx, "", "小明")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.MonthlyBudget == nil || *got.MonthlyBudget != 1500 || got.MonthlyCupLimit == nil || *got.MonthlyCupLimit != 20 {
		t.Fatalf("unexpected settings %#v", got)
	}

	other, err := svc.Get(ctx, "team", "小明")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if other.MonthlyBudget != nil {
		t.Fatalf("settings must be scoped by group, got %#v", other)
	}

	zero := 0
	saved, err := svc.Save(ctx, "", "小明", UserSettings{MonthlyBudget: &budget, MonthlyCupLimit: &zero})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.MonthlyCupLimit != nil {
		t.Fatalf("non-positive limit should clear the setting")
	}
	got, _ = svc.Get(ctx, "", "小明")
	if got.MonthlyCupLimit != nil {
		t.Fatalf("expected cleared cup limit, got %d", *got.MonthlyCupLimit)
	}
}

func TestUserConfigServiceRequiresNickname(t *testing.T) {
	svc := NewUserConfigService(setupServiceTestDB(t))
	if _, err := svc.Save(context.Background(), "", " ", UserSettings{}); err == nil {
		t.Fatalf("expected error for empty nickname")
	}
}
