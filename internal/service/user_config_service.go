package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobalog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserSettings 是某位饮用者的个人设定，nil 表示未设置。
type UserSettings struct {
	MonthlyBudget   *float64 `json:"monthlyBudget"`
	MonthlyCupLimit *int     `json:"monthlyCupLimit"`
}

// UserConfigService 读写每位饮用者的个人设定。
type UserConfigService struct {
	db *gorm.DB
}

// NewUserConfigService 构造 UserConfigService。
func NewUserConfigService(gdb *gorm.DB) *UserConfigService {
	return &UserConfigService{db: gdb}
}

// Get 返回设定，从未保存过时返回空设定。
func (s *UserConfigService) Get(ctx context.Context, group, nickname string) (UserSettings, error) {
	var cfg db.UserConfig
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND nickname = ?", strings.TrimSpace(group), strings.TrimSpace(nickname)).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserSettings{}, nil
		}
		return UserSettings{}, fmt.Errorf("load user config: %w", err)
	}
	return UserSettings{MonthlyBudget: cfg.MonthlyBudget, MonthlyCupLimit: cfg.MonthlyCupLimit}, nil
}

// Save 保存设定；非正数视为清除该项。
func (s *UserConfigService) Save(ctx context.Context, group, nickname string, settings UserSettings) (UserSettings, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return UserSettings{}, fmt.Errorf("%w: nickname is required", ErrInvalidRecord)
	}

	if settings.MonthlyBudget != nil && *settings.MonthlyBudget <= 0 {
		settings.MonthlyBudget = nil
	}
	if settings.MonthlyCupLimit != nil && *settings.MonthlyCupLimit <= 0 {
		settings.MonthlyCupLimit = nil
	}

	cfg := db.UserConfig{
		GroupID:         strings.TrimSpace(group),
		Nickname:        nickname,
		MonthlyBudget:   settings.MonthlyBudget,
		MonthlyCupLimit: settings.MonthlyCupLimit,
		UpdatedAt:       time.Now(),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "nickname"}},
		DoUpdates: clause.AssignmentColumns([]string{"monthly_budget", "monthly_cup_limit", "updated_at"}),
	}).Create(&cfg).Error; err != nil {
		return UserSettings{}, fmt.Errorf("save user config: %w", err)
	}
	return settings, nil
}
