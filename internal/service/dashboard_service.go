package service

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/bobalog/internal/db"
)

// Dashboard 是统计页所需的全部数据，由完整记录快照计算得出。
type Dashboard struct {
	Fingerprint    string        `json:"fingerprint"`
	Quarter        string        `json:"quarter"`
	QuarterOptions []string      `json:"quarterOptions"`
	Overview       Overview      `json:"overview"`
	Leaderboard    []DrinkerStat `json:"leaderboard"`
	Brands         []BrandStat   `json:"brands"`
	Items          []ItemStat    `json:"items"`
	Months         []PeriodStat  `json:"months"`
	Quarters       []PeriodStat  `json:"quarters"`
	LongestStreak  int           `json:"longestStreak"`
}

// AchievementCategory 是勋章墙上的一个大分类。
type AchievementCategory struct {
	Name         string             `json:"name"`
	Achievements []AchievementState `json:"achievements"`
}

// AchievementBoard 是勋章墙的完整状态。
type AchievementBoard struct {
	Fingerprint string                `json:"fingerprint"`
	Unlocked    int                   `json:"unlocked"`
	Total       int                   `json:"total"`
	Categories  []AchievementCategory `json:"categories"`
}

type dashboardKey struct {
	group   string
	quarter string
}

// DashboardService 组合存储、统计与勋章引擎。
// 结果按 (群组, 季度) 缓存，快照指纹变化时重新计算。
type DashboardService struct {
	catalog Catalog

	mu     sync.Mutex
	stats  map[dashboardKey]Dashboard
	boards map[string]AchievementBoard
}

// NewDashboardService 使用指定勋章表构造 DashboardService。
func NewDashboardService(catalog Catalog) *DashboardService {
	return &DashboardService{
		catalog: catalog,
		stats:   make(map[dashboardKey]Dashboard),
		boards:  make(map[string]AchievementBoard),
	}
}

// Catalog 返回当前使用的勋章表。
func (s *DashboardService) Catalog() Catalog {
	return s.catalog
}

// Stats 读取群组记录并计算统计，排行榜按 quarter 筛选。
func (s *DashboardService) Stats(ctx context.Context, store RecordStore, group, quarter string) (Dashboard, error) {
	records, err := store.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return s.StatsFor(group, quarter, records), nil
}

// StatsFor 对给定快照计算统计，指纹未变时直接返回缓存。
// 只缓存数据中实际存在的季度，其他取值照常计算但不入缓存。
func (s *DashboardService) StatsFor(group, quarter string, records []db.DrinkRecord) Dashboard {
	quarter = strings.TrimSpace(quarter)
	if quarter == "" {
		quarter = QuarterAll
	}
	fingerprint := Fingerprint(records)
	options := QuarterOptions(records)
	cacheable := slices.Contains(options, quarter)
	key := dashboardKey{group: group, quarter: quarter}

	if cacheable {
		s.mu.Lock()
		cached, ok := s.stats[key]
		s.mu.Unlock()
		if ok && cached.Fingerprint == fingerprint {
			return cached
		}
	}

	dashboard := Dashboard{
		Fingerprint:    fingerprint,
		Quarter:        quarter,
		QuarterOptions: options,
		Overview:       Summarize(records),
		Leaderboard:    Leaderboard(FilterByQuarter(records, quarter)),
		Brands:         BrandRanking(records, defaultRankingLimit),
		Items:          ItemRanking(records, defaultRankingLimit),
		Months:         MonthlyBuckets(records),
		Quarters:       QuarterlyBuckets(records),
		LongestStreak:  LongestStreak(records),
	}

	if cacheable {
		s.mu.Lock()
		s.stats[key] = dashboard
		s.mu.Unlock()
	}
	return dashboard
}

// Achievements 读取群组记录并计算勋章墙。
func (s *DashboardService) Achievements(ctx context.Context, store RecordStore, group string) (AchievementBoard, error) {
	records, err := store.List(ctx)
	if err != nil {
		return AchievementBoard{}, err
	}
	return s.AchievementsFor(group, records), nil
}

// AchievementsFor 对给定快照计算勋章墙，分类按勋章表中首次出现的顺序排列。
func (s *DashboardService) AchievementsFor(group string, records []db.DrinkRecord) AchievementBoard {
	fingerprint := Fingerprint(records)

	s.mu.Lock()
	cached, ok := s.boards[group]
	s.mu.Unlock()
	if ok && cached.Fingerprint == fingerprint {
		return cached
	}

	states := Evaluate(s.catalog, BuildMetrics(records))
	byCategory := make(map[string][]AchievementState)
	for _, state := range states {
		byCategory[state.Category] = append(byCategory[state.Category], state)
	}

	board := AchievementBoard{
		Fingerprint: fingerprint,
		Unlocked:    UnlockedCount(states),
		Total:       len(states),
		Categories:  make([]AchievementCategory, 0),
	}
	for _, name := range s.catalog.Categories() {
		board.Categories = append(board.Categories, AchievementCategory{Name: name, Achievements: byCategory[name]})
	}

	s.mu.Lock()
	s.boards[group] = board
	s.mu.Unlock()
	return board
}
