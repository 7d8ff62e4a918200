package service

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/bobalog/internal/db"
)

// QuarterAll 是季度筛选中的 “全部” 选项。
const QuarterAll = "All"

const defaultRankingLimit = 5

// DrinkerStat 是排行榜中单个饮用者的杯数与花费。
type DrinkerStat struct {
	Name  string  `json:"name"`
	Cups  int     `json:"cups"`
	Spent float64 `json:"spent"`
}

// BrandStat 表示品牌的杯数。
type BrandStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ItemStat 表示单一品项（品牌 + 品名）的杯数与平均评分。
type ItemStat struct {
	Brand     string  `json:"brand"`
	DrinkName string  `json:"drinkName"`
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

// PeriodStat 是按月或按季度汇总的杯数与花费。
type PeriodStat struct {
	Key   string  `json:"key"`
	Cups  int     `json:"cups"`
	Spent float64 `json:"spent"`
}

// Overview 汇总全部记录的总量指标。
type Overview struct {
	TotalCups  int      `json:"totalCups"`
	TotalSpent float64  `json:"totalSpent"`
	BrandCount int      `json:"brandCount"`
	Drinkers   []string `json:"drinkers"`
	MaxPrice   float64  `json:"maxPrice"`
}

// Summarize 计算总杯数、总花费、品牌数、饮用者名单与单杯最高价。
func Summarize(records []db.DrinkRecord) Overview {
	overview := Overview{Drinkers: []string{}}
	brands := make(map[string]struct{})
	drinkers := make(map[string]struct{})

	for i, record := range records {
		overview.TotalCups++
		overview.TotalSpent += record.Price
		brands[record.Brand] = struct{}{}
		if _, seen := drinkers[record.DrinkerName]; !seen {
			drinkers[record.DrinkerName] = struct{}{}
			overview.Drinkers = append(overview.Drinkers, record.DrinkerName)
		}
		if i == 0 || record.Price > overview.MaxPrice {
			overview.MaxPrice = record.Price
		}
	}

	overview.BrandCount = len(brands)
	return overview
}

// Leaderboard 按饮用者分组，按杯数降序排列；杯数相同保持首次出现的顺序。
func Leaderboard(records []db.DrinkRecord) []DrinkerStat {
	index := make(map[string]int)
	stats := make([]DrinkerStat, 0)

	for _, record := range records {
		pos, ok := index[record.DrinkerName]
		if !ok {
			pos = len(stats)
			index[record.DrinkerName] = pos
			stats = append(stats, DrinkerStat{Name: record.DrinkerName})
		}
		stats[pos].Cups++
		stats[pos].Spent += record.Price
	}

	slices.SortStableFunc(stats, func(a, b DrinkerStat) int {
		return cmp.Compare(b.Cups, a.Cups)
	})
	return stats
}

// BrandRanking 返回杯数最多的前 limit 个品牌，limit<=0 时取 5。
func BrandRanking(records []db.DrinkRecord, limit int) []BrandStat {
	if limit <= 0 {
		limit = defaultRankingLimit
	}

	index := make(map[string]int)
	stats := make([]BrandStat, 0)
	for _, record := range records {
		pos, ok := index[record.Brand]
		if !ok {
			pos = len(stats)
			index[record.Brand] = pos
			stats = append(stats, BrandStat{Name: record.Brand})
		}
		stats[pos].Count++
	}

	slices.SortStableFunc(stats, func(a, b BrandStat) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return stats[:min(limit, len(stats))]
}

// ItemRanking 以 (品牌, 品名) 分组，返回杯数最多的前 limit 个品项及平均评分（一位小数）。
func ItemRanking(records []db.DrinkRecord, limit int) []ItemStat {
	if limit <= 0 {
		limit = defaultRankingLimit
	}

	type itemKey struct{ brand, name string }
	index := make(map[itemKey]int)
	stats := make([]ItemStat, 0)
	ratingSums := make([]int, 0)

	for _, record := range records {
		key := itemKey{record.Brand, record.DrinkName}
		pos, ok := index[key]
		if !ok {
			pos = len(stats)
			index[key] = pos
			stats = append(stats, ItemStat{
				Brand:     record.Brand,
				DrinkName: record.DrinkName,
				Label:     record.Brand + " " + record.DrinkName,
			})
			ratingSums = append(ratingSums, 0)
		}
		stats[pos].Count++
		ratingSums[pos] += record.Rating
	}

	for i := range stats {
		stats[i].AvgRating = roundTo(float64(ratingSums[i])/float64(stats[i].Count), 1)
	}

	slices.SortStableFunc(stats, func(a, b ItemStat) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return stats[:min(limit, len(stats))]
}

// MonthlyBuckets 按 YYYY-MM 汇总，结果按键升序。
func MonthlyBuckets(records []db.DrinkRecord) []PeriodStat {
	return bucketBy(records, MonthKey)
}

// QuarterlyBuckets 按 YYYY-Qn 汇总，结果按键升序。
func QuarterlyBuckets(records []db.DrinkRecord) []PeriodStat {
	return bucketBy(records, QuarterKey)
}

// QuarterOptions 返回 “All” 加上数据中出现过的季度（升序），用于排行榜筛选。
func QuarterOptions(records []db.DrinkRecord) []string {
	options := []string{QuarterAll}
	for _, bucket := range QuarterlyBuckets(records) {
		options = append(options, bucket.Key)
	}
	return options
}

// FilterByQuarter 只保留指定季度的记录；空值或 “All” 原样返回。
func FilterByQuarter(records []db.DrinkRecord, quarter string) []db.DrinkRecord {
	quarter = strings.TrimSpace(quarter)
	if quarter == "" || quarter == QuarterAll {
		return records
	}

	filtered := make([]db.DrinkRecord, 0, len(records))
	for _, record := range records {
		if key, ok := QuarterKey(record); ok && key == quarter {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// MonthKey 返回记录所在月份，例如 2026-01；日期无法解析时 ok 为 false。
func MonthKey(record db.DrinkRecord) (string, bool) {
	date, err := time.Parse(DateLayout, record.Date)
	if err != nil {
		return "", false
	}
	return date.Format("2006-01"), true
}

// QuarterKey 返回记录所在季度，例如 2026-Q1。
func QuarterKey(record db.DrinkRecord) (string, bool) {
	date, err := time.Parse(DateLayout, record.Date)
	if err != nil {
		return "", false
	}
	quarter := (int(date.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", date.Year(), quarter), true
}

func bucketBy(records []db.DrinkRecord, keyFn func(db.DrinkRecord) (string, bool)) []PeriodStat {
	index := make(map[string]int)
	buckets := make([]PeriodStat, 0)

	for _, record := range records {
		key, ok := keyFn(record)
		if !ok {
			continue
		}
		pos, exists := index[key]
		if !exists {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, PeriodStat{Key: key})
		}
		buckets[pos].Cups++
		buckets[pos].Spent += record.Price
	}

	slices.SortFunc(buckets, func(a, b PeriodStat) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return buckets
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
