package service

import (
	"cmp"
	"errors"
	"slices"
	"time"

	"github.com/bobalog/internal/db"
)

// ErrInvalidRange 表示热力图区间的结束日早于开始日。
var ErrInvalidRange = errors.New("invalid range: end before start")

// HeatmapDay 表示热力图中有记录的一天。
type HeatmapDay struct {
	Date     string   `json:"date"`
	Cups     int      `json:"cups"`
	Spent    float64  `json:"spent"`
	Drinkers []string `json:"drinkers"`
}

// HeatmapSummary 汇总区间内的活跃度。
type HeatmapSummary struct {
	TotalCups     int `json:"totalCups"`
	ActiveDays    int `json:"activeDays"`
	DrinkerCount  int `json:"drinkerCount"`
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// Heatmap 是按日聚合的饮用日历。
type Heatmap struct {
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Days     []HeatmapDay   `json:"days"`
	Drinkers []string       `json:"drinkers"`
	Summary  HeatmapSummary `json:"summary"`
}

// BuildHeatmap 统计 [start, end] 区间内每天的杯数与花费，日期无法解析的记录忽略。
func BuildHeatmap(records []db.DrinkRecord, start, end time.Time) (Heatmap, error) {
	start = normalizeToDate(start)
	end = normalizeToDate(end)
	if end.Before(start) {
		return Heatmap{}, ErrInvalidRange
	}

	dayMap := make(map[string]*HeatmapDay)
	dayDrinkers := make(map[string]map[string]struct{})
	legend := make(map[string]struct{})
	inRange := make([]db.DrinkRecord, 0, len(records))

	for _, record := range records {
		date, err := time.Parse(DateLayout, record.Date)
		if err != nil || date.Before(start) || date.After(end) {
			continue
		}
		inRange = append(inRange, record)

		day, ok := dayMap[record.Date]
		if !ok {
			day = &HeatmapDay{Date: record.Date}
			dayMap[record.Date] = day
			dayDrinkers[record.Date] = make(map[string]struct{})
		}
		day.Cups++
		day.Spent += record.Price

		if _, seen := dayDrinkers[record.Date][record.DrinkerName]; !seen {
			dayDrinkers[record.Date][record.DrinkerName] = struct{}{}
			day.Drinkers = append(day.Drinkers, record.DrinkerName)
		}
		legend[record.DrinkerName] = struct{}{}
	}

	days := make([]HeatmapDay, 0, len(dayMap))
	for _, day := range dayMap {
		slices.Sort(day.Drinkers)
		days = append(days, *day)
	}
	slices.SortFunc(days, func(a, b HeatmapDay) int {
		return cmp.Compare(a.Date, b.Date)
	})

	drinkers := make([]string, 0, len(legend))
	for name := range legend {
		drinkers = append(drinkers, name)
	}
	slices.Sort(drinkers)

	return Heatmap{
		Start:    start.Format(DateLayout),
		End:      end.Format(DateLayout),
		Days:     days,
		Drinkers: drinkers,
		Summary: HeatmapSummary{
			TotalCups:     len(inRange),
			ActiveDays:    len(days),
			DrinkerCount:  len(drinkers),
			CurrentStreak: currentStreak(distinctDays(inRange), end),
			LongestStreak: LongestStreak(inRange),
		},
	}, nil
}

// currentStreak 返回截至 end 的连续天数；end 当天还没喝也不算中断。
func currentStreak(days []time.Time, end time.Time) int {
	if len(days) == 0 {
		return 0
	}

	last := days[len(days)-1]
	if end.Sub(last) > 24*time.Hour {
		return 0
	}

	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i].Sub(days[i-1]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
