package service

import (
	"slices"
	"time"

	"github.com/bobalog/internal/db"
)

// LongestStreak 计算最长的连续饮用天数。
// 日期先去重再升序排列，相邻两天恰好相差一天时连续数加一，否则重置为 1。
// 无法解析的日期会被忽略。
func LongestStreak(records []db.DrinkRecord) int {
	return longestRun(distinctDays(records))
}

func distinctDays(records []db.DrinkRecord) []time.Time {
	seen := make(map[string]struct{}, len(records))
	days := make([]time.Time, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.Date]; ok {
			continue
		}
		seen[record.Date] = struct{}{}
		day, err := time.Parse(DateLayout, record.Date)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	slices.SortFunc(days, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return days
}

func longestRun(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}
