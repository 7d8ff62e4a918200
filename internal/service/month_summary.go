package service

import (
	"time"

	"github.com/bobalog/internal/db"
)

const sugarWarningAverage = 7

// MonthStats 是 “本月战况” 的统计结果。
type MonthStats struct {
	Month           string   `json:"month"`
	Cups            int      `json:"cups"`
	Spent           float64  `json:"spent"`
	AvgSugar        float64  `json:"avgSugar"`
	Budget          *float64 `json:"budget,omitempty"`
	BudgetRemaining *float64 `json:"budgetRemaining,omitempty"`
	OverBudget      bool     `json:"overBudget"`
	CupLimit        *int     `json:"cupLimit,omitempty"`
	OverCupLimit    bool     `json:"overCupLimit"`
	SugarWarning    bool     `json:"sugarWarning"`
}

// MonthSummary 统计 now 所在月份的杯数、花费与平均甜度，并对照个人预算与杯数上限。
func MonthSummary(records []db.DrinkRecord, now time.Time, cfg UserSettings) MonthStats {
	month := now.Format("2006-01")
	stats := MonthStats{Month: month}

	sugarTotal := 0
	for _, record := range records {
		key, ok := MonthKey(record)
		if !ok || key != month {
			continue
		}
		stats.Cups++
		stats.Spent += record.Price
		sugarTotal += record.SugarValue
	}

	if stats.Cups > 0 {
		stats.AvgSugar = float64(sugarTotal) / float64(stats.Cups)
	}
	stats.SugarWarning = stats.AvgSugar > sugarWarningAverage

	if cfg.MonthlyBudget != nil && *cfg.MonthlyBudget > 0 {
		budget := *cfg.MonthlyBudget
		remaining := budget - stats.Spent
		stats.Budget = &budget
		stats.BudgetRemaining = &remaining
		stats.OverBudget = stats.Spent > budget
	}
	if cfg.MonthlyCupLimit != nil && *cfg.MonthlyCupLimit > 0 {
		limit := *cfg.MonthlyCupLimit
		stats.CupLimit = &limit
		stats.OverCupLimit = stats.Cups > limit
	}

	return stats
}
