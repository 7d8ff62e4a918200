package db

import "time"

// UserConfig 保存每位饮用者的个人设定（每月预算、杯数上限）。
// 以 GroupID + Nickname 作为联合主键，未设置的项保持 NULL。
type UserConfig struct {
	GroupID         string `gorm:"primaryKey;size:64"`
	Nickname        string `gorm:"primaryKey;size:100"`
	MonthlyBudget   *float64
	MonthlyCupLimit *int
	UpdatedAt       time.Time
}

// TableName 自定义表名以保持命名一致。
func (UserConfig) TableName() string {
	return "user_configs"
}
