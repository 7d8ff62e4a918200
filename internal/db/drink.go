package db

// DrinkRecord 是一杯手摇饮的购买记录。
// ID 由客户端生成（毫秒时间戳 + 随机后缀），整条记录只允许按 ID 整体覆盖。
// GroupID 在单机版为空字符串，群组版用于隔离不同群组的数据；导出时不包含该字段。
// 主键为 (id, group_id)，不同群组可以各自持有相同 ID 的记录。
type DrinkRecord struct {
	ID          string  `gorm:"primaryKey;size:64" json:"id"`
	GroupID     string  `gorm:"primaryKey;size:64;index;not null" json:"-"`
	DrinkerName string  `gorm:"size:100;index" json:"drinkerName"`
	Brand       string  `gorm:"size:100" json:"brand"`
	DrinkName   string  `gorm:"size:200" json:"drinkName"`
	SugarLevel  string  `gorm:"size:50" json:"sugarLevel"`
	SugarValue  int     `json:"sugarValue"`
	IceLevel    string  `gorm:"size:20" json:"iceLevel"`
	Toppings    string  `gorm:"type:text" json:"toppings,omitempty"`
	Review      string  `gorm:"type:text" json:"review,omitempty"`
	Price       float64 `json:"price"`
	Rating      int     `json:"rating"`
	Date        string  `gorm:"size:10;index" json:"date"`
	Timestamp   int64   `gorm:"index" json:"timestamp"`
}

// TableName 与群组版共享的表名保持一致。
func (DrinkRecord) TableName() string {
	return "drinks"
}
