package service

import (
	"cmp"
	"slices"
	"strings"

	"github.com/bobalog/internal/db"
)

const hallOfFameRating = 5

// CollectionItem 是图鉴中的一个品项（品牌 + 品名）。
type CollectionItem struct {
	Brand      string  `json:"brand"`
	DrinkName  string  `json:"drinkName"`
	BestRating int     `json:"bestRating"`
	TotalCount int     `json:"totalCount"`
	LastPrice  float64 `json:"lastPrice"`
	LastConfig string  `json:"lastConfig"`
}

// HallOfFame 表示该品项是否拿过五星。
func (c CollectionItem) HallOfFame() bool {
	return c.BestRating == hallOfFameRating
}

// BuildCollection 将记录按品项合并，记录最高评分及对应那杯的甜度/冰块设定，按最高评分降序排列。
func BuildCollection(records []db.DrinkRecord) []CollectionItem {
	type itemKey struct{ brand, name string }
	index := make(map[itemKey]int)
	items := make([]CollectionItem, 0)

	for _, record := range records {
		key := itemKey{record.Brand, record.DrinkName}
		pos, ok := index[key]
		if !ok {
			index[key] = len(items)
			items = append(items, CollectionItem{
				Brand:      record.Brand,
				DrinkName:  record.DrinkName,
				BestRating: record.Rating,
				TotalCount: 1,
				LastPrice:  record.Price,
				LastConfig: record.SugarLevel + " / " + record.IceLevel,
			})
			continue
		}

		item := &items[pos]
		item.TotalCount++
		if record.Rating > item.BestRating {
			item.BestRating = record.Rating
			item.LastPrice = record.Price
			item.LastConfig = record.SugarLevel + " / " + record.IceLevel
		}
	}

	slices.SortStableFunc(items, func(a, b CollectionItem) int {
		return cmp.Compare(b.BestRating, a.BestRating)
	})
	return items
}

// FilterCollection 按品牌或品名关键字筛选，hallOfFame 为 true 时只保留五星品项。
func FilterCollection(items []CollectionItem, search string, hallOfFame bool) []CollectionItem {
	search = strings.TrimSpace(search)
	filtered := make([]CollectionItem, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(item.Brand, search) && !strings.Contains(item.DrinkName, search) {
			continue
		}
		if hallOfFame && !item.HallOfFame() {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}
