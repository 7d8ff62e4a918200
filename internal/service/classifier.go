package service

import (
	"strings"

	"github.com/bobalog/internal/db"
)

// Tag 是根据关键字推导出的饮品分类，一杯饮品可以同时属于多个分类。
type Tag string

const (
	TagPureUnsweetened Tag = "pure_unsweetened"
	TagBlackTea        Tag = "black_tea"
	TagGreenTea        Tag = "green_tea"
	TagOolong          Tag = "oolong"
	TagJapaneseTea     Tag = "japanese_tea"
	TagFreshMilk       Tag = "fresh_milk"
	TagCreamerMilk     Tag = "creamer_milk"
	TagMilkFoam        Tag = "milk_foam"
	TagBrownSugar      Tag = "brown_sugar"
	TagYogurt          Tag = "yogurt"
	TagPearls          Tag = "pearls"
	TagFruit           Tag = "fruit"
	TagMultiTopping    Tag = "multi_topping"
	TagSmoothie        Tag = "smoothie"
	TagSparkling       Tag = "sparkling"
	TagFullSugar       Tag = "full_sugar"
	TagZeroSugar       Tag = "zero_sugar"
	TagCaffeinated     Tag = "caffeinated"
	TagHighPrice       Tag = "high_price"
)

const (
	fullSugarValue     = 10
	highPriceThreshold = 100
	multiToppingCount  = 3
)

// tagRule 描述一个分类的判定方式：
// Keywords 任一命中即成立（为空时不检查关键字），Excludes 任一命中即不成立，
// Predicate 为额外的数值条件。AnyOf 为 true 时 Keywords 与 Predicate 任一成立即可。
type tagRule struct {
	Tag       Tag
	Keywords  []string
	Excludes  []string
	Predicate func(db.DrinkRecord) bool
	AnyOf     bool
}

var tagRules = []tagRule{
	{Tag: TagPureUnsweetened, Excludes: []string{"奶", "拿鐵", "歐蕾", "多多", "優格", "果"}, Predicate: isZeroSugar},
	{Tag: TagBlackTea, Keywords: []string{"紅", "錫蘭", "伯爵", "阿薩姆", "肯亞"}},
	{Tag: TagGreenTea, Keywords: []string{"綠", "青", "翡翠", "四季春", "包種", "碧螺春"}},
	{Tag: TagOolong, Keywords: []string{"烏龍", "鐵觀音", "炭焙", "凍頂", "金萱"}},
	{Tag: TagJapaneseTea, Keywords: []string{"抹茶", "焙茶", "烤茶", "玄米"}},
	{Tag: TagFreshMilk, Keywords: []string{"鮮奶", "拿鐵", "歐蕾", "牛乳", "鮮乳"}},
	{Tag: TagCreamerMilk, Keywords: []string{"奶茶", "奶精"}, Excludes: []string{"鮮奶", "拿鐵", "歐蕾", "牛乳"}},
	{Tag: TagMilkFoam, Keywords: []string{"奶蓋", "瑪奇朵", "雲朵"}},
	{Tag: TagBrownSugar, Keywords: []string{"黑糖"}},
	{Tag: TagYogurt, Keywords: []string{"多多", "優格", "養樂多", "益生菌"}},
	{Tag: TagPearls, Keywords: []string{"珍珠", "波幫", "波霸", "圓"}},
	{Tag: TagFruit, Keywords: []string{"果", "檸檬", "柚", "莓", "橙", "金桔", "百香"}},
	{Tag: TagMultiTopping, Keywords: []string{"三兄弟", "雙響", "全家福", "八寶"}, Predicate: hasManyToppings, AnyOf: true},
	{Tag: TagSmoothie, Keywords: []string{"冰沙", "雪泥", "酷繽沙"}},
	{Tag: TagSparkling, Keywords: []string{"氣泡", "蘇打", "碳酸", "沙士"}},
	{Tag: TagFullSugar, Predicate: func(r db.DrinkRecord) bool { return r.SugarValue >= fullSugarValue }},
	{Tag: TagZeroSugar, Predicate: isZeroSugar},
	{Tag: TagCaffeinated, Keywords: []string{"咖啡", "濃縮", "美式", "拿鐵", "卡布"}},
	{Tag: TagHighPrice, Predicate: func(r db.DrinkRecord) bool { return r.Price >= highPriceThreshold }},
}

// AllTags 按规则表顺序返回全部分类。
func AllTags() []Tag {
	tags := make([]Tag, 0, len(tagRules))
	for _, rule := range tagRules {
		tags = append(tags, rule.Tag)
	}
	return tags
}

// TagSet 是一杯饮品命中的分类集合。
type TagSet map[Tag]bool

// Has 判断是否包含某个分类。
func (s TagSet) Has(tag Tag) bool {
	return s[tag]
}

// Classify 对单条记录做关键字分类；匹配区分大小写，只做子字符串包含判断。
func Classify(record db.DrinkRecord) TagSet {
	set := make(TagSet)
	for _, rule := range tagRules {
		if rule.matches(record) {
			set[rule.Tag] = true
		}
	}
	return set
}

// CountTags 统计每个分类命中的记录数，未命中的分类计为 0。
func CountTags(records []db.DrinkRecord) map[Tag]int {
	counts := make(map[Tag]int, len(tagRules))
	for _, rule := range tagRules {
		counts[rule.Tag] = 0
	}
	for _, record := range records {
		for tag := range Classify(record) {
			counts[tag]++
		}
	}
	return counts
}

func (r tagRule) matches(record db.DrinkRecord) bool {
	if len(r.Excludes) > 0 && containsAny(record, r.Excludes) {
		return false
	}

	keywordHit := len(r.Keywords) > 0 && containsAny(record, r.Keywords)
	predicateHit := r.Predicate != nil && r.Predicate(record)

	if r.AnyOf {
		return keywordHit || predicateHit
	}
	if len(r.Keywords) > 0 && !keywordHit {
		return false
	}
	if r.Predicate != nil && !predicateHit {
		return false
	}
	return len(r.Keywords) > 0 || r.Predicate != nil
}

// containsAny 在品项名、品牌与加料文字中查找任一关键字。
func containsAny(record db.DrinkRecord, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(record.DrinkName, keyword) ||
			strings.Contains(record.Brand, keyword) ||
			(record.Toppings != "" && strings.Contains(record.Toppings, keyword)) {
			return true
		}
	}
	return false
}

func isZeroSugar(record db.DrinkRecord) bool {
	return record.SugarValue == 0
}

// hasManyToppings 以逗号切分加料文字，条目数达到 3 即视为多料。
func hasManyToppings(record db.DrinkRecord) bool {
	if record.Toppings == "" {
		return false
	}
	return len(strings.Split(record.Toppings, ",")) >= multiToppingCount
}
