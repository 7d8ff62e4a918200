package service

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bobalog/internal/db"
	"gopkg.in/yaml.v3"
)

// Tier 是勋章等级，按 locked < bronze < silver < gold < diamond 排序。
type Tier string

const (
	TierLocked  Tier = "locked"
	TierBronze  Tier = "bronze"
	TierSilver  Tier = "silver"
	TierGold    Tier = "gold"
	TierDiamond Tier = "diamond"
)

var tierOrder = []Tier{TierBronze, TierSilver, TierGold, TierDiamond}

// Rank 返回等级的序号，locked 为 0，diamond 为 4。
func (t Tier) Rank() int {
	for i, tier := range tierOrder {
		if tier == t {
			return i + 1
		}
	}
	return 0
}

// Metric 是勋章进度绑定的统计指标名称。
type Metric string

// 除分类指标（与 Tag 同名）外的累计型指标。
const (
	MetricTotalCups       Metric = "total_cups"
	MetricBrandCount      Metric = "brand_count"
	MetricMaxPrice        Metric = "max_price"
	MetricTotalSpent      Metric = "total_spent"
	MetricConsecutiveDays Metric = "consecutive_days"
)

// Metrics 保存每个指标当前的数值。
type Metrics map[Metric]float64

// ErrInvalidCatalog 表示勋章表格式不正确。
var ErrInvalidCatalog = errors.New("invalid achievement catalog")

//go:embed catalog/achievements.yaml
var defaultCatalogYAML []byte

// AchievementDefinition 是勋章表中的一项静态定义。
type AchievementDefinition struct {
	ID          string     `yaml:"id" json:"id"`
	Category    string     `yaml:"category" json:"category"`
	SubCategory string     `yaml:"sub_category" json:"subCategory"`
	Titles      [4]string  `yaml:"titles" json:"titles"`
	Description string     `yaml:"description" json:"description"`
	Icon        string     `yaml:"icon" json:"icon"`
	Metric      Metric     `yaml:"metric" json:"metric"`
	Thresholds  [4]float64 `yaml:"thresholds" json:"thresholds"`
}

// Catalog 是按展示顺序排列的勋章定义。
type Catalog []AchievementDefinition

// Categories 按首次出现顺序返回大分类。
func (c Catalog) Categories() []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, def := range c {
		if _, ok := seen[def.Category]; ok {
			continue
		}
		seen[def.Category] = struct{}{}
		categories = append(categories, def.Category)
	}
	return categories
}

// AchievementState 是某项勋章在当前数据下的状态，每次数据变化都会完整重算。
type AchievementState struct {
	AchievementDefinition
	Progress      float64 `json:"progress"`
	Tier          Tier    `json:"tier"`
	Title         string  `json:"title"`
	NextThreshold float64 `json:"nextThreshold"`
	Fraction      float64 `json:"fraction"`
}

// DefaultCatalog 解析内置的勋章表。
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog 读取外部 YAML 勋章表，path 为空时使用内置表。
func LoadCatalog(path string) (Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read achievement catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog 解析并校验勋章表：ID 不可重复、指标必须已知、门槛必须严格递增。
func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidCatalog)
	}

	known := knownMetrics()
	ids := make(map[string]struct{}, len(catalog))
	for _, def := range catalog {
		if strings.TrimSpace(def.ID) == "" {
			return nil, fmt.Errorf("%w: entry without id", ErrInvalidCatalog)
		}
		if _, dup := ids[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidCatalog, def.ID)
		}
		ids[def.ID] = struct{}{}

		if _, ok := known[def.Metric]; !ok {
			return nil, fmt.Errorf("%w: %s binds unknown metric %q", ErrInvalidCatalog, def.ID, def.Metric)
		}
		for i := 1; i < len(def.Thresholds); i++ {
			if def.Thresholds[i] <= def.Thresholds[i-1] {
				return nil, fmt.Errorf("%w: %s thresholds must be strictly increasing", ErrInvalidCatalog, def.ID)
			}
		}
	}
	return catalog, nil
}

func knownMetrics() map[Metric]struct{} {
	known := map[Metric]struct{}{
		MetricTotalCups:       {},
		MetricBrandCount:      {},
		MetricMaxPrice:        {},
		MetricTotalSpent:      {},
		MetricConsecutiveDays: {},
	}
	for _, tag := range AllTags() {
		known[Metric(tag)] = struct{}{}
	}
	return known
}

// BuildMetrics 从记录计算所有指标：每个分类的命中杯数，以及总杯数、品牌数、最高单价、总花费、最长连续天数。
func BuildMetrics(records []db.DrinkRecord) Metrics {
	metrics := make(Metrics)
	for tag, count := range CountTags(records) {
		metrics[Metric(tag)] = float64(count)
	}

	overview := Summarize(records)
	metrics[MetricTotalCups] = float64(overview.TotalCups)
	metrics[MetricBrandCount] = float64(overview.BrandCount)
	metrics[MetricMaxPrice] = overview.MaxPrice
	metrics[MetricTotalSpent] = overview.TotalSpent
	metrics[MetricConsecutiveDays] = float64(LongestStreak(records))
	return metrics
}

// TierFor 返回进度已达到的最高等级，未达到铜牌门槛时为 locked。
func TierFor(progress float64, thresholds [4]float64) Tier {
	tier := TierLocked
	for i, threshold := range thresholds {
		if progress >= threshold {
			tier = tierOrder[i]
		}
	}
	return tier
}

// NextThreshold 返回第一个大于进度的门槛；已达钻石时返回钻石门槛。
func NextThreshold(progress float64, thresholds [4]float64) float64 {
	for _, threshold := range thresholds {
		if progress < threshold {
			return threshold
		}
	}
	return thresholds[len(thresholds)-1]
}

// Evaluate 按勋章表顺序计算每项勋章的等级、标题与进度条比例。
// 锁定状态沿用铜牌标题作为预告。
func Evaluate(catalog Catalog, metrics Metrics) []AchievementState {
	states := make([]AchievementState, 0, len(catalog))
	for _, def := range catalog {
		progress := metrics[def.Metric]
		tier := TierFor(progress, def.Thresholds)
		next := NextThreshold(progress, def.Thresholds)

		title := def.Titles[0]
		if rank := tier.Rank(); rank > 0 {
			title = def.Titles[rank-1]
		}

		fraction := 0.0
		if next > 0 {
			fraction = min(1, progress/next)
		}

		states = append(states, AchievementState{
			AchievementDefinition: def,
			Progress:              progress,
			Tier:                  tier,
			Title:                 title,
			NextThreshold:         next,
			Fraction:              fraction,
		})
	}
	return states
}

// UnlockedCount 统计非 locked 的勋章数量。
func UnlockedCount(states []AchievementState) int {
	count := 0
	for _, state := range states {
		if state.Tier != TierLocked {
			count++
		}
	}
	return count
}
