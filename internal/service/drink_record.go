package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/bobalog/internal/db"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// DateLayout 是记录日期的固定格式（只有日期，没有时间）。
const DateLayout = "2006-01-02"

// 冰块选项，使用固定的中文标签。
const (
	IceRegular = "正常冰"
	IceLess    = "少冰"
	IceHalf    = "半冰"
	IceMicro   = "微冰"
	IceNone    = "去冰"
	IceHot     = "熱"
)

// CustomBrandOption 是品牌下拉中的“自订”选项，提交时需要改用自订店名。
const CustomBrandOption = "其他 (自訂)"

// IceLevels 按表单顺序列出所有冰块选项。
var IceLevels = []string{IceRegular, IceLess, IceHalf, IceMicro, IceNone, IceHot}

// Brands 是表单预设的台北常见品牌。
var Brands = []string{
	"50嵐", "可不可熟成紅茶", "得正 OOLONG", "一沐日", "麻古茶坊",
	"迷客夏 Milksha", "五桐號", "龜記茗品", "鶴茶樓", "SOMA",
	"約翰紅茶公司", "珍煮丹", "萬波", "清心福全", "烏弄",
	"COMEBUY", "茶の魔手", "大茗本位製茶堂", "八曜和茶", CustomBrandOption,
}

// CommonToppings 是表单中可快速切换的常见加料。
var CommonToppings = []string{"珍珠", "波霸", "椰果", "粉粿", "芋圓", "茶凍", "杏仁凍", "奶蓋"}

var (
	// ErrRecordNotFound 在指定记录不存在时返回
	ErrRecordNotFound = errors.New("drink record not found")
	// ErrInvalidRecord 表示提交的记录缺少必填项或数值越界
	ErrInvalidRecord = errors.New("invalid drink record")
)

var (
	recordValidator = newRecordValidator()
	textPolicy      = bluemonday.StrictPolicy()
)

// DrinkInput 定义新增/覆盖记录时可提交的字段。
type DrinkInput struct {
	Brand      string  `validate:"required"`
	DrinkName  string  `validate:"required"`
	SugarValue int     `validate:"min=0,max=10"`
	IceLevel   string  `validate:"required,icelevel"`
	Toppings   string
	Review     string
	Price      float64 `validate:"gte=0"`
	Rating     int     `validate:"min=1,max=5"`
	Date       string  `validate:"required,datetime=2006-01-02"`
}

func newRecordValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("icelevel", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, level := range IceLevels {
			if value == level {
				return true
			}
		}
		return false
	})
	return v
}

// SugarLabel 将 0-10 的甜度值转换为展示文字。
func SugarLabel(value int) string {
	switch value {
	case 0:
		return "無糖 (0分)"
	case 10:
		return "全糖 (10分)"
	default:
		return fmt.Sprintf("%d 分糖", value)
	}
}

// NewRecordID 生成 “毫秒时间戳-9 位随机字符” 形式的记录 ID。
func NewRecordID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// DateTimestamp 返回日期在 UTC 零点的毫秒时间戳，仅用于排序。
func DateTimestamp(date string) (int64, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, err
	}
	return parsed.UnixMilli(), nil
}

// NormalizeDrinkInput 清理文本并校验数值范围。
func NormalizeDrinkInput(input DrinkInput) (DrinkInput, error) {
	input.Brand = sanitizeText(input.Brand)
	input.DrinkName = sanitizeText(input.DrinkName)
	input.IceLevel = strings.TrimSpace(input.IceLevel)
	input.Toppings = normalizeToppings(sanitizeText(input.Toppings))
	input.Review = sanitizeText(input.Review)
	input.Date = strings.TrimSpace(input.Date)

	if input.Brand == CustomBrandOption {
		return input, fmt.Errorf("%w: custom brand name is required", ErrInvalidRecord)
	}

	if err := recordValidator.Struct(input); err != nil {
		return input, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return input, nil
}

// BuildRecord 根据输入与当前昵称构造一条新记录。
func BuildRecord(input DrinkInput, owner string, now time.Time) (db.DrinkRecord, error) {
	owner = sanitizeText(owner)
	if owner == "" {
		return db.DrinkRecord{}, fmt.Errorf("%w: drinker name is required", ErrInvalidRecord)
	}

	normalized, err := NormalizeDrinkInput(input)
	if err != nil {
		return db.DrinkRecord{}, err
	}

	return recordFromInput(NewRecordID(now), owner, normalized)
}

// ReplaceRecord 以新的输入整体覆盖已有记录，ID 与饮用者保持不变。
func ReplaceRecord(existing db.DrinkRecord, input DrinkInput) (db.DrinkRecord, error) {
	normalized, err := NormalizeDrinkInput(input)
	if err != nil {
		return db.DrinkRecord{}, err
	}

	record, err := recordFromInput(existing.ID, existing.DrinkerName, normalized)
	if err != nil {
		return db.DrinkRecord{}, err
	}
	record.GroupID = existing.GroupID
	return record, nil
}

func recordFromInput(id, owner string, input DrinkInput) (db.DrinkRecord, error) {
	timestamp, err := DateTimestamp(input.Date)
	if err != nil {
		return db.DrinkRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return db.DrinkRecord{
		ID:          id,
		DrinkerName: owner,
		Brand:       input.Brand,
		DrinkName:   input.DrinkName,
		SugarLevel:  SugarLabel(input.SugarValue),
		SugarValue:  input.SugarValue,
		IceLevel:    input.IceLevel,
		Toppings:    input.Toppings,
		Review:      input.Review,
		Price:       input.Price,
		Rating:      input.Rating,
		Date:        input.Date,
		Timestamp:   timestamp,
	}, nil
}

// ToggleTopping 在逗号分隔的加料文字中加入或移除指定加料。
func ToggleTopping(toppings, item string) string {
	item = strings.TrimSpace(item)
	current := splitToppings(toppings)
	result := make([]string, 0, len(current)+1)
	found := false
	for _, existing := range current {
		if existing == item {
			found = true
			continue
		}
		result = append(result, existing)
	}
	if !found && item != "" {
		result = append(result, item)
	}
	return strings.Join(result, ", ")
}

func splitToppings(toppings string) []string {
	parts := strings.Split(toppings, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func normalizeToppings(toppings string) string {
	return strings.Join(splitToppings(toppings), ", ")
}

func sanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(value)))
}
