package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bobalog/internal/config"
	"github.com/bobalog/internal/db"
	"github.com/bobalog/internal/service"
)

const defaultSeedCount = 60

type seedDrink struct {
	brand    string
	name     string
	toppings string
	price    float64
}

var seedMenu = []seedDrink{
	{brand: "50嵐", name: "四季春青茶", price: 30},
	{brand: "50嵐", name: "波霸奶茶", toppings: "波霸", price: 50},
	{brand: "可不可熟成紅茶", name: "熟成紅茶", price: 35},
	{brand: "可不可熟成紅茶", name: "胭脂紅茶拿鐵", price: 60},
	{brand: "得正 OOLONG", name: "春芽綠茶", price: 35},
	{brand: "得正 OOLONG", name: "焙香決明大麥", price: 40},
	{brand: "五桐號", name: "杏仁凍五桐茶", toppings: "杏仁凍", price: 60},
	{brand: "麻古茶坊", name: "芝芝芒果果粒", price: 75},
	{brand: "迷客夏 Milksha", name: "珍珠綠茶拿鐵", toppings: "珍珠", price: 70},
	{brand: "鶴茶樓", name: "鶴頂紅茶", price: 40},
	{brand: "萬波", name: "冬瓜檸檬", price: 55},
	{brand: "清心福全", name: "烏龍綠茶", price: 30},
	{brand: "烏弄", name: "黑糖珍珠鮮奶", toppings: "珍珠,奶蓋", price: 70},
	{brand: "珍煮丹", name: "黑糖珍珠鮮奶", toppings: "珍珠", price: 75},
	{brand: "COMEBUY", name: "紅柚香香", price: 60},
}

var seedDrinkers = []string{"小明", "小華", "阿美", "大雄"}

var seedReviews = []string{"", "", "剛剛好", "太甜了", "茶味很香", "珍珠 QQ 的", "下次要少冰"}

// 测试数据生成器
func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("讀取 .env 失敗:", err)
	}

	// 初始化数据库
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("設定無效:", err)
	}
	if err := db.Init(db.Options{Driver: cfg.DatabaseDriver, Path: cfg.DatabasePath, DSN: cfg.DatabaseDSN}); err != nil {
		log.Fatal("資料庫初始化失敗:", err)
	}

	fmt.Println("開始產生測試資料...")

	store := service.NewDrinkStore(db.DB, cfg.DefaultGroup, nil)
	records := buildSeedRecords(time.Now(), defaultSeedCount, 42)
	if err := seedDrinkRecords(context.Background(), store, records); err != nil {
		log.Fatal("寫入測試資料失敗:", err)
	}

	fmt.Printf("測試資料產生完成！共 %d 杯，飲用者：%s\n", len(records), strings.Join(seedDrinkers, "、"))
}

// buildSeedRecords 以固定种子生成最近 count 天内的记录，ID 可重复生成，重复执行会覆盖而非新增。
func buildSeedRecords(now time.Time, count int, seed uint64) []db.DrinkRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	records := make([]db.DrinkRecord, 0, count)
	for i := range count {
		item := seedMenu[rng.IntN(len(seedMenu))]
		day := today.AddDate(0, 0, -rng.IntN(max(count*2, 1)))
		sugar := rng.IntN(11)

		input := service.DrinkInput{
			Brand:      item.brand,
			DrinkName:  item.name,
			SugarValue: sugar,
			IceLevel:   service.IceLevels[rng.IntN(len(service.IceLevels))],
			Toppings:   item.toppings,
			Review:     seedReviews[rng.IntN(len(seedReviews))],
			Price:      item.price,
			Rating:     1 + rng.IntN(5),
			Date:       day.Format(service.DateLayout),
		}

		record, err := service.BuildRecord(input, seedDrinkers[rng.IntN(len(seedDrinkers))], day)
		if err != nil {
			log.Printf("略過第 %d 筆：%v", i, err)
			continue
		}
		record.ID = fmt.Sprintf("%d-seed%04d", day.UnixMilli(), i)
		records = append(records, record)
	}
	return records
}

func seedDrinkRecords(ctx context.Context, store *service.DrinkStore, records []db.DrinkRecord) error {
	for _, record := range records {
		if err := store.Put(ctx, record); err != nil {
			return err
		}
	}
	fmt.Println("✅ 測試紀錄寫入完成")
	return nil
}
