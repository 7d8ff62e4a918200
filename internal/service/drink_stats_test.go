package service

import (
	"reflect"
	"testing"

	"github.com/bobalog/internal/db"
)

func TestLeaderboardSortsByCupsWithStableTies(t *testing.T) {
	records := []db.DrinkRecord{
		drink("a", withDrinker("小明"), withPrice(50)),
		drink("b", withDrinker("阿華"), withPrice(60)),
		drink("c", withDrinker("小美"), withPrice(70)),
		drink("d", withDrinker("小美"), withPrice(30)),
		drink("e", withDrinker("阿華"), withPrice(40)),
	}

	got := Leaderboard(records)
	want := []DrinkerStat{
		{Name: "阿華", Cups: 2, Spent: 100},
		{Name: "小美", Cups: 2, Spent: 100},
		{Name: "小明", Cups: 1, Spent: 50},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected leaderboard: %#v", got)
	}
}

func TestBrandRankingTopFiveIsStable(t *testing.T) {
	var records []db.DrinkRecord
	for _, brand := range []string{"A", "B", "C", "D", "E", "F"} {
		records = append(records, drink("x", withBrand(brand)))
	}
	records = append(records, drink("x", withBrand("F")))

	got := BrandRanking(records, 0)
	names := make([]string, 0, len(got))
	for _, stat := range got {
		names = append(names, stat.Name)
	}
	want := []string{"F", "A", "B", "C", "D"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}

	if again := BrandRanking(records, 5); !reflect.DeepEqual(got, again) {
		t.Fatalf("ranking should be deterministic: %v vs %v", got, again)
	}
}

func TestItemRankingAveragesRating(t *testing.T) {
	records := []db.DrinkRecord{
		drink("紅茶拿鐵", withBrand("50嵐"), withRating(5)),
		drink("紅茶拿鐵", withBrand("50嵐"), withRating(4)),
		drink("紅茶拿鐵", withBrand("50嵐"), withRating(4)),
		drink("紅茶拿鐵", withBrand("可不可"), withRating(2)),
	}

	got := ItemRanking(records, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 items keyed by brand and name, got %d", len(got))
	}
	first := got[0]
	if first.Label != "50嵐 紅茶拿鐵" || first.Count != 3 {
		t.Fatalf("unexpected first item %#v", first)
	}
	if first.AvgRating != 4.3 {
		t.Fatalf("expected avg rating 4.3, got %v", first.AvgRating)
	}
}

func TestTimeBuckets(t *testing.T) {
	records := []db.DrinkRecord{
		drink("a", withDate("2026-04-02"), withPrice(10)),
		drink("b", withDate("2026-01-15"), withPrice(20)),
		drink("c", withDate("2026-03-31"), withPrice(30)),
		drink("d", withDate("2026-01-01"), withPrice(40)),
		drink("e", withDate("not-a-date"), withPrice(99)),
	}

	months := MonthlyBuckets(records)
	wantMonths := []PeriodStat{
		{Key: "2026-01", Cups: 2, Spent: 60},
		{Key: "2026-03", Cups: 1, Spent: 30},
		{Key: "2026-04", Cups: 1, Spent: 10},
	}
	if !reflect.DeepEqual(months, wantMonths) {
		t.Fatalf("unexpected months %#v", months)
	}

	quarters := QuarterlyBuckets(records)
	wantQuarters := []PeriodStat{
		{Key: "2026-Q1", Cups: 3, Spent: 90},
		{Key: "2026-Q2", Cups: 1, Spent: 10},
	}
	if !reflect.DeepEqual(quarters, wantQuarters) {
		t.Fatalf("unexpected quarters %#v", quarters)
	}

	options := QuarterOptions(records)
	if !reflect.DeepEqual(options, []string{QuarterAll, "2026-Q1", "2026-Q2"}) {
		t.Fatalf("unexpected quarter options %v", options)
	}
}

func TestQuarterKeyUsesCalendarQuarter(t *testing.T) {
	cases := map[string]string{
		"2026-01-01": "2026-Q1",
		"2026-03-31": "2026-Q1",
		"2026-04-01": "2026-Q2",
		"2026-09-30": "2026-Q3",
		"2026-12-31": "2026-Q4",
	}
	for date, want := range cases {
		got, ok := QuarterKey(drink("x", withDate(date)))
		if !ok || got != want {
			t.Fatalf("QuarterKey(%s) = %s, want %s", date, got, want)
		}
	}
}

func TestFilterByQuarter(t *testing.T) {
	records := []db.DrinkRecord{
		drink("a", withDate("2026-02-01"), withDrinker("小明")),
		drink("b", withDate("2026-05-01"), withDrinker("阿華")),
	}

	if got := FilterByQuarter(records, QuarterAll); len(got) != 2 {
		t.Fatalf("All should keep everything, got %d", len(got))
	}
	if got := FilterByQuarter(records, ""); len(got) != 2 {
		t.Fatalf("empty should keep everything, got %d", len(got))
	}
	got := FilterByQuarter(records, "2026-Q2")
	if len(got) != 1 || got[0].DrinkerName != "阿華" {
		t.Fatalf("unexpected filter result %#v", got)
	}
	if board := Leaderboard(got); len(board) != 1 || board[0].Name != "阿華" {
		t.Fatalf("leaderboard should be scoped to the quarter, got %#v", board)
	}
}

func TestSummarize(t *testing.T) {
	records := []db.DrinkRecord{
		drink("a", withDrinker("小明"), withBrand("A"), withPrice(55)),
		drink("b", withDrinker("阿華"), withBrand("B"), withPrice(120)),
		drink("c", withDrinker("小明"), withBrand("A"), withPrice(35)),
	}

	got := Summarize(records)
	want := Overview{
		TotalCups:  3,
		TotalSpent: 210,
		BrandCount: 2,
		Drinkers:   []string{"小明", "阿華"},
		MaxPrice:   120,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected overview %#v", got)
	}

	empty := Summarize(nil)
	if empty.TotalCups != 0 || empty.MaxPrice != 0 || len(empty.Drinkers) != 0 {
		t.Fatalf("unexpected empty overview %#v", empty)
	}
}

func TestAggregationIsIdempotent(t *testing.T) {
	records := []db.DrinkRecord{
		drink("珍珠奶茶", withDate("2026-01-01"), withDrinker("小明")),
		drink("四季春", withDate("2026-01-02"), withDrinker("阿華"), withSugar(0)),
		drink("鐵觀音拿鐵", withDate("2026-02-10"), withDrinker("小明"), withPrice(120)),
	}

	if !reflect.DeepEqual(Summarize(records), Summarize(records)) {
		t.Fatalf("summarize is not idempotent")
	}
	if !reflect.DeepEqual(Leaderboard(records), Leaderboard(records)) {
		t.Fatalf("leaderboard is not idempotent")
	}
	if !reflect.DeepEqual(BuildMetrics(records), BuildMetrics(records)) {
		t.Fatalf("metrics are not idempotent")
	}
	if Fingerprint(records) != Fingerprint(records) {
		t.Fatalf("fingerprint is not idempotent")
	}
}
