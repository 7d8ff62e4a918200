package service

import (
	"testing"

	"github.com/bobalog/internal/db"
)

func TestLongestStreak(t *testing.T) {
	cases := []struct {
		name  string
		dates []string
		want  int
	}{
		{name: "no records", dates: nil, want: 0},
		{name: "single day", dates: []string{"2026-01-01"}, want: 1},
		{name: "same day twice", dates: []string{"2026-01-01", "2026-01-01"}, want: 1},
		{name: "three consecutive", dates: []string{"2026-01-01", "2026-01-02", "2026-01-03"}, want: 3},
		{name: "gap resets", dates: []string{"2026-01-01", "2026-01-02", "2026-01-04", "2026-01-05", "2026-01-06"}, want: 3},
		{name: "unordered input", dates: []string{"2026-01-03", "2026-01-01", "2026-01-02"}, want: 3},
		{name: "crosses month end", dates: []string{"2026-01-30", "2026-01-31", "2026-02-01"}, want: 3},
		{name: "crosses leap day", dates: []string{"2028-02-28", "2028-02-29", "2028-03-01"}, want: 3},
		{name: "crosses year end", dates: []string{"2025-12-31", "2026-01-01"}, want: 2},
		{name: "unparsable dates ignored", dates: []string{"2026-01-01", "garbage", "2026-01-02"}, want: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := make([]db.DrinkRecord, 0, len(tc.dates))
			for _, date := range tc.dates {
				records = append(records, drink("x", withDate(date)))
			}
			if got := LongestStreak(records); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
