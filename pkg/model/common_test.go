package model

import "testing"

func TestIsWeekend(t *testing.T) {
	cases := []struct {
		date     string
		expected bool
	}{
		{"2026-03-06", false}, // 周五
		{"2026-03-07", true},  // 周六
		{"2026-03-08", true},  // 周日
		{"2026-03-09", false}, // 周一
		{"not-a-date", false},
	}

	for _, c := range cases {
		if got := IsWeekend(c.date); got != c.expected {
			t.Errorf("IsWeekend(%s) = %v, expected %v", c.date, got, c.expected)
		}
	}
}

func TestPreviousDate(t *testing.T) {
	if got := PreviousDate("2026-03-01"); got != "2026-02-28" {
		t.Errorf("Expected 2026-02-28, got %s", got)
	}

	// 无效日期返回空
	if got := PreviousDate("bad"); got != "" {
		t.Errorf("Expected empty string for invalid date, got %s", got)
	}
}

func TestNextDate(t *testing.T) {
	if got := NextDate("2026-12-31"); got != "2027-01-01" {
		t.Errorf("Expected 2027-01-01, got %s", got)
	}
}

func TestIsConsecutiveDate(t *testing.T) {
	if !IsConsecutiveDate("2026-03-07", "2026-03-08") {
		t.Error("Adjacent dates should be consecutive")
	}
	if IsConsecutiveDate("2026-03-07", "2026-03-09") {
		t.Error("Dates two days apart should not be consecutive")
	}
	// 顺序相反不算连续
	if IsConsecutiveDate("2026-03-08", "2026-03-07") {
		t.Error("Reversed order should not be consecutive")
	}
}
