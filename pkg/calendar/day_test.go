// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDayOf_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2024-01-10 20:00 UTC is already 2024-01-11 in Tokyo.
	instant := time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC)

	if got := DayOf(instant, time.UTC).String(); got != "2024-01-10" {
		t.Errorf("DayOf(UTC) = %s, expected 2024-01-10", got)
	}
	if got := DayOf(instant, tokyo).String(); got != "2024-01-11" {
		t.Errorf("DayOf(Tokyo) = %s, expected 2024-01-11", got)
	}
}

func TestDay_AddDaysAcrossMonthAndYear(t *testing.T) {
	tests := []struct {
		name     string
		day      Day
		n        int
		expected string
	}{
		{"next day", Day{2024, time.January, 10}, 1, "2024-01-11"},
		{"month end", Day{2024, time.January, 31}, 1, "2024-02-01"},
		{"leap day", Day{2024, time.February, 28}, 1, "2024-02-29"},
		{"year end", Day{2024, time.December, 31}, 1, "2025-01-01"},
		{"backwards", Day{2024, time.March, 1}, -1, "2024-02-29"},
		{"thirty days", Day{2024, time.January, 10}, 30, "2024-02-09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.day.AddDays(tt.n).String(); got != tt.expected {
				t.Errorf("AddDays(%d) = %s, expected %s", tt.n, got, tt.expected)
			}
		})
	}
}

func TestDay_Ordering(t *testing.T) {
	a := Day{2024, time.January, 10}
	b := Day{2024, time.January, 11}

	if !a.Before(b) || a.After(b) {
		t.Errorf("expected %s before %s", a, b)
	}
	if a.Before(a) {
		t.Errorf("day must not be before itself")
	}
	if got := a.DaysUntil(b.AddDays(2)); got != 3 {
		t.Errorf("DaysUntil = %d, expected 3", got)
	}
	if got := b.DaysUntil(a); got != -1 {
		t.Errorf("DaysUntil = %d, expected -1", got)
	}
}

func TestDay_StartAndEnd(t *testing.T) {
	d := Day{2024, time.January, 10}

	start := d.Start(time.UTC)
	if !start.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", start)
	}
	end := d.End(time.UTC)
	if !end.Equal(time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("End = %v", end)
	}
}

func TestDay_JSONRoundTripUsesDayLayout(t *testing.T) {
	days := []Day{{2024, time.January, 10}, {2024, time.February, 1}}

	data, err := json.Marshal(days)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["2024-01-10","2024-02-01"]` {
		t.Errorf("Marshal() = %s", data)
	}

	var decoded []Day
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(decoded) != 2 || decoded[1] != days[1] {
		t.Errorf("Unmarshal() = %v, expected %v", decoded, days)
	}

	if err := json.Unmarshal([]byte(`["not-a-day"]`), &decoded); err == nil {
		t.Error("expected error for malformed day")
	}
}

func TestResolveRegion(t *testing.T) {
	if _, err := time.LoadLocation("Asia/Tokyo"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name     string
		region   string
		expected string
	}{
		{"locale", "ja_JP", "Asia/Tokyo"},
		{"iana zone", "Europe/Berlin", "Europe/Berlin"},
		{"unset falls back", "", "UTC"},
		{"unknown falls back", "xx_XX", "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := ResolveRegion(tt.region, time.UTC)
			if loc.String() != tt.expected {
				t.Errorf("ResolveRegion(%q) = %s, expected %s", tt.region, loc, tt.expected)
			}
		})
	}
}
