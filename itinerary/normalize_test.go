package itinerary

import (
	"testing"

	"travelfront/models"
)

func TestNormalizeActivityShape(t *testing.T) {
	days := []RawDay{
		{
			Date:  "2026-05-01",
			Theme: "抵达与美食",
			Activities: []RawActivity{
				{
					Activity:    "午餐：老字号面馆",
					Time:        "12:30",
					Description: "当地人气小店。推荐菜品：牛肉面、小笼包\n人均消费：50元",
					Location:    "中山路12号",
					Cost:        50,
					Tips:        "排队约20分钟",
				},
				{
					Activity:    "故宫参观",
					Description: "开放时间：08:30-17:00\n门票：60元",
					Cost:        -10,
				},
			},
		},
	}

	got := Normalize(days)
	if len(got) != 1 {
		t.Fatalf("Normalize returned %d days, want 1", len(got))
	}
	day := got[0]
	if day.Day != 1 || day.Theme != "抵达与美食" {
		t.Errorf("day header = %d/%q, want 1/抵达与美食", day.Day, day.Theme)
	}
	if len(day.Activities) != 2 {
		t.Fatalf("got %d activities, want 2", len(day.Activities))
	}

	lunch := day.Activities[0]
	if lunch.ID != "0-0" {
		t.Errorf("lunch ID = %q, want 0-0", lunch.ID)
	}
	if lunch.TimeSlot != "午餐" {
		t.Errorf("lunch time slot = %q, want 午餐", lunch.TimeSlot)
	}
	if lunch.Category != models.CategoryDining {
		t.Errorf("lunch category = %q, want %q", lunch.Category, models.CategoryDining)
	}
	if lunch.Details.Specialties != "牛肉面、小笼包" {
		t.Errorf("specialties = %q", lunch.Details.Specialties)
	}
	if lunch.Details.PerPerson != "50元" {
		t.Errorf("per person = %q", lunch.Details.PerPerson)
	}
	if lunch.Details.Tips != "排队约20分钟" {
		t.Errorf("tips = %q", lunch.Details.Tips)
	}

	visit := day.Activities[1]
	if visit.ID != "0-1" {
		t.Errorf("visit ID = %q, want 0-1", visit.ID)
	}
	if visit.Time != "09:00" {
		t.Errorf("missing time should default to 09:00, got %q", visit.Time)
	}
	if visit.Location != "待定" {
		t.Errorf("missing location should default to 待定, got %q", visit.Location)
	}
	if visit.Cost != 0 {
		t.Errorf("negative cost should clamp to 0, got %v", visit.Cost)
	}
	if visit.Category != models.CategoryCulture {
		t.Errorf("visit category = %q, want %q", visit.Category, models.CategoryCulture)
	}
	if visit.Details.OpenTime != "08:30-17:00" {
		t.Errorf("open time = %q", visit.Details.OpenTime)
	}
	if visit.Details.TicketPrice != "60元" {
		t.Errorf("ticket price = %q", visit.Details.TicketPrice)
	}
}

func TestNormalizeTimeSlotShape(t *testing.T) {
	days := []RawDay{
		{
			Breakfast: &RawSlot{Name: "酒店早餐"},
			Afternoon: &RawSlot{
				Name:          "博物馆",
				Address:       "人民大道100号",
				OpenTimeSnake: "09:00-17:00",
				TicketPrice:   "免费",
			},
			Evening: &RawSlot{Name: "夜市", Time: "19:30", Cost: -5},
		},
	}

	got := Normalize(days)
	if len(got) != 1 {
		t.Fatalf("Normalize returned %d days, want 1", len(got))
	}
	day := got[0]
	if day.Theme != "第1天" {
		t.Errorf("missing theme should default to 第1天, got %q", day.Theme)
	}
	if len(day.Activities) != 3 {
		t.Fatalf("got %d activities, want 3 (empty slots skipped)", len(day.Activities))
	}

	breakfast := day.Activities[0]
	if breakfast.ID != "0-0" || breakfast.TimeSlot != "早餐" || breakfast.Time != "08:00" {
		t.Errorf("breakfast = %q/%q/%q", breakfast.ID, breakfast.TimeSlot, breakfast.Time)
	}
	if breakfast.Category != models.CategoryDining {
		t.Errorf("breakfast category = %q", breakfast.Category)
	}
	if breakfast.Location != "待定" {
		t.Errorf("breakfast location = %q, want 待定", breakfast.Location)
	}

	// IDs follow slot position, not output position
	afternoon := day.Activities[1]
	if afternoon.ID != "0-3" {
		t.Errorf("afternoon ID = %q, want 0-3", afternoon.ID)
	}
	if afternoon.Time != "14:00" || afternoon.TimeSlot != "下午" {
		t.Errorf("afternoon = %q/%q", afternoon.Time, afternoon.TimeSlot)
	}
	if afternoon.Location != "人民大道100号" {
		t.Errorf("afternoon location = %q", afternoon.Location)
	}
	if afternoon.Details.OpenTime != "09:00-17:00" {
		t.Errorf("snake_case open_time not picked up: %q", afternoon.Details.OpenTime)
	}
	if afternoon.Details.TicketPrice != "免费" {
		t.Errorf("ticket price = %q", afternoon.Details.TicketPrice)
	}

	evening := day.Activities[2]
	if evening.ID != "0-5" || evening.Time != "19:30" {
		t.Errorf("evening = %q/%q", evening.ID, evening.Time)
	}
	if evening.Cost != 0 {
		t.Errorf("negative slot cost should clamp to 0, got %v", evening.Cost)
	}
	if evening.Category != models.CategoryEntertainment {
		t.Errorf("evening category = %q", evening.Category)
	}
}

func TestNormalizeEmptyActivitiesArrayWins(t *testing.T) {
	// a present-but-empty activities array must not fall back to slots
	days := []RawDay{
		{
			Activities: []RawActivity{},
			Lunch:      &RawSlot{Name: "应被忽略"},
		},
	}
	got := Normalize(days)
	if len(got) != 1 {
		t.Fatalf("Normalize returned %d days, want 1", len(got))
	}
	if len(got[0].Activities) != 0 {
		t.Errorf("empty activities array should yield no activities, got %d", len(got[0].Activities))
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	if got := Normalize(nil); got != nil {
		t.Errorf("Normalize(nil) = %v, want nil", got)
	}
}

func TestNormalizeDeterministicIDs(t *testing.T) {
	days := []RawDay{
		{Activities: []RawActivity{{Activity: "A"}, {Activity: "B"}}},
		{Activities: []RawActivity{{Activity: "C"}}},
	}
	a := Normalize(days)
	b := Normalize(days)

	seen := map[string]bool{}
	for di := range a {
		for ai := range a[di].Activities {
			id := a[di].Activities[ai].ID
			if seen[id] {
				t.Errorf("duplicate activity ID %q", id)
			}
			seen[id] = true
			if id != b[di].Activities[ai].ID {
				t.Errorf("IDs not stable across runs: %q vs %q", id, b[di].Activities[ai].ID)
			}
		}
	}
	if a[1].Activities[0].ID != "1-0" {
		t.Errorf("second day first activity ID = %q, want 1-0", a[1].Activities[0].ID)
	}
}

func TestCategoryFor(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"海鲜餐厅", models.CategoryDining},
		{"历史博物馆", models.CategoryCulture},
		{"购物中心", models.CategoryShopping},
		{"森林公园徒步", models.CategoryOutdoor},
		{"KTV", models.CategoryEntertainment},
		{"restaurant in a museum", models.CategoryDining}, // dining checked first
	}
	for _, tc := range cases {
		if got := categoryFor(tc.title); got != tc.want {
			t.Errorf("categoryFor(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestSlotLabelFor(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"早餐时光", "早餐"},
		{"Lunch break", "午餐"},
		{"下午漫步", "下午"},
		{"自由活动", "全天"},
	}
	for _, tc := range cases {
		if got := slotLabelFor(tc.title); got != tc.want {
			t.Errorf("slotLabelFor(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}
