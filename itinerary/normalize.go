// Package itinerary converts the two historical backend itinerary
// formats into the single canonical per-day activity list the rest of
// the app renders from.
package itinerary

import (
	"fmt"
	"regexp"
	"strings"

	"travelfront/models"
)

// RawActivity is one entry of the activity-array backend format. The
// description is free text; labeled detail fields are buried in it.
type RawActivity struct {
	Activity    string  `json:"activity"`
	Time        string  `json:"time"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Cost        float64 `json:"cost"`
	Duration    string  `json:"duration"`
	Tips        string  `json:"tips"`
}

// RawSlot is one meal/period entry of the time-slot backend format.
// Detail fields arrive in either camelCase or snake_case depending on
// backend version.
type RawSlot struct {
	Name              string  `json:"name"`
	Time              string  `json:"time"`
	Description       string  `json:"description"`
	Address           string  `json:"address"`
	Location          string  `json:"location"`
	Cost              float64 `json:"cost"`
	OpenTime          string  `json:"openTime"`
	OpenTimeSnake     string  `json:"open_time"`
	TicketPrice       string  `json:"ticketPrice"`
	TicketPriceSnake  string  `json:"ticket_price"`
	Specialties       string  `json:"specialties"`
	RecommendedDishes string  `json:"recommended_dishes"`
	Features          string  `json:"features"`
	Tips              string  `json:"tips"`
}

// RawDay carries both backend formats; exactly one of them is expected
// to be populated for a given day.
type RawDay struct {
	Date  string `json:"date"`
	Theme string `json:"theme"`

	Activities []RawActivity `json:"activities"`

	Breakfast *RawSlot `json:"breakfast"`
	Morning   *RawSlot `json:"morning"`
	Lunch     *RawSlot `json:"lunch"`
	Afternoon *RawSlot `json:"afternoon"`
	Dinner    *RawSlot `json:"dinner"`
	Evening   *RawSlot `json:"evening"`
}

type shape int

const (
	shapeTimeSlots shape = iota
	shapeActivities
)

// shapeOf picks the format of a day. A present activities array wins,
// even when empty; slot keys are only consulted otherwise.
func shapeOf(d RawDay) shape {
	if d.Activities != nil {
		return shapeActivities
	}
	return shapeTimeSlots
}

// Normalize converts a raw backend day list into canonical days. It is
// pure: the same input always yields the same output, and activity IDs
// ("{dayIndex}-{activityIndex}") are unique within the plan.
func Normalize(days []RawDay) []models.Day {
	if len(days) == 0 {
		return nil
	}
	out := make([]models.Day, 0, len(days))
	for i, d := range days {
		day := models.Day{
			Day:   i + 1,
			Date:  d.Date,
			Theme: d.Theme,
		}
		if day.Theme == "" {
			day.Theme = fmt.Sprintf("第%d天", i+1)
		}
		switch shapeOf(d) {
		case shapeActivities:
			day.Activities = fromActivities(i, d.Activities)
		default:
			day.Activities = fromTimeSlots(i, d)
		}
		out = append(out, day)
	}
	return out
}

const (
	defaultTime     = "09:00"
	defaultLocation = "待定"
)

func fromActivities(dayIdx int, acts []RawActivity) []models.Activity {
	out := make([]models.Activity, 0, len(acts))
	for j, a := range acts {
		act := models.Activity{
			ID:          fmt.Sprintf("%d-%d", dayIdx, j),
			TimeSlot:    slotLabelFor(a.Activity),
			Time:        a.Time,
			Title:       a.Activity,
			Description: a.Description,
			Location:    a.Location,
			Cost:        a.Cost,
			Category:    categoryFor(a.Activity),
			Details:     extractDetails(a),
		}
		if act.Time == "" {
			act.Time = defaultTime
		}
		if act.Location == "" {
			act.Location = defaultLocation
		}
		if act.Cost < 0 {
			act.Cost = 0
		}
		out = append(out, act)
	}
	return out
}

// 時段格式的六個固定欄位，含預設時間與分類
var slotMeta = []struct {
	key      string
	label    string
	time     string
	category string
}{
	{"breakfast", "早餐", "08:00", models.CategoryDining},
	{"morning", "上午", "09:30", models.CategoryCulture},
	{"lunch", "午餐", "12:00", models.CategoryDining},
	{"afternoon", "下午", "14:00", models.CategoryCulture},
	{"dinner", "晚餐", "18:00", models.CategoryDining},
	{"evening", "晚上", "20:00", models.CategoryEntertainment},
}

func fromTimeSlots(dayIdx int, d RawDay) []models.Activity {
	slots := []*RawSlot{d.Breakfast, d.Morning, d.Lunch, d.Afternoon, d.Dinner, d.Evening}

	var out []models.Activity
	for j, s := range slots {
		if s == nil || s.Name == "" {
			continue
		}
		meta := slotMeta[j]

		t := s.Time
		if t == "" {
			t = meta.time
		}
		loc := s.Address
		if loc == "" {
			loc = s.Location
		}
		if loc == "" {
			loc = defaultLocation
		}
		cost := s.Cost
		if cost < 0 {
			cost = 0
		}

		out = append(out, models.Activity{
			// slot position keeps IDs stable even when slots are sparse
			ID:          fmt.Sprintf("%d-%d", dayIdx, j),
			TimeSlot:    meta.label,
			Time:        t,
			Title:       s.Name,
			Description: s.Description,
			Location:    loc,
			Cost:        cost,
			Category:    meta.category,
			Details: models.ActivityDetails{
				OpenTime:    firstNonEmpty(s.OpenTime, s.OpenTimeSnake),
				TicketPrice: firstNonEmpty(s.TicketPrice, s.TicketPriceSnake),
				Specialties: firstNonEmpty(s.Specialties, s.RecommendedDishes),
				Features:    s.Features,
				Tips:        s.Tips,
			},
		})
	}
	return out
}

// 從 description 自由文字中擷取標註欄位，中英文標記都接受
var (
	openTimeRe    = regexp.MustCompile(`(?i)(?:开放时间|開放時間|Open hours?)[：:]\s*([^\n]+)`)
	ticketRe      = regexp.MustCompile(`(?i)(?:门票|門票|Ticket(?: price)?)[：:]\s*([^\n]+)`)
	specialtiesRe = regexp.MustCompile(`(?i)(?:推荐菜品|推薦菜品|Specialt(?:y|ies))[：:]\s*([^\n]+)`)
	perPersonRe   = regexp.MustCompile(`(?i)(?:人均消费|人均消費|Per person)[：:]\s*([^\n]+)`)
)

// extractDetails is best-effort: a missing marker leaves the field as
// an empty string, never a failure.
func extractDetails(a RawActivity) models.ActivityDetails {
	return models.ActivityDetails{
		OpenTime:    firstMatch(openTimeRe, a.Description),
		TicketPrice: firstMatch(ticketRe, a.Description),
		Specialties: firstMatch(specialtiesRe, a.Description),
		PerPerson:   firstMatch(perPersonRe, a.Description),
		Tips:        a.Tips,
	}
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// 依活動名稱推斷時段標籤
var slotLabels = []struct {
	label    string
	keywords []string
}{
	{"早餐", []string{"早餐", "breakfast"}},
	{"午餐", []string{"午餐", "lunch"}},
	{"晚餐", []string{"晚餐", "dinner"}},
	{"上午", []string{"上午", "morning"}},
	{"下午", []string{"下午", "afternoon"}},
	{"晚上", []string{"晚上", "evening"}},
}

func slotLabelFor(title string) string {
	name := strings.ToLower(title)
	for _, s := range slotLabels {
		for _, kw := range s.keywords {
			if strings.Contains(name, kw) {
				return s.label
			}
		}
	}
	return "全天"
}

// 依活動名稱推斷分類，比對順序固定：美食 → 文化 → 購物 → 戶外
var categoryBuckets = []struct {
	category string
	keywords []string
}{
	{models.CategoryDining, []string{"餐", "食", "吃", "restaurant", "dining", "food", "cafe"}},
	{models.CategoryCulture, []string{"景点", "景點", "游览", "遊覽", "参观", "參觀", "博物", "历史", "歷史", "古", "寺", "庙", "廟", "sightseeing", "visit", "museum", "temple", "palace", "history", "culture"}},
	{models.CategoryShopping, []string{"购物", "購物", "商场", "商場", "市场", "市場", "shopping", "mall", "market"}},
	{models.CategoryOutdoor, []string{"公园", "公園", "山", "湖", "海滩", "海灘", "徒步", "hiking", "park", "beach", "mountain", "lake", "outdoor", "trail"}},
}

func categoryFor(title string) string {
	name := strings.ToLower(title)
	for _, b := range categoryBuckets {
		for _, kw := range b.keywords {
			if strings.Contains(name, kw) {
				return b.category
			}
		}
	}
	return models.CategoryEntertainment
}
