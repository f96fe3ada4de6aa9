package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSummary(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"daily":         q.Get("daily"),
			"timezone":      q.Get("timezone"),
			"forecast_days": q.Get("forecast_days"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"daily": {
				"time": ["2026-05-01", "2026-05-02", "2026-05-03"],
				"temperature_2m_max": [25.1, 22.8, 19.0],
				"temperature_2m_min": [15.3, 14.0, 11.2],
				"weathercode": [0, 61, 95]
			}
		}`))
	}))
	defer srv.Close()

	c := New(srv.Client())
	c.baseURL = srv.URL

	got, err := c.Summary(context.Background(), 35.6895, 139.6917, 3)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if gotQuery["daily"] != "temperature_2m_max,temperature_2m_min,weathercode" {
		t.Errorf("daily param = %q", gotQuery["daily"])
	}
	if gotQuery["timezone"] != "auto" || gotQuery["forecast_days"] != "3" {
		t.Errorf("query = %v", gotQuery)
	}

	if len(got) != 3 {
		t.Fatalf("got %d days, want 3", len(got))
	}
	if got[0].Date != "2026-05-01" || got[0].TempMax != 25.1 || got[0].Description != "晴朗" {
		t.Errorf("day 0 = %+v", got[0])
	}
	if got[1].Description != "雨" {
		t.Errorf("code 61 described as %q, want 雨", got[1].Description)
	}
	if got[2].Description != "雷雨" {
		t.Errorf("code 95 described as %q, want 雷雨", got[2].Description)
	}
}

func TestSummaryClampsDays(t *testing.T) {
	var gotDays string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("forecast_days")
		w.Write([]byte(`{"daily": {"time": []}}`))
	}))
	defer srv.Close()

	c := New(srv.Client())
	c.baseURL = srv.URL

	if _, err := c.Summary(context.Background(), 0, 0, 30); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if gotDays != "16" {
		t.Errorf("forecast_days = %q, want clamp to 16", gotDays)
	}

	if _, err := c.Summary(context.Background(), 0, 0, -1); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if gotDays != "1" {
		t.Errorf("forecast_days = %q, want clamp to 1", gotDays)
	}
}

func TestSummaryHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	c := New(srv.Client())
	c.baseURL = srv.URL

	if _, err := c.Summary(context.Background(), 0, 0, 3); err == nil {
		t.Fatal("server error not reported")
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{0, "晴朗"},
		{2, "多云"},
		{45, "雾"},
		{63, "雨"},
		{71, "雪"},
		{80, "阵雨"},
		{85, "阵雪"},
		{95, "雷雨"},
	}
	for _, tc := range cases {
		if got := describe(tc.code); got != tc.want {
			t.Errorf("describe(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
