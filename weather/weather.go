// Package weather fetches a small daily forecast summary from
// Open-Meteo for the detail view's weather widget. Calls are
// best-effort; the widget shows nothing rather than blocking a page.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.open-meteo.com"

type Client struct {
	baseURL string
	client  *http.Client
}

func New(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: defaultBaseURL, client: client}
}

// DayForecast is one day of the summary.
type DayForecast struct {
	Date        string  `json:"date"`
	TempMax     float64 `json:"tempMax"`
	TempMin     float64 `json:"tempMin"`
	Code        int     `json:"code"`
	Description string  `json:"description"`
}

type forecastResponse struct {
	Daily struct {
		Time        []string  `json:"time"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		WeatherCode []int     `json:"weathercode"`
	} `json:"daily"`
}

// Summary fetches up to days of daily forecast for the coordinates.
func (c *Client) Summary(ctx context.Context, lat, lon float64, days int) ([]DayForecast, error) {
	if days <= 0 {
		days = 1
	}
	if days > 16 {
		days = 16 // open-meteo 的上限
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode")
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(days))

	reqURL := c.baseURL + "/v1/forecast?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo returned %s", resp.Status)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	out := make([]DayForecast, 0, len(body.Daily.Time))
	for i, date := range body.Daily.Time {
		f := DayForecast{Date: date}
		if i < len(body.Daily.TempMax) {
			f.TempMax = body.Daily.TempMax[i]
		}
		if i < len(body.Daily.TempMin) {
			f.TempMin = body.Daily.TempMin[i]
		}
		if i < len(body.Daily.WeatherCode) {
			f.Code = body.Daily.WeatherCode[i]
		}
		f.Description = describe(f.Code)
		out = append(out, f)
	}
	return out, nil
}

// describe maps WMO weather codes to the coarse labels the widget shows.
func describe(code int) string {
	switch {
	case code == 0:
		return "晴朗"
	case code <= 3:
		return "多云"
	case code <= 48:
		return "雾"
	case code <= 67:
		return "雨"
	case code <= 77:
		return "雪"
	case code <= 82:
		return "阵雨"
	case code <= 86:
		return "阵雪"
	default:
		return "雷雨"
	}
}
