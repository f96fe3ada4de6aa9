package planstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"travelfront/itinerary"
	"travelfront/models"
)

// ========== 後端 API 介面 (snake_case) ==========

// planSummary is one entry of the list endpoint and also the single-plan
// endpoint payload.
type planSummary struct {
	PlanID       string             `json:"plan_id"`
	Status       string             `json:"status"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
	Destination  string             `json:"destination"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	Participants int                `json:"participants"`
	Budget       string             `json:"budget"`
	TravelStyle  string             `json:"travel_style"`
	Interests    []string           `json:"interests"`
	Progress     int                `json:"progress"`
	Itinerary    []itinerary.RawDay `json:"itinerary"`
}

type planListResponse struct {
	ActivePlans    []planSummary `json:"active_plans"`
	CompletedPlans []planSummary `json:"completed_plans"`
}

// planRequest is the body of both quick-plan and generation-start calls.
type planRequest struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	GroupSize   int      `json:"group_size"`
	BudgetLevel string   `json:"budget_level"`
	TravelStyle string   `json:"travel_style"`
	Interests   []string `json:"interests"`
}

func wireDetails(d models.PlanDetails) planRequest {
	return planRequest{
		Destination: d.Destination,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		GroupSize:   d.Participants,
		BudgetLevel: d.Budget,
		TravelStyle: strings.Join(d.TravelStyle, ", "),
		Interests:   d.Interests,
	}
}

type planResultWire struct {
	PlanID          string             `json:"plan_id"`
	Title           string             `json:"title"`
	Destination     string             `json:"destination"`
	StartDate       string             `json:"start_date"`
	EndDate         string             `json:"end_date"`
	GroupSize       int                `json:"group_size"`
	BudgetEstimate  float64            `json:"budget_estimate"`
	Itinerary       []itinerary.RawDay `json:"itinerary"`
	Recommendations []string           `json:"recommendations"`
	WeatherInfo     json.RawMessage    `json:"weather_info,omitempty"`
	CulturalTips    []string           `json:"cultural_tips"`
}

// quickPlanResponse tolerates both response generations: itinerary at
// the root or nested under result.
type quickPlanResponse struct {
	Success   bool               `json:"success"`
	PlanID    string             `json:"plan_id"`
	Message   string             `json:"message"`
	Itinerary []itinerary.RawDay `json:"itinerary"`
	Result    *planResultWire    `json:"result"`
}

func (r quickPlanResponse) itineraryDays() []itinerary.RawDay {
	if r.Itinerary != nil {
		return r.Itinerary
	}
	if r.Result != nil {
		return r.Result.Itinerary
	}
	return nil
}

// generateResponse tolerates task_id and the older plan_id field name.
type generateResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
	PlanID  string `json:"plan_id"`
	Message string `json:"message"`
}

func (r generateResponse) taskID() string {
	if r.TaskID != "" {
		return r.TaskID
	}
	return r.PlanID
}

type statusResponse struct {
	PlanID   string `json:"plan_id"`
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// ========== HTTP helpers ==========

// apiError is a non-2xx backend response with whatever detail could be
// extracted from the body.
type apiError struct {
	Status int
	Detail string
}

func (e *apiError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.Status, e.Detail)
}

// errDetail digs the richest available message out of an error body:
// a structured {"detail": ...} field when the body parses as JSON,
// otherwise the raw text.
func errDetail(body []byte) string {
	var structured struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && len(structured.Detail) > 0 {
		var s string
		if err := json.Unmarshal(structured.Detail, &s); err == nil {
			return s
		}
		return string(structured.Detail)
	}
	return strings.TrimSpace(string(body))
}

func (s *Store) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &apiError{Status: resp.StatusCode, Detail: errDetail(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, path string, out any) error {
	return s.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (s *Store) postJSON(ctx context.Context, path string, in, out any) error {
	return s.doJSON(ctx, http.MethodPost, path, in, out)
}

func (s *Store) putJSON(ctx context.Context, path string, in, out any) error {
	return s.doJSON(ctx, http.MethodPut, path, in, out)
}
