package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"travelfront/planstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newPlanRouter stands up a fake planning backend plus the plan routes.
func newPlanRouter(t *testing.T, backend http.Handler) (*gin.Engine, *planstore.Store) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := planstore.New(srv.URL, srv.Client())
	h := NewPlanHandler(store, "http://front.example.com")

	r := gin.New()
	r.GET("/pages/plans", h.List)
	r.POST("/pages/plans", h.Create)
	r.GET("/pages/plans/:id", h.Detail)
	r.GET("/pages/plans/:id/result", h.Result)
	r.POST("/pages/plans/:id/generate", h.Generate)
	r.PUT("/pages/plans/:id", h.Update)
	r.DELETE("/pages/plans/:id", h.Delete)
	r.POST("/pages/plans/:id/invite", h.Invite)
	r.POST("/pages/plans/:id/vote", h.Vote)
	return r, store
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// plannerBackend is a minimal fake covering the endpoints the plan
// pages touch.
func plannerBackend(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/nemo-plans/quick-plan", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "plan_id": "p1"}`))
	})
	mux.HandleFunc("/api/plans/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"active_plans": [{"plan_id": "p1", "destination": "东京"}], "completed_plans": []}`))
	})
	mux.HandleFunc("/api/plans/update/p1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true}`))
	})
	mux.HandleFunc("/api/plans/collaborate/p1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true}`))
	})
	mux.HandleFunc("/api/plans/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"detail": "Plan not found"}`))
	})
	return mux
}

const validCreateBody = `{
	"destination": "东京",
	"startDate": "2026-06-01",
	"endDate": "2026-06-05",
	"budget": "中等",
	"interests": ["美食"]
}`

func TestCreatePlanEndpoint(t *testing.T) {
	r, store := newPlanRouter(t, plannerBackend(t))

	w := doRequest(r, http.MethodPost, "/pages/plans", validCreateBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["planId"] != "p1" {
		t.Errorf("body = %s", w.Body.String())
	}

	p, ok := store.PlanByID("p1")
	if !ok {
		t.Fatal("plan not stored")
	}
	if p.Details.Participants != 1 {
		t.Errorf("participants should default to 1, got %d", p.Details.Participants)
	}
}

func TestCreatePlanValidation(t *testing.T) {
	r, _ := newPlanRouter(t, plannerBackend(t))

	cases := []struct {
		name string
		body string
	}{
		{"missing destination", `{"startDate": "2026-06-01", "endDate": "2026-06-05", "budget": "中等", "interests": ["美食"]}`},
		{"empty interests", `{"destination": "东京", "startDate": "2026-06-01", "endDate": "2026-06-05", "budget": "中等", "interests": []}`},
		{"end before start", `{"destination": "东京", "startDate": "2026-06-05", "endDate": "2026-06-01", "budget": "中等", "interests": ["美食"]}`},
		{"bad date format", `{"destination": "东京", "startDate": "06/01/2026", "endDate": "2026-06-05", "budget": "中等", "interests": ["美食"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/pages/plans", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestPlanDetailEndpoint(t *testing.T) {
	r, store := newPlanRouter(t, plannerBackend(t))
	doRequest(r, http.MethodPost, "/pages/plans", validCreateBody)

	w := doRequest(r, http.MethodGet, "/pages/plans/p1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["shareUrl"] != "http://front.example.com/plan/p1" {
		t.Errorf("share url = %v", body["shareUrl"])
	}
	if body["collaborateUrl"] != "http://front.example.com/collaborate/p1" {
		t.Errorf("collaborate url = %v", body["collaborateUrl"])
	}
	if cur, ok := store.CurrentPlan(); !ok || cur.ID != "p1" {
		t.Errorf("current plan not set, got %+v ok=%v", cur, ok)
	}
}

func TestPlanDetailNotFound(t *testing.T) {
	r, _ := newPlanRouter(t, plannerBackend(t))

	w := doRequest(r, http.MethodGet, "/pages/plans/ghost", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (body %s)", w.Code, w.Body.String())
	}
}

func TestGenerateUnknownPlan(t *testing.T) {
	r, _ := newPlanRouter(t, plannerBackend(t))

	// the store rejects unknown plans before touching the backend
	w := doRequest(r, http.MethodPost, "/pages/plans/ghost/generate", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (body %s)", w.Code, w.Body.String())
	}
}

func TestUpdatePlanEndpoint(t *testing.T) {
	r, store := newPlanRouter(t, plannerBackend(t))
	doRequest(r, http.MethodPost, "/pages/plans", validCreateBody)

	w := doRequest(r, http.MethodPut, "/pages/plans/p1", `{"title": "蜜月旅行"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	p, _ := store.PlanByID("p1")
	if p.Title != "蜜月旅行" {
		t.Errorf("title = %q", p.Title)
	}
}

func TestUpdatePlanRejectsBadStatus(t *testing.T) {
	r, _ := newPlanRouter(t, plannerBackend(t))
	doRequest(r, http.MethodPost, "/pages/plans", validCreateBody)

	// not a known lifecycle value
	w := doRequest(r, http.MethodPut, "/pages/plans/p1", `{"status": "archived"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}

	// known value but illegal transition (draft cannot complete directly)
	w = doRequest(r, http.MethodPut, "/pages/plans/p1", `{"status": "completed"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
}

func TestDeletePlanEndpoint(t *testing.T) {
	r, store := newPlanRouter(t, plannerBackend(t))
	doRequest(r, http.MethodPost, "/pages/plans", validCreateBody)

	w := doRequest(r, http.MethodDelete, "/pages/plans/p1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, ok := store.PlanByID("p1"); ok {
		t.Error("plan still present after delete")
	}
}

func TestInviteEndpoint(t *testing.T) {
	r, store := newPlanRouter(t, plannerBackend(t))
	doRequest(r, http.MethodPost, "/pages/plans", validCreateBody)

	w := doRequest(r, http.MethodPost, "/pages/plans/p1/invite", `{"email": "not-an-email"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid email status = %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/pages/plans/p1/invite", `{"email": "zhao.liu@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	p, _ := store.PlanByID("p1")
	if len(p.Participants) != 5 {
		t.Errorf("roster has %d members, want 5", len(p.Participants))
	}
}

func TestVoteEndpoint(t *testing.T) {
	r, store := newPlanRouter(t, plannerBackend(t))
	doRequest(r, http.MethodPost, "/pages/plans", validCreateBody)

	w := doRequest(r, http.MethodPost, "/pages/plans/p1/vote",
		`{"participantId": "participant_1", "status": "confirmed", "feedback": "走起"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	p, _ := store.PlanByID("p1")
	if p.Participants[1].Status != "confirmed" || p.Participants[1].Feedback != "走起" {
		t.Errorf("participant = %+v", p.Participants[1])
	}
}

func TestVoteValidation(t *testing.T) {
	r, _ := newPlanRouter(t, plannerBackend(t))
	doRequest(r, http.MethodPost, "/pages/plans", validCreateBody)

	w := doRequest(r, http.MethodPost, "/pages/plans/p1/vote",
		`{"participantId": "participant_1", "status": "perhaps"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad status value: code = %d, want 400", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/pages/plans/p1/vote",
		`{"participantId": "ghost", "status": "confirmed"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown participant: code = %d, want 404 (body %s)", w.Code, w.Body.String())
	}
}
