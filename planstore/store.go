// Package planstore is the single source of truth for plan data and the
// only component that talks to the plan endpoints of the planning
// backend. All state lives in memory for the lifetime of the process.
package planstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"travelfront/itinerary"
	"travelfront/models"
)

// currentUserID is the stub identity used while there is no login flow.
const currentUserID = "current_user"

const (
	pollInterval    = 5 * time.Second
	maxPollAttempts = 60 // 5 minute ceiling
)

var (
	// ErrPlanNotFound marks a missing plan (HTTP 404 on single-plan
	// fetch, or an unknown local id), distinct from transport errors.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrParticipantNotFound marks a status update aimed at a
	// participant the plan's roster does not contain.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrBadTransition rejects a status change the lifecycle graph
	// does not allow.
	ErrBadTransition = errors.New("illegal status transition")
	// ErrGenerationFailed is a terminal "failed" status from the
	// generation poll.
	ErrGenerationFailed = errors.New("itinerary generation failed")
	// ErrGenerationTimeout means the poll ceiling was exhausted without
	// a terminal status.
	ErrGenerationTimeout = errors.New("itinerary generation timed out")
)

// Store holds the plan list, the current-plan pointer and the loading
// flags. The HTTP client, clock and sleep function are injectable so
// tests run without a real backend or real delays.
type Store struct {
	mu sync.Mutex

	plans      []models.Plan
	current    *models.Plan
	loading    bool
	generating bool

	baseURL string
	client  *http.Client
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
	newID   func() string
}

// New creates a store talking to the planning backend at baseURL. A nil
// client gets a 10s-timeout default, same as the other outbound calls
// in this app.
func New(baseURL string, client *http.Client) *Store {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		now:     time.Now,
		sleep:   defaultSleep,
		newID:   uuid.NewString,
	}
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ========== 狀態存取 ==========

// Plans returns a copy of the in-memory plan list.
func (s *Store) Plans() []models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, clonePlan(p))
	}
	return out
}

// PlanByID looks a plan up in the in-memory list only.
func (s *Store) PlanByID(id string) (models.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.findLocked(id); p != nil {
		return clonePlan(*p), true
	}
	return models.Plan{}, false
}

// CurrentPlan returns the current-plan pointer, if set.
func (s *Store) CurrentPlan() (models.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Plan{}, false
	}
	return clonePlan(*s.current), true
}

// SetCurrentPlan points the store at one of the in-memory plans. It
// reports whether the plan was found.
func (s *Store) SetCurrentPlan(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.findLocked(id); p != nil {
		cp := clonePlan(*p)
		s.current = &cp
		return true
	}
	return false
}

// ClearCurrentPlan drops the current-plan pointer.
func (s *Store) ClearCurrentPlan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// DeletePlan removes a plan from the local list. Nothing is deleted on
// the backend.
func (s *Store) DeletePlan(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.plans[:0]
	for _, p := range s.plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.plans = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) IsGenerating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) setGenerating(v bool) {
	s.mu.Lock()
	s.generating = v
	s.mu.Unlock()
}

// findLocked returns a pointer into s.plans; caller must hold s.mu.
func (s *Store) findLocked(id string) *models.Plan {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return &s.plans[i]
		}
	}
	return nil
}

func clonePlan(p models.Plan) models.Plan {
	cp := p
	cp.Participants = append([]models.Participant(nil), p.Participants...)
	if p.Itinerary != nil {
		cp.Itinerary = append([]models.Day(nil), p.Itinerary...)
		for i := range cp.Itinerary {
			cp.Itinerary[i].Activities = append([]models.Activity(nil), p.Itinerary[i].Activities...)
		}
	}
	return cp
}

// ========== 後端操作 ==========

// FetchPlans pulls the active and completed summaries from the backend
// and reconciles them into the in-memory list. Backend entries win for
// summary fields, but richer local knowledge survives: a local roster
// larger than the backend's placeholder, a local itinerary the summary
// lacks, and a local status the backend cannot represent. Plans the
// backend does not know about yet stay in the list.
func (s *Store) FetchPlans(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	var list planListResponse
	if err := s.getJSON(ctx, "/api/plans/list", &list); err != nil {
		log.Printf("fetch plans: %v", err)
		return err
	}

	fetched := make([]models.Plan, 0, len(list.ActivePlans)+len(list.CompletedPlans))
	for _, raw := range list.ActivePlans {
		fetched = append(fetched, s.planFromSummary(raw, false))
	}
	for _, raw := range list.CompletedPlans {
		fetched = append(fetched, s.planFromSummary(raw, true))
	}

	s.mu.Lock()
	s.plans = mergeLists(s.plans, fetched)
	s.refreshCurrentLocked()
	s.mu.Unlock()
	return nil
}

func mergeLists(local, fetched []models.Plan) []models.Plan {
	byID := make(map[string]models.Plan, len(local))
	for _, p := range local {
		byID[p.ID] = p
	}

	merged := make([]models.Plan, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for _, f := range fetched {
		if prev, ok := byID[f.ID]; ok {
			if len(prev.Participants) > len(f.Participants) {
				f.Participants = prev.Participants
			}
			if f.Itinerary == nil {
				f.Itinerary = prev.Itinerary
			}
			if f.Status != models.StatusCompleted && prev.Status != "" {
				f.Status = prev.Status
			}
		}
		merged = append(merged, f)
		seen[f.ID] = true
	}
	for _, p := range local {
		if !seen[p.ID] {
			merged = append(merged, p)
		}
	}
	return merged
}

func (s *Store) refreshCurrentLocked() {
	if s.current == nil {
		return
	}
	if p := s.findLocked(s.current.ID); p != nil {
		cp := clonePlan(*p)
		s.current = &cp
	}
}

// FetchPlanByID resolves a plan from the in-memory list first and falls
// back to the backend on a miss. A backend 404 maps to ErrPlanNotFound;
// anything else is a transport error. The fetched plan is appended to
// the list exactly once.
func (s *Store) FetchPlanByID(ctx context.Context, id string) (models.Plan, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	s.mu.Lock()
	if p := s.findLocked(id); p != nil {
		cp := clonePlan(*p)
		s.mu.Unlock()
		return cp, nil
	}
	s.mu.Unlock()

	var raw planSummary
	if err := s.getJSON(ctx, "/api/plans/"+id, &raw); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return models.Plan{}, fmt.Errorf("plan %s: %w", id, ErrPlanNotFound)
		}
		log.Printf("fetch plan %s: %v", id, err)
		return models.Plan{}, err
	}

	plan := s.planFromSummary(raw, false)
	s.mu.Lock()
	if existing := s.findLocked(id); existing != nil {
		// a concurrent fetch beat us here; keep the list duplicate-free
		plan = clonePlan(*existing)
	} else {
		s.plans = append(s.plans, plan)
	}
	s.mu.Unlock()
	return plan, nil
}

// CreatePlan submits the trip parameters to the quick-plan endpoint and
// builds the local plan around the backend-assigned identifier. The
// plan starts at "planning" when the response already carried an
// itinerary, "draft" otherwise, and is seeded with the fixed mock
// roster (organizer plus three placeholder invitees).
func (s *Store) CreatePlan(ctx context.Context, details models.PlanDetails) (string, error) {
	s.setGenerating(true)
	defer s.setGenerating(false)

	var resp quickPlanResponse
	if err := s.postJSON(ctx, "/api/nemo-plans/quick-plan", wireDetails(details), &resp); err != nil {
		log.Printf("create plan: %v", err)
		return "", err
	}
	if resp.PlanID == "" {
		return "", fmt.Errorf("create plan: backend returned no plan_id")
	}

	days := itinerary.Normalize(resp.itineraryDays())
	status := models.StatusDraft
	if len(days) > 0 {
		status = models.StatusPlanning
	}

	now := s.now()
	plan := models.Plan{
		ID:           resp.PlanID,
		Title:        details.Destination + "之旅",
		Details:      details,
		Participants: seedParticipants(),
		Status:       status,
		CreatedBy:    currentUserID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Itinerary:    days,
	}

	s.mu.Lock()
	s.plans = append(s.plans, plan)
	s.mu.Unlock()

	// reconcile with the backend list; the merge keeps the seeded
	// roster and status of the plan we just built
	if err := s.FetchPlans(ctx); err != nil {
		log.Printf("create plan: refresh list: %v", err)
	}
	return resp.PlanID, nil
}

// GenerateItinerary starts asynchronous generation for an existing plan
// and polls until a terminal status, the attempt ceiling, or ctx
// cancellation. A completed result is normalized and merged into the
// plan together with the "planning" status.
func (s *Store) GenerateItinerary(ctx context.Context, planID string) error {
	s.setGenerating(true)
	defer s.setGenerating(false)

	plan, ok := s.PlanByID(planID)
	if !ok {
		return fmt.Errorf("generate itinerary: %w", ErrPlanNotFound)
	}

	var started generateResponse
	if err := s.postJSON(ctx, "/api/nemo-plans/create", wireDetails(plan.Details), &started); err != nil {
		log.Printf("start generation for %s: %v", planID, err)
		return err
	}
	taskID := started.taskID()
	if taskID == "" {
		return fmt.Errorf("start generation: backend returned no task_id")
	}

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		if err := s.sleep(ctx, pollInterval); err != nil {
			return err
		}

		var st statusResponse
		if err := s.getJSON(ctx, "/api/nemo-plans/status/"+taskID, &st); err != nil {
			log.Printf("poll generation %s: %v", taskID, err)
			return err
		}

		switch st.Status {
		case "completed":
			var result planResultWire
			if err := s.getJSON(ctx, "/api/nemo-plans/result/"+taskID, &result); err != nil {
				return err
			}
			days := itinerary.Normalize(result.Itinerary)
			status := models.StatusPlanning
			return s.UpdatePlan(ctx, planID, Patch{Itinerary: days, Status: &status})
		case "failed", "error":
			return ErrGenerationFailed
		}
	}
	return ErrGenerationTimeout
}

// Patch is a partial plan update. Nil fields are left unchanged; only
// the fields the backend understands are sent over the wire, the rest
// (participants, itinerary) merge locally.
type Patch struct {
	Title        *string
	Description  *string
	Status       *string
	Details      *DetailsPatch
	Participants []models.Participant
	Itinerary    []models.Day
}

// DetailsPatch is the partial form of PlanDetails.
type DetailsPatch struct {
	Destination  *string
	StartDate    *string
	EndDate      *string
	Participants *int
	Budget       *string
	TravelStyle  []string
	Interests    []string
}

// UpdatePlan PUTs the supplied fields (mapped to the backend's
// snake_case names) and on success merges the patch into the list entry
// and the current-plan pointer, stamping a fresh update timestamp.
// Status changes are validated against the lifecycle transition graph
// before anything is sent.
func (s *Store) UpdatePlan(ctx context.Context, id string, patch Patch) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if patch.Status != nil {
		s.mu.Lock()
		if cur := s.findLocked(id); cur != nil && !models.CanTransition(cur.Status, *patch.Status) {
			from := cur.Status
			s.mu.Unlock()
			return fmt.Errorf("%w from %q to %q", ErrBadTransition, from, *patch.Status)
		}
		s.mu.Unlock()
	}

	body := map[string]any{}
	if d := patch.Details; d != nil {
		if d.Destination != nil {
			body["destination"] = *d.Destination
		}
		if d.StartDate != nil {
			body["start_date"] = *d.StartDate
		}
		if d.EndDate != nil {
			body["end_date"] = *d.EndDate
		}
		if d.Participants != nil {
			body["group_size"] = *d.Participants
		}
		if d.Budget != nil {
			body["budget_level"] = *d.Budget
		}
		if d.TravelStyle != nil {
			body["travel_style"] = strings.Join(d.TravelStyle, ", ")
		}
		if d.Interests != nil {
			body["interests"] = d.Interests
		}
	}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}

	if err := s.putJSON(ctx, "/api/plans/update/"+id, body, nil); err != nil {
		log.Printf("update plan %s: %v", id, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if p := s.findLocked(id); p != nil {
		applyPatch(p, patch)
		p.UpdatedAt = now
	}
	if s.current != nil && s.current.ID == id {
		applyPatch(s.current, patch)
		s.current.UpdatedAt = now
	}
	return nil
}

func applyPatch(p *models.Plan, patch Patch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if d := patch.Details; d != nil {
		if d.Destination != nil {
			p.Details.Destination = *d.Destination
		}
		if d.StartDate != nil {
			p.Details.StartDate = *d.StartDate
		}
		if d.EndDate != nil {
			p.Details.EndDate = *d.EndDate
		}
		if d.Participants != nil {
			p.Details.Participants = *d.Participants
		}
		if d.Budget != nil {
			p.Details.Budget = *d.Budget
		}
		if d.TravelStyle != nil {
			p.Details.TravelStyle = append([]string(nil), d.TravelStyle...)
		}
		if d.Interests != nil {
			p.Details.Interests = append([]string(nil), d.Interests...)
		}
	}
	if patch.Participants != nil {
		p.Participants = append([]models.Participant(nil), patch.Participants...)
	}
	if patch.Itinerary != nil {
		p.Itinerary = patch.Itinerary
	}
}

// UpdateParticipantStatus flips the participant's status/feedback in
// memory first, then syncs the change to the collaboration endpoint.
// When the sync fails the optimistic change is rolled back and the
// error returned, so local state never stays ahead of the backend.
func (s *Store) UpdateParticipantStatus(ctx context.Context, planID, participantID, status, feedback string) error {
	s.mu.Lock()
	plan := s.findLocked(planID)
	if plan == nil {
		s.mu.Unlock()
		return fmt.Errorf("update participant: %w", ErrPlanNotFound)
	}
	var prev *models.Participant
	for i := range plan.Participants {
		if plan.Participants[i].ID == participantID {
			prev = &plan.Participants[i]
			break
		}
	}
	if prev == nil {
		s.mu.Unlock()
		return fmt.Errorf("participant %s in plan %s: %w", participantID, planID, ErrParticipantNotFound)
	}
	prevStatus, prevFeedback := prev.Status, prev.Feedback

	next := prevFeedback
	if feedback != "" {
		next = feedback
	}
	s.setParticipantLocked(planID, participantID, status, next)
	s.mu.Unlock()

	body := map[string]any{
		"action":         "update_status",
		"participant_id": participantID,
		"status":         status,
		"feedback":       feedback,
	}
	if err := s.postJSON(ctx, "/api/plans/collaborate/"+planID, body, nil); err != nil {
		log.Printf("sync participant status for %s: %v, rolling back", planID, err)
		s.mu.Lock()
		s.setParticipantLocked(planID, participantID, prevStatus, prevFeedback)
		s.mu.Unlock()
		return err
	}
	return nil
}

// setParticipantLocked updates a participant in both the list entry and
// the current-plan copy; caller holds s.mu.
func (s *Store) setParticipantLocked(planID, participantID, status, feedback string) {
	if p := s.findLocked(planID); p != nil {
		for i := range p.Participants {
			if p.Participants[i].ID == participantID {
				p.Participants[i].Status = status
				p.Participants[i].Feedback = feedback
			}
		}
	}
	if s.current != nil && s.current.ID == planID {
		for i := range s.current.Participants {
			if s.current.Participants[i].ID == participantID {
				s.current.Participants[i].Status = status
				s.current.Participants[i].Feedback = feedback
			}
		}
	}
}

// InviteParticipant synthesizes a pending participant from the email
// address and appends it through UpdatePlan. No invitation mail is
// sent; this is purely local state plus the usual plan update.
func (s *Store) InviteParticipant(ctx context.Context, planID, email string) error {
	plan, ok := s.PlanByID(planID)
	if !ok {
		return fmt.Errorf("invite participant: %w", ErrPlanNotFound)
	}

	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	id := s.newID()
	invited := models.Participant{
		ID:     id,
		UserID: id,
		Name:   name,
		Email:  email,
		Avatar: "👤",
		Status: models.ParticipantPending,
		Role:   models.RoleParticipant,
	}

	roster := append(plan.Participants, invited)
	return s.UpdatePlan(ctx, planID, Patch{Participants: roster})
}

// PlanResult is the render-ready payload the detail view works from.
// The itinerary arrives normalized; weather stays opaque for the
// weather widget to interpret.
type PlanResult struct {
	PlanID          string          `json:"planId"`
	Title           string          `json:"title"`
	Destination     string          `json:"destination"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	GroupSize       int             `json:"groupSize"`
	BudgetEstimate  float64         `json:"budgetEstimate"`
	Itinerary       []models.Day    `json:"itinerary"`
	Recommendations []string        `json:"recommendations"`
	Weather         json.RawMessage `json:"weather,omitempty"`
	CulturalTips    []string        `json:"culturalTips"`
}

// FetchPlanResult pulls the full plan result used by the detail view.
func (s *Store) FetchPlanResult(ctx context.Context, id string) (PlanResult, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	var raw planResultWire
	if err := s.getJSON(ctx, "/api/plans/result/"+id, &raw); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return PlanResult{}, fmt.Errorf("plan result %s: %w", id, ErrPlanNotFound)
		}
		log.Printf("fetch plan result %s: %v", id, err)
		return PlanResult{}, err
	}

	return PlanResult{
		PlanID:          raw.PlanID,
		Title:           raw.Title,
		Destination:     raw.Destination,
		StartDate:       raw.StartDate,
		EndDate:         raw.EndDate,
		GroupSize:       raw.GroupSize,
		BudgetEstimate:  raw.BudgetEstimate,
		Itinerary:       itinerary.Normalize(raw.Itinerary),
		Recommendations: raw.Recommendations,
		Weather:         raw.WeatherInfo,
		CulturalTips:    raw.CulturalTips,
	}, nil
}

// ========== 轉換輔助 ==========

func (s *Store) planFromSummary(raw planSummary, completed bool) models.Plan {
	title := "未命名计划"
	if raw.Destination != "" {
		title = raw.Destination + "之旅"
	}

	status := models.StatusPlanning
	if completed || raw.Status == models.StatusCompleted {
		status = models.StatusCompleted
	}

	groupSize := raw.Participants
	if groupSize == 0 {
		groupSize = 1
	}
	interests := raw.Interests
	if interests == nil {
		interests = []string{}
	}

	p := models.Plan{
		ID:    raw.PlanID,
		Title: title,
		Details: models.PlanDetails{
			Destination:  raw.Destination,
			StartDate:    raw.StartDate,
			EndDate:      raw.EndDate,
			Participants: groupSize,
			Budget:       raw.Budget,
			TravelStyle:  splitStyles(raw.TravelStyle),
			Interests:    interests,
		},
		Participants: []models.Participant{organizer()},
		Status:       status,
		CreatedBy:    currentUserID,
		CreatedAt:    s.parseTimestamp(raw.CreatedAt),
		UpdatedAt:    s.parseTimestamp(raw.UpdatedAt),
	}
	if raw.Itinerary != nil {
		p.Itinerary = itinerary.Normalize(raw.Itinerary)
	}
	return p
}

func splitStyles(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// python's datetime.isoformat() has no timezone suffix, so try that
// after RFC3339 before giving up and stamping "now".
func (s *Store) parseTimestamp(v string) time.Time {
	if v == "" {
		return s.now()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return s.now()
}

func organizer() models.Participant {
	return models.Participant{
		ID:     currentUserID,
		UserID: currentUserID,
		Name:   "我",
		Email:  "user@example.com",
		Avatar: "👨‍💼",
		Status: models.ParticipantConfirmed,
		Role:   models.RoleOrganizer,
	}
}

// seedParticipants is the fixed mock roster attached to a freshly
// created plan: the organizer plus three placeholder invitees.
func seedParticipants() []models.Participant {
	return []models.Participant{
		organizer(),
		{
			ID: "participant_1", UserID: "participant_1",
			Name: "小明", Email: "xiaoming@example.com", Avatar: "👨",
			Status: models.ParticipantPending, Role: models.RoleParticipant,
			Feedback: "期待这次旅行！",
		},
		{
			ID: "participant_2", UserID: "participant_2",
			Name: "小红", Email: "xiaohong@example.com", Avatar: "👩",
			Status: models.ParticipantConfirmed, Role: models.RoleParticipant,
		},
		{
			ID: "participant_3", UserID: "participant_3",
			Name: "小李", Email: "xiaoli@example.com", Avatar: "👨‍🎓",
			Status: models.ParticipantMaybe, Role: models.RoleParticipant,
			Feedback: "需要确认一下时间安排",
		},
	}
}
