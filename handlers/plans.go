package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travelfront/models"
	"travelfront/planstore"
)

// PlanHandler backs the plan pages: list, detail, creation wizard,
// edit form and the collaboration voting view.
type PlanHandler struct {
	store      *planstore.Store
	publicBase string
}

func NewPlanHandler(store *planstore.Store, publicBase string) *PlanHandler {
	return &PlanHandler{store: store, publicBase: publicBase}
}

// List refreshes the plan list from the backend and returns it.
func (h *PlanHandler) List(c *gin.Context) {
	if err := h.store.FetchPlans(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": h.store.Plans()})
}

// Detail resolves one plan (locally or from the backend), points the
// store's current-plan at it and attaches the share links the detail
// page renders.
func (h *PlanHandler) Detail(c *gin.Context) {
	id := c.Param("id")

	plan, err := h.store.FetchPlanByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, planstore.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "计划不存在"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.store.SetCurrentPlan(id)

	c.JSON(http.StatusOK, gin.H{
		"plan":           plan,
		"shareUrl":       h.publicBase + "/plan/" + id,
		"collaborateUrl": h.publicBase + "/collaborate/" + id,
	})
}

// Result proxies the render-ready plan result used by the detail view.
func (h *PlanHandler) Result(c *gin.Context) {
	id := c.Param("id")

	result, err := h.store.FetchPlanResult(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, planstore.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "计划不存在"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type createPlanRequest struct {
	Destination  string   `json:"destination" binding:"required"`
	StartDate    string   `json:"startDate" binding:"required"`
	EndDate      string   `json:"endDate" binding:"required"`
	Participants int      `json:"participants" binding:"omitempty,min=1"`
	Budget       string   `json:"budget" binding:"required"`
	TravelStyle  []string `json:"travelStyle"`
	Interests    []string `json:"interests" binding:"required,min=1"`
}

// Create is the wizard submit. Validation failures are reported before
// any backend call is made.
func (h *PlanHandler) Create(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}
	if msg := checkDates(req.StartDate, req.EndDate); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if req.Participants == 0 {
		req.Participants = 1
	}

	planID, err := h.store.CreatePlan(c.Request.Context(), models.PlanDetails{
		Destination:  req.Destination,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Participants: req.Participants,
		Budget:       req.Budget,
		TravelStyle:  req.TravelStyle,
		Interests:    req.Interests,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"planId": planID})
}

// Generate triggers asynchronous itinerary generation for a plan.
func (h *PlanHandler) Generate(c *gin.Context) {
	id := c.Param("id")

	err := h.store.GenerateItinerary(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "itinerary ready"})
	case errors.Is(err, planstore.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "计划不存在"})
	case errors.Is(err, planstore.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "行程生成失败"})
	case errors.Is(err, planstore.ErrGenerationTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "行程生成超时"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

type updatePlanRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Status       *string  `json:"status" binding:"omitempty,oneof=draft planning confirmed completed cancelled"`
	Destination  *string  `json:"destination"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	Participants *int     `json:"participants" binding:"omitempty,min=1"`
	Budget       *string  `json:"budget"`
	TravelStyle  []string `json:"travelStyle"`
	Interests    []string `json:"interests"`
}

// Update is the edit-form submit: only the supplied fields change.
func (h *PlanHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}
	if req.StartDate != nil && req.EndDate != nil {
		if msg := checkDates(*req.StartDate, *req.EndDate); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
	}

	patch := planstore.Patch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.Destination != nil || req.StartDate != nil || req.EndDate != nil ||
		req.Participants != nil || req.Budget != nil || req.TravelStyle != nil || req.Interests != nil {
		patch.Details = &planstore.DetailsPatch{
			Destination:  req.Destination,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			Participants: req.Participants,
			Budget:       req.Budget,
			TravelStyle:  req.TravelStyle,
			Interests:    req.Interests,
		}
	}

	if err := h.store.UpdatePlan(c.Request.Context(), id, patch); err != nil {
		if errors.Is(err, planstore.ErrBadTransition) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	plan, _ := h.store.PlanByID(id)
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// Delete removes the plan from the local list only.
func (h *PlanHandler) Delete(c *gin.Context) {
	h.store.DeletePlan(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "plan removed"})
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Invite adds a pending placeholder participant derived from the email.
func (h *PlanHandler) Invite(c *gin.Context) {
	id := c.Param("id")

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}

	if err := h.store.InviteParticipant(c.Request.Context(), id, req.Email); err != nil {
		if errors.Is(err, planstore.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "计划不存在"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	plan, _ := h.store.PlanByID(id)
	c.JSON(http.StatusOK, gin.H{"participants": plan.Participants})
}

type voteRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=confirmed declined pending maybe"`
	Feedback      string `json:"feedback"`
}

// Vote is the collaboration view's confirm/decline action.
func (h *PlanHandler) Vote(c *gin.Context) {
	id := c.Param("id")

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}

	err := h.store.UpdateParticipantStatus(c.Request.Context(), id, req.ParticipantID, req.Status, req.Feedback)
	switch {
	case err == nil:
		plan, _ := h.store.PlanByID(id)
		c.JSON(http.StatusOK, gin.H{"participants": plan.Participants})
	case errors.Is(err, planstore.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "计划不存在"})
	case errors.Is(err, planstore.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "参与者不存在"})
	default:
		// the optimistic change has already been rolled back
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func checkDates(start, end string) string {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return "start date must be formatted YYYY-MM-DD"
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return "end date must be formatted YYYY-MM-DD"
	}
	if !e.After(s) {
		return "end date must be after start date"
	}
	return ""
}
