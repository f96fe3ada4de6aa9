package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelfront/models"
	"travelfront/userstore"
)

// UserHandler backs the profile and settings pages.
type UserHandler struct {
	store *userstore.Store
}

func NewUserHandler(store *userstore.Store) *UserHandler {
	return &UserHandler{store: store}
}

func (h *UserHandler) Profile(c *gin.Context) {
	user, ok := h.store.User()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "authenticated": h.store.IsAuthenticated()})
}

type profileRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Avatar *string `json:"avatar"`
	Phone  *string `json:"phone"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}
	h.store.UpdateUser(userstore.UserPatch{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
		Phone:  req.Phone,
	})
	user, _ := h.store.User()
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type preferencesRequest struct {
	Language       *string  `json:"language"`
	Currency       *string  `json:"currency"`
	Interests      []string `json:"interests"`
	BudgetMin      *int     `json:"budgetMin" binding:"omitempty,min=0"`
	BudgetMax      *int     `json:"budgetMax" binding:"omitempty,min=0"`
	Transportation *string  `json:"transportation"`
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}
	h.store.UpdatePreferences(userstore.PreferencesPatch{
		Language:       req.Language,
		Currency:       req.Currency,
		Interests:      req.Interests,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		Transportation: req.Transportation,
	})
	user, _ := h.store.User()
	c.JSON(http.StatusOK, gin.H{"preferences": user.Preferences})
}

type notificationsRequest struct {
	PlanReminder *bool `json:"planReminder"`
	FriendInvite *bool `json:"friendInvite"`
	WeatherAlert *bool `json:"weatherAlert"`
	Promotions   *bool `json:"promotions"`
}

func (h *UserHandler) UpdateNotifications(c *gin.Context) {
	var req notificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}
	h.store.UpdateNotifications(userstore.NotificationsPatch{
		PlanReminder: req.PlanReminder,
		FriendInvite: req.FriendInvite,
		WeatherAlert: req.WeatherAlert,
		Promotions:   req.Promotions,
	})
	user, _ := h.store.User()
	c.JSON(http.StatusOK, gin.H{"notifications": user.Notifications})
}

type privacyRequest struct {
	PublicProfile  *bool `json:"publicProfile"`
	ShareItinerary *bool `json:"shareItinerary"`
}

func (h *UserHandler) UpdatePrivacy(c *gin.Context) {
	var req privacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}
	h.store.UpdatePrivacy(userstore.PrivacyPatch{
		PublicProfile:  req.PublicProfile,
		ShareItinerary: req.ShareItinerary,
	})
	user, _ := h.store.User()
	c.JSON(http.StatusOK, gin.H{"privacy": user.Privacy})
}

type loginRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// Login installs a fresh user record. There is no credential check.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err)})
		return
	}
	u := models.User{
		ID:     "current_user",
		Name:   req.Name,
		Email:  req.Email,
		Avatar: "👨‍💼",
	}
	h.store.Login(u)
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.store.Logout()
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}
