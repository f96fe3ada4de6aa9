package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelfront/avatar"
	"travelfront/weather"
)

// WidgetHandler backs the small page widgets: the weather strip on the
// plan detail page and avatar resolution for participant lists.
type WidgetHandler struct {
	weather *weather.Client
	avatars *avatar.Resolver
}

func NewWidgetHandler(w *weather.Client, a *avatar.Resolver) *WidgetHandler {
	return &WidgetHandler{weather: w, avatars: a}
}

// Weather returns a short daily forecast. Forecast failures degrade to
// an empty list so the page still renders.
func (h *WidgetHandler) Weather(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon must be a number"})
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "5"))

	forecast, err := h.weather.Summary(c.Request.Context(), lat, lon, days)
	if err != nil {
		log.Printf("weather lookup failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"forecast": []weather.DayForecast{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecast": forecast})
}

// Avatar classifies and resolves an avatar source, probing image URLs
// and falling back to an initial letter when they are unreachable.
func (h *WidgetHandler) Avatar(c *gin.Context) {
	src := c.Query("src")
	name := c.Query("name")
	if src == "" && name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "src or name is required"})
		return
	}
	c.JSON(http.StatusOK, h.avatars.Resolve(c.Request.Context(), src, name))
}
