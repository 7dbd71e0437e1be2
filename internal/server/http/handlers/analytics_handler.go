package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stitchfab/stitchfab/internal/domain/model"
	"github.com/stitchfab/stitchfab/internal/server/http/dto"
	"github.com/stitchfab/stitchfab/internal/usecase"
)

// AnalyticsHandler serves tracking endpoints and operator dashboards.
type AnalyticsHandler struct {
	facade AnalyticsFacade
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(facade AnalyticsFacade) *AnalyticsHandler {
	return &AnalyticsHandler{facade: facade}
}

// TrackEvent handles POST /api/analytics/track.
func (h *AnalyticsHandler) TrackEvent(c *gin.Context) {
	var req dto.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	in := usecase.TrackInput{
		SessionID: req.SessionID,
		EventType: req.EventType,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		UserID:    req.UserID,
		Metadata:  req.Metadata,
	}
	if err := h.facade.TrackPublicEvent(c.Request.Context(), in, req.PageURL); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// TrackLandingEvent handles POST /api/analytics/landing/track.
func (h *AnalyticsHandler) TrackLandingEvent(c *gin.Context) {
	var req dto.TrackLandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	in := usecase.TrackInput{
		SessionID: req.SessionID,
		EventType: req.EventType,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Metadata:  req.Metadata,
	}
	if err := h.facade.TrackLandingEvent(c.Request.Context(), in, req.LandingPageID, req.Campaign, req.Source); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// Dashboard handles GET /api/analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	rng, ok := parseDateRange(c)
	if !ok {
		return
	}

	stats, err := h.facade.Dashboard(c.Request.Context(), rng)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardResponse(*stats))
}

// LandingDashboard handles GET /api/analytics/landing/:id.
func (h *AnalyticsHandler) LandingDashboard(c *gin.Context) {
	rng, ok := parseDateRange(c)
	if !ok {
		return
	}

	stats, err := h.facade.LandingDashboard(c.Request.Context(), c.Param("id"), rng)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLandingStatsResponse(*stats))
}

// TrafficFlags handles GET /api/analytics/flags.
func (h *AnalyticsHandler) TrafficFlags(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	flags, err := h.facade.TrafficFlags(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]dto.TrafficFlagResponse, 0, len(flags))
	for _, flag := range flags {
		response = append(response, dto.ToTrafficFlagResponse(flag))
	}

	c.JSON(http.StatusOK, response)
}

// parseDateRange reads optional from/to query params, accepting RFC 3339
// timestamps or plain dates. Writes 400 and returns false on bad input.
func parseDateRange(c *gin.Context) (model.DateRange, bool) {
	var rng model.DateRange

	for _, q := range []struct {
		name string
		dst  *time.Time
	}{
		{"from", &rng.From},
		{"to", &rng.To},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			c.Status(http.StatusBadRequest)
			return model.DateRange{}, false
		}
		*q.dst = parsed
	}

	return rng, true
}
