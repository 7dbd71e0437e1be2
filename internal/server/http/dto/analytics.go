package dto

import (
	"time"

	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// TrackEventRequest is the public-site tracking payload.
type TrackEventRequest struct {
	SessionID string         `json:"sessionId"`
	EventType string         `json:"eventType"`
	PageURL   string         `json:"pageUrl"`
	UserID    *int64         `json:"userId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TrackLandingRequest is the landing-page tracking payload.
type TrackLandingRequest struct {
	SessionID     string         `json:"sessionId"`
	EventType     string         `json:"eventType"`
	LandingPageID string         `json:"landingPageId"`
	Campaign      string         `json:"campaign,omitempty"`
	Source        string         `json:"source,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// FunnelResponse holds ordered conversion counts.
type FunnelResponse struct {
	Views     int64 `json:"views"`
	AddToCart int64 `json:"addToCart"`
	Checkouts int64 `json:"checkouts"`
	Purchases int64 `json:"purchases"`
}

// DashboardResponse summarizes public traffic for operators.
type DashboardResponse struct {
	TotalSessions  int64          `json:"totalSessions"`
	UniqueVisitors int64          `json:"uniqueVisitors"`
	Funnel         FunnelResponse `json:"funnel"`
}

// LandingStatsResponse summarizes one landing page.
type LandingStatsResponse struct {
	Visits         int64            `json:"visits"`
	Clicks         int64            `json:"clicks"`
	Leads          int64            `json:"leads"`
	ConversionRate float64          `json:"conversionRate"`
	Sources        map[string]int64 `json:"sources"`
}

// TrafficFlagResponse is one suspicious-traffic finding.
type TrafficFlagResponse struct {
	ID        int64     `json:"id"`
	IPHash    string    `json:"ipHash"`
	SessionID string    `json:"sessionId"`
	Reason    string    `json:"reason"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// ToDashboardResponse maps domain stats onto the API shape.
func ToDashboardResponse(stats model.DashboardStats) DashboardResponse {
	return DashboardResponse{
		TotalSessions:  stats.TotalSessions,
		UniqueVisitors: stats.UniqueVisitors,
		Funnel: FunnelResponse{
			Views:     stats.Funnel.Views,
			AddToCart: stats.Funnel.AddToCart,
			Checkouts: stats.Funnel.Checkouts,
			Purchases: stats.Funnel.Purchases,
		},
	}
}

// ToLandingStatsResponse maps landing stats onto the API shape.
func ToLandingStatsResponse(stats model.LandingStats) LandingStatsResponse {
	return LandingStatsResponse{
		Visits:         stats.Visits,
		Clicks:         stats.Clicks,
		Leads:          stats.Leads,
		ConversionRate: stats.ConversionRate,
		Sources:        stats.Sources,
	}
}

// ToTrafficFlagResponse maps one flag onto the API shape.
func ToTrafficFlagResponse(flag model.TrafficFlag) TrafficFlagResponse {
	return TrafficFlagResponse{
		ID:        flag.ID,
		IPHash:    flag.IPHash,
		SessionID: flag.SessionID,
		Reason:    flag.Reason,
		Severity:  string(flag.Severity),
		Timestamp: flag.Timestamp,
	}
}
