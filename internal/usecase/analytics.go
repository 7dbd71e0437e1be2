package usecase

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	ua "github.com/mileusna/useragent"

	domainErrors "github.com/stitchfab/stitchfab/internal/domain/errors"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	"github.com/stitchfab/stitchfab/internal/domain/repository"
	"github.com/stitchfab/stitchfab/internal/metrics"
	"github.com/stitchfab/stitchfab/internal/pkg/originhash"
)

// BotFlagReason is recorded when burst detection fires.
const BotFlagReason = "High session frequency (potential bot)"

// defaultDashboardWindow applies when no explicit date range is supplied.
const defaultDashboardWindow = 30 * 24 * time.Hour

// maxTrafficFlagLimit bounds the operator flag listing.
const maxTrafficFlagLimit = 50

func hashOrigin(raw string) string {
	return originhash.Hash(raw)
}

// TrackInput is the request context shared by both tracking paths.
type TrackInput struct {
	SessionID string
	EventType string
	IPAddress string
	UserAgent string
	UserID    *int64
	Metadata  map[string]any
}

// AnalyticsUseCase maintains session records, burst detection, and the
// operator dashboards. Tracking operations swallow storage failures so the
// primary request path never degrades.
type AnalyticsUseCase struct {
	sessions      repository.SessionRepository
	events        repository.EventRepository
	landingEvents repository.LandingEventRepository
	flags         repository.TrafficFlagRepository

	burstWindow    time.Duration
	burstThreshold int
	logger         *slog.Logger
	now            func() time.Time
}

// NewAnalyticsUseCase constructs AnalyticsUseCase.
func NewAnalyticsUseCase(
	sessions repository.SessionRepository,
	events repository.EventRepository,
	landingEvents repository.LandingEventRepository,
	flags repository.TrafficFlagRepository,
	burstWindow time.Duration,
	burstThreshold int,
	logger *slog.Logger,
) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		sessions:       sessions,
		events:         events,
		landingEvents:  landingEvents,
		flags:          flags,
		burstWindow:    burstWindow,
		burstThreshold: burstThreshold,
		logger:         logger,
		now:            time.Now,
	}
}

// TrackPublicEvent records a public-site interaction. Only missing required
// fields surface as an error; every downstream failure is logged and dropped.
func (u *AnalyticsUseCase) TrackPublicEvent(ctx context.Context, in TrackInput, url string) error {
	if strings.TrimSpace(in.SessionID) == "" || strings.TrimSpace(in.EventType) == "" {
		return domainErrors.ValidationError("sessionId and eventType are required")
	}

	u.observeSession(ctx, in, model.ModulePublic)

	event := &model.Event{
		SessionID: in.SessionID,
		EventType: in.EventType,
		URL:       url,
		Metadata:  in.Metadata,
	}
	if err := u.events.Append(ctx, event); err != nil {
		u.logger.Warn("event append failed", slog.String("session", in.SessionID), slog.String("error", err.Error()))
	}
	return nil
}

// TrackLandingEvent records a landing-page interaction.
func (u *AnalyticsUseCase) TrackLandingEvent(ctx context.Context, in TrackInput, landingPageID, campaign, source string) error {
	if strings.TrimSpace(in.SessionID) == "" || strings.TrimSpace(in.EventType) == "" || strings.TrimSpace(landingPageID) == "" {
		return domainErrors.ValidationError("sessionId, landingPageId and eventType are required")
	}

	u.observeSession(ctx, in, model.ModuleLanding)

	event := &model.LandingEvent{
		SessionID:     in.SessionID,
		LandingPageID: landingPageID,
		EventType:     in.EventType,
		Campaign:      campaign,
		Source:        source,
		Metadata:      in.Metadata,
	}
	if err := u.landingEvents.Append(ctx, event); err != nil {
		u.logger.Warn("landing event append failed", slog.String("session", in.SessionID), slog.String("error", err.Error()))
	}
	return nil
}

// observeSession creates the session on first sight and runs burst detection,
// or refreshes activity on a known session. Never fails.
func (u *AnalyticsUseCase) observeSession(ctx context.Context, in TrackInput, module model.SessionModule) {
	now := u.now()
	agent := ua.Parse(in.UserAgent)

	session := &model.Session{
		SessionID: in.SessionID,
		UserID:    in.UserID,
		IPHash:    hashOrigin(in.IPAddress),
		UserAgent: in.UserAgent,
		Device:    deviceKind(agent),
		Browser:   agent.Name,
		OS:        agent.OS,
		Module:    module,
	}

	created, err := u.sessions.CreateIfAbsent(ctx, session)
	if err != nil {
		u.logger.Warn("session upsert failed", slog.String("session", in.SessionID), slog.String("error", err.Error()))
		return
	}

	if !created {
		if err := u.sessions.TouchActivity(ctx, in.SessionID, now); err != nil {
			u.logger.Warn("session activity update failed", slog.String("session", in.SessionID), slog.String("error", err.Error()))
		}
		return
	}

	metrics.SessionsStarted.Inc()
	u.detectBurst(ctx, session, now)
}

// detectBurst fires only at session-creation time: the new session's origin
// is checked against the trailing window and flagged once over threshold.
func (u *AnalyticsUseCase) detectBurst(ctx context.Context, session *model.Session, now time.Time) {
	count, err := u.sessions.CountByIPHashSince(ctx, session.IPHash, now.Add(-u.burstWindow))
	if err != nil {
		u.logger.Warn("burst detection count failed", slog.String("session", session.SessionID), slog.String("error", err.Error()))
		return
	}
	if count <= u.burstThreshold {
		return
	}

	flag := &model.TrafficFlag{
		IPHash:    session.IPHash,
		SessionID: session.SessionID,
		Reason:    BotFlagReason,
		Severity:  model.SeverityMedium,
	}
	if err := u.flags.Append(ctx, flag); err != nil {
		u.logger.Warn("traffic flag append failed", slog.String("session", session.SessionID), slog.String("error", err.Error()))
		return
	}
	if err := u.sessions.MarkBot(ctx, session.SessionID); err != nil {
		u.logger.Warn("bot mark failed", slog.String("session", session.SessionID), slog.String("error", err.Error()))
	}

	metrics.TrafficFlags.WithLabelValues(string(model.SeverityMedium)).Inc()
	u.logger.Info("session flagged as bot",
		slog.String("session", session.SessionID),
		slog.Int("sessions_in_window", count))
}

func deviceKind(agent ua.UserAgent) string {
	switch {
	case agent.Mobile:
		return "mobile"
	case agent.Tablet:
		return "tablet"
	case agent.Bot:
		return "bot"
	default:
		return "desktop"
	}
}

// resolveRange fills the default trailing window for empty ranges.
func (u *AnalyticsUseCase) resolveRange(rng model.DateRange) model.DateRange {
	if rng.IsZero() {
		now := u.now()
		return model.DateRange{From: now.Add(-defaultDashboardWindow), To: now}
	}
	if rng.To.IsZero() {
		rng.To = u.now()
	}
	return rng
}

// Dashboard aggregates public-site traffic for the date range.
func (u *AnalyticsUseCase) Dashboard(ctx context.Context, rng model.DateRange) (*model.DashboardStats, error) {
	rng = u.resolveRange(rng)

	sessionIDs, err := u.events.DistinctSessions(ctx, rng)
	if err != nil {
		return nil, err
	}

	uniqueVisitors, err := u.events.CountUniqueOrigins(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		TotalSessions:  int64(len(sessionIDs)),
		UniqueVisitors: uniqueVisitors,
	}

	funnelSteps := []struct {
		eventType string
		target    *int64
	}{
		{model.EventView, &stats.Funnel.Views},
		{model.EventAddToCart, &stats.Funnel.AddToCart},
		{model.EventCheckoutInit, &stats.Funnel.Checkouts},
		{model.EventPurchase, &stats.Funnel.Purchases},
	}
	for _, step := range funnelSteps {
		count, err := u.events.CountByType(ctx, step.eventType, rng)
		if err != nil {
			return nil, err
		}
		*step.target = count
	}

	return stats, nil
}

// LandingDashboard aggregates one landing page's traffic for the date range.
func (u *AnalyticsUseCase) LandingDashboard(ctx context.Context, landingPageID string, rng model.DateRange) (*model.LandingStats, error) {
	if strings.TrimSpace(landingPageID) == "" {
		return nil, domainErrors.ValidationError("landingPageId is required")
	}
	rng = u.resolveRange(rng)

	visits, err := u.landingEvents.CountByType(ctx, landingPageID, model.LandingEventVisit, rng)
	if err != nil {
		return nil, err
	}
	clicks, err := u.landingEvents.CountByType(ctx, landingPageID, model.LandingEventCTAClick, rng)
	if err != nil {
		return nil, err
	}
	leadEvents, err := u.landingEvents.CountByType(ctx, landingPageID, model.LandingEventLead, rng)
	if err != nil {
		return nil, err
	}
	conversions, err := u.landingEvents.CountByType(ctx, landingPageID, model.LandingEventConversion, rng)
	if err != nil {
		return nil, err
	}
	sources, err := u.landingEvents.CountBySource(ctx, landingPageID, rng)
	if err != nil {
		return nil, err
	}

	leads := leadEvents + conversions
	var conversionRate float64
	if visits > 0 {
		conversionRate = math.Round(float64(leads)/float64(visits)*100*100) / 100
	}

	return &model.LandingStats{
		Visits:         visits,
		Clicks:         clicks,
		Leads:          leads,
		ConversionRate: conversionRate,
		Sources:        sources,
	}, nil
}

// TrafficFlags lists the newest suspicious-traffic findings.
func (u *AnalyticsUseCase) TrafficFlags(ctx context.Context, limit int) ([]model.TrafficFlag, error) {
	if limit <= 0 || limit > maxTrafficFlagLimit {
		limit = maxTrafficFlagLimit
	}
	return u.flags.ListRecent(ctx, limit)
}
