package model

import "time"

// SessionModule tags which site area a session originated from.
type SessionModule string

const (
	ModulePublic  SessionModule = "public"
	ModuleLanding SessionModule = "landing"
)

// Session tracks one client session, keyed by a client-supplied token.
// Sessions are created on first sight and never deleted; isBot is a one-way
// flag set by burst detection at creation time.
type Session struct {
	SessionID    string
	UserID       *int64
	IPHash       string
	UserAgent    string
	Device       string
	Browser      string
	OS           string
	StartTime    time.Time
	LastActivity time.Time
	IsBot        bool
	Module       SessionModule
}

// Public site event kinds, in funnel order where applicable.
const (
	EventView         = "VIEW"
	EventClick        = "CLICK"
	EventScroll       = "SCROLL"
	EventAddToCart    = "ADD_TO_CART"
	EventCheckoutInit = "CHECKOUT_INIT"
	EventPurchase     = "PURCHASE"
	EventSearch       = "SEARCH"
)

// Landing page event kinds.
const (
	LandingEventVisit      = "VISIT"
	LandingEventScroll     = "SCROLL"
	LandingEventCTAClick   = "CTA_CLICK"
	LandingEventFormStart  = "FORM_START"
	LandingEventLead       = "LEAD"
	LandingEventConversion = "CONVERSION"
)

// Event is a generic public-site interaction tied to a session.
type Event struct {
	ID        int64
	SessionID string
	EventType string
	URL       string
	Metadata  map[string]any
	Timestamp time.Time
}

// LandingEvent is an interaction on a hidden landing page.
type LandingEvent struct {
	ID            int64
	SessionID     string
	LandingPageID string
	EventType     string
	Campaign      string
	Source        string
	Metadata      map[string]any
	Timestamp     time.Time
}

// FlagSeverity grades a traffic flag.
type FlagSeverity string

const (
	SeverityLow      FlagSeverity = "low"
	SeverityMedium   FlagSeverity = "medium"
	SeverityHigh     FlagSeverity = "high"
	SeverityCritical FlagSeverity = "critical"
)

// TrafficFlag records one suspicious-traffic finding. Append-only.
type TrafficFlag struct {
	ID        int64
	IPHash    string
	SessionID string
	Reason    string
	Severity  FlagSeverity
	Timestamp time.Time
}

// DateRange bounds dashboard queries. Zero values mean "use default".
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether no explicit range was supplied.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Funnel holds ordered conversion-funnel counts for the public site.
type Funnel struct {
	Views     int64
	AddToCart int64
	Checkouts int64
	Purchases int64
}

// DashboardStats is the operator-facing public traffic summary.
type DashboardStats struct {
	TotalSessions  int64
	UniqueVisitors int64
	Funnel         Funnel
}

// LandingStats is the operator-facing summary for one landing page.
type LandingStats struct {
	Visits         int64
	Clicks         int64
	Leads          int64
	ConversionRate float64
	Sources        map[string]int64
}
