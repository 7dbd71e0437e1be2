package repository

import (
	"context"
	"time"

	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// SessionRepository stores client sessions keyed by their client-supplied id.
type SessionRepository interface {
	// CreateIfAbsent inserts the session unless one with the same sessionId
	// already exists, reporting whether a new row was created. Concurrent
	// duplicate creations collapse to a single record.
	CreateIfAbsent(ctx context.Context, session *model.Session) (created bool, err error)

	Get(ctx context.Context, sessionID string) (*model.Session, error)
	TouchActivity(ctx context.Context, sessionID string, at time.Time) error
	MarkBot(ctx context.Context, sessionID string) error

	// CountByIPHashSince counts sessions started from the origin hash at or
	// after the cutoff; the burst-detection input.
	CountByIPHashSince(ctx context.Context, ipHash string, cutoff time.Time) (int, error)
}

// EventRepository appends and aggregates public-site events.
type EventRepository interface {
	Append(ctx context.Context, event *model.Event) error

	// DistinctSessions returns session ids with at least one event in range.
	DistinctSessions(ctx context.Context, rng model.DateRange) ([]string, error)

	// CountUniqueOrigins counts distinct origin hashes among the sessions.
	CountUniqueOrigins(ctx context.Context, sessionIDs []string) (int64, error)

	CountByType(ctx context.Context, eventType string, rng model.DateRange) (int64, error)
}

// LandingEventRepository appends and aggregates landing-page events.
type LandingEventRepository interface {
	Append(ctx context.Context, event *model.LandingEvent) error
	CountByType(ctx context.Context, landingPageID, eventType string, rng model.DateRange) (int64, error)
	CountBySource(ctx context.Context, landingPageID string, rng model.DateRange) (map[string]int64, error)
}

// TrafficFlagRepository is the append-only suspicious-traffic log.
type TrafficFlagRepository interface {
	Append(ctx context.Context, flag *model.TrafficFlag) error
	ListRecent(ctx context.Context, limit int) ([]model.TrafficFlag, error)
}
