package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainErrors "github.com/stitchfab/stitchfab/internal/domain/errors"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	testhelpers "github.com/stitchfab/stitchfab/internal/test"
	. "github.com/stitchfab/stitchfab/internal/usecase"
)

const desktopUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type analyticsFixture struct {
	uc       *AnalyticsUseCase
	sessions *testhelpers.SessionRepositoryStub
	events   *testhelpers.EventRepositoryStub
	landing  *testhelpers.LandingEventRepositoryStub
	flags    *testhelpers.TrafficFlagRepositoryStub
}

func newAnalyticsFixture(burstThreshold int) *analyticsFixture {
	sessions := testhelpers.NewSessionRepositoryStub()
	events := &testhelpers.EventRepositoryStub{Sessions: sessions}
	landing := &testhelpers.LandingEventRepositoryStub{}
	flags := &testhelpers.TrafficFlagRepositoryStub{}
	uc := NewAnalyticsUseCase(sessions, events, landing, flags, time.Hour, burstThreshold, discardLogger())
	return &analyticsFixture{uc: uc, sessions: sessions, events: events, landing: landing, flags: flags}
}

func trackInput(sessionID string) TrackInput {
	return TrackInput{
		SessionID: sessionID,
		EventType: model.EventView,
		IPAddress: "203.0.113.7",
		UserAgent: desktopUA,
	}
}

func TestTrackPublicEventRequiresFields(t *testing.T) {
	f := newAnalyticsFixture(20)

	in := trackInput("")
	if err := f.uc.TrackPublicEvent(context.Background(), in, "/home"); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for missing session, got %v", err)
	}

	in = trackInput("s-1")
	in.EventType = "  "
	if err := f.uc.TrackPublicEvent(context.Background(), in, "/home"); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for missing event type, got %v", err)
	}
}

func TestTrackPublicEventCreatesSession(t *testing.T) {
	f := newAnalyticsFixture(20)

	if err := f.uc.TrackPublicEvent(context.Background(), trackInput("s-1"), "/home"); err != nil {
		t.Fatalf("track returned error: %v", err)
	}

	session, err := f.sessions.Get(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("session not created: %v", err)
	}
	if session.Device != "desktop" || session.Browser == "" || session.OS == "" {
		t.Fatalf("expected parsed user agent fields, got %+v", session)
	}
	if session.IPHash == "" || session.IPHash == "203.0.113.7" {
		t.Fatalf("origin must be stored hashed, got %q", session.IPHash)
	}
	if session.Module != model.ModulePublic {
		t.Fatalf("expected public module, got %q", session.Module)
	}
	if len(f.events.Events) != 1 || f.events.Events[0].URL != "/home" {
		t.Fatalf("expected one event with url, got %+v", f.events.Events)
	}
}

func TestTrackPublicEventTouchesExistingSession(t *testing.T) {
	f := newAnalyticsFixture(20)
	past := time.Now().Add(-time.Minute)
	f.uc.SetNow(func() time.Time { return past })

	if err := f.uc.TrackPublicEvent(context.Background(), trackInput("s-1"), "/home"); err != nil {
		t.Fatalf("first track returned error: %v", err)
	}
	if err := f.sessions.TouchActivity(context.Background(), "s-1", past); err != nil {
		t.Fatalf("seed activity failed: %v", err)
	}

	later := past.Add(30 * time.Second)
	f.uc.SetNow(func() time.Time { return later })
	if err := f.uc.TrackPublicEvent(context.Background(), trackInput("s-1"), "/cart"); err != nil {
		t.Fatalf("second track returned error: %v", err)
	}

	if len(f.sessions.Sessions) != 1 {
		t.Fatalf("expected a single session, got %d", len(f.sessions.Sessions))
	}
	session, _ := f.sessions.Get(context.Background(), "s-1")
	if !session.LastActivity.Equal(later) {
		t.Fatalf("expected refreshed activity %v, got %v", later, session.LastActivity)
	}
}

func TestTrackPublicEventSwallowsStorageFailures(t *testing.T) {
	f := newAnalyticsFixture(20)
	f.sessions.Err = errors.New("sessions down")
	f.events.Err = errors.New("events down")

	if err := f.uc.TrackPublicEvent(context.Background(), trackInput("s-1"), "/home"); err != nil {
		t.Fatalf("storage failures must not surface, got %v", err)
	}
}

func TestBurstDetectionFlagsRapidSessions(t *testing.T) {
	f := newAnalyticsFixture(2)

	for i := 0; i < 2; i++ {
		in := trackInput(fmt.Sprintf("s-%d", i))
		if err := f.uc.TrackPublicEvent(context.Background(), in, "/home"); err != nil {
			t.Fatalf("track returned error: %v", err)
		}
	}
	if len(f.flags.Recorded()) != 0 {
		t.Fatalf("sessions within threshold must not be flagged, got %+v", f.flags.Recorded())
	}

	if err := f.uc.TrackPublicEvent(context.Background(), trackInput("s-burst"), "/home"); err != nil {
		t.Fatalf("track returned error: %v", err)
	}

	flags := f.flags.Recorded()
	if len(flags) != 1 {
		t.Fatalf("expected one flag over threshold, got %d", len(flags))
	}
	flag := flags[0]
	if flag.Reason != BotFlagReason || flag.Severity != model.SeverityMedium {
		t.Fatalf("unexpected flag %+v", flag)
	}
	if flag.SessionID != "s-burst" {
		t.Fatalf("flag must reference the triggering session, got %q", flag.SessionID)
	}

	session, _ := f.sessions.Get(context.Background(), "s-burst")
	if !session.IsBot {
		t.Fatal("triggering session must be marked as bot")
	}
	earlier, _ := f.sessions.Get(context.Background(), "s-0")
	if earlier.IsBot {
		t.Fatal("earlier sessions stay unmarked")
	}
}

func TestBurstDetectionChecksOnlyNewSessions(t *testing.T) {
	f := newAnalyticsFixture(2)

	for i := 0; i < 3; i++ {
		in := trackInput(fmt.Sprintf("s-%d", i))
		if err := f.uc.TrackPublicEvent(context.Background(), in, "/home"); err != nil {
			t.Fatalf("track returned error: %v", err)
		}
	}
	if len(f.flags.Recorded()) != 1 {
		t.Fatalf("expected one flag, got %d", len(f.flags.Recorded()))
	}

	// Repeat events on a flagged origin reuse existing sessions and stay quiet.
	for i := 0; i < 3; i++ {
		in := trackInput(fmt.Sprintf("s-%d", i))
		if err := f.uc.TrackPublicEvent(context.Background(), in, "/home"); err != nil {
			t.Fatalf("track returned error: %v", err)
		}
	}
	if len(f.flags.Recorded()) != 1 {
		t.Fatalf("existing sessions must not re-trigger detection, got %d flags", len(f.flags.Recorded()))
	}
}

func TestTrackLandingEventRequiresLandingPage(t *testing.T) {
	f := newAnalyticsFixture(20)

	err := f.uc.TrackLandingEvent(context.Background(), trackInput("s-1"), "", "summer", "instagram")
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTrackLandingEventRecordsCampaign(t *testing.T) {
	f := newAnalyticsFixture(20)

	in := trackInput("s-1")
	in.EventType = model.LandingEventVisit
	if err := f.uc.TrackLandingEvent(context.Background(), in, "lp-summer", "summer", "instagram"); err != nil {
		t.Fatalf("track returned error: %v", err)
	}

	if len(f.landing.Events) != 1 {
		t.Fatalf("expected one landing event, got %d", len(f.landing.Events))
	}
	event := f.landing.Events[0]
	if event.LandingPageID != "lp-summer" || event.Campaign != "summer" || event.Source != "instagram" {
		t.Fatalf("unexpected landing event %+v", event)
	}
	session, err := f.sessions.Get(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("session not created: %v", err)
	}
	if session.Module != model.ModuleLanding {
		t.Fatalf("expected landing module, got %q", session.Module)
	}
}

func TestDashboardAggregatesFunnel(t *testing.T) {
	f := newAnalyticsFixture(20)

	seed := []struct {
		session string
		ip      string
		events  []string
	}{
		{"s-1", "198.51.100.1", []string{model.EventView, model.EventAddToCart, model.EventCheckoutInit, model.EventPurchase}},
		{"s-2", "198.51.100.1", []string{model.EventView, model.EventAddToCart}},
		{"s-3", "198.51.100.2", []string{model.EventView}},
	}
	for _, visitor := range seed {
		for _, eventType := range visitor.events {
			in := trackInput(visitor.session)
			in.IPAddress = visitor.ip
			in.EventType = eventType
			if err := f.uc.TrackPublicEvent(context.Background(), in, "/home"); err != nil {
				t.Fatalf("track returned error: %v", err)
			}
		}
	}

	stats, err := f.uc.Dashboard(context.Background(), model.DateRange{})
	if err != nil {
		t.Fatalf("dashboard returned error: %v", err)
	}
	if stats.TotalSessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", stats.TotalSessions)
	}
	if stats.UniqueVisitors != 2 {
		t.Fatalf("expected 2 unique visitors, got %d", stats.UniqueVisitors)
	}
	funnel := stats.Funnel
	if funnel.Views != 3 || funnel.AddToCart != 2 || funnel.Checkouts != 1 || funnel.Purchases != 1 {
		t.Fatalf("unexpected funnel %+v", funnel)
	}
}

func TestDashboardHonorsDateRange(t *testing.T) {
	f := newAnalyticsFixture(20)

	if err := f.uc.TrackPublicEvent(context.Background(), trackInput("s-1"), "/home"); err != nil {
		t.Fatalf("track returned error: %v", err)
	}

	past := model.DateRange{
		From: time.Now().Add(-48 * time.Hour),
		To:   time.Now().Add(-24 * time.Hour),
	}
	stats, err := f.uc.Dashboard(context.Background(), past)
	if err != nil {
		t.Fatalf("dashboard returned error: %v", err)
	}
	if stats.TotalSessions != 0 || stats.Funnel.Views != 0 {
		t.Fatalf("events outside the range must not count, got %+v", stats)
	}
}

func TestLandingDashboardComputesConversion(t *testing.T) {
	f := newAnalyticsFixture(20)

	seed := []struct {
		eventType string
		source    string
		count     int
	}{
		{model.LandingEventVisit, "instagram", 3},
		{model.LandingEventVisit, "google", 1},
		{model.LandingEventCTAClick, "instagram", 2},
		{model.LandingEventLead, "instagram", 1},
		{model.LandingEventConversion, "google", 1},
	}
	session := 0
	for _, entry := range seed {
		for i := 0; i < entry.count; i++ {
			session++
			in := trackInput(fmt.Sprintf("lp-s-%d", session))
			in.EventType = entry.eventType
			if err := f.uc.TrackLandingEvent(context.Background(), in, "lp-summer", "summer", entry.source); err != nil {
				t.Fatalf("track returned error: %v", err)
			}
		}
	}

	stats, err := f.uc.LandingDashboard(context.Background(), "lp-summer", model.DateRange{})
	if err != nil {
		t.Fatalf("landing dashboard returned error: %v", err)
	}
	if stats.Visits != 4 || stats.Clicks != 2 {
		t.Fatalf("unexpected visits/clicks %+v", stats)
	}
	if stats.Leads != 2 {
		t.Fatalf("leads must include conversions, got %d", stats.Leads)
	}
	if stats.ConversionRate != 50 {
		t.Fatalf("expected conversion rate 50, got %v", stats.ConversionRate)
	}
	if stats.Sources["instagram"] != 6 || stats.Sources["google"] != 2 {
		t.Fatalf("unexpected source breakdown %v", stats.Sources)
	}
}

func TestLandingDashboardRequiresPageID(t *testing.T) {
	f := newAnalyticsFixture(20)

	if _, err := f.uc.LandingDashboard(context.Background(), "  ", model.DateRange{}); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTrafficFlagsClampsLimit(t *testing.T) {
	f := newAnalyticsFixture(20)
	for i := 0; i < 60; i++ {
		flag := &model.TrafficFlag{IPHash: "h", SessionID: fmt.Sprintf("s-%d", i), Reason: BotFlagReason, Severity: model.SeverityMedium}
		if err := f.flags.Append(context.Background(), flag); err != nil {
			t.Fatalf("seed flag failed: %v", err)
		}
	}

	flags, err := f.uc.TrafficFlags(context.Background(), 500)
	if err != nil {
		t.Fatalf("traffic flags returned error: %v", err)
	}
	if len(flags) != 50 {
		t.Fatalf("expected clamp to 50, got %d", len(flags))
	}

	flags, err = f.uc.TrafficFlags(context.Background(), 5)
	if err != nil {
		t.Fatalf("traffic flags returned error: %v", err)
	}
	if len(flags) != 5 {
		t.Fatalf("expected 5 flags, got %d", len(flags))
	}
	if flags[0].SessionID != "s-59" {
		t.Fatalf("expected newest first, got %q", flags[0].SessionID)
	}
}
