package risk

import "testing"

func TestNormalizeAmountRatio(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		cap    float64
		want   float64
	}{
		{"below cap", 5000, 0, 0.25},
		{"at cap", 20000, 0, 1},
		{"above cap clamps", 50000, 0, 1},
		{"custom cap", 500, 1000, 0.5},
		{"negative clamps to zero", -10, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(SignalInput{TotalAmount: tc.amount, AmountCap: tc.cap})
			if got.AmountRatio != tc.want {
				t.Fatalf("unexpected ratio: got %v want %v", got.AmountRatio, tc.want)
			}
		})
	}
}

func TestNormalizeOriginNovelty(t *testing.T) {
	known := []string{"aa", "bb", "cc"}

	if got := Normalize(SignalInput{OriginHash: "bb", KnownOrigins: known}); got.IsNewOrigin {
		t.Fatal("origin present in history should not be new")
	}
	if got := Normalize(SignalInput{OriginHash: "zz", KnownOrigins: known}); !got.IsNewOrigin {
		t.Fatal("origin absent from history should be new")
	}
	if got := Normalize(SignalInput{OriginHash: "aa"}); !got.IsNewOrigin {
		t.Fatal("guests always count as a new origin")
	}
}

func TestNormalizeFrequency(t *testing.T) {
	if got := Normalize(SignalInput{}); got.OrderFrequency != GuestOrderFrequency {
		t.Fatalf("guest frequency: got %v want %v", got.OrderFrequency, GuestOrderFrequency)
	}
	if got := Normalize(SignalInput{HasHistory: true, PreviousOrders: 0}); got.OrderFrequency != 0 {
		t.Fatalf("zero orders should give zero frequency, got %v", got.OrderFrequency)
	}
	if got := Normalize(SignalInput{HasHistory: true, PreviousOrders: 10}); got.OrderFrequency != 0.5 {
		t.Fatalf("ten orders should give 0.5, got %v", got.OrderFrequency)
	}
	if got := Normalize(SignalInput{HasHistory: true, PreviousOrders: 100}); got.OrderFrequency != 1 {
		t.Fatalf("frequency should saturate at 1, got %v", got.OrderFrequency)
	}
}

func TestAssessLowRiskGuestOrder(t *testing.T) {
	// 260-unit guest order: tiny amount ratio, new origin, default frequency.
	got := Assess(SignalInput{TotalAmount: 260, OriginHash: "deadbeef"})
	if got.Reason != ReasonLow {
		t.Fatalf("expected low risk, got %+v", got)
	}
	if got.Score >= 0.5 {
		t.Fatalf("expected small score, got %v", got.Score)
	}
}
