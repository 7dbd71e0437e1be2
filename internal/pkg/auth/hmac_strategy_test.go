package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func TestHMACStrategyRoundTrip(t *testing.T) {
	s := NewHMACStrategy("secret", Options{})

	token, err := s.IssueToken(42)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	userID, err := s.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestHMACStrategyRejectsGarbage(t *testing.T) {
	s := NewHMACStrategy("secret", Options{})

	for _, token := range []string{"", "not-base64!!", base64.URLEncoding.EncodeToString([]byte("v1:1:2"))} {
		if _, err := s.ParseToken(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestHMACStrategyRejectsTamperedSignature(t *testing.T) {
	s := NewHMACStrategy("secret", Options{})

	token, err := s.IssueToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	raw, _ := base64.URLEncoding.DecodeString(token)
	parts := strings.Split(string(raw), ":")
	parts[1] = "9999" // swap user id without re-signing
	forged := base64.URLEncoding.EncodeToString([]byte(strings.Join(parts, ":")))

	if _, err := s.ParseToken(forged); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACStrategyRejectsExpired(t *testing.T) {
	s := NewHMACStrategy("secret", Options{TTL: time.Minute})
	token, err := s.IssueToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := s.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestHMACStrategyRejectsWrongSecret(t *testing.T) {
	issuer := NewHMACStrategy("one", Options{})
	verifier := NewHMACStrategy("two", Options{})

	token, err := issuer.IssueToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := verifier.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
