package usecase

import "time"

// Test-only accessors exposing unexported internals to the external test package.
var HashOrigin = hashOrigin

// SetNow overrides the clock used by the analytics use case in tests.
func (u *AnalyticsUseCase) SetNow(now func() time.Time) { u.now = now }
