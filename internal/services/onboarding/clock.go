package onboarding

import "time"

//go:generate mockgen -destination=mock/mock_clock.go -package=mockonboarding -source=clock.go

// Clock supplies the current time so tests can pin it
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock in UTC
type RealClock struct{}

// Now implements Clock
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
