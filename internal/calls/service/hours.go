package service

import (
	"fmt"
	"time"
)

// businessHours is the daily calling window in a fixed timezone. Calls are
// only placed inside the window; reminder calls at odd hours annoy customers
// and violate the calling policy.
type businessHours struct {
	location     *time.Location
	startMinutes int
	endMinutes   int
}

func newBusinessHours(timezone, start, end string) (businessHours, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return businessHours{}, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	startMin, err := parseClock(start)
	if err != nil {
		return businessHours{}, fmt.Errorf("business hours start: %w", err)
	}
	endMin, err := parseClock(end)
	if err != nil {
		return businessHours{}, fmt.Errorf("business hours end: %w", err)
	}
	return businessHours{location: loc, startMinutes: startMin, endMinutes: endMin}, nil
}

// contains reports whether t falls inside the window, inclusive on both ends.
func (b businessHours) contains(t time.Time) bool {
	local := t.In(b.location)
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= b.startMinutes && minutes <= b.endMinutes
}

func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
