package client

import (
	"fmt"
	"time"
)

// Remaining computes the time left until the promised delivery slot. Returns
// nil when no slot is set or the slot has already passed. Callers recompute
// this on every poll tick; the value is never cached.
func Remaining(now time.Time, slot *time.Time) *time.Duration {
	if slot == nil {
		return nil
	}
	diff := slot.Sub(now)
	if diff <= 0 {
		return nil
	}
	return &diff
}

// FormatRemaining renders a countdown as whole hours and minutes, e.g.
// "1h 30m".
func FormatRemaining(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
