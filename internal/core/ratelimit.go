package core

import "time"

// RateLimitStatus is a point-in-time view of the outbound request window.
type RateLimitStatus struct {
	Limit     int           `json:"limit"`
	Remaining int           `json:"remaining"`
	Window    time.Duration `json:"window"`
	ResetAt   time.Time     `json:"reset_at"`
}
