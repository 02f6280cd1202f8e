package http

import (
	"time"

	"golang.org/x/time/rate"
)

// newRateLimiter admits limit events per window, allowing the whole budget
// as a burst. A non-positive limit disables limiting.
func newRateLimiter(limit int, window time.Duration) *rate.Limiter {
	if limit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
}
