package vulndb

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffPolicy describes how often and how long to wait between attempts
// against the vulnerability database.
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	// Jitter is the fraction of the delay which is randomly added or subtracted.
	Jitter float64
	// Rand returns a value in [0, 1). Defaults to math/rand.
	Rand func() float64
}

func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		Factor:      2,
		Jitter:      0.2,
	}
}

// Delay returns the wait time before the given retry. retry 1 is the wait before the second attempt.
func (p BackoffPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	interval := float64(p.BaseDelay) * math.Pow(factor, float64(retry-1))

	if p.Jitter > 0 {
		random := rand.Float64
		if p.Rand != nil {
			random = p.Rand
		}
		interval += (random()*2 - 1) * interval * p.Jitter
	}
	if interval < 0 {
		return 0
	}
	return time.Duration(interval)
}

func (p BackoffPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}
