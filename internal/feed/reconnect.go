package feed

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ReconnectPolicy configures resubscription after a subscription error.
type ReconnectPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// RandomizationFactor jitters each interval by ±factor.
	RandomizationFactor float64
	// MaxElapsedTime bounds total retry time since the last good batch.
	// Zero retries forever.
	MaxElapsedTime time.Duration
}

// DefaultReconnectPolicy retries from one second up to one minute, forever.
var DefaultReconnectPolicy = ReconnectPolicy{
	InitialInterval:     time.Second,
	MaxInterval:         time.Minute,
	Multiplier:          2,
	RandomizationFactor: 0.5,
}

// BackOff builds a fresh exponential backoff from the policy.
func (p ReconnectPolicy) BackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier >= 1 {
		b.Multiplier = p.Multiplier
	}
	if p.RandomizationFactor >= 0 && p.RandomizationFactor < 1 {
		b.RandomizationFactor = p.RandomizationFactor
	}
	b.MaxElapsedTime = p.MaxElapsedTime
	b.Reset()
	return b
}
