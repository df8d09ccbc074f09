package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("upstream breaker is open")

type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

type BreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenFor          time.Duration
	ProbeRequests    int
}

// DefaultBreakerConfig is sized for a polite scraper: the breaker only
// trips after a sustained run of upstream failures, and stays open long
// enough for a struggling host to recover.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          false,
		FailureThreshold: 12,
		OpenFor:          30 * time.Second,
		ProbeRequests:    3,
	}
}

func NormalizeBreakerConfig(cfg BreakerConfig) BreakerConfig {
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = defaults.OpenFor
	}
	if cfg.ProbeRequests < 1 {
		cfg.ProbeRequests = defaults.ProbeRequests
	}
	return cfg
}

// Breaker gates request admission to the upstream platform. Consecutive
// failures trip it open; after OpenFor it admits a bounded number of
// probe requests and closes again once they all succeed.
type Breaker struct {
	mu sync.Mutex

	threshold time.Duration
	failLimit int
	probeMax  int

	state          BreakerState
	consecFailures int
	openedAt       time.Time
	probesInFlight int
	probesOK       int
	now            func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg = NormalizeBreakerConfig(cfg)
	return &Breaker{
		threshold: cfg.OpenFor,
		failLimit: cfg.FailureThreshold,
		probeMax:  cfg.ProbeRequests,
		state:     BreakerClosed,
		now:       time.Now,
	}
}

// Allow reports whether a request may proceed. ErrBreakerOpen means the
// caller should fail fast without touching the network.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state == BreakerOpen {
		if now.Sub(b.openedAt) < b.threshold {
			return ErrBreakerOpen
		}
		b.toHalfOpen()
	}

	if b.state == BreakerHalfOpen {
		if b.probesInFlight >= b.probeMax {
			return ErrBreakerOpen
		}
		b.probesInFlight++
	}

	return nil
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.consecFailures = 0
	case BreakerHalfOpen:
		if b.probesInFlight > 0 {
			b.probesInFlight--
		}
		b.probesOK++
		if b.probesOK >= b.probeMax && b.probesInFlight == 0 {
			b.toClosed()
		}
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.consecFailures++
		if b.consecFailures >= b.failLimit {
			b.toOpen()
		}
	case BreakerHalfOpen:
		if b.probesInFlight > 0 {
			b.probesInFlight--
		}
		b.toOpen()
	case BreakerOpen:
		b.openedAt = b.now()
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.threshold {
		return BreakerHalfOpen
	}

	return b.state
}

func (b *Breaker) toClosed() {
	b.state = BreakerClosed
	b.consecFailures = 0
	b.probesInFlight = 0
	b.probesOK = 0
	b.openedAt = time.Time{}
}

func (b *Breaker) toOpen() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.probesInFlight = 0
	b.probesOK = 0
}

func (b *Breaker) toHalfOpen() {
	b.state = BreakerHalfOpen
	b.probesInFlight = 0
	b.probesOK = 0
}
