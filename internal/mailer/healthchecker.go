package mailer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// MailerHealthChecker monitors the mail transport via periodic dial probes.
type MailerHealthChecker struct {
	mailer       Mailer
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewMailerHealthChecker(m Mailer, log zerolog.Logger, probeTimeout time.Duration) *MailerHealthChecker {
	hc := &MailerHealthChecker{
		mailer:       m,
		log:          log,
		probeTimeout: probeTimeout,
	}
	hc.healthy.Store(0) // start unhealthy until first successful probe
	return hc
}

// Name returns the checker name.
func (hc *MailerHealthChecker) Name() string {
	return "mailer"
}

// IsHealthy returns the cached health status (non-blocking).
func (hc *MailerHealthChecker) IsHealthy() bool {
	return hc.healthy.Load() == 1
}

// Start begins periodic health checking.
func (hc *MailerHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if hc.probe(checkCtx) {
			hc.healthy.Store(1)
		} else {
			hc.healthy.Store(0)
		}
	}

	check()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

func (hc *MailerHealthChecker) probe(ctx context.Context) bool {
	p, ok := hc.mailer.(HealthPinger)
	if !ok {
		// No probe support; assume reachable rather than flapping unhealthy.
		return true
	}
	if err := p.HealthPing(ctx); err != nil {
		hc.log.Error().Stack().
			Str("checker", hc.Name()).
			Err(err).
			Msg("mailer health check failed")
		return false
	}
	return true
}
