// Package maintenance runs the periodic cleanup sweeps: expiring idle user
// sessions and deactivating list shares whose expiration date has passed.
package maintenance

import (
	"context"
	"listkeeper/internal/config"
	"listkeeper/internal/service"
	"listkeeper/pkg/logger"
	"listkeeper/pkg/metrics"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Options configure the sweep cadence.
type Options struct {
	// SessionSweepInterval is how often the session sweep runs.
	SessionSweepInterval time.Duration
	// SessionIdleCutoff is the idle duration after which an active session is
	// considered expired.
	SessionIdleCutoff time.Duration
	// ShareSweepInterval is how often the share sweep runs.
	ShareSweepInterval time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SessionSweepInterval: cfg.Maintenance.SessionSweepInterval,
		SessionIdleCutoff:    cfg.Maintenance.SessionIdleCutoff,
		ShareSweepInterval:   cfg.Maintenance.ShareSweepInterval,
	}
}

// Sweeper owns the two background cleanup loops. The loops are independent:
// a failing tick is logged and retried on the next tick, and never affects
// the other loop.
type Sweeper struct {
	options  Options
	sessions service.Sessions
	shares   service.Shares

	runs     metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Sweeper reporting its activity through the provided meter.
func New(sessions service.Sessions, shares service.Shares, meter metric.Meter, options Options) (*Sweeper, error) {
	runs, err := meter.Int64Counter("maintenance_sweep_runs_total",
		metric.WithDescription("Completed sweep ticks per sweep name."))
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("maintenance_sweep_failures_total",
		metric.WithDescription("Failed sweep ticks per sweep name."))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("maintenance_sweep_duration_seconds",
		metric.WithDescription("Sweep tick duration in seconds."),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		options:  options,
		sessions: sessions,
		shares:   shares,
		runs:     runs,
		failures: failures,
		duration: duration,
	}, nil
}

// Start launches both sweep loops. Each loop runs one sweep immediately and
// then once per interval until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.loop(ctx, "sessions", s.options.SessionSweepInterval, s.sweepSessions)
	go s.loop(ctx, "shares", s.options.ShareSweepInterval, s.sweepShares)
}

// Stop cancels both loops and waits for in-flight ticks to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context) (int64, error)) {
	defer s.wg.Done()

	ctx = logger.WithFields(ctx, zap.String("sweep", name))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(ctx, name, sweep)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, name, sweep)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context, name string, sweep func(context.Context) (int64, error)) {
	attrs := metric.WithAttributes(attribute.String("sweep", name))

	start := time.Now()
	affected, err := sweep(ctx)
	s.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.runs.Add(ctx, 1, attrs)

	if err != nil {
		// retried on the next tick
		s.failures.Add(ctx, 1, attrs)
		logger.Error(ctx, "Sweep failed", zap.Error(err))

		return
	}

	if affected > 0 {
		logger.Info(ctx, "Sweep completed", zap.Int64("affected", affected))
	}
}

func (s *Sweeper) sweepSessions(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.options.SessionIdleCutoff)

	return s.sessions.DeactivateExpired(ctx, cutoff)
}

func (s *Sweeper) sweepShares(ctx context.Context) (int64, error) {
	return s.shares.CleanupExpiredShares(ctx)
}
