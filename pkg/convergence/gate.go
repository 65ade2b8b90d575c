// Package convergence waits for the switches of a network to settle
// before traffic is expected to flow.
package convergence

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultDelay is long enough for classic STP (2x forward delay of
	// 15s is the upper bound, OVS settles well below it on small rings).
	DefaultDelay    = 15 * time.Second
	DefaultInterval = 500 * time.Millisecond
	DefaultTimeout  = 60 * time.Second
)

var ErrNotConverged = errors.New("network did not converge")

// Signal tells whether the network has converged.
type Signal interface {
	Ready(ctx context.Context) (bool, error)
}

type SignalFunc func(ctx context.Context) (bool, error)

func (f SignalFunc) Ready(ctx context.Context) (bool, error) {
	return f(ctx)
}

// Gate polls a Signal until it reports ready or Timeout passes.
type Gate struct {
	Signal   Signal
	Interval time.Duration
	Timeout  time.Duration
}

// NewGate returns the default gate: ready a fixed DefaultDelay after
// Wait starts, whatever the size of the topology.
func NewGate() *Gate {
	return &Gate{
		Signal:   AfterDelay(DefaultDelay),
		Interval: DefaultInterval,
		Timeout:  DefaultTimeout,
	}
}

// Wait blocks until the signal is ready. It returns ErrNotConverged
// (wrapping the last signal error, if any) when the timeout passes first,
// and ctx.Err() when ctx is cancelled.
func (g *Gate) Wait(ctx context.Context) error {
	interval := g.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if s, ok := g.Signal.(starter); ok {
		s.start()
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var lastErr error
	for {
		ready, err := g.Signal.Ready(ctx)
		if err != nil {
			log.Debugf("convergence signal: %v", err)
			lastErr = err
		} else if ready {
			log.Infof("network converged after %s", time.Since(start).Round(time.Millisecond))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			if lastErr != nil {
				return errors.Wrapf(ErrNotConverged, "after %s: %v", timeout, lastErr)
			}
			return errors.Wrapf(ErrNotConverged, "after %s", timeout)
		case <-ticker.C:
		}
	}
}

// starter is implemented by signals that measure time from the start of
// a Wait.
type starter interface {
	start()
}

type delaySignal struct {
	delay time.Duration
	now   func() time.Time
	since time.Time
}

// AfterDelay is ready once d has elapsed since Wait started. It never
// looks at the network.
func AfterDelay(d time.Duration) Signal {
	return &delaySignal{delay: d, now: time.Now}
}

func (s *delaySignal) start() {
	s.since = s.now()
}

func (s *delaySignal) Ready(context.Context) (bool, error) {
	if s.since.IsZero() {
		s.start()
	}
	return s.now().Sub(s.since) >= s.delay, nil
}

// Delay returns the fixed delay of a signal built by AfterDelay and false
// for any other signal.
func Delay(s Signal) (time.Duration, bool) {
	d, ok := s.(*delaySignal)
	if !ok {
		return 0, false
	}
	return d.delay, true
}
