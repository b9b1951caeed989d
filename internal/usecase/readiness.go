package usecase

import (
	"context"
	"sync"
	"time"

	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// ReadinessProbe performs one cheap round trip to the remote store.
type ReadinessProbe func(ctx context.Context) error

// Readiness resolves once whether the remote store is reachable. The
// result is sticky: later waiters see the same outcome without probing.
type Readiness struct {
	probe   ReadinessProbe
	timeout time.Duration

	once sync.Once
	done chan struct{}
	err  error
}

func NewReadiness(probe ReadinessProbe, timeout time.Duration) *Readiness {
	return &Readiness{
		probe:   probe,
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// AlwaysReady is used by backends that live in process.
func AlwaysReady() *Readiness {
	r := NewReadiness(func(context.Context) error { return nil }, time.Second)
	r.Start(context.Background())
	return r
}

// Start runs the probe in the background under the configured deadline.
// Only the first call has any effect.
func (r *Readiness) Start(ctx context.Context) {
	r.once.Do(func() {
		go r.resolve(ctx)
	})
}

func (r *Readiness) resolve(ctx context.Context) {
	defer close(r.done)

	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	if err := r.probe(probeCtx); err != nil {
		r.err = errors.TransientIO("Remote store is not reachable", err)
		logger.Error("Readiness probe failed after %s: %v", time.Since(started), err)
		return
	}
	logger.Info("Remote store ready in %s", time.Since(started))
}

// Wait blocks until the probe has resolved or ctx is done. It starts the
// probe if nobody has yet.
func (r *Readiness) Wait(ctx context.Context) error {
	r.Start(context.WithoutCancel(ctx))

	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return errors.TransientIO("Remote store is not ready", ctx.Err())
	}
}

// Resolved reports whether the probe has finished, without blocking.
func (r *Readiness) Resolved() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
