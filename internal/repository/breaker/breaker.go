package breaker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/config"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/metrics"
)

var _ surgery.Repository = (*Repository)(nil)

// Repository guards another surgery.Repository with a circuit breaker. Only
// ErrStoreUnavailable counts as a failure; not-found, invalid ids and
// cancelled requests are ordinary outcomes. While open, calls fail fast with ErrStoreUnavailable.
type Repository struct {
	next surgery.Repository
	cb   *gobreaker.CircuitBreaker[any]
}

func New(next surgery.Repository, cfg config.BreakerConfig, m *metrics.Collector, log *zap.Logger) *Repository {
	settings := gobreaker.Settings{
		Name:        "surgery-store",
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A caller hanging up says nothing about store health.
		IsSuccessful: func(err error) bool {
			if errors.Is(err, context.Canceled) {
				return true
			}
			return !errors.Is(err, surgery.ErrStoreUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			m.BreakerState.Set(float64(to))
		},
	}

	return &Repository{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (r *Repository) State() gobreaker.State {
	return r.cb.State()
}

func execute[T any](r *Repository, fn func() (T, error)) (T, error) {
	out, err := r.cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%w: %w", surgery.ErrStoreUnavailable, err)
	}
	v, _ := out.(T)
	return v, err
}

func (r *Repository) Create(ctx context.Context, s *surgery.Surgery) error {
	_, err := execute(r, func() (struct{}, error) {
		return struct{}{}, r.next.Create(ctx, s)
	})
	return err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*surgery.Surgery, error) {
	return execute(r, func() (*surgery.Surgery, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *Repository) List(ctx context.Context, q *surgery.ListSurgeriesQuery) (*surgery.PagedSurgeries, error) {
	return execute(r, func() (*surgery.PagedSurgeries, error) {
		return r.next.List(ctx, q)
	})
}

func (r *Repository) Update(ctx context.Context, id string, changes *surgery.Changes) (*surgery.Surgery, error) {
	return execute(r, func() (*surgery.Surgery, error) {
		return r.next.Update(ctx, id, changes)
	})
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	return execute(r, func() (bool, error) {
		return r.next.Delete(ctx, id)
	})
}

// Ping bypasses the breaker so readiness reflects the store itself.
func (r *Repository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
