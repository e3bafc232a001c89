package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/metrics"
)

// BreakerHook implements redis.Hook to put a circuit breaker in front of all
// Redis operations, so a dead Redis degrades the catalog cache to direct
// member-API reads instead of stalling every lookup on connection timeouts.
type BreakerHook struct {
	cb *gobreaker.CircuitBreaker
}

var _ goredis.Hook = (*BreakerHook)(nil)

// NewBreakerHook creates the hook: the circuit opens after 5 consecutive
// failures and probes again after 30 seconds.
func NewBreakerHook() *BreakerHook {
	settings := gobreaker.Settings{
		Name:    "redis",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Redis circuit breaker state changed", "from", from.String(), "to", to.String())
			metrics.CacheBreakerState.Set(stateToFloat(to))
		},
	}
	return &BreakerHook{cb: gobreaker.NewCircuitBreaker(settings)}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// DialHook wraps connection establishment with the circuit breaker.
func (h *BreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := h.cb.Execute(func() (any, error) {
			return next(ctx, network, addr)
		})
		if err != nil {
			return nil, fmt.Errorf("redis dial: %w", err)
		}
		return conn.(net.Conn), nil
	}
}

// ProcessHook wraps command execution with the circuit breaker. A key miss
// (redis.Nil) is a normal outcome and never counts as a failure.
func (h *BreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		_, err := h.cb.Execute(func() (any, error) {
			if err := next(ctx, cmd); err != nil && !errors.Is(err, goredis.Nil) {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			return fmt.Errorf("redis %s: %w", cmd.Name(), err)
		}
		return cmd.Err()
	}
}

// ProcessPipelineHook wraps pipeline execution with the circuit breaker.
func (h *BreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		_, err := h.cb.Execute(func() (any, error) {
			return nil, next(ctx, cmds)
		})
		if err != nil {
			return fmt.Errorf("redis pipeline: %w", err)
		}
		return nil
	}
}

// State returns the breaker state, for tests and health reporting.
func (h *BreakerHook) State() gobreaker.State {
	return h.cb.State()
}
