package metrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "territory/experiments/metrics"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Counters are the OTel instruments of the simulator. They record nothing
// unless a meter provider such as the one from NewMeterProvider is installed.
type Counters struct {
	games          metric.Int64Counter
	illegalActions metric.Int64Counter
	forfeits       metric.Int64Counter
	longWaits      metric.Int64Counter
}

func NewCounters(m metric.Meter) (*Counters, error) {
	c := &Counters{}
	var err error

	c.games, err = m.Int64Counter(
		"territory.games.played",
		metric.WithDescription("Total games played"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating games counter: %w", err)
	}

	c.illegalActions, err = m.Int64Counter(
		"territory.actions.rejected",
		metric.WithDescription("Total illegal actions rejected by the rules"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected actions counter: %w", err)
	}

	c.forfeits, err = m.Int64Counter(
		"territory.bridge.forfeits",
		metric.WithDescription("Rounds forfeited by external players"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating forfeits counter: %w", err)
	}

	c.longWaits, err = m.Int64Counter(
		"territory.bridge.long_waits",
		metric.WithDescription("Times an external player needed the long timeout"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating long waits counter: %w", err)
	}

	return c, nil
}

var (
	defaultOnce     sync.Once
	defaultCounters *Counters
)

// Default returns counters from the global meter provider.
func Default() *Counters {
	defaultOnce.Do(func() {
		c, err := NewCounters(meter())
		if err != nil {
			log.Error().Err(err).Msg("falling back to no-op metrics")
			c, _ = NewCounters(noop.NewMeterProvider().Meter(instrumentationName))
		}
		defaultCounters = c
	})
	return defaultCounters
}

func (c *Counters) GamePlayed(ctx context.Context, scenario string, illegalActions int) {
	attrs := metric.WithAttributes(attribute.String("scenario", scenario))
	c.games.Add(ctx, 1, attrs)
	if illegalActions > 0 {
		c.illegalActions.Add(ctx, int64(illegalActions), attrs)
	}
}

func (c *Counters) Forfeit(ctx context.Context, player string, reason string) {
	c.forfeits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("player", player),
		attribute.String("reason", reason),
	))
}

func (c *Counters) LongWait(ctx context.Context, player string) {
	c.longWaits.Add(ctx, 1, metric.WithAttributes(attribute.String("player", player)))
}
