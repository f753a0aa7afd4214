package communication

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"territory/experiments/metrics"
	"territory/game"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

func newBridge(t *testing.T, command string, opts ...Option) *Bridge {
	t.Helper()
	requireShell(t)
	opts = append([]Option{WithTimeouts(100*time.Millisecond, time.Second), WithKillGrace(200 * time.Millisecond)}, opts...)
	b := NewBridge("test", command, opts...)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBridgeActions(t *testing.T) {
	t.Run("applies the actions of the reply", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `echo 3; echo '0 0 0 1 0'; echo 'not an action'; echo '0 4 4 3 4'; cat > /dev/null`)

		require.NoError(t, b.Play(context.Background(), w.Actor(0)))

		require.NotNil(t, w.Board().At(game.Position{X: 1, Y: 0}), "Soldier should have moved")
		require.NotNil(t, w.Board().At(game.Position{X: 4, Y: 4}), "Enemy units cannot be moved")
		require.Equal(t, 1, w.Rejected())
		require.Zero(t, b.Forfeits())
	})

	t.Run("sends handshake once and a round per turn", func(t *testing.T) {
		w := newTestWorld(t)
		input := filepath.Join(t.TempDir(), "input")
		b := newBridge(t, `echo 0; echo 0; cat > '`+input+`'`)

		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.NoError(t, b.Close())

		data, err := os.ReadFile(input)
		require.NoError(t, err)
		round := "10\n10\n2\n0 0 0 2 20\n1 4 4 3 12\n"
		require.Equal(t, "2 10 6 6 0 1\n2 2\n"+round+round, string(data))
	})

	t.Run("waits for a slow reply with the long timeout", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `sleep 0.3; echo 1; echo '0 0 0 0 1'; cat > /dev/null`)

		start := time.Now()
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))

		require.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
		require.NotNil(t, w.Board().At(game.Position{X: 0, Y: 1}))
		require.Zero(t, b.Forfeits())
	})
}

func TestBridgeTimeouts(t *testing.T) {
	t.Run("silent process forfeits within both timeouts", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `cat > /dev/null`,
			WithTimeouts(50*time.Millisecond, 400*time.Millisecond),
			WithTimeoutBudget(400*time.Millisecond),
		)

		start := time.Now()
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		elapsed := time.Since(start)

		require.GreaterOrEqual(t, elapsed, 450*time.Millisecond)
		require.Less(t, elapsed, 3*time.Second, "Round should not block past the timeouts")
		require.Equal(t, 1, b.Forfeits())
		require.False(t, b.Exited())

		// The budget is spent, only the short timeout remains.
		start = time.Now()
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.Less(t, time.Since(start), 400*time.Millisecond)
		require.Equal(t, 2, b.Forfeits())
	})

	t.Run("crashed process forfeits every round immediately", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `echo oops >&2; exit 3`, WithTimeouts(2*time.Second, 5*time.Second))

		start := time.Now()
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))

		require.Less(t, time.Since(start), 2*time.Second, "A dead process should not be waited for")
		require.True(t, b.Exited())
		require.Equal(t, 2, b.Forfeits())
		require.NoError(t, b.Close())
		require.Equal(t, []string{"oops"}, b.Stderr())
	})

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `cat > /dev/null`, WithTimeouts(5*time.Second, 5*time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := b.Play(ctx, w.Actor(0))

		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Zero(t, b.Forfeits())
	})
}

func TestBridgeResync(t *testing.T) {
	t.Run("late reply is discarded and the next round reads its own reply", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `sleep 0.5; echo 0; echo 1; echo '0 0 0 0 1'; echo 0; cat > /dev/null`,
			WithTimeouts(50*time.Millisecond, 300*time.Millisecond),
		)

		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.Equal(t, 1, b.Forfeits(), "First reply comes too late")

		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.NotNil(t, w.Board().At(game.Position{X: 0, Y: 1}), "Second round should apply its own reply")
		require.Equal(t, 1, b.Forfeits())

		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.Equal(t, 1, b.Forfeits())
		require.Zero(t, w.Rejected())
	})

	t.Run("lines after a malformed count are dropped", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `echo x; echo 1; echo '0 0 0 0 1'; sleep 0.3; echo 0; cat > /dev/null`)

		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.Equal(t, 1, b.Forfeits())
		time.Sleep(100 * time.Millisecond)

		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.Nil(t, w.Board().At(game.Position{X: 0, Y: 1}), "Leftover actions must not be applied")
		require.NotNil(t, w.Board().At(game.Position{X: 0, Y: 0}))
		require.Equal(t, 1, b.Forfeits())
	})

	t.Run("one deadline covers every line of a round", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `echo 10; for i in 1 2 3 4 5 6 7 8 9 10; do sleep 0.09; echo '0 9 9 9 8'; done; cat > /dev/null`,
			WithTimeouts(100*time.Millisecond, 100*time.Millisecond),
			WithTimeoutBudget(100*time.Millisecond),
		)

		start := time.Now()
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))

		require.Less(t, time.Since(start), 500*time.Millisecond, "Round should end after short and long timeout")
		require.Equal(t, 1, b.Forfeits())
	})
}

func counterValue(t *testing.T, reader sdkmetric.Reader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s should be an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestBridgeCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })
	counters, err := metrics.NewCounters(provider.Meter("test"))
	require.NoError(t, err)

	w := newTestWorld(t)
	b := newBridge(t, `cat > /dev/null`,
		WithTimeouts(50*time.Millisecond, 50*time.Millisecond),
		WithTimeoutBudget(50*time.Millisecond),
		WithCounters(counters),
	)
	require.NoError(t, b.Play(context.Background(), w.Actor(0)))
	require.NoError(t, b.Play(context.Background(), w.Actor(0)))

	require.Equal(t, int64(2), counterValue(t, reader, "territory.bridge.forfeits"))
	require.Equal(t, int64(1), counterValue(t, reader, "territory.bridge.long_waits"))
}

func TestBridgeLifecycle(t *testing.T) {
	t.Run("set command before start", func(t *testing.T) {
		b := NewBridge("test", "true")
		b.SetCommand("echo 0")
		require.Equal(t, "echo 0", b.Command())
		require.NoError(t, b.Close(), "Closing a bridge that never started is fine")
	})

	t.Run("set command after start panics", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `echo 0; cat > /dev/null`)
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))

		require.Panics(t, func() { b.SetCommand("true") })
	})

	t.Run("close kills a process that ignores stdin", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `echo 0; exec sleep 30`)
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))

		start := time.Now()
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("stderr keeps the last lines", func(t *testing.T) {
		w := newTestWorld(t)
		b := newBridge(t, `for i in 1 2 3 4 5; do echo "line $i" >&2; done; echo 0; cat > /dev/null`, WithStderrLines(2))
		require.NoError(t, b.Play(context.Background(), w.Actor(0)))
		require.NoError(t, b.Close())

		require.Equal(t, []string{"line 4", "line 5"}, b.Stderr())
	})
}

func TestBridgeMissingCommand(t *testing.T) {
	w := newTestWorld(t)
	b := newBridge(t, `/nonexistent/ai-binary`)

	require.NoError(t, b.Play(context.Background(), w.Actor(0)))

	require.True(t, b.Exited())
	require.Equal(t, 1, b.Forfeits())
	require.NoError(t, b.Close())
	require.Contains(t, strings.Join(b.Stderr(), "\n"), "ai-binary", "Shell diagnostics should be kept")
}
