package communication

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"territory/experiments/metrics"
	"territory/game"

	"github.com/rs/zerolog/log"
)

const (
	DefaultShortTimeout  = time.Second
	DefaultLongTimeout   = 5 * time.Second
	DefaultTimeoutBudget = 30 * time.Second
	DefaultKillGrace     = 500 * time.Millisecond
	DefaultStderrLines   = 100
	DefaultQueueSize     = 10
)

var (
	ErrNoResponse    = errors.New("no response from process")
	ErrProcessExited = errors.New("process exited")
)

type Option func(*Bridge)

// WithTimeouts sets the first and the second wait for a reply line.
func WithTimeouts(short, long time.Duration) Option {
	return func(b *Bridge) {
		b.shortTimeout = short
		b.longTimeout = long
	}
}

// WithTimeoutBudget limits the total time granted through long timeouts.
func WithTimeoutBudget(budget time.Duration) Option {
	return func(b *Bridge) {
		b.budget = budget
	}
}

func WithKillGrace(grace time.Duration) Option {
	return func(b *Bridge) {
		b.killGrace = grace
	}
}

func WithStderrLines(n int) Option {
	return func(b *Bridge) {
		b.stderrLines = n
	}
}

func WithQueueSize(n int) Option {
	return func(b *Bridge) {
		b.queueSize = n
	}
}

func WithCounters(c *metrics.Counters) Option {
	return func(b *Bridge) {
		b.counters = c
	}
}

// Bridge plays a seat through an external process speaking the line protocol
// on its stdin and stdout. The process is started on the first turn and runs
// through /bin/sh so commands may carry arguments.
type Bridge struct {
	name         string
	command      string
	shortTimeout time.Duration
	longTimeout  time.Duration
	budget       time.Duration
	killGrace    time.Duration
	stderrLines  int
	queueSize    int
	counters     *metrics.Counters

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	out      *bufio.Writer
	lines    chan string
	done     chan struct{}
	cancel   context.CancelFunc
	started  bool
	exited   bool
	forfeits int

	// Replies still expected from rounds that were forfeited: whole replies
	// owed, and the remaining action lines of a partly read one.
	owed     int
	skip     int
	desynced bool

	terminating atomic.Bool
	closeOnce   sync.Once

	mu     sync.Mutex
	stderr []string
}

func NewBridge(name string, command string, opts ...Option) *Bridge {
	b := &Bridge{
		name:         name,
		command:      command,
		shortTimeout: DefaultShortTimeout,
		longTimeout:  DefaultLongTimeout,
		budget:       DefaultTimeoutBudget,
		killGrace:    DefaultKillGrace,
		stderrLines:  DefaultStderrLines,
		queueSize:    DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.counters == nil {
		b.counters = metrics.Default()
	}
	return b
}

func (b *Bridge) Name() string    { return b.name }
func (b *Bridge) Command() string { return b.command }

// SetCommand replaces the command. It panics once the process has been started.
func (b *Bridge) SetCommand(command string) {
	if b.started {
		panic("cannot change the command of a started external player")
	}
	b.command = command
}

// Exited reports whether the process is known to be gone.
func (b *Bridge) Exited() bool { return b.exited }

// Forfeits returns the number of rounds lost to timeouts or crashes.
func (b *Bridge) Forfeits() int { return b.forfeits }

// Stderr returns the last lines the process wrote to stderr.
func (b *Bridge) Stderr() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.stderr...)
}

func (b *Bridge) TurnStarted(turn int, seat int) {}

// Play sends the round to the process and applies the actions it answers
// with. A process that does not answer in time forfeits the round, and so
// does one that is gone. The game goes on either way.
func (b *Bridge) Play(ctx context.Context, actor *game.Actor) error {
	if b.exited {
		b.forfeit(ctx, actor, ErrProcessExited)
		return nil
	}
	if !b.started {
		if err := b.start(actor); err != nil {
			b.exited = true
			b.forfeit(ctx, actor, err)
			return nil
		}
	}

	err := b.round(ctx, actor)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, ErrProcessExited) {
		b.exited = true
	}
	b.forfeit(ctx, actor, err)
	return nil
}

func (b *Bridge) forfeit(ctx context.Context, actor *game.Actor, err error) {
	b.forfeits++
	reason := "malformed"
	switch {
	case errors.Is(err, ErrNoResponse):
		reason = "timeout"
	case errors.Is(err, ErrProcessExited):
		reason = "exited"
	}
	b.counters.Forfeit(ctx, b.name, reason)
	log.Warn().Err(err).Str("player", b.name).Int("seat", actor.Seat()).Str("reason", reason).Msg("external player forfeits the round")
}

func (b *Bridge) start(actor *game.Actor) error {
	b.started = true

	cmd := exec.Command("/bin/sh", "-c", b.command)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %q: %w", b.command, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cmd = cmd
	b.stdin = stdin
	b.out = bufio.NewWriter(stdin)
	b.cancel = cancel
	b.lines = make(chan string, b.queueSize)
	b.done = make(chan struct{})

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		b.readStdout(ctx, stdout)
	}()
	go func() {
		defer readers.Done()
		b.drainStderr(stderr)
	}()
	go func() {
		readers.Wait()
		err := cmd.Wait()
		if err != nil && !b.terminating.Load() {
			log.Warn().Err(err).Str("player", b.name).Msg("external player exited")
		} else {
			log.Debug().Str("player", b.name).Msg("external player exited")
		}
		close(b.done)
	}()

	log.Info().Str("player", b.name).Int("pid", cmd.Process.Pid).Str("command", b.command).Msg("started external player")

	if err := WriteHandshake(b.out, actor); err != nil {
		return fmt.Errorf("%w: %w", ErrProcessExited, err)
	}
	if err := b.out.Flush(); err != nil {
		return fmt.Errorf("%w: failed to send handshake: %w", ErrProcessExited, err)
	}
	return nil
}

// readStdout forwards stdout lines into the queue until the process closes
// its output or the bridge terminates. Closing the queue tells the game the
// process is gone.
func (b *Bridge) readStdout(ctx context.Context, stdout io.Reader) {
	defer close(b.lines)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		select {
		case b.lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil && !b.terminating.Load() {
		log.Warn().Err(err).Str("player", b.name).Msg("failed to read from external player")
	}
}

// drainStderr keeps the last stderrLines lines for diagnostics.
func (b *Bridge) drainStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debug().Str("player", b.name).Str("stderr", line).Send()
		b.mu.Lock()
		b.stderr = append(b.stderr, line)
		if len(b.stderr) > b.stderrLines {
			b.stderr = b.stderr[len(b.stderr)-b.stderrLines:]
		}
		b.mu.Unlock()
	}
}

func (b *Bridge) round(ctx context.Context, actor *game.Actor) error {
	if b.desynced {
		dropped := b.drain()
		b.owed, b.skip, b.desynced = 0, 0, false
		log.Warn().Str("player", b.name).Int("lines", dropped).Msg("dropped output after a malformed reply")
	}
	if err := WriteRound(b.out, actor); err != nil {
		return fmt.Errorf("%w: %w", ErrProcessExited, err)
	}
	if err := b.out.Flush(); err != nil {
		return fmt.Errorf("%w: failed to send round: %w", ErrProcessExited, err)
	}

	w := b.newRoundWait()
	if err := b.catchUp(ctx, w); err != nil {
		return err
	}

	line, err := b.readLine(ctx, w)
	if err != nil {
		b.owed++
		return err
	}
	n, err := ParseCount(line)
	if err != nil {
		b.desynced = true
		return err
	}
	for i := 0; i < n; i++ {
		line, err := b.readLine(ctx, w)
		if err != nil {
			b.skip = n - i
			return err
		}
		action, err := ParseAction(line, actor.Catalog())
		if err != nil {
			log.Warn().Err(err).Str("player", b.name).Msg("skipping action")
			continue
		}
		actor.Apply(action)
	}
	return nil
}

// catchUp discards the replies to earlier rounds that were given up on. The
// lines of a partly read reply come first, then the owed replies in order.
func (b *Bridge) catchUp(ctx context.Context, w *roundWait) error {
	if b.skip == 0 && b.owed == 0 {
		return nil
	}
	dropped := 0
	defer func() {
		if dropped > 0 {
			log.Debug().Str("player", b.name).Int("lines", dropped).Msg("discarded late reply")
		}
	}()
	for b.skip > 0 || b.owed > 0 {
		line, err := b.readLine(ctx, w)
		if err != nil {
			// The current round is owed on top of the late ones.
			b.owed++
			return err
		}
		dropped++
		if b.skip > 0 {
			b.skip--
			continue
		}
		n, err := ParseCount(line)
		if err != nil {
			b.desynced = true
			return err
		}
		b.owed--
		b.skip = n
	}
	return nil
}

// drain empties the queue without waiting and returns the number of lines
// thrown away.
func (b *Bridge) drain() int {
	n := 0
	for {
		select {
		case _, ok := <-b.lines:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// roundWait is the deadline shared by every line of one round: the short
// timeout, extended once by a long timeout charged against the budget.
type roundWait struct {
	deadline time.Time
	extended bool
}

func (b *Bridge) newRoundWait() *roundWait {
	return &roundWait{deadline: time.Now().Add(b.shortTimeout)}
}

// extend grants the long timeout once per round if budget is left.
func (b *Bridge) extend(ctx context.Context, w *roundWait) bool {
	if w.extended {
		return false
	}
	w.extended = true
	grant := min(b.longTimeout, b.budget)
	if grant <= 0 {
		return false
	}
	b.budget -= grant
	w.deadline = w.deadline.Add(grant)
	b.counters.LongWait(ctx, b.name)
	log.Debug().Str("player", b.name).Dur("wait", grant).Dur("budget", b.budget).Msg("granting long timeout")
	return true
}

func (b *Bridge) readLine(ctx context.Context, w *roundWait) (string, error) {
	for {
		line, err := b.receive(ctx, time.Until(w.deadline))
		if !errors.Is(err, ErrNoResponse) || !b.extend(ctx, w) {
			return line, err
		}
	}
}

func (b *Bridge) receive(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(max(timeout, 0))
	defer timer.Stop()
	select {
	case line, ok := <-b.lines:
		if !ok {
			return "", ErrProcessExited
		}
		return line, nil
	case <-timer.C:
		return "", ErrNoResponse
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the process: it closes stdin, waits the kill grace for the
// process to exit and kills it otherwise. Close is idempotent.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		if b.cmd == nil {
			return
		}
		b.terminating.Store(true)
		b.cancel()
		b.stdin.Close()

		select {
		case <-b.done:
			return
		case <-time.After(b.killGrace):
		}
		log.Warn().Str("player", b.name).Msg("killing external player")
		if err := b.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			log.Error().Err(err).Str("player", b.name).Msg("failed to kill external player")
		}
		select {
		case <-b.done:
		case <-time.After(b.killGrace):
			log.Warn().Str("player", b.name).Msg("external player still holds its pipes")
		}
	})
	return nil
}
