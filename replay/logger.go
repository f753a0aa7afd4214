package replay

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"territory/engine"
	"territory/game"

	"github.com/rs/zerolog/log"
)

// Type tags of action lines.
const (
	moveTag    = "m"
	fightTag   = "f"
	produceTag = "p"
	roundTag   = "r"
)

// Logger writes a replay: a header describing the setup, then a round line
// for every turn followed by the actions performed in it.
type Logger struct {
	out    *bufio.Writer
	closer io.Closer
	failed bool
}

// NewLogger writes a replay to w.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{out: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{}
}

// Create opens a replay file at path. If the file cannot be created the
// failure is logged and a no-op logger is returned.
func Create(path string) *Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to create replay directory, replay disabled")
		return Nop()
	}
	f, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to create replay file, replay disabled")
		return Nop()
	}
	return NewLogger(f)
}

// Enabled reports whether the logger writes anywhere.
func (l *Logger) Enabled() bool {
	return l.out != nil && !l.failed
}

func (l *Logger) printf(format string, args ...any) {
	if !l.Enabled() {
		return
	}
	if _, err := fmt.Fprintf(l.out, format, args...); err != nil {
		l.failed = true
		log.Error().Err(err).Msg("failed to write replay, replay disabled")
	}
}

// WriteHeader records the players, map and start positions of world.
func (l *Logger) WriteHeader(world *game.World) {
	s := world.Scenario()
	players := world.Players()
	gold := world.Gold()

	l.printf("# scenario %s\n", s.ID)
	l.printf("%d %d %d %d %d\n", len(players), s.StartMoney, s.Width, s.Height, len(gold))
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = strings.ReplaceAll(p.Name, " ", "_")
	}
	l.printf("%s\n", strings.Join(names, " "))
	for _, p := range gold {
		l.printf("%d %d\n", p.X, p.Y)
	}
	for _, p := range world.StartPositions() {
		l.printf("%d %d\n", p.X, p.Y)
	}
}

// Attach writes the header of c's world and records every turn and action from now on.
func (l *Logger) Attach(c *engine.Controller) {
	l.WriteHeader(c.World())
	c.AddObserver(l)
	c.World().OnAction(l.ActionPerformed)
}

func (l *Logger) TurnChanged(turn int, player *game.Player) {
	l.printf("%s %d\n", roundTag, player.ID)
}

func (l *Logger) ActionPerformed(seat int, a game.Action) {
	switch a.Type {
	case game.MoveAction:
		l.printf("%s %d %d %d %d\n", moveTag, a.Start.X, a.Start.Y, a.End.X, a.End.Y)
	case game.FightAction:
		l.printf("%s %d %d %d %d\n", fightTag, a.Start.X, a.Start.Y, a.End.X, a.End.Y)
	case game.ProduceAction:
		l.printf("%s %d %d %d %d %d\n", produceTag, a.Start.X, a.Start.Y, a.End.X, a.End.Y, a.Unit.ExternalID)
	}
}

// Close flushes the replay and closes the underlying file.
func (l *Logger) Close() error {
	if l.out == nil {
		return nil
	}
	err := l.out.Flush()
	if l.closer != nil {
		if cerr := l.closer.Close(); err == nil {
			err = cerr
		}
	}
	l.out = nil
	if err != nil {
		return fmt.Errorf("failed to close replay: %w", err)
	}
	return nil
}
