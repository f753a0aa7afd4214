package player

import (
	"context"

	"territory/game"
)

// Idle never acts. It fills seats in tests and demo games.
type Idle struct{}

func (Idle) TurnStarted(turn int, seat int) {}

func (Idle) Play(ctx context.Context, actor *game.Actor) error { return nil }
