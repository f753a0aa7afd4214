package engine

import (
	"context"

	"territory/game"
)

// DefaultMaxTurns bounds a game that nobody manages to win.
const DefaultMaxTurns = 300

// Agent decides the actions of one seat.
type Agent interface {
	// TurnStarted is called on every agent whenever a seat's turn begins.
	TurnStarted(turn int, seat int)
	// Play decides and applies the seat's actions through actor. Returning ends the turn.
	Play(ctx context.Context, actor *game.Actor) error
}

// Observer is notified whenever the active player changes.
type Observer interface {
	TurnChanged(turn int, player *game.Player)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(turn int, player *game.Player)

func (f ObserverFunc) TurnChanged(turn int, player *game.Player) {
	f(turn, player)
}

// Result summarizes a finished game.
type Result struct {
	Turns     int
	Survivors []int // seat ids owning at least one unit
	Cutoff    bool  // stopped by the turn limit
}
