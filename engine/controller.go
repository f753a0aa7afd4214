package engine

import (
	"context"
	"errors"

	"territory/game"

	"github.com/rs/zerolog/log"
)

type Option func(c *Controller)

// WithMaxTurns stops the game after n turns. Negative values are ignored.
func WithMaxTurns(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.maxTurns = n
		}
	}
}

// WithObserver registers o before the first turn.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// Controller cycles through the seats in fixed order, skipping eliminated players.
type Controller struct {
	world     *game.World
	agents    []Agent
	observers []Observer
	maxTurns  int
	current   int // active seat, -1 before the first turn
	turn      int
	inTurn    bool
	over      bool
}

func NewController(world *game.World, agents []Agent, options ...Option) *Controller {
	if len(world.Players()) != len(agents) {
		panic("number of players does not match number of agents")
	}
	c := &Controller{
		world:    world,
		agents:   agents,
		maxTurns: DefaultMaxTurns,
		current:  -1,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Controller) World() *game.World { return c.world }

// Turn returns the number of turns started so far.
func (c *Controller) Turn() int { return c.turn }

// Over reports whether the game has ended.
func (c *Controller) Over() bool { return c.over }

// AddObserver registers o for turn changes.
func (c *Controller) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Survivors returns the seats still owning units.
func (c *Controller) Survivors() []int {
	var seats []int
	for _, p := range c.world.Players() {
		if c.world.Alive(p.ID) {
			seats = append(seats, p.ID)
		}
	}
	return seats
}

// Run plays turns until the game ends or ctx is cancelled.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	for {
		ok, err := c.Next(ctx)
		if err != nil {
			return c.result(), err
		}
		if !ok {
			break
		}
	}
	return c.result(), nil
}

func (c *Controller) result() Result {
	return Result{
		Turns:     c.turn,
		Survivors: c.Survivors(),
		Cutoff:    c.turn >= c.maxTurns,
	}
}

// Next plays one turn. It returns false once the game has ended.
func (c *Controller) Next(ctx context.Context) (bool, error) {
	if c.over {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.turn >= c.maxTurns {
		log.Info().Int("turns", c.turn).Msg("turn limit reached")
		c.over = true
		return false, nil
	}
	if len(c.Survivors()) <= 1 {
		c.over = true
		return false, nil
	}

	seat, ok := c.nextSeat()
	if !ok {
		c.over = true
		return false, nil
	}

	c.beginTurn(seat)
	player := c.world.Player(seat)
	for _, a := range c.agents {
		a.TurnStarted(c.turn, seat)
	}
	for _, o := range c.observers {
		o.TurnChanged(c.turn, player)
	}

	err := c.agents[seat].Play(ctx, c.world.Actor(seat))
	c.FinishedRound()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		log.Warn().Err(err).Int("seat", seat).Msg("agent failed during its turn")
	}
	return true, nil
}

// nextSeat advances in seating order from the current seat, wrapping around
// and skipping players without units.
func (c *Controller) nextSeat() (int, bool) {
	n := len(c.agents)
	for i := 1; i <= n; i++ {
		seat := (c.current + i) % n
		p := c.world.Player(seat)
		if c.world.Alive(seat) {
			return seat, true
		}
		if p.Playing {
			log.Info().Int("seat", seat).Str("player", p.Name).Msg("player eliminated")
			p.Playing = false
		}
	}
	return -1, false
}

func (c *Controller) beginTurn(seat int) {
	if c.inTurn {
		panic("turn started while another turn is in progress")
	}
	c.inTurn = true
	c.current = seat
	c.turn++
	c.world.StartRound(c.world.Player(seat))
}

// FinishedRound ends the active turn. Calling it without a turn in progress is a caller error.
func (c *Controller) FinishedRound() {
	if !c.inTurn {
		panic("FinishedRound called without a turn in progress")
	}
	c.inTurn = false
}
