package replay

import (
	"context"
	"fmt"

	"territory/engine"
	"territory/game"

	"github.com/rs/zerolog/log"
)

// Agent replays the recorded rounds of one seat. Actions the rules reject
// are logged and skipped.
type Agent struct {
	seat     int
	rounds   []Round
	next     int
	rejected int
}

func NewAgent(seat int, rounds []Round) *Agent {
	return &Agent{seat: seat, rounds: rounds}
}

// Rejected returns how many replayed actions were illegal.
func (a *Agent) Rejected() int { return a.rejected }

func (a *Agent) TurnStarted(turn int, seat int) {}

func (a *Agent) Play(ctx context.Context, actor *game.Actor) error {
	if a.next >= len(a.rounds) {
		log.Debug().Int("seat", a.seat).Msg("replay has no more rounds for seat")
		return nil
	}
	round := a.rounds[a.next]
	a.next++
	for _, action := range round.Actions {
		if !actor.Apply(action) {
			a.rejected++
			log.Warn().Int("seat", a.seat).Str("action", action.String()).Msg("replayed action is illegal")
		}
	}
	return nil
}

// Rebuild recreates the game of rec. The board rules and the start unit type
// come from base; map size, money, gold and start positions from rec. The
// returned controller stops after the recorded number of turns.
func Rebuild(rec *Record, catalog *game.Catalog, base *game.Scenario, options ...engine.Option) (*engine.Controller, []*Agent, error) {
	if base == nil {
		return nil, nil, fmt.Errorf("replay needs a base scenario")
	}
	scenario := *base
	scenario.ID = base.ID + "-replay"
	scenario.StartMoney = rec.StartMoney
	scenario.MaxPlayers = rec.Players
	scenario.Width = rec.Width
	scenario.Height = rec.Height
	scenario.GoldCount = len(rec.Gold)
	scenario.Gold = rec.Gold
	if err := scenario.Validate(catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to rebuild scenario: %w", err)
	}

	world := game.NewWorld(catalog, &scenario, game.NewPlayers(rec.Names))
	for _, p := range rec.Gold {
		world.AddGold(p)
	}
	if err := world.PlaceStartUnitsAt(rec.Starts); err != nil {
		return nil, nil, fmt.Errorf("failed to rebuild start units: %w", err)
	}

	perSeat := make([][]Round, rec.Players)
	for _, r := range rec.Rounds {
		perSeat[r.Seat] = append(perSeat[r.Seat], r)
	}
	replayers := make([]*Agent, rec.Players)
	agents := make([]engine.Agent, rec.Players)
	for seat := range agents {
		replayers[seat] = NewAgent(seat, perSeat[seat])
		agents[seat] = replayers[seat]
	}

	options = append([]engine.Option{engine.WithMaxTurns(len(rec.Rounds))}, options...)
	return engine.NewController(world, agents, options...), replayers, nil
}
