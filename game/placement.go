package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

const maxPlacementAttempts = 10000

var palette = []string{"red", "blue", "green", "yellow", "purple", "orange", "cyan", "magenta"}

// NewPlayers creates one seat per name with a color from the palette.
func NewPlayers(names []string) []*Player {
	players := make([]*Player, len(names))
	for i, name := range names {
		players[i] = &Player{ID: i, Name: name, Color: palette[i%len(palette)]}
	}
	return players
}

// NewGame creates a world and places gold nodes and one start unit per seat,
// drawing positions from the scenario seed.
func NewGame(catalog *Catalog, scenario *Scenario, players []*Player) (*World, error) {
	if len(players) > scenario.MaxPlayers {
		return nil, fmt.Errorf("scenario %s allows %d players, got %d", scenario.ID, scenario.MaxPlayers, len(players))
	}
	w := NewWorld(catalog, scenario, players)
	rng := rand.New(rand.NewSource(scenario.Seed))
	if err := w.placeGold(rng); err != nil {
		return nil, err
	}
	if err := w.placeStartUnits(rng); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) randomCell(rng *rand.Rand) Position {
	return Position{X: rng.Intn(w.board.width), Y: rng.Intn(w.board.height)}
}

func (w *World) isGold(p Position) bool {
	for _, g := range w.gold {
		if g == p {
			return true
		}
	}
	return false
}

func (w *World) placeGold(rng *rand.Rand) error {
	for _, p := range w.scenario.Gold {
		w.AddGold(p)
	}
	for attempts := 0; len(w.gold) < w.scenario.GoldCount; attempts++ {
		if attempts >= maxPlacementAttempts {
			return fmt.Errorf("failed to place %d gold nodes on a %dx%d map", w.scenario.GoldCount, w.board.width, w.board.height)
		}
		if p := w.randomCell(rng); !w.isGold(p) {
			w.AddGold(p)
		}
	}
	return nil
}

func (w *World) placeStartUnits(rng *rand.Rand) error {
	t, ok := w.catalog.UnitType(w.scenario.StartUnit)
	if !ok {
		return fmt.Errorf("unknown start unit type %q", w.scenario.StartUnit)
	}
	for seat := range w.players {
		placed := false
	TRY:
		for attempts := 0; attempts < maxPlacementAttempts; attempts++ {
			p := w.randomCell(rng)
			if w.board.At(p) != nil || w.isGold(p) {
				continue
			}
			// keep at least StartMinDistance from earlier start units
			for _, other := range w.starts[:seat] {
				if Chebyshev(p, other) < w.scenario.StartMinDistance {
					continue TRY
				}
			}
			w.PlaceUnit(t, seat, p)
			w.starts[seat] = p
			placed = true
			break
		}
		if !placed {
			return fmt.Errorf("failed to place start unit for seat %d with min distance %d", seat, w.scenario.StartMinDistance)
		}
	}
	return nil
}

// PlaceStartUnitsAt puts the scenario's start unit for every seat at the given positions.
func (w *World) PlaceStartUnitsAt(positions []Position) error {
	t, ok := w.catalog.UnitType(w.scenario.StartUnit)
	if !ok {
		return fmt.Errorf("unknown start unit type %q", w.scenario.StartUnit)
	}
	if len(positions) != len(w.players) {
		return fmt.Errorf("got %d start positions for %d players", len(positions), len(w.players))
	}
	for seat, p := range positions {
		if !w.PlaceUnit(t, seat, p) {
			return fmt.Errorf("cannot place start unit for seat %d at %v", seat, p)
		}
		w.starts[seat] = p
	}
	return nil
}
