package player

import (
	"context"

	"territory/game"

	"golang.org/x/exp/slices"
)

// Heuristic is the built-in scripted AI. Each unit acts at most once per turn:
// it attacks if a target is in range, otherwise producers build and mobile
// units close in on the nearest enemy. Decisions are deterministic.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) TurnStarted(turn int, seat int) {}

func (h *Heuristic) Play(ctx context.Context, actor *game.Actor) error {
	seat := actor.Seat()
	var own []game.Unit
	for _, u := range actor.Units() {
		if u.Owner == seat {
			own = append(own, u)
		}
	}

	for _, u := range own {
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.attack(actor, u) || h.produce(actor, u) {
			continue
		}
		h.advance(actor, u)
	}
	return nil
}

// attack hits the target with the best damage to remaining HP ratio.
func (h *Heuristic) attack(actor *game.Actor, u game.Unit) bool {
	if !u.Type.CanFight {
		return false
	}
	var best *game.Unit
	bestScore := 0.0
	for _, e := range enemies(actor) {
		if !actor.CanFight(u.Pos, e.Pos) {
			continue
		}
		damage, _ := u.Type.DamageAgainst(e.Type)
		score := normalize(float64(damage), float64(e.HP))
		if best == nil || score > bestScore || (score == bestScore && e.Type.Value > best.Type.Value) {
			best, bestScore = &e, score
		}
	}
	if best == nil {
		return false
	}
	return actor.Fight(u.Pos, best.Pos)
}

// produce builds the most valuable affordable unit, fighters first, on the
// free cell closest to the nearest enemy.
func (h *Heuristic) produce(actor *game.Actor, u game.Unit) bool {
	if !u.Type.CanProduce {
		return false
	}
	money := actor.Player().Money
	var options []*game.UnitType
	for _, id := range u.Type.Builds {
		t, ok := actor.Catalog().UnitType(id)
		if ok && t.Value <= money {
			options = append(options, t)
		}
	}
	if len(options) == 0 {
		return false
	}
	slices.SortStableFunc(options, func(a, b *game.UnitType) int {
		if a.CanFight != b.CanFight {
			if a.CanFight {
				return -1
			}
			return 1
		}
		return b.Value - a.Value
	})
	target, _, found := nearestEnemy(actor, u.Pos)
	for _, t := range options {
		cell, ok := bestCell(actor, u.Pos, u.Type.Produce, target, found, func(p game.Position) bool {
			return actor.CanProduce(u.Pos, p, t)
		})
		if ok {
			return actor.Produce(u.Pos, cell, t)
		}
	}
	return false
}

// advance moves u to the reachable cell closest to the nearest enemy, if that gets it closer.
func (h *Heuristic) advance(actor *game.Actor, u game.Unit) bool {
	if u.Type.Walk.Max <= 0 {
		return false
	}
	target, current, found := nearestEnemy(actor, u.Pos)
	if !found {
		return false
	}
	cell, ok := bestCell(actor, u.Pos, u.Type.Walk, target, true, func(p game.Position) bool {
		return actor.CanMove(u.Pos, p)
	})
	if !ok || actor.Distance(cell, target) >= current {
		return false
	}
	return actor.Move(u.Pos, cell)
}

func enemies(actor *game.Actor) []game.Unit {
	var units []game.Unit
	for _, u := range actor.Units() {
		if u.Owner != actor.Seat() {
			units = append(units, u)
		}
	}
	return units
}

func nearestEnemy(actor *game.Actor, from game.Position) (game.Position, int, bool) {
	var best game.Position
	bestDistance, found := 0, false
	for _, e := range enemies(actor) {
		d := actor.Distance(from, e.Pos)
		if !found || d < bestDistance {
			best, bestDistance, found = e.Pos, d, true
		}
	}
	return best, bestDistance, found
}

// bestCell scans the cells within radius of from in row-major order and returns
// the legal one closest to target, or the first legal one when there is no target.
func bestCell(actor *game.Actor, from game.Position, radius game.Radius, target game.Position, hasTarget bool, legal func(game.Position) bool) (game.Position, bool) {
	var best game.Position
	bestDistance, found := 0, false
	for y := from.Y - radius.Max; y <= from.Y+radius.Max; y++ {
		for x := from.X - radius.Max; x <= from.X+radius.Max; x++ {
			p := game.Position{X: x, Y: y}
			if !actor.Inside(p) || !legal(p) {
				continue
			}
			d := 0
			if hasTarget {
				d = actor.Distance(p, target)
			}
			if !found || d < bestDistance {
				best, bestDistance, found = p, d, true
			}
		}
	}
	return best, found
}

// normalize normalizes value relative to otherValue to a score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}
