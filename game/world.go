package game

import "github.com/rs/zerolog/log"

// ActionListener is notified after every action the World performs.
type ActionListener func(seat int, a Action)

// World is the rules engine. It owns the board and is only touched from the
// active turn's call stack, so it does no locking.
type World struct {
	catalog   *Catalog
	scenario  *Scenario
	board     *Board
	players   []*Player
	gold      []Position
	starts    []Position
	used      map[*Unit]bool
	rejected  int
	listeners []ActionListener
}

// NewWorld creates an empty world for the given seats. Every player starts
// with the scenario's start money. Use NewGame to also place gold and start units.
func NewWorld(catalog *Catalog, scenario *Scenario, players []*Player) *World {
	for i, p := range players {
		p.ID = i
		p.Money = scenario.StartMoney
		p.Playing = true
	}
	return &World{
		catalog:  catalog,
		scenario: scenario,
		board:    NewBoard(scenario.Width, scenario.Height, scenario.Diagonal),
		players:  players,
		starts:   make([]Position, len(players)),
		used:     make(map[*Unit]bool),
	}
}

func (w *World) Catalog() *Catalog   { return w.catalog }
func (w *World) Scenario() *Scenario { return w.scenario }
func (w *World) Board() *Board       { return w.board }
func (w *World) Players() []*Player  { return w.players }
func (w *World) Gold() []Position    { return w.gold }

// StartPositions returns where each seat's start unit was placed.
func (w *World) StartPositions() []Position { return w.starts }

// Rejected returns how many illegal proposals the world has turned down.
func (w *World) Rejected() int { return w.rejected }

func (w *World) Player(seat int) *Player {
	if seat < 0 || seat >= len(w.players) {
		return nil
	}
	return w.players[seat]
}

// OnAction registers a listener for performed actions.
func (w *World) OnAction(l ActionListener) {
	w.listeners = append(w.listeners, l)
}

// PlaceUnit puts a fresh unit of type t for seat at p. It is used for initial
// placement only and bypasses the action rules.
func (w *World) PlaceUnit(t *UnitType, seat int, p Position) bool {
	if t == nil || !w.board.Inside(p) || w.board.At(p) != nil {
		return false
	}
	w.board.put(&Unit{Type: t, Owner: seat, Pos: p, HP: t.HP})
	return true
}

// AddGold adds a gold node at p.
func (w *World) AddGold(p Position) {
	w.gold = append(w.gold, p)
}

// Alive reports whether seat still owns at least one unit.
func (w *World) Alive(seat int) bool {
	for _, u := range w.board.cells {
		if u != nil && u.Owner == seat {
			return true
		}
	}
	return false
}

// UnitsOf returns the units owned by seat in row-major order.
func (w *World) UnitsOf(seat int) []*Unit {
	var units []*Unit
	for _, u := range w.board.cells {
		if u != nil && u.Owner == seat {
			units = append(units, u)
		}
	}
	return units
}

// StartRound clears the acted set and pays p its passive income.
func (w *World) StartRound(p *Player) {
	clear(w.used)

	income := 0
	for _, u := range w.UnitsOf(p.ID) {
		income += u.Type.ValuePerRound
	}
	if gold, ok := w.catalog.MapObjectType(GoldType); ok {
		for _, g := range w.gold {
			if u := w.board.At(g); u != nil && u.Owner == p.ID {
				income += gold.ValuePerRound
			}
		}
	}
	p.Money += income
}

// Used reports whether the unit at p has already acted this round.
func (w *World) Used(p Position) bool {
	u := w.board.At(p)
	return u != nil && w.used[u]
}

func (w *World) canAct(u *Unit) bool {
	return w.scenario.MultipleActions || !w.used[u]
}

func (w *World) free(p Position) bool {
	return w.board.Inside(p) && w.board.At(p) == nil
}

func (w *World) CanMove(start, end Position) bool {
	src := w.board.At(start)
	if src == nil || !w.free(end) || !w.canAct(src) {
		return false
	}
	return src.Type.Walk.Contains(w.board.Distance(start, end))
}

func (w *World) CanProduce(start, end Position, t *UnitType) bool {
	src := w.board.At(start)
	if src == nil || t == nil || !w.free(end) || !w.canAct(src) {
		return false
	}
	if !src.Type.CanBuild(t) || !src.Type.Produce.Contains(w.board.Distance(start, end)) {
		return false
	}
	owner := w.Player(src.Owner)
	return owner != nil && owner.Money >= t.Value
}

func (w *World) CanFight(start, end Position) bool {
	src, dst := w.board.At(start), w.board.At(end)
	if src == nil || dst == nil || src.Owner == dst.Owner || !w.canAct(src) {
		return false
	}
	if _, ok := src.Type.DamageAgainst(dst.Type); !ok {
		return false
	}
	return src.Type.Fight.Contains(w.board.Distance(start, end))
}

// Move relocates the unit at start to end. It returns false and leaves the
// world untouched when the move is illegal.
func (w *World) Move(start, end Position) bool {
	if !w.CanMove(start, end) {
		return w.reject(Move(start, end))
	}
	u := w.board.At(start)
	w.board.clear(start)
	u.Pos = end
	w.board.put(u)
	w.used[u] = true
	w.notify(u.Owner, Move(start, end))
	return true
}

// Produce builds a unit of type t at end, paid for by the owner of the unit at start.
func (w *World) Produce(start, end Position, t *UnitType) bool {
	if !w.CanProduce(start, end, t) {
		return w.reject(Produce(start, end, t))
	}
	src := w.board.At(start)
	w.players[src.Owner].Money -= t.Value
	built := &Unit{Type: t, Owner: src.Owner, Pos: end, HP: t.HP}
	w.board.put(built)
	w.used[src] = true
	w.used[built] = true
	w.notify(src.Owner, Produce(start, end, t))
	return true
}

// Fight lets the unit at start attack the unit at end. The defender is removed
// when its HP drops to zero or below.
func (w *World) Fight(start, end Position) bool {
	if !w.CanFight(start, end) {
		return w.reject(Fight(start, end))
	}
	src, dst := w.board.At(start), w.board.At(end)
	damage, _ := src.Type.DamageAgainst(dst.Type)
	dst.HP -= damage
	if dst.HP <= 0 {
		w.board.clear(end)
		delete(w.used, dst)
		w.players[src.Owner].Money += dst.Type.ValueOnDestruction
	}
	w.used[src] = true
	w.notify(src.Owner, Fight(start, end))
	return true
}

// Apply dispatches a to the matching mutator.
func (w *World) Apply(a Action) bool {
	switch a.Type {
	case MoveAction:
		return w.Move(a.Start, a.End)
	case FightAction:
		return w.Fight(a.Start, a.End)
	case ProduceAction:
		return w.Produce(a.Start, a.End, a.Unit)
	default:
		return w.reject(a)
	}
}

func (w *World) reject(a Action) bool {
	w.rejected++
	log.Debug().Str("action", a.String()).Msg("rejected illegal action")
	return false
}

func (w *World) notify(seat int, a Action) {
	for _, l := range w.listeners {
		l(seat, a)
	}
}
