package game

// Actor is the capability handed to an agent for one seat. It exposes a
// read-only view of the world and only lets the seat act with its own units.
type Actor struct {
	world *World
	seat  int
}

// Actor returns the capability for seat.
func (w *World) Actor(seat int) *Actor {
	return &Actor{world: w, seat: seat}
}

func (a *Actor) Seat() int           { return a.seat }
func (a *Actor) Catalog() *Catalog   { return a.world.catalog }
func (a *Actor) Scenario() *Scenario { return a.world.scenario }

// Player returns a copy of the acting seat's player.
func (a *Actor) Player() Player {
	return *a.world.players[a.seat]
}

// Players returns copies of all seats in seat order.
func (a *Actor) Players() []Player {
	players := make([]Player, len(a.world.players))
	for i, p := range a.world.players {
		players[i] = *p
	}
	return players
}

// Units returns copies of all units on the board in row-major order.
func (a *Actor) Units() []Unit {
	var units []Unit
	for _, u := range a.world.board.Units() {
		units = append(units, *u)
	}
	return units
}

// At returns a copy of the unit at p.
func (a *Actor) At(p Position) (Unit, bool) {
	u := a.world.board.At(p)
	if u == nil {
		return Unit{}, false
	}
	return *u, true
}

func (a *Actor) Gold() []Position {
	return append([]Position(nil), a.world.gold...)
}

func (a *Actor) Inside(p Position) bool { return a.world.board.Inside(p) }

func (a *Actor) Distance(from, to Position) int { return a.world.board.Distance(from, to) }

func (a *Actor) Used(p Position) bool { return a.world.Used(p) }

func (a *Actor) owns(p Position) bool {
	u := a.world.board.At(p)
	return u != nil && u.Owner == a.seat
}

func (a *Actor) CanMove(start, end Position) bool {
	return a.owns(start) && a.world.CanMove(start, end)
}

func (a *Actor) CanFight(start, end Position) bool {
	return a.owns(start) && a.world.CanFight(start, end)
}

func (a *Actor) CanProduce(start, end Position, t *UnitType) bool {
	return a.owns(start) && a.world.CanProduce(start, end, t)
}

// Apply performs action if the source unit belongs to the seat and the rules allow it.
func (a *Actor) Apply(action Action) bool {
	if !a.owns(action.Start) {
		return a.world.reject(action)
	}
	return a.world.Apply(action)
}

func (a *Actor) Move(start, end Position) bool { return a.Apply(Move(start, end)) }

func (a *Actor) Fight(start, end Position) bool { return a.Apply(Fight(start, end)) }

func (a *Actor) Produce(start, end Position, t *UnitType) bool {
	return a.Apply(Produce(start, end, t))
}
