package game

// Unit is an instance of a UnitType on the board. Units are only mutated by the World.
type Unit struct {
	Type  *UnitType
	Owner int // seat id
	Pos   Position
	HP    int
}

// Player is a seat in one game. Agents differ in how they decide, not in these fields.
type Player struct {
	ID      int // seat index
	Name    string
	Color   string
	Money   int
	Playing bool
}
