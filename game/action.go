package game

import "fmt"

// ActionType represents the kind of action a unit performs.
// The numeric values are the action codes of the subprocess protocol.
type ActionType int

const (
	MoveAction ActionType = iota
	FightAction
	ProduceAction
)

func (t ActionType) String() string {
	switch t {
	case MoveAction:
		return "move"
	case FightAction:
		return "fight"
	case ProduceAction:
		return "produce"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	return t >= MoveAction && t <= ProduceAction
}

// Action is an immutable proposal by a player.
type Action struct {
	Type  ActionType
	Start Position
	End   Position
	Unit  *UnitType // produced type, only set for ProduceAction
}

func Move(start, end Position) Action {
	return Action{Type: MoveAction, Start: start, End: end}
}

func Fight(start, end Position) Action {
	return Action{Type: FightAction, Start: start, End: end}
}

func Produce(start, end Position, t *UnitType) Action {
	return Action{Type: ProduceAction, Start: start, End: end, Unit: t}
}

func (a Action) String() string {
	if a.Type == ProduceAction && a.Unit != nil {
		return fmt.Sprintf("%s %v->%v %s", a.Type, a.Start, a.End, a.Unit.ID)
	}
	return fmt.Sprintf("%s %v->%v", a.Type, a.Start, a.End)
}
