package player

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"territory/game"
)

const humanHelp = `commands:
  move x1 y1 x2 y2
  fight x1 y1 x2 y2
  produce x1 y1 x2 y2 <unit type>
  units | money | help
  end`

// Human is a local interactive player reading commands from a console.
type Human struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewHuman(in io.Reader, out io.Writer) *Human {
	return &Human{in: bufio.NewScanner(in), out: out}
}

func (h *Human) TurnStarted(turn int, seat int) {
	fmt.Fprintf(h.out, "turn %d: seat %d\n", turn, seat)
}

// Play reads commands until "end" or the end of input.
func (h *Human) Play(ctx context.Context, actor *game.Actor) error {
	me := actor.Player()
	fmt.Fprintf(h.out, "%s (seat %d), money %d. Type help for commands.\n", me.Name, me.ID, me.Money)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(h.out, "> ")
		if !h.in.Scan() {
			return h.in.Err()
		}
		fields := strings.Fields(h.in.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "end":
			return nil
		case "help":
			fmt.Fprintln(h.out, humanHelp)
		case "money":
			for _, p := range actor.Players() {
				fmt.Fprintf(h.out, "%d %s %d\n", p.ID, p.Name, p.Money)
			}
		case "units":
			for _, u := range actor.Units() {
				used := ""
				if actor.Used(u.Pos) {
					used = " (used)"
				}
				fmt.Fprintf(h.out, "%d %s %v hp=%d%s\n", u.Owner, u.Type.ID, u.Pos, u.HP, used)
			}
		default:
			action, err := parseCommand(actor.Catalog(), fields)
			if err != nil {
				fmt.Fprintln(h.out, err)
				continue
			}
			if actor.Apply(action) {
				fmt.Fprintln(h.out, "ok")
			} else {
				fmt.Fprintln(h.out, "illegal")
			}
		}
	}
}

func parseCommand(catalog *game.Catalog, fields []string) (game.Action, error) {
	var kind game.ActionType
	want := 5
	switch fields[0] {
	case "move":
		kind = game.MoveAction
	case "fight":
		kind = game.FightAction
	case "produce":
		kind, want = game.ProduceAction, 6
	default:
		return game.Action{}, fmt.Errorf("unknown command %q", fields[0])
	}
	if len(fields) != want {
		return game.Action{}, fmt.Errorf("%s takes %d arguments", fields[0], want-1)
	}
	coords := make([]int, 4)
	for i := range coords {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return game.Action{}, fmt.Errorf("invalid coordinate %q", fields[i+1])
		}
		coords[i] = v
	}
	action := game.Action{
		Type:  kind,
		Start: game.Position{X: coords[0], Y: coords[1]},
		End:   game.Position{X: coords[2], Y: coords[3]},
	}
	if kind == game.ProduceAction {
		t, ok := catalog.UnitType(fields[5])
		if !ok {
			return game.Action{}, fmt.Errorf("unknown unit type %q", fields[5])
		}
		action.Unit = t
	}
	return action, nil
}
