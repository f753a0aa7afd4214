// Package communication runs external players over a line protocol on their
// stdin and stdout. Fields are separated by spaces.
//
// Once, at start:
//
//	players startMoney width height seat goldCount
//	x y                     (goldCount lines)
//
// Every round the process receives:
//
//	money                   (one line per seat, in seat order)
//	unitCount
//	owner x y typeId hp     (unitCount lines)
//
// and answers with:
//
//	actionCount
//	code x1 y1 x2 y2 [typeId]   (actionCount lines)
//
// The unitCount line tells the process where the round state ends. Action
// codes are 0 for move, 1 for fight and 2 for produce; typeId is only given
// for produce. A reply that misses the round deadline forfeits the round and
// is discarded when it arrives later.
package communication

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"territory/game"
)

// Action codes on the wire.
const (
	moveCode    = 0
	fightCode   = 1
	produceCode = 2
)

// maxActions bounds the action count a process may announce for one round.
const maxActions = 10000

var ErrMalformed = errors.New("malformed message")

// WriteHandshake sends the game parameters and gold positions to a process.
func WriteHandshake(w io.Writer, actor *game.Actor) error {
	s := actor.Scenario()
	gold := actor.Gold()
	_, err := fmt.Fprintf(w, "%d %d %d %d %d %d\n",
		len(actor.Players()), s.StartMoney, s.Width, s.Height, actor.Seat(), len(gold))
	if err != nil {
		return fmt.Errorf("failed to write handshake: %w", err)
	}
	for _, p := range gold {
		if _, err := fmt.Fprintf(w, "%d %d\n", p.X, p.Y); err != nil {
			return fmt.Errorf("failed to write gold position: %w", err)
		}
	}
	return nil
}

// WriteRound sends the money of every seat followed by the unit count and one
// line per unit on the board.
func WriteRound(w io.Writer, actor *game.Actor) error {
	for _, p := range actor.Players() {
		if _, err := fmt.Fprintf(w, "%d\n", p.Money); err != nil {
			return fmt.Errorf("failed to write money: %w", err)
		}
	}
	units := actor.Units()
	if _, err := fmt.Fprintf(w, "%d\n", len(units)); err != nil {
		return fmt.Errorf("failed to write unit count: %w", err)
	}
	for _, u := range units {
		_, err := fmt.Fprintf(w, "%d %d %d %d %d\n", u.Owner, u.Pos.X, u.Pos.Y, u.Type.ExternalID, u.HP)
		if err != nil {
			return fmt.Errorf("failed to write unit: %w", err)
		}
	}
	return nil
}

// ParseCount parses the action count line of a reply.
func ParseCount(line string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 || n > maxActions {
		return 0, fmt.Errorf("%w: invalid action count %q", ErrMalformed, line)
	}
	return n, nil
}

// ParseAction parses one action line. Legality is left to the rules.
func ParseAction(line string, catalog *game.Catalog) (game.Action, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return game.Action{}, fmt.Errorf("%w: action %q has %d fields", ErrMalformed, line, len(fields))
	}
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return game.Action{}, fmt.Errorf("%w: action %q: field %d is not a number", ErrMalformed, line, i)
		}
		values[i] = v
	}
	start := game.Position{X: values[1], Y: values[2]}
	end := game.Position{X: values[3], Y: values[4]}

	switch values[0] {
	case moveCode:
		return game.Move(start, end), nil
	case fightCode:
		return game.Fight(start, end), nil
	case produceCode:
		if len(values) < 6 {
			return game.Action{}, fmt.Errorf("%w: produce %q without unit type", ErrMalformed, line)
		}
		t, ok := catalog.UnitTypeByExternalID(values[5])
		if !ok {
			return game.Action{}, fmt.Errorf("%w: unknown unit type %d", ErrMalformed, values[5])
		}
		return game.Produce(start, end, t), nil
	default:
		return game.Action{}, fmt.Errorf("%w: unknown action code %d", ErrMalformed, values[0])
	}
}

// FormatAction renders a as a protocol action line without the newline.
func FormatAction(a game.Action) string {
	code := moveCode
	switch a.Type {
	case game.FightAction:
		code = fightCode
	case game.ProduceAction:
		code = produceCode
	}
	line := fmt.Sprintf("%d %d %d %d %d", code, a.Start.X, a.Start.Y, a.End.X, a.End.Y)
	if a.Type == game.ProduceAction && a.Unit != nil {
		line += " " + strconv.Itoa(a.Unit.ExternalID)
	}
	return line
}
