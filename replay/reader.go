package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"territory/game"
)

var ErrMalformed = errors.New("malformed replay")

// Round holds the actions one seat performed during a turn.
type Round struct {
	Seat    int
	Actions []game.Action
}

// Record is a parsed replay.
type Record struct {
	Players    int
	StartMoney int
	Width      int
	Height     int
	Names      []string
	Gold       []game.Position
	Starts     []game.Position
	Rounds     []Round
}

// Open parses the replay file at path.
func Open(path string, catalog *game.Catalog) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer f.Close()
	return Parse(f, catalog)
}

type lineReader struct {
	scanner *bufio.Scanner
	number  int
}

// next returns the fields of the next line that is neither blank nor a comment.
func (r *lineReader) next() ([]string, bool) {
	for r.scanner.Scan() {
		r.number++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Fields(line), true
	}
	return nil, false
}

func (r *lineReader) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, r.number, fmt.Sprintf(format, args...))
}

func (r *lineReader) ints(fields []string, n int) ([]int, error) {
	if len(fields) != n {
		return nil, r.errorf("expected %d fields, got %d", n, len(fields))
	}
	values := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, r.errorf("%q is not a number", f)
		}
		values[i] = v
	}
	return values, nil
}

func (r *lineReader) positions(n int) ([]game.Position, error) {
	positions := make([]game.Position, 0, n)
	for i := 0; i < n; i++ {
		fields, ok := r.next()
		if !ok {
			return nil, r.errorf("expected %d positions, got %d", n, i)
		}
		v, err := r.ints(fields, 2)
		if err != nil {
			return nil, err
		}
		positions = append(positions, game.Position{X: v[0], Y: v[1]})
	}
	return positions, nil
}

// Parse reads a replay. Produced unit types are resolved by external id in catalog.
func Parse(in io.Reader, catalog *game.Catalog) (*Record, error) {
	r := &lineReader{scanner: bufio.NewScanner(in)}

	fields, ok := r.next()
	if !ok {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	header, err := r.ints(fields, 5)
	if err != nil {
		return nil, err
	}
	rec := &Record{Players: header[0], StartMoney: header[1], Width: header[2], Height: header[3]}
	if rec.Players <= 0 || rec.Width <= 0 || rec.Height <= 0 || header[4] < 0 {
		return nil, r.errorf("invalid header")
	}

	names, ok := r.next()
	if !ok || len(names) != rec.Players {
		return nil, r.errorf("expected %d player names", rec.Players)
	}
	rec.Names = names

	if rec.Gold, err = r.positions(header[4]); err != nil {
		return nil, err
	}
	if rec.Starts, err = r.positions(rec.Players); err != nil {
		return nil, err
	}

	for {
		fields, ok := r.next()
		if !ok {
			break
		}
		if fields[0] == roundTag {
			v, err := r.ints(fields[1:], 1)
			if err != nil {
				return nil, err
			}
			if v[0] < 0 || v[0] >= rec.Players {
				return nil, r.errorf("seat %d out of range", v[0])
			}
			rec.Rounds = append(rec.Rounds, Round{Seat: v[0]})
			continue
		}
		if len(rec.Rounds) == 0 {
			return nil, r.errorf("action before the first round")
		}
		action, err := r.action(fields, catalog)
		if err != nil {
			return nil, err
		}
		last := &rec.Rounds[len(rec.Rounds)-1]
		last.Actions = append(last.Actions, action)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read replay: %w", err)
	}
	return rec, nil
}

func (r *lineReader) action(fields []string, catalog *game.Catalog) (game.Action, error) {
	switch fields[0] {
	case moveTag, fightTag:
		v, err := r.ints(fields[1:], 4)
		if err != nil {
			return game.Action{}, err
		}
		start, end := game.Position{X: v[0], Y: v[1]}, game.Position{X: v[2], Y: v[3]}
		if fields[0] == moveTag {
			return game.Move(start, end), nil
		}
		return game.Fight(start, end), nil
	case produceTag:
		v, err := r.ints(fields[1:], 5)
		if err != nil {
			return game.Action{}, err
		}
		t, ok := catalog.UnitTypeByExternalID(v[4])
		if !ok {
			return game.Action{}, r.errorf("unknown unit type %d", v[4])
		}
		return game.Produce(game.Position{X: v[0], Y: v[1]}, game.Position{X: v[2], Y: v[3]}, t), nil
	default:
		return game.Action{}, r.errorf("unknown tag %q", fields[0])
	}
}
