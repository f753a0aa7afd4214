package communication

import (
	"bytes"
	"testing"

	"territory/game"

	"github.com/stretchr/testify/require"
)

// newTestWorld returns a two-seat 6x6 world with a soldier for seat 0, an
// archer for seat 1 and one gold node.
func newTestWorld(t *testing.T) *game.World {
	t.Helper()
	c := game.NewStandardCatalog()
	s := &game.Scenario{ID: "test", StartMoney: 10, MaxPlayers: 2, Width: 6, Height: 6, StartUnit: game.TownCenter}
	w := game.NewWorld(c, s, game.NewPlayers([]string{"a", "b"}))
	soldier, _ := c.UnitType(game.Soldier)
	archer, _ := c.UnitType(game.Archer)
	require.True(t, w.PlaceUnit(soldier, 0, game.Position{X: 0, Y: 0}))
	require.True(t, w.PlaceUnit(archer, 1, game.Position{X: 4, Y: 4}))
	w.AddGold(game.Position{X: 2, Y: 2})
	return w
}

func TestWriteHandshake(t *testing.T) {
	w := newTestWorld(t)
	var buf bytes.Buffer

	require.NoError(t, WriteHandshake(&buf, w.Actor(1)))

	require.Equal(t, "2 10 6 6 1 1\n2 2\n", buf.String())
}

func TestWriteRound(t *testing.T) {
	w := newTestWorld(t)
	w.Player(1).Money = 7
	var buf bytes.Buffer

	require.NoError(t, WriteRound(&buf, w.Actor(0)))

	require.Equal(t, "10\n7\n2\n0 0 0 2 20\n1 4 4 3 12\n", buf.String())
}

func TestParseAction(t *testing.T) {
	catalog := game.NewStandardCatalog()
	knight, _ := catalog.UnitType(game.Knight)

	t.Run("valid actions", func(t *testing.T) {
		a, err := ParseAction("0 1 2 3 4", catalog)
		require.NoError(t, err)
		require.Equal(t, game.Move(game.Position{X: 1, Y: 2}, game.Position{X: 3, Y: 4}), a)

		a, err = ParseAction(" 1 1 2 3 4 ", catalog)
		require.NoError(t, err)
		require.Equal(t, game.FightAction, a.Type)

		a, err = ParseAction("2 1 2 3 4 4", catalog)
		require.NoError(t, err)
		require.Equal(t, game.Produce(game.Position{X: 1, Y: 2}, game.Position{X: 3, Y: 4}, knight), a)
	})

	t.Run("malformed actions", func(t *testing.T) {
		for _, line := range []string{"", "0 1 2 3", "0 1 2 x 4", "7 1 2 3 4", "2 1 2 3 4", "2 1 2 3 4 99"} {
			_, err := ParseAction(line, catalog)
			require.ErrorIs(t, err, ErrMalformed, "Line %q should be rejected", line)
		}
	})

	t.Run("format round trip", func(t *testing.T) {
		a := game.Produce(game.Position{X: 5, Y: 0}, game.Position{X: 5, Y: 1}, knight)
		require.Equal(t, "2 5 0 5 1 4", FormatAction(a))
		parsed, err := ParseAction(FormatAction(a), catalog)
		require.NoError(t, err)
		require.Equal(t, a, parsed)
		require.Equal(t, "1 0 0 1 1", FormatAction(game.Fight(game.Position{}, game.Position{X: 1, Y: 1})))
	})
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount(" 3\r")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	for _, line := range []string{"", "-1", "many", "1000000"} {
		_, err := ParseCount(line)
		require.ErrorIs(t, err, ErrMalformed)
	}
}
