package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGamePlacement(t *testing.T) {
	t.Run("eight players on the standard map keep their distance", func(t *testing.T) {
		c := NewStandardCatalog()
		s, ok := c.Scenario("standard")
		require.True(t, ok)
		require.Equal(t, 15, s.Width)
		require.Equal(t, 20, s.Height)

		names := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
		w, err := NewGame(c, s, NewPlayers(names))
		require.NoError(t, err)

		starts := w.StartPositions()
		require.Len(t, starts, 8)
		minDistance := -1
		for i := range starts {
			for j := i + 1; j < len(starts); j++ {
				d := Chebyshev(starts[i], starts[j])
				if minDistance < 0 || d < minDistance {
					minDistance = d
				}
			}
			u := w.Board().At(starts[i])
			require.NotNil(t, u)
			require.Equal(t, i, u.Owner)
			require.Equal(t, TownCenter, u.Type.ID)
		}
		require.GreaterOrEqual(t, minDistance, s.StartMinDistance)
		require.Len(t, w.Gold(), s.GoldCount)
	})

	t.Run("same seed places identically", func(t *testing.T) {
		c := NewStandardCatalog()
		s, _ := c.Scenario("duel")

		w1, err := NewGame(c, s, NewPlayers([]string{"a", "b"}))
		require.NoError(t, err)
		w2, err := NewGame(c, s, NewPlayers([]string{"a", "b"}))
		require.NoError(t, err)

		require.Equal(t, w1.StartPositions(), w2.StartPositions())
		require.Equal(t, w1.Gold(), w2.Gold())
	})

	t.Run("impossible separation fails", func(t *testing.T) {
		c := NewStandardCatalog()
		s := &Scenario{ID: "tiny", MaxPlayers: 2, Width: 3, Height: 3, StartMinDistance: 5, StartUnit: TownCenter}

		_, err := NewGame(c, s, NewPlayers([]string{"a", "b"}))
		require.Error(t, err)
	})

	t.Run("too many players", func(t *testing.T) {
		c := NewStandardCatalog()
		s, _ := c.Scenario("duel")

		_, err := NewGame(c, s, NewPlayers([]string{"a", "b", "c"}))
		require.Error(t, err)
	})

	t.Run("explicit start positions", func(t *testing.T) {
		c := NewStandardCatalog()
		s, _ := c.Scenario("duel")
		w := NewWorld(c, s, NewPlayers([]string{"a", "b"}))

		require.NoError(t, w.PlaceStartUnitsAt([]Position{{0, 0}, {9, 9}}))
		require.Error(t, w.PlaceStartUnitsAt([]Position{{0, 0}, {1, 1}}), "Occupied cells should fail")
	})
}
