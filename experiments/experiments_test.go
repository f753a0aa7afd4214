package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"territory/communication"
	"territory/engine"
	"territory/game"
	"territory/player"
	"territory/replay"

	"github.com/stretchr/testify/require"
)

func testFactory(e Entry) engine.Agent {
	if e.Command == "ai" {
		return player.NewHeuristic()
	}
	return player.Idle{}
}

func testRoster() Roster {
	return Roster{{Name: "alpha", Command: "ai"}, {Name: "beta", Command: "idle"}, {Name: "gamma", Command: "idle"}}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEvaluation(t *testing.T) {
	catalog := game.NewStandardCatalog()
	duel, _ := catalog.Scenario("duel")

	t.Run("all combinations score by roster index", func(t *testing.T) {
		e := NewEvaluation(catalog, duel, testRoster(),
			WithAllCombinations(), WithMaxTurns(2), WithAgentFactory(testFactory))

		scores, err := e.Play(context.Background())

		require.NoError(t, err)
		require.Len(t, e.Records(), 6)
		require.Equal(t, []int{4, 4, 4}, scores, "Everyone survives two turns and sits in four games")
		for _, r := range e.Records() {
			require.Equal(t, r.Seating, r.Survivors, "Survivors should be reported by roster index")
			require.True(t, r.Cutoff)
			require.Equal(t, "duel", r.Scenario)
		}
		require.Equal(t, []int{1, 0}, e.Records()[1].Seating)
	})

	t.Run("single game seats the roster in order", func(t *testing.T) {
		e := NewEvaluation(catalog, duel, testRoster(), WithMaxTurns(4), WithAgentFactory(testFactory))

		scores, err := e.Play(context.Background())

		require.NoError(t, err)
		require.Len(t, e.Records(), 1)
		require.Equal(t, []int{0, 1}, e.Records()[0].Seating)
		require.Equal(t, []int{1, 1, 0}, scores)
	})

	t.Run("plays only once", func(t *testing.T) {
		e := NewEvaluation(catalog, duel, testRoster(), WithMaxTurns(1), WithAgentFactory(testFactory))
		_, err := e.Play(context.Background())
		require.NoError(t, err)

		require.Panics(t, func() { e.Play(context.Background()) })
	})

	t.Run("too many seats", func(t *testing.T) {
		e := NewEvaluation(catalog, duel, testRoster(), WithSeats(3), WithAgentFactory(testFactory))
		_, err := e.Play(context.Background())
		require.Error(t, err)
	})

	t.Run("writes replays", func(t *testing.T) {
		dir := t.TempDir()
		e := NewEvaluation(catalog, duel, testRoster(),
			WithMaxTurns(6), WithAgentFactory(testFactory), WithReplayDir(dir))
		_, err := e.Play(context.Background())
		require.NoError(t, err)

		rec, err := replay.Open(filepath.Join(dir, "duel-000.replay"), catalog)
		require.NoError(t, err)
		require.Equal(t, []string{"alpha", "beta"}, rec.Names)
		require.Len(t, rec.Rounds, 6)
	})
}

func TestTournament(t *testing.T) {
	catalog := game.NewStandardCatalog()
	roster := testRoster()[:2]
	path := writeFile(t, t.TempDir(), "tournament.txt", "# scenarios\nduel\n\nmissing\nduel\n")
	ids, err := LoadScenarioIDs(path)
	require.NoError(t, err)
	require.Equal(t, []string{"duel", "missing", "duel"}, ids)

	tour := NewTournament(catalog, roster, ids, WithMaxTurns(2), WithAgentFactory(testFactory))
	totals, err := tour.Play(context.Background())

	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, totals, "Unknown scenarios should be skipped")
	require.Len(t, tour.Records(), 2)
	require.Equal(t, 0, tour.Records()[0].Evaluation)
	require.Equal(t, 2, tour.Records()[1].Evaluation)
	require.Panics(t, func() { tour.Play(context.Background()) })
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	names := writeFile(t, dir, "names.txt", "# players\nalpha\n\n  beta  \n")
	commands := writeFile(t, dir, "commands.txt", "ai\n# external\n./bot --fast\n")

	roster, err := LoadRoster(names, commands)

	require.NoError(t, err)
	require.Equal(t, Roster{{Name: "alpha", Command: "ai"}, {Name: "beta", Command: "./bot --fast"}}, roster)
	require.Equal(t, []string{"alpha", "beta"}, roster.Names())

	t.Run("mismatched files", func(t *testing.T) {
		short := writeFile(t, dir, "short.txt", "ai\n")
		_, err := LoadRoster(names, short)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRoster(filepath.Join(dir, "nope.txt"), commands)
		require.Error(t, err)
	})
}

func TestAgentFactory(t *testing.T) {
	f := NewAgentFactory()

	require.IsType(t, &player.Heuristic{}, f.New(Entry{Name: "bot", Command: "ai"}))
	human := f.New(Entry{Name: "me", Command: "human"})
	require.IsType(t, &player.Human{}, human)
	require.Same(t, human, f.New(Entry{Name: "you", Command: "human"}), "Human seats should share the console")

	bridge, ok := f.New(Entry{Name: "ext", Command: "./bot"}).(*communication.Bridge)
	require.True(t, ok)
	require.Equal(t, "./bot", bridge.Command())
	require.NoError(t, bridge.Close())
}

func TestStoreResults(t *testing.T) {
	catalog := game.NewStandardCatalog()
	duel, _ := catalog.Scenario("duel")
	e := NewEvaluation(catalog, duel, testRoster(), WithMaxTurns(1), WithAgentFactory(testFactory))
	scores, err := e.Play(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	sinks := ResultSinks{Dir: filepath.Join(dir, "results"), SQLite: filepath.Join(dir, "results.db")}
	require.NoError(t, StoreResults(sinks, testRoster(), scores, e.Records()))

	matches, err := filepath.Glob(filepath.Join(dir, "results", "*", "scores.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	_, err = os.Stat(filepath.Join(dir, "results.db"))
	require.NoError(t, err)

	require.NoError(t, StoreResults(ResultSinks{}, testRoster(), scores, e.Records()), "No sinks is not an error")
}
