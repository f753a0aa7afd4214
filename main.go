package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"territory/communication"
	"territory/config"
	"territory/engine"
	"territory/experiments"
	"territory/experiments/metrics"
	"territory/game"
	"territory/logging"
	"territory/replay"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

const usage = `usage: territory [flags] <command> [file]

commands:
  evaluate             play one scenario with the roster
  tournament <file>    play every scenario listed in file
  replay <file>        replay a recorded game

flags:
`

type options struct {
	configDir string
	names     string
	commands  string
	scenario  string
	all       bool
	seats     int
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("territory failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	flags := pflag.NewFlagSet("territory", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	flags.StringVar(&opts.configDir, "config", ".", "directory containing territory.yaml")
	flags.StringVar(&opts.names, "names", "players.txt", "file with one player name per line")
	flags.StringVar(&opts.commands, "commands", "commands.txt", "file with one player command per line")
	flags.StringVar(&opts.scenario, "scenario", "standard", "scenario id to evaluate or to take replay rules from")
	flags.BoolVar(&opts.all, "all", false, "play every seating of every subset of the roster")
	flags.IntVar(&opts.seats, "seats", 0, "players per game (default: as many as the scenario allows)")
	flags.String("log-level", "info", "log level")
	flags.String("log-file", "", "also write logs to this file")
	flags.String("catalog", "", "YAML file with extra unit types and scenarios")
	flags.Int("max-turns", engine.DefaultMaxTurns, "turn limit per game")
	flags.String("results-dir", "results", "directory for CSV results (empty disables)")
	flags.String("sqlite", "", "SQLite database collecting results (empty disables)")
	flags.String("replay-dir", "", "directory for game replays (empty disables)")
	flags.Bool("metrics", false, "export OTel counters")
	flags.String("metrics-file", "", "file receiving exported counters (default: stdout)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	for key, flag := range map[string]string{
		"logLevel":        "log-level",
		"logFile":         "log-file",
		"catalog":         "catalog",
		"game.maxTurns":   "max-turns",
		"results.dir":     "results-dir",
		"results.sqlite":  "sqlite",
		"replay.dir":      "replay-dir",
		"metrics.enabled": "metrics",
		"metrics.file":    "metrics-file",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	if err := config.Load(opts.configDir); err != nil {
		return err
	}
	settings, err := config.Get()
	if err != nil {
		return err
	}

	closeLog, err := logging.Setup(settings.LogLevel, os.Stderr, settings.LogFile)
	if err != nil {
		log.Error().Err(err).Msg("logging to console only")
	}
	defer closeLog()

	catalog := game.NewStandardCatalog()
	if settings.Catalog != "" {
		skipped, err := config.LoadCatalog(settings.Catalog, catalog)
		if err != nil {
			log.Error().Err(err).Msg("using the standard catalog")
		} else if skipped > 0 {
			log.Warn().Int("skipped", skipped).Msg("catalog loaded with errors")
		}
	}

	if settings.Metrics.Enabled {
		shutdown, err := setupMetrics(settings.Metrics)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return fmt.Errorf("missing command")
	}
	switch rest[0] {
	case "evaluate":
		return evaluate(ctx, settings, catalog, opts)
	case "tournament":
		if len(rest) < 2 {
			return fmt.Errorf("tournament needs a scenario file")
		}
		return tournament(ctx, settings, catalog, opts, rest[1])
	case "replay":
		if len(rest) < 2 {
			return fmt.Errorf("replay needs a replay file")
		}
		return replayGame(ctx, settings, catalog, opts, rest[1])
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

// setupMetrics installs an SDK meter provider as the global one so the
// counters of every package are exported.
func setupMetrics(cfg config.MetricsConfig) (func(), error) {
	out := io.Writer(os.Stdout)
	var file *os.File
	if cfg.File != "" {
		f, err := os.Create(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics file: %w", err)
		}
		out, file = f, f
	}
	provider, err := metrics.NewMeterProvider(out, cfg.Interval)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}
	otel.SetMeterProvider(provider)
	log.Info().Str("file", cfg.File).Dur("interval", cfg.Interval).Msg("exporting metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("failed to flush metrics")
		}
		if file != nil {
			file.Close()
		}
	}, nil
}

func evaluationOptions(settings config.Settings, opts options) []experiments.Option {
	factory := experiments.NewAgentFactory(
		communication.WithTimeouts(settings.Bridge.ShortTimeout, settings.Bridge.LongTimeout),
		communication.WithTimeoutBudget(settings.Bridge.TimeoutBudget),
		communication.WithKillGrace(settings.Bridge.KillGrace),
		communication.WithStderrLines(settings.Bridge.StderrMaxLines),
		communication.WithQueueSize(settings.Bridge.QueueSize),
	)
	factory.HumanToken = settings.Roster.HumanToken
	factory.AIToken = settings.Roster.AIToken

	evalOpts := []experiments.Option{
		experiments.WithMaxTurns(settings.Game.MaxTurns),
		experiments.WithReplayDir(settings.Replay.Dir),
		experiments.WithAgentFactory(factory.New),
	}
	if opts.all {
		evalOpts = append(evalOpts, experiments.WithAllCombinations())
	}
	if opts.seats > 0 {
		evalOpts = append(evalOpts, experiments.WithSeats(opts.seats))
	}
	return evalOpts
}

func evaluate(ctx context.Context, settings config.Settings, catalog *game.Catalog, opts options) error {
	roster, err := experiments.LoadRoster(opts.names, opts.commands)
	if err != nil {
		return err
	}
	scenario, ok := catalog.Scenario(opts.scenario)
	if !ok {
		return fmt.Errorf("%w: %s", experiments.ErrUnknownScenario, opts.scenario)
	}

	e := experiments.NewEvaluation(catalog, scenario, roster, evaluationOptions(settings, opts)...)
	scores, playErr := e.Play(ctx)
	report(roster, scores)
	if err := storeResults(settings, roster, scores, e.Records()); err != nil {
		return err
	}
	return playErr
}

func tournament(ctx context.Context, settings config.Settings, catalog *game.Catalog, opts options, path string) error {
	roster, err := experiments.LoadRoster(opts.names, opts.commands)
	if err != nil {
		return err
	}
	ids, err := experiments.LoadScenarioIDs(path)
	if err != nil {
		return err
	}

	t := experiments.NewTournament(catalog, roster, ids, evaluationOptions(settings, opts)...)
	totals, playErr := t.Play(ctx)
	report(roster, totals)
	if err := storeResults(settings, roster, totals, t.Records()); err != nil {
		return err
	}
	return playErr
}

func storeResults(settings config.Settings, roster experiments.Roster, scores []int, records []metrics.GameRecord) error {
	return experiments.StoreResults(experiments.ResultSinks{
		Dir:    settings.Results.Dir,
		SQLite: settings.Results.SQLite,
	}, roster, scores, records)
}

func report(roster experiments.Roster, scores []int) {
	for i, e := range roster {
		score := 0
		if i < len(scores) {
			score = scores[i]
		}
		log.Info().Int("index", i).Str("player", e.Name).Int("score", score).Msg("result")
	}
}

func replayGame(ctx context.Context, settings config.Settings, catalog *game.Catalog, opts options, path string) error {
	rec, err := replay.Open(path, catalog)
	if err != nil {
		return err
	}
	base, ok := catalog.Scenario(opts.scenario)
	if !ok {
		return fmt.Errorf("%w: %s", experiments.ErrUnknownScenario, opts.scenario)
	}
	c, replayers, err := replay.Rebuild(rec, catalog, base)
	if err != nil {
		return err
	}
	result, err := c.Run(ctx)
	if err != nil {
		return err
	}

	rejected := 0
	for _, r := range replayers {
		rejected += r.Rejected()
	}
	survivors := make([]string, len(result.Survivors))
	for i, seat := range result.Survivors {
		survivors[i] = rec.Names[seat]
	}
	log.Info().
		Int("turns", result.Turns).
		Str("survivors", strings.Join(survivors, ", ")).
		Int("rejected", rejected).
		Msg("replay finished")
	return nil
}
