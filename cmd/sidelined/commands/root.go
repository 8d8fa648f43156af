package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fortuna/sidelined/internal/config"
	"github.com/fortuna/sidelined/internal/pipeline"
	"github.com/fortuna/sidelined/internal/report"
	"github.com/spf13/cobra"
)

const (
	appName    = "sidelined"
	appVersion = "1.0.0"
)

var (
	cfg *config.Config

	dsnFlag       string
	redisURLFlag  string
	fetchModeFlag string
	timeoutFlag   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "sidelined [season] [out.csv]",
	Short: "sidelined estimates the wins each NBA team lost to injury.",
	Long: `sidelined scrapes games missed from Spotrac and per-minute value from
Basketball-Reference, splits each player's missed games across their team
stints by minutes played, and totals the wins lost per team.

With no output path the table is printed; with one it is written as CSV.`,
	Args:              cobra.MaximumNArgs(2),
	Version:           appVersion,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runWinsLost,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dsnFlag, "dsn", "", "Postgres DSN; also stores the result")
	flags.StringVar(&redisURLFlag, "redis-url", "", "Redis URL; also publishes the result to a stream")
	flags.StringVar(&fetchModeFlag, "fetch-mode", "", "page fetcher: http or browser")
	flags.DurationVar(&timeoutFlag, "timeout", 0, "per-request timeout")
}

// ExecuteContext runs the CLI and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers command-line flags over config.Load.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dsn") {
		loaded.AtlasDSN = dsnFlag
	}
	if flags.Changed("redis-url") {
		loaded.RedisURL = redisURLFlag
	}
	if flags.Changed("fetch-mode") {
		loaded.FetchMode = fetchModeFlag
	}
	if flags.Changed("timeout") {
		loaded.HTTPTimeout = timeoutFlag
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// parseSeason reads a four-digit end year, falling back to the configured or
// current season when arg is empty.
func parseSeason(arg string) (int, error) {
	if arg == "" {
		return cfg.SeasonAt(time.Now()), nil
	}
	season, err := strconv.Atoi(arg)
	if err != nil || season < 1947 {
		return 0, fmt.Errorf("season %q must be a four-digit end year such as 2025", arg)
	}
	return season, nil
}

func runWinsLost(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var seasonArg, outPath string
	if len(args) > 0 {
		seasonArg = args[0]
	}
	if len(args) > 1 {
		outPath = args[1]
	}

	season, err := parseSeason(seasonArg)
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	archives, err := a.archiveSinks(ctx)
	if err != nil {
		return err
	}

	reporter := pipeline.NewLogReporter(nil)
	result, err := a.runner.Run(ctx, season, reporter)
	if err != nil {
		return err
	}

	var sinks []pipeline.Sink
	if outPath != "" {
		sinks = append(sinks, report.NewCSVFile(outPath))
	} else {
		sinks = append(sinks, report.NewConsole(cmd.OutOrStdout()))
	}
	sinks = append(sinks, archives...)

	if err := a.runner.Emit(ctx, result, reporter, sinks...); err != nil {
		return err
	}

	if outPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote results to %s (%d teams).\n", outPath, len(result.Teams))
	}
	return nil
}
