package commands

import (
	"github.com/fortuna/sidelined/internal/report"
	"github.com/spf13/cobra"
)

func init() {
	scrapeCmd.AddCommand(scrapeInjuriesCmd, scrapePerformanceCmd)
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Dumps one data source for a season as CSV on stdout.",
}

var scrapeInjuriesCmd = &cobra.Command{
	Use:   "injuries [season]",
	Short: "Scrapes the Spotrac injury table.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := parseSeason(firstArg(args))
		if err != nil {
			return err
		}

		a, err := buildApp(cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.injuries.FetchSeason(cmd.Context(), season)
		if err != nil {
			return err
		}
		return report.WriteInjuriesCSV(cmd.OutOrStdout(), records)
	},
}

var scrapePerformanceCmd = &cobra.Command{
	Use:   "performance [season]",
	Short: "Scrapes the Basketball-Reference advanced table, one row per team stint.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		season, err := parseSeason(firstArg(args))
		if err != nil {
			return err
		}

		a, err := buildApp(cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		stints, err := a.performance.FetchSeason(cmd.Context(), season)
		if err != nil {
			return err
		}
		return report.WriteStintsCSV(cmd.OutOrStdout(), stints)
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
