package commands

import (
	"fmt"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/fortuna/sidelined/internal/pipeline"
	"github.com/fortuna/sidelined/internal/report"
	"github.com/spf13/cobra"
)

var (
	publishInput  string
	publishImage  string
	publishSeason string
)

func init() {
	publishCmd.Flags().StringVar(&publishInput, "input", "", "team CSV to chart instead of running the pipeline")
	publishCmd.Flags().StringVar(&publishImage, "image", "wins_lost_table.png", "where to write the exported PNG")
	publishCmd.Flags().StringVar(&publishSeason, "season", "", "season end year (default: current season)")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish [--input <teams.csv>] [--image <out.png>] [--season <year>]",
	Short: "Publishes the wins-lost table as a Datawrapper chart and exports it as PNG.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		season, err := parseSeason(publishSeason)
		if err != nil {
			return err
		}

		client, err := report.NewDatawrapperClient(cfg.DatawrapperAPIKey, cfg.DatawrapperAPIURL, cfg.DatawrapperByline, cfg.HTTPTimeout, nil)
		if err != nil {
			return err
		}

		reporter := pipeline.NewLogReporter(nil)
		runner := pipeline.NewRunner(nil, nil, nil, nil)

		var result *model.Result
		if publishInput != "" {
			teams, err := report.ReadCSV(publishInput)
			if err != nil {
				return err
			}
			reporter.Logger.Printf("Loaded %d teams from %s", len(teams), publishInput)
			result = &model.Result{Season: season, Teams: teams}
		} else {
			a, err := buildApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			runner = a.runner
			result, err = runner.Run(ctx, season, reporter)
			if err != nil {
				return err
			}
		}

		chart := report.NewDatawrapperSink(client, publishImage)
		if err := runner.Emit(ctx, result, reporter, chart); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Public URL: %s\n", chart.PublicURL())
		fmt.Fprintf(cmd.OutOrStdout(), "Image saved to %s\n", publishImage)
		return nil
	},
}
