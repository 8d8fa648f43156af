// Package report renders a result for people: a console table, a CSV file and
// a hosted Datawrapper chart.
package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Console prints the team table.
type Console struct {
	out io.Writer
}

// NewConsole writes to out, or stdout when out is nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Name() string {
	return "console"
}

func (c *Console) Write(_ context.Context, result *model.Result) error {
	RenderTable(c.out, result.Season, result.Teams)
	return nil
}

// RenderTable writes the heading and a TEAM / WINS LOST table to w.
func RenderTable(w io.Writer, season int, teams []model.TeamLoss) {
	fmt.Fprintf(w, "\nNBA %d — Wins Lost to Injury\n\n", season)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Team", "Wins Lost"})

	for _, team := range teams {
		t.AppendRow(table.Row{team.Team, fmt.Sprintf("%.2f", team.WinsLost)})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
