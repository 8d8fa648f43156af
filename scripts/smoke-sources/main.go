package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/fortuna/sidelined/internal/ingest"
	"github.com/fortuna/sidelined/internal/ingest/bref"
	"github.com/fortuna/sidelined/internal/ingest/spotrac"
	"github.com/fortuna/sidelined/internal/model"
	"github.com/fortuna/sidelined/internal/reconciliation"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Smoke test against the live sites: fetch both sources for a season and
// list injured players the join will miss.
func main() {
	season := flag.Int("season", model.CurrentSeason(time.Now()), "season end year")
	mode := flag.String("mode", string(ingest.FetchModeHTTP), "fetch mode: http or browser")
	flag.Parse()

	log.Printf("Testing data sources for %s", model.SeasonLabel(*season))
	log.Println("===============================")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fetcher, closeFetcher, err := ingest.NewFetcher(ingest.FetchMode(*mode), ingest.DefaultTimeout, ingest.UserAgent, nil)
	if err != nil {
		log.Fatalf("Failed to create fetcher: %v", err)
	}
	defer closeFetcher()

	log.Println("\n1. Fetching injuries...")
	injuries, err := spotrac.New(fetcher, "", nil).FetchSeason(ctx, *season)
	if err != nil {
		log.Fatalf("❌ Injuries: %v", err)
	}
	log.Printf("✓ %d injury records", len(injuries))

	log.Println("\n2. Fetching performance...")
	stints, err := bref.New(fetcher, "", nil).FetchSeason(ctx, *season)
	if err != nil {
		log.Fatalf("❌ Performance: %v", err)
	}
	log.Printf("✓ %d team stints", len(stints))

	log.Println("\n3. Checking the join...")
	gaps := reconciliation.NewMatcher(stints, nil).FindGaps(injuries)
	if len(gaps) == 0 {
		log.Println("✓ Every injured player has a stint")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Player", "Team", "Games", "Closest"})
	for _, g := range gaps {
		t.AppendRow(table.Row{g.Player, g.Team, g.GamesMissed, g.Suggestion})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	log.Printf("⚠️  %d injured players have no stint", len(gaps))
}
