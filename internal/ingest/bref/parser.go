package bref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/sidelined/internal/model"
	"github.com/fortuna/sidelined/internal/reconciliation"
	"golang.org/x/net/html"
)

const advancedTableSelector = `table[id^="advanced"]`

// data-stat attributes of the Advanced table cells
const (
	statPlayer  = "name_display"
	statTeam    = "team_name_abbr"
	statGames   = "games"
	statMinutes = "mp"
	statWS48    = "ws_per_48"
	statVORP    = "vorp"
)

// ParseStats counts the rows ParseAdvanced left out.
type ParseStats struct {
	Combined  int
	Malformed int
}

// ParseAdvanced extracts one stint per (player, team) row. Header repeats,
// the league-average row and combined-team rows are dropped.
func ParseAdvanced(doc *goquery.Document) ([]model.PerformanceStint, ParseStats, error) {
	var stats ParseStats

	table, err := findAdvancedTable(doc)
	if err != nil {
		return nil, stats, err
	}

	var stints []model.PerformanceStint
	candidates := 0

	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("norank") {
			return
		}
		nameCell := statCell(tr, statPlayer)
		if nameCell.Length() == 0 {
			return
		}

		team := reconciliation.NormalizeTeam(statText(tr, statTeam))
		if reconciliation.IsCombinedTeam(team) {
			stats.Combined++
			return
		}
		candidates++

		stint, err := parseStint(strings.TrimSpace(nameCell.Text()), team, tr)
		if err != nil {
			stats.Malformed++
			return
		}
		stints = append(stints, stint)
	})

	if candidates == 0 {
		return nil, stats, &model.SchemaDriftError{Source: "bref", Reason: "advanced table has no player rows"}
	}
	if len(stints) == 0 {
		return nil, stats, fmt.Errorf("bref: %w", model.ErrMalformedInput)
	}

	return stints, stats, nil
}

func parseStint(rawName, team string, tr *goquery.Selection) (model.PerformanceStint, error) {
	player := reconciliation.NormalizeName(rawName)
	if player == "" || team == "" {
		return model.PerformanceStint{}, fmt.Errorf("missing player or team")
	}

	games, err := strconv.Atoi(statText(tr, statGames))
	if err != nil {
		return model.PerformanceStint{}, fmt.Errorf("%s games: %w", player, err)
	}
	minutes, err := strconv.Atoi(statText(tr, statMinutes))
	if err != nil {
		return model.PerformanceStint{}, fmt.Errorf("%s minutes: %w", player, err)
	}
	if games < 0 || minutes < 0 {
		return model.PerformanceStint{}, fmt.Errorf("%s: negative games or minutes", player)
	}

	ws48, err := optionalFloat(statText(tr, statWS48))
	if err != nil {
		return model.PerformanceStint{}, fmt.Errorf("%s ws/48: %w", player, err)
	}
	vorp, err := optionalFloat(statText(tr, statVORP))
	if err != nil {
		return model.PerformanceStint{}, fmt.Errorf("%s vorp: %w", player, err)
	}

	return model.PerformanceStint{
		Player:  player,
		RawName: rawName,
		Team:    team,
		Games:   games,
		Minutes: minutes,
		WS48:    ws48,
		VORP:    vorp,
	}, nil
}

// findAdvancedTable looks for the table in the live DOM first, then inside
// HTML comments, where the site sometimes ships secondary tables.
func findAdvancedTable(doc *goquery.Document) (*goquery.Selection, error) {
	if table := doc.Find(advancedTableSelector).First(); table.Length() > 0 {
		return table, nil
	}

	for _, comment := range commentTexts(doc.Nodes) {
		if !strings.Contains(comment, "table") {
			continue
		}
		sub, err := goquery.NewDocumentFromReader(strings.NewReader(comment))
		if err != nil {
			continue
		}
		if table := sub.Find(advancedTableSelector).First(); table.Length() > 0 {
			return table, nil
		}
	}

	return nil, &model.SchemaDriftError{Source: "bref", Reason: "advanced stats table not found"}
}

func commentTexts(nodes []*html.Node) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func statCell(tr *goquery.Selection, stat string) *goquery.Selection {
	return tr.Find(fmt.Sprintf(`td[data-stat="%s"]`, stat)).First()
}

func statText(tr *goquery.Selection, stat string) string {
	return strings.TrimSpace(statCell(tr, stat).Text())
}

// optionalFloat treats a blank cell as zero.
func optionalFloat(text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	return strconv.ParseFloat(text, 64)
}
