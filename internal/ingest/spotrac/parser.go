package spotrac

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/sidelined/internal/model"
	"github.com/fortuna/sidelined/internal/reconciliation"
)

// minCells is the number of cells a real injury row carries; header rows and
// ad slots have fewer.
const minCells = 8

// Column positions in the player view.
const (
	colRank = iota
	colPlayer
	colPosition
	colTeam
	colInjury
	colGamesMissed
	colDaysMissed
	colCash
)

// the team cell holds a logo <img> followed by the abbreviation
var teamAbbrPattern = regexp.MustCompile(`[A-Z]{2,3}$`)

// ParseInjuries extracts injury rows from the tracker page. It returns the
// records, the number of candidate rows that were skipped as malformed, and an
// error when the table is missing or no row could be parsed.
func ParseInjuries(doc *goquery.Document) ([]model.InjuryRecord, int, error) {
	rows := doc.Find("table tbody tr")
	if rows.Length() == 0 {
		return nil, 0, &model.SchemaDriftError{Source: "spotrac", Reason: "injury table rows not found"}
	}

	var records []model.InjuryRecord
	candidates, skipped := 0, 0

	rows.Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < minCells {
			return
		}
		rank, err := strconv.Atoi(cellText(tds.Eq(colRank)))
		if err != nil {
			// header repeats carry "Rank" here
			return
		}
		candidates++

		record, err := parseRow(rank, tds)
		if err != nil {
			skipped++
			return
		}
		records = append(records, record)
	})

	if candidates == 0 {
		return nil, 0, &model.SchemaDriftError{Source: "spotrac", Reason: "no ranked injury rows in table"}
	}
	if len(records) == 0 {
		return nil, skipped, fmt.Errorf("spotrac: %w", model.ErrMalformedInput)
	}

	return records, skipped, nil
}

func parseRow(rank int, tds *goquery.Selection) (model.InjuryRecord, error) {
	rawName := cellText(tds.Eq(colPlayer))
	player := reconciliation.NormalizeName(rawName)
	if player == "" {
		return model.InjuryRecord{}, fmt.Errorf("row %d: empty player", rank)
	}

	teamText := strings.Join(strings.Fields(tds.Eq(colTeam).Text()), "")
	team := teamAbbrPattern.FindString(teamText)
	if team == "" {
		return model.InjuryRecord{}, fmt.Errorf("row %d: no team abbreviation in %q", rank, teamText)
	}

	gamesMissed, err := parseCount(cellText(tds.Eq(colGamesMissed)))
	if err != nil {
		return model.InjuryRecord{}, fmt.Errorf("row %d: games missed: %w", rank, err)
	}
	daysMissed, err := parseCount(cellText(tds.Eq(colDaysMissed)))
	if err != nil {
		return model.InjuryRecord{}, fmt.Errorf("row %d: days missed: %w", rank, err)
	}

	record := model.InjuryRecord{
		Player:        player,
		RawName:       rawName,
		Rank:          rank,
		Team:          team,
		Position:      cellText(tds.Eq(colPosition)),
		InjuryDetails: injuryDetails(tds.Eq(colInjury)),
		GamesMissed:   gamesMissed,
		DaysMissed:    daysMissed,
	}

	if cash, ok := parseCash(cellText(tds.Eq(colCash))); ok {
		record.CashTotal = &cash
	}

	return record, nil
}

// injuryDetails joins each injury entry (one <div> per stint on the list).
func injuryDetails(cell *goquery.Selection) string {
	var parts []string
	cell.Find("div").Each(func(_ int, div *goquery.Selection) {
		if text := strings.Join(strings.Fields(div.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " | ")
}

func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func parseCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

func parseCash(text string) (int64, bool) {
	text = strings.NewReplacer("$", "", ",", "").Replace(text)
	cash, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, false
	}
	return cash, true
}
