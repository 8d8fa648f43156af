package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/fortuna/sidelined/internal/model"
)

var teamHeader = []string{"team", "wins_lost"}

// CSVFile writes the team table to a file.
type CSVFile struct {
	path string
}

// NewCSVFile creates a sink writing to path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (f *CSVFile) Name() string {
	return "csv"
}

func (f *CSVFile) Path() string {
	return f.path
}

func (f *CSVFile) Write(_ context.Context, result *model.Result) error {
	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, result.Teams); err != nil {
		return err
	}
	return file.Close()
}

// WriteCSV writes team,wins_lost rows with two-decimal values.
func WriteCSV(w io.Writer, teams []model.TeamLoss) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(teamHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range teams {
		if err := cw.Write([]string{t.Team, strconv.FormatFloat(t.WinsLost, 'f', 2, 64)}); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.Team, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV returns the CSV encoding of teams.
func EncodeCSV(teams []model.TeamLoss) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, teams); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadCSV loads a file written by WriteCSV. A missing file is
// ErrInputFileMissing.
func ReadCSV(path string) ([]model.TeamLoss, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, model.ErrInputFileMissing)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return ParseCSV(file)
}

// ParseCSV reads team,wins_lost rows. Column order follows the header.
func ParseCSV(r io.Reader) ([]model.TeamLoss, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	teamCol, winsCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "team":
			teamCol = i
		case "wins_lost":
			winsCol = i
		}
	}
	if teamCol < 0 || winsCol < 0 {
		return nil, fmt.Errorf("csv header %v lacks team,wins_lost: %w", header, model.ErrMalformedInput)
	}

	var teams []model.TeamLoss
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		wins, err := strconv.ParseFloat(strings.TrimSpace(row[winsCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse wins_lost for %s: %w", row[teamCol], err)
		}
		teams = append(teams, model.TeamLoss{Team: strings.TrimSpace(row[teamCol]), WinsLost: wins})
	}

	return teams, nil
}

// WriteInjuriesCSV dumps injury records, one per row.
func WriteInjuriesCSV(w io.Writer, records []model.InjuryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "player", "team", "position", "injury_details", "games_missed", "days_missed", "cash_total"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		cash := ""
		if r.CashTotal != nil {
			cash = strconv.FormatInt(*r.CashTotal, 10)
		}
		if err := cw.Write([]string{
			strconv.Itoa(r.Rank),
			r.RawName,
			r.Team,
			r.Position,
			r.InjuryDetails,
			strconv.Itoa(r.GamesMissed),
			strconv.Itoa(r.DaysMissed),
			cash,
		}); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.RawName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStintsCSV dumps performance stints with their derived rates. Undefined
// rates are left empty.
func WriteStintsCSV(w io.Writer, stints []model.PerformanceStint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"player", "team", "g", "mp", "ws_48", "vorp", "war", "war_per_minute", "mpg"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range stints {
		rate, mpg := "", ""
		if v, ok := s.WARPerMinute(); ok {
			rate = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if v, ok := s.MPG(); ok {
			mpg = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write([]string{
			s.RawName,
			s.Team,
			strconv.Itoa(s.Games),
			strconv.Itoa(s.Minutes),
			strconv.FormatFloat(s.WS48, 'f', -1, 64),
			strconv.FormatFloat(s.VORP, 'f', -1, 64),
			strconv.FormatFloat(s.WAR(), 'f', -1, 64),
			rate,
			mpg,
		}); err != nil {
			return fmt.Errorf("write csv row %s/%s: %w", s.RawName, s.Team, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
