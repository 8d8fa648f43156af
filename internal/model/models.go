package model

import "time"

// Sport identifies the league every record in this repository belongs to.
const Sport = "basketball_nba"

// InjuryRecord is one player's injury line for a season, as reported by the
// injury tracker.
type InjuryRecord struct {
	Player        string `json:"player"`
	RawName       string `json:"raw_name"`
	Rank          int    `json:"rank"`
	Team          string `json:"team"`
	Position      string `json:"position,omitempty"`
	InjuryDetails string `json:"injury_details,omitempty"`
	GamesMissed   int    `json:"games_missed"`
	DaysMissed    int    `json:"days_missed"`
	CashTotal     *int64 `json:"cash_total,omitempty"`
}

// PerformanceStint is a player's advanced line for a single team in a season.
// Players traded mid-season have one stint per team.
type PerformanceStint struct {
	Player  string  `json:"player"`
	RawName string  `json:"raw_name"`
	Team    string  `json:"team"`
	Games   int     `json:"games"`
	Minutes int     `json:"minutes"`
	WS48    float64 `json:"ws48"`
	VORP    float64 `json:"vorp"`
}

// WARPerVORP converts value over replacement player into wins above replacement.
const WARPerVORP = 2.7

// WAR returns wins above replacement for the stint.
func (s PerformanceStint) WAR() float64 {
	return s.VORP * WARPerVORP
}

// WARPerMinute returns the stint's per-minute value rate. ok is false when the
// stint has no minutes.
func (s PerformanceStint) WARPerMinute() (rate float64, ok bool) {
	if s.Minutes <= 0 {
		return 0, false
	}
	return s.WAR() / float64(s.Minutes), true
}

// MPG returns minutes per game. ok is false when the stint has no games.
func (s PerformanceStint) MPG() (mpg float64, ok bool) {
	if s.Games <= 0 {
		return 0, false
	}
	return float64(s.Minutes) / float64(s.Games), true
}

// TeamLoss is the output row: estimated wins a team lost to injury.
type TeamLoss struct {
	Team     string  `json:"team"`
	WinsLost float64 `json:"wins_lost"`
}

// StintLoss is the per-stint breakdown behind a TeamLoss.
type StintLoss struct {
	Player               string  `json:"player"`
	Team                 string  `json:"team"`
	Minutes              int     `json:"minutes"`
	TotalMinutes         int     `json:"total_minutes"`
	MinutesShare         float64 `json:"minutes_share"`
	MPG                  float64 `json:"mpg"`
	WARPerMinute         float64 `json:"war_per_minute"`
	GamesMissed          int     `json:"games_missed"`
	AllocatedGamesMissed float64 `json:"allocated_games_missed"`
	WinsLost             float64 `json:"wins_lost"`
}

// JoinGap records an injured player with no stint to allocate against.
type JoinGap struct {
	Player      string `json:"player"`
	Team        string `json:"team"`
	GamesMissed int    `json:"games_missed"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// Result is everything one pipeline run produces.
type Result struct {
	Season     int         `json:"season"`
	Teams      []TeamLoss  `json:"teams"`
	Stints     []StintLoss `json:"stints,omitempty"`
	Gaps       []JoinGap   `json:"join_gaps,omitempty"`
	Skipped    int         `json:"skipped"`
	ComputedAt time.Time   `json:"computed_at"`
}
