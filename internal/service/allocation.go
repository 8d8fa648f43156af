package service

import (
	"fmt"
	"log"
	"sort"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/fortuna/sidelined/internal/reconciliation"
)

// AllocationService turns injury and performance records into per-team wins
// lost. A player's missed games are split across their team stints by share
// of minutes played, then valued at the stint's per-minute WAR rate times its
// minutes per game.
type AllocationService struct {
	logger *log.Logger
}

// NewAllocationService creates the engine.
func NewAllocationService(logger *log.Logger) *AllocationService {
	if logger == nil {
		logger = log.New(log.Writer(), "[allocate] ", log.LstdFlags)
	}
	return &AllocationService{logger: logger}
}

// Compute joins injuries onto stints and returns team totals sorted by wins
// lost, descending. Result.Season and Result.ComputedAt are left to the caller.
func (s *AllocationService) Compute(injuries []model.InjuryRecord, stints []model.PerformanceStint) (*model.Result, error) {
	valid, skipped := s.usableStints(stints)
	if len(stints) > 0 && skipped == len(stints) {
		return nil, fmt.Errorf("performance stints: %w", model.ErrMalformedInput)
	}

	gamesMissed, skippedInjuries := collapseInjuries(injuries)
	skipped += skippedInjuries

	totalMinutes := make(map[string]int)
	for _, st := range valid {
		totalMinutes[st.Player] += st.Minutes
	}

	losses := make([]model.StintLoss, 0, len(valid))
	for _, st := range valid {
		losses = append(losses, allocateStint(st, totalMinutes[st.Player], gamesMissed[st.Player]))
	}

	matcher := reconciliation.NewMatcher(valid, s.logger)
	gaps := matcher.FindGaps(injuries)

	if skipped > 0 {
		s.logger.Printf("⚠️  Skipped %d malformed records", skipped)
	}

	return &model.Result{
		Teams:   AggregateTeams(losses),
		Stints:  losses,
		Gaps:    gaps,
		Skipped: skipped,
	}, nil
}

// usableStints drops stints missing an identity or team, and any combined-team
// row that slipped past the source.
func (s *AllocationService) usableStints(stints []model.PerformanceStint) ([]model.PerformanceStint, int) {
	valid := make([]model.PerformanceStint, 0, len(stints))
	skipped := 0

	for _, st := range stints {
		if st.Player == "" || st.Team == "" || st.Minutes < 0 || st.Games < 0 {
			skipped++
			continue
		}
		if reconciliation.IsCombinedTeam(st.Team) {
			s.logger.Printf("Dropping combined-team row %s/%s", st.Player, st.Team)
			continue
		}
		valid = append(valid, st)
	}

	return valid, skipped
}

type injuryKey struct {
	player      string
	team        string
	gamesMissed int
	daysMissed  int
}

// collapseInjuries reduces injury rows to one games-missed total per player.
// Identical rows count once; distinct rows for the same player are summed.
func collapseInjuries(injuries []model.InjuryRecord) (map[string]int, int) {
	games := make(map[string]int, len(injuries))
	seen := make(map[injuryKey]bool, len(injuries))
	skipped := 0

	for _, inj := range injuries {
		if inj.Player == "" || inj.GamesMissed < 0 {
			skipped++
			continue
		}
		key := injuryKey{inj.Player, inj.Team, inj.GamesMissed, inj.DaysMissed}
		if seen[key] {
			continue
		}
		seen[key] = true
		games[inj.Player] += inj.GamesMissed
	}

	return games, skipped
}

func allocateStint(st model.PerformanceStint, totalMinutes, gamesMissed int) model.StintLoss {
	share := safeDiv(float64(st.Minutes), float64(totalMinutes))
	allocated := float64(gamesMissed) * share

	loss := model.StintLoss{
		Player:               st.Player,
		Team:                 st.Team,
		Minutes:              st.Minutes,
		TotalMinutes:         totalMinutes,
		MinutesShare:         share,
		GamesMissed:          gamesMissed,
		AllocatedGamesMissed: allocated,
	}

	rate, rateOK := st.WARPerMinute()
	mpg, mpgOK := st.MPG()
	if rateOK && mpgOK {
		loss.WARPerMinute = rate
		loss.MPG = mpg
		loss.WinsLost = rate * mpg * allocated
	}

	return loss
}

// AggregateTeams sums stint losses per team, rounds to two decimals and sorts
// by wins lost descending. Teams are grouped in alphabetical order, which is
// the tie-break order since the sort is stable.
func AggregateTeams(losses []model.StintLoss) []model.TeamLoss {
	totals := make(map[string]float64)
	for _, l := range losses {
		totals[l.Team] += l.WinsLost
	}

	teams := make([]string, 0, len(totals))
	for team := range totals {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	out := make([]model.TeamLoss, 0, len(teams))
	for _, team := range teams {
		out = append(out, model.TeamLoss{Team: team, WinsLost: round2(totals[team])})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WinsLost > out[j].WinsLost
	})

	return out
}
