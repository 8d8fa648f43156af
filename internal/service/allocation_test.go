package service

import (
	"fmt"
	"io"
	"log"
	"math"
	"testing"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestService() *AllocationService {
	return NewAllocationService(log.New(io.Discard, "", 0))
}

func stintsFor(result *model.Result, player string) []model.StintLoss {
	var out []model.StintLoss
	for _, s := range result.Stints {
		if s.Player == player {
			out = append(out, s)
		}
	}
	return out
}

func TestComputeSplitsMissedGamesByMinutes(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "P", Team: "AAA", Games: 2, Minutes: 30, VORP: 1.0},
		{Player: "P", Team: "BBB", Games: 1, Minutes: 10, VORP: 0.5},
	}
	injuries := []model.InjuryRecord{{Player: "P", Team: "BBB", GamesMissed: 8}}

	result, err := newTestService().Compute(injuries, stints)
	require.NoError(t, err)

	p := stintsFor(result, "P")
	require.Len(t, p, 2)
	require.InDelta(t, 6.0, p[0].AllocatedGamesMissed, 1e-9)
	require.InDelta(t, 2.0, p[1].AllocatedGamesMissed, 1e-9)
	require.InDelta(t, 0.75, p[0].MinutesShare, 1e-9)
	require.InDelta(t, 0.25, p[1].MinutesShare, 1e-9)

	// AAA: 2.7/30 per minute * 15 mpg * 6 games; BBB: 1.35/10 * 10 * 2
	expected := []model.TeamLoss{
		{Team: "AAA", WinsLost: 8.1},
		{Team: "BBB", WinsLost: 2.7},
	}
	if diff := cmp.Diff(expected, result.Teams); diff != "" {
		t.Fatal(diff)
	}
}

func TestComputeSharesPartitionMissedGames(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "A", Team: "BOS", Games: 20, Minutes: 611, VORP: 0.4},
		{Player: "A", Team: "NYK", Games: 31, Minutes: 907, VORP: 1.1},
		{Player: "A", Team: "CHI", Games: 3, Minutes: 17, VORP: -0.1},
		{Player: "B", Team: "DEN", Games: 70, Minutes: 2571, VORP: 9.8},
		{Player: "C", Team: "UTA", Games: 12, Minutes: 250, VORP: 0.2},
		{Player: "C", Team: "SAS", Games: 40, Minutes: 1010, VORP: 0.9},
	}
	injuries := []model.InjuryRecord{
		{Player: "A", GamesMissed: 17},
		{Player: "B", GamesMissed: 12},
		{Player: "C", GamesMissed: 23},
	}

	result, err := newTestService().Compute(injuries, stints)
	require.NoError(t, err)

	for _, inj := range injuries {
		var shareSum, allocatedSum float64
		for _, s := range stintsFor(result, inj.Player) {
			shareSum += s.MinutesShare
			allocatedSum += s.AllocatedGamesMissed
		}
		require.InDelta(t, 1.0, shareSum, 1e-9, inj.Player)
		require.InDelta(t, float64(inj.GamesMissed), allocatedSum, 1e-9, inj.Player)
	}
}

func TestComputeZeroMinutePlayerAllocatesNothing(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "Z", Team: "BOS", Games: 0, Minutes: 0},
		{Player: "Z", Team: "MIA", Games: 1, Minutes: 0},
		{Player: "Y", Team: "MIA", Games: 10, Minutes: 100, VORP: 0.5},
	}
	injuries := []model.InjuryRecord{{Player: "Z", GamesMissed: 40}}

	result, err := newTestService().Compute(injuries, stints)
	require.NoError(t, err)

	for _, s := range stintsFor(result, "Z") {
		require.Zero(t, s.MinutesShare)
		require.Zero(t, s.AllocatedGamesMissed)
		require.Zero(t, s.WinsLost)
	}
	for _, team := range result.Teams {
		require.False(t, math.IsNaN(team.WinsLost), team.Team)
	}
}

func TestComputeUninjuredPlayerKeepsStints(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "Healthy", Team: "OKC", Games: 82, Minutes: 2800, VORP: 6},
	}

	result, err := newTestService().Compute(nil, stints)
	require.NoError(t, err)

	require.Len(t, result.Stints, 1)
	require.Zero(t, result.Stints[0].AllocatedGamesMissed)
	require.Equal(t, []model.TeamLoss{{Team: "OKC", WinsLost: 0}}, result.Teams)
}

func TestComputeInjuredOnlyPlayerIsExcluded(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "Real", Team: "PHX", Games: 10, Minutes: 300, VORP: 1},
	}
	injuries := []model.InjuryRecord{
		{Player: "Real", Team: "PHX", GamesMissed: 2},
		{Player: "Ghost", Team: "POR", GamesMissed: 60},
	}

	result, err := newTestService().Compute(injuries, stints)
	require.NoError(t, err)

	require.Len(t, result.Teams, 1)
	require.Equal(t, "PHX", result.Teams[0].Team)
	require.Len(t, result.Gaps, 1)
	require.Equal(t, "Ghost", result.Gaps[0].Player)
	require.Equal(t, 60, result.Gaps[0].GamesMissed)
}

func TestComputeConservesTotals(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "A", Team: "BOS", Games: 20, Minutes: 611, VORP: 0.4},
		{Player: "A", Team: "NYK", Games: 31, Minutes: 907, VORP: 1.1},
		{Player: "B", Team: "NYK", Games: 70, Minutes: 2100, VORP: 3.3},
		{Player: "C", Team: "BOS", Games: 40, Minutes: 1010, VORP: 0.9},
		{Player: "D", Team: "LAL", Games: 55, Minutes: 1900, VORP: -0.4},
	}
	injuries := []model.InjuryRecord{
		{Player: "A", GamesMissed: 17},
		{Player: "B", GamesMissed: 12},
		{Player: "C", GamesMissed: 23},
		{Player: "D", GamesMissed: 5},
	}

	result, err := newTestService().Compute(injuries, stints)
	require.NoError(t, err)

	var stintTotal, teamTotal float64
	for _, s := range result.Stints {
		stintTotal += s.WinsLost
	}
	for _, team := range result.Teams {
		teamTotal += team.WinsLost
	}
	// each team total is rounded to 0.01
	require.InDelta(t, stintTotal, teamTotal, 0.005*float64(len(result.Teams)))
}

func TestComputeDropsCombinedTeamRows(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "T", Team: "TOT", Games: 50, Minutes: 1500, VORP: 2},
		{Player: "T", Team: "ATL", Games: 20, Minutes: 500, VORP: 0.5},
		{Player: "T", Team: "CHA", Games: 30, Minutes: 1000, VORP: 1.5},
	}
	injuries := []model.InjuryRecord{{Player: "T", GamesMissed: 9}}

	result, err := newTestService().Compute(injuries, stints)
	require.NoError(t, err)

	for _, team := range result.Teams {
		require.NotEqual(t, "TOT", team.Team)
	}
	for _, s := range stintsFor(result, "T") {
		require.Equal(t, 1500, s.TotalMinutes)
	}
	require.Equal(t, 0, result.Skipped)
}

func TestComputeAllMalformed(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "", Team: "BOS", Minutes: 10},
		{Player: "X", Team: "", Minutes: 10},
	}

	_, err := newTestService().Compute(nil, stints)
	require.ErrorIs(t, err, model.ErrMalformedInput)
}

func TestComputeEmptyOrCombinedOnlyIsNotMalformed(t *testing.T) {
	for name, stints := range map[string][]model.PerformanceStint{
		"empty":         nil,
		"combined only": {{Player: "A", Team: "TOT", Games: 10, Minutes: 100, VORP: 1}},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := newTestService().Compute(nil, stints)
			require.NoError(t, err)
			require.Empty(t, result.Teams)
			require.Empty(t, result.Stints)
			require.Zero(t, result.Skipped)
		})
	}
}

func TestComputeSkipsMalformedRecords(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "", Team: "BOS", Minutes: 10},
		{Player: "A", Team: "BOS", Games: 10, Minutes: 300, VORP: 1},
	}
	injuries := []model.InjuryRecord{
		{Player: "", GamesMissed: 3},
		{Player: "A", GamesMissed: 2},
	}

	result, err := newTestService().Compute(injuries, stints)
	require.NoError(t, err)
	require.Equal(t, 2, result.Skipped)
	require.Len(t, result.Stints, 1)
	require.InDelta(t, 2.0, result.Stints[0].AllocatedGamesMissed, 1e-9)
}

func TestComputeCollapsesDuplicateInjuries(t *testing.T) {
	stints := []model.PerformanceStint{
		{Player: "A", Team: "BOS", Games: 10, Minutes: 300, VORP: 1},
	}
	injuries := []model.InjuryRecord{
		{Player: "A", Team: "BOS", GamesMissed: 4, DaysMissed: 9},
		{Player: "A", Team: "BOS", GamesMissed: 4, DaysMissed: 9},
		{Player: "A", Team: "MIA", GamesMissed: 3, DaysMissed: 6},
	}

	result, err := newTestService().Compute(injuries, stints)
	require.NoError(t, err)
	require.Equal(t, 7, result.Stints[0].GamesMissed)
}

func TestAggregateTeamsStableDescending(t *testing.T) {
	losses := []model.StintLoss{
		{Team: "PHI", WinsLost: 1.0},
		{Team: "BOS", WinsLost: 2.5},
		{Team: "ATL", WinsLost: 1.0},
		{Team: "MIL", WinsLost: 0.999},
		{Team: "DEN", WinsLost: 3.0},
		{Team: "DEN", WinsLost: -0.5},
	}

	expected := []model.TeamLoss{
		{Team: "BOS", WinsLost: 2.5},
		{Team: "DEN", WinsLost: 2.5},
		{Team: "ATL", WinsLost: 1.0},
		{Team: "MIL", WinsLost: 1.0},
		{Team: "PHI", WinsLost: 1.0},
	}
	if diff := cmp.Diff(expected, AggregateTeams(losses)); diff != "" {
		t.Fatal(diff)
	}
}

func TestRound2(t *testing.T) {
	require.Equal(t, 1.24, round2(1.2449))
	require.Equal(t, 1.25, round2(1.245000001))
	require.Equal(t, -0.5, round2(-0.4999999))
	require.Equal(t, 0.0, round2(0.004))
	require.False(t, math.Signbit(round2(-0.001)))
}

func TestAggregateTeamsSmallNegativeRendersAsZero(t *testing.T) {
	teams := AggregateTeams([]model.StintLoss{{Team: "LAL", WinsLost: -0.001}})
	require.Len(t, teams, 1)
	require.Equal(t, "0.00", fmt.Sprintf("%.2f", teams[0].WinsLost))
}
