package store

import (
	"testing"
	"time"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRowsMatchColumns(t *testing.T) {
	at := time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC)
	result := &model.Result{
		Season:     2025,
		ComputedAt: at,
		Teams:      []model.TeamLoss{{Team: "BOS", WinsLost: 3.25}},
		Stints: []model.StintLoss{
			{Player: "jayson tatum", Team: "BOS", Minutes: 2500, MinutesShare: 1, GamesMissed: 10, AllocatedGamesMissed: 10, WinsLost: 3.251},
		},
	}

	teams := teamRows(result)
	require.Len(t, teams, 1)
	require.Len(t, teams[0], len(teamColumns))
	if diff := cmp.Diff([]any{2025, "BOS", 3.25, at}, teams[0]); diff != "" {
		t.Fatal(diff)
	}

	stints := stintRows(result)
	require.Len(t, stints, 1)
	require.Len(t, stints[0], len(stintColumns))
	require.Equal(t, "jayson tatum", stints[0][1])
	require.Equal(t, 3.251, stints[0][7])
}

func TestMigrationsAreOrdered(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.Equal(t, []string{"001_create_team_wins_lost.sql", "002_create_stint_wins_lost.sql"}, names)
}

func TestRepositoryName(t *testing.T) {
	require.Equal(t, "postgres", NewWinsLostRepository(nil).Name())
}
