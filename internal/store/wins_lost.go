package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/lib/pq"
)

var (
	teamColumns  = []string{"season", "team", "wins_lost", "computed_at"}
	stintColumns = []string{"season", "player", "team", "minutes", "minutes_share", "games_missed", "allocated_games_missed", "wins_lost", "computed_at"}
)

// WinsLostRepository archives results, one snapshot per season.
type WinsLostRepository struct {
	db *Database
}

// NewWinsLostRepository creates a new repository
func NewWinsLostRepository(db *Database) *WinsLostRepository {
	return &WinsLostRepository{db: db}
}

func (r *WinsLostRepository) Name() string {
	return "postgres"
}

// Write replaces the result's season in one transaction.
func (r *WinsLostRepository) Write(ctx context.Context, result *model.Result) error {
	return r.ReplaceSeason(ctx, result)
}

// ReplaceSeason deletes the season's team and stint rows and bulk-loads the
// new ones with COPY. Readers see either the old or the new snapshot.
func (r *WinsLostRepository) ReplaceSeason(ctx context.Context, result *model.Result) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"team_wins_lost", "stint_wins_lost"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE season = $1", result.Season); err != nil {
			return fmt.Errorf("clear %s for season %d: %w", table, result.Season, err)
		}
	}

	if err := copyRows(ctx, tx, "team_wins_lost", teamColumns, teamRows(result)); err != nil {
		return err
	}
	if err := copyRows(ctx, tx, "stint_wins_lost", stintColumns, stintRows(result)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season %d: %w", result.Season, err)
	}

	r.db.logger.Printf("✓ Stored %d teams and %d stints for season %d", len(result.Teams), len(result.Stints), result.Season)
	return nil
}

// SeasonTeams returns the stored team totals for season, largest first.
func (r *WinsLostRepository) SeasonTeams(ctx context.Context, season int) ([]model.TeamLoss, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT team, wins_lost
		FROM team_wins_lost
		WHERE season = $1
		ORDER BY wins_lost DESC, team
	`, season)
	if err != nil {
		return nil, fmt.Errorf("querying season %d: %w", season, err)
	}
	defer rows.Close()

	var teams []model.TeamLoss
	for rows.Next() {
		var t model.TeamLoss
		if err := rows.Scan(&t.Team, &t.WinsLost); err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func copyRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("prepare copy into %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("copy row into %s: %w", table, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush copy into %s: %w", table, err)
	}
	return nil
}

func teamRows(result *model.Result) [][]any {
	rows := make([][]any, 0, len(result.Teams))
	for _, t := range result.Teams {
		rows = append(rows, []any{result.Season, t.Team, t.WinsLost, result.ComputedAt})
	}
	return rows
}

func stintRows(result *model.Result) [][]any {
	rows := make([][]any, 0, len(result.Stints))
	for _, s := range result.Stints {
		rows = append(rows, []any{
			result.Season,
			s.Player,
			s.Team,
			s.Minutes,
			s.MinutesShare,
			s.GamesMissed,
			s.AllocatedGamesMissed,
			s.WinsLost,
			result.ComputedAt,
		})
	}
	return rows
}
