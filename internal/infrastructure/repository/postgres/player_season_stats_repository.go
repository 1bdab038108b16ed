package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	qb "github.com/riskibarqy/cfb-analytics/internal/platform/querybuilder"
)

type PlayerSeasonStatsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPlayerSeasonStatsRepository(db *sqlx.DB) *PlayerSeasonStatsRepository {
	return &PlayerSeasonStatsRepository{db: db, now: time.Now}
}

// SaveSeason replaces every stored row of the season in one transaction.
func (r *PlayerSeasonStatsRepository) SaveSeason(ctx context.Context, tables playerstats.SeasonTables) error {
	builtAt := r.now().UTC()
	models, err := toTableModels(tables, builtAt)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save season tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := qb.DeleteFrom(playerSeasonStatsTable).Where(qb.Eq("season", tables.Season)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete season stats query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete season stats season=%d: %w", tables.Season, err)
	}

	for _, batch := range chunk(models, maxInsertRows) {
		query, args, err := buildStatsInsert(batch)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert season stats season=%d: %w", tables.Season, err)
		}
	}

	issues := tables.Issues
	if issues == nil {
		issues = []string{}
	}
	query, args, err = qb.InsertModel(seasonBuildsTable, seasonBuildTableModel{
		Season:    tables.Season,
		PlayCount: tables.PlayCount,
		Issues:    pq.Array(issues),
		BuiltAt:   builtAt,
	}).OnConflict("season").DoUpdate("play_count", "issues", "built_at").ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert season build query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season build season=%d: %w", tables.Season, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save season tx: %w", err)
	}
	return nil
}

func (r *PlayerSeasonStatsRepository) ListSeason(ctx context.Context, season int, role playerstats.Role) ([]playerstats.StoredRow, error) {
	query, args, err := qb.Select(playerSeasonStatsColumns...).
		From(playerSeasonStatsTable).
		Where(qb.Eq("season", season), qb.Eq("role", string(role))).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season stats query: %w", err)
	}

	var rows []playerSeasonStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list season stats season=%d role=%s: %w", season, role, err)
	}

	out := make([]playerstats.StoredRow, 0, len(rows))
	for _, row := range rows {
		stored, err := fromTableModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func toTableModels(tables playerstats.SeasonTables, builtAt time.Time) ([]playerSeasonStatsTableModel, error) {
	var out []playerSeasonStatsTableModel
	for _, table := range tables.Tables() {
		for i, row := range table.Rows {
			stats, err := sonic.Marshal(table.Record(i))
			if err != nil {
				return nil, fmt.Errorf("encode %s stats player=%s: %w", table.Role, row.Key(), err)
			}
			identity := identityOf(row)
			out = append(out, playerSeasonStatsTableModel{
				Season:     table.Season,
				Role:       string(table.Role),
				PlayerID:   row.Key(),
				PlayerName: nullString(identity.PlayerName),
				TeamID:     nullString(identity.TeamID),
				TeamName:   nullString(identity.TeamName),
				Conference: nullString(identity.Conference),
				Position:   nullString(identity.Position),
				Stats:      stats,
				BuiltAt:    builtAt,
			})
		}
	}
	return out, nil
}

func buildStatsInsert(batch []playerSeasonStatsTableModel) (string, []any, error) {
	builder := qb.InsertInto(playerSeasonStatsTable).Columns(playerSeasonStatsColumns...)
	for _, m := range batch {
		builder.Values(m.values()...)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build insert season stats query: %w", err)
	}
	return query, args, nil
}

func fromTableModel(row playerSeasonStatsTableModel) (playerstats.StoredRow, error) {
	stats := map[string]any{}
	if len(row.Stats) > 0 {
		if err := sonic.Unmarshal(row.Stats, &stats); err != nil {
			return playerstats.StoredRow{}, fmt.Errorf("decode %s stats player=%s: %w", row.Role, row.PlayerID, err)
		}
	}
	return playerstats.StoredRow{
		Season:   row.Season,
		Role:     playerstats.Role(row.Role),
		PlayerID: row.PlayerID,
		Stats:    stats,
	}, nil
}

func identityOf(row playerstats.Row) playerstats.Identity {
	switch r := row.(type) {
	case playerstats.PassingRow:
		return r.Identity
	case playerstats.RushingRow:
		return r.Identity
	case playerstats.ReceivingRow:
		return r.Identity
	case playerstats.DefenseRow:
		return r.Identity
	}
	return playerstats.Identity{}
}
