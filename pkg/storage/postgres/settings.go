package postgres

import (
	"context"
	"fmt"

	"domaincheck/pkg/domain"

	"github.com/doug-martin/goqu/v9"
)

const settingsTable = "admin_settings"

func (p *PgSQL) Settings(ctx context.Context) ([]domain.Setting, error) {
	var rows []PgSetting
	if err := p.Builder.From(settingsTable).
		Order(goqu.I("key").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch settings from pg: %w", err)
	}

	out := make([]domain.Setting, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) Setting(ctx context.Context, key string) (*domain.Setting, error) {
	var row PgSetting
	found, err := p.Builder.From(settingsTable).
		Where(goqu.I("key").Eq(key)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch setting by key: %w", err)
	}
	if !found {
		return nil, nil
	}

	setting := row.ToDomain()

	return &setting, nil
}

func (p *PgSQL) UpdateSetting(ctx context.Context, key string, value string) error {
	if _, err := p.Builder.Update(settingsTable).
		Set(goqu.Record{"value": value}).
		Where(goqu.I("key").Eq(key)).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not update setting in pg: %w", err)
	}

	return nil
}
