package postgres

import (
	"context"
	"fmt"

	"domaincheck/pkg/domain"

	"github.com/doug-martin/goqu/v9"
)

const (
	tldsTable              = "tlds"
	excludedDomainsTable   = "excluded_domains"
	preservedDomainsTable  = "preserved_domains"
	extensionPrefixesTable = "extension_prefixes"
)

// TLDs returns the full suffix registry, recognized suffixes first and
// longer suffixes before shorter ones within each group.
func (p *PgSQL) TLDs(ctx context.Context) ([]domain.TLD, error) {
	var rows []PgTLD
	if err := p.Builder.From(tldsTable).
		Order(
			goqu.I("is_recognized").Desc(),
			goqu.L("LENGTH(suffix)").Desc(),
			goqu.I("suffix").Asc(),
		).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch tlds from pg: %w", err)
	}

	out := make([]domain.TLD, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) TLDBySuffix(ctx context.Context, suffix string) (*domain.TLD, error) {
	var row PgTLD
	found, err := p.Builder.From(tldsTable).
		Where(goqu.I("suffix").Eq(suffix)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch tld by suffix: %w", err)
	}
	if !found {
		return nil, nil
	}

	tld := row.ToDomain()

	return &tld, nil
}

// UpsertTLD inserts or replaces one registry entry keyed by suffix.
func (p *PgSQL) UpsertTLD(ctx context.Context, tld domain.TLD) error {
	var row PgTLD
	row.FromDomain(tld)

	if _, err := p.Builder.Insert(tldsTable).
		Rows(row).
		OnConflict(goqu.DoUpdate("suffix", goqu.Record{
			"is_recognized":       row.IsRecognized,
			"is_api_registerable": row.IsAPIRegisterable,
			"type":                row.Type,
			"description":         row.Description,
		})).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not upsert tld into pg: %w", err)
	}

	return nil
}

func (p *PgSQL) Exclusions(ctx context.Context) ([]string, error) {
	return p.stringColumn(ctx, excludedDomainsTable, "domain")
}

func (p *PgSQL) Preservations(ctx context.Context) ([]string, error) {
	return p.stringColumn(ctx, preservedDomainsTable, "domain")
}

func (p *PgSQL) ExtensionPrefixes(ctx context.Context) ([]string, error) {
	return p.stringColumn(ctx, extensionPrefixesTable, "prefix")
}

func (p *PgSQL) ReplaceExclusions(ctx context.Context, domains []string) error {
	return p.replaceStringColumn(ctx, excludedDomainsTable, "domain", domains)
}

func (p *PgSQL) ReplacePreservations(ctx context.Context, domains []string) error {
	return p.replaceStringColumn(ctx, preservedDomainsTable, "domain", domains)
}

func (p *PgSQL) ReplaceExtensionPrefixes(ctx context.Context, prefixes []string) error {
	return p.replaceStringColumn(ctx, extensionPrefixesTable, "prefix", prefixes)
}

func (p *PgSQL) stringColumn(ctx context.Context, table, column string) ([]string, error) {
	var out []string
	if err := p.Builder.From(table).
		Select(goqu.I(column)).
		Order(goqu.I(column).Asc()).
		Executor().ScanValsContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("could not fetch %s from pg: %w", table, err)
	}

	return out, nil
}

// replaceStringColumn swaps the whole contents of a single-column list
// table. Callers are expected to run it inside a transaction.
func (p *PgSQL) replaceStringColumn(ctx context.Context, table, column string, values []string) error {
	if _, err := p.Builder.Delete(table).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not clear %s in pg: %w", table, err)
	}
	if len(values) == 0 {
		return nil
	}

	rows := make([]goqu.Record, 0, len(values))
	for _, v := range values {
		rows = append(rows, goqu.Record{column: v})
	}
	if _, err := p.Builder.Insert(table).
		Rows(rows).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not fill %s in pg: %w", table, err)
	}

	return nil
}
