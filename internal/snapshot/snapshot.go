// Package snapshot stores a processed dataset in a single SQLite file and reads it back.
//
// The file holds three tables:
//
//	countries  the merged table, one REAL or TEXT column per dataset column, in order
//	metrics    the catalog: name, domain, label, min, max and mean value
//	meta       name/value pairs: format version, fingerprint, load time
//
// Nulls are stored as SQL NULL. Row order is the rowid order.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"globalinsights/internal/dataprocessing"
	apperrors "globalinsights/internal/errors"
	"globalinsights/pkg/contracts"
)

const (
	driverName = "sqlite"

	countriesTable = "countries"
	metricsTable   = "metrics"
	metaTable      = "meta"

	metaFormat      = "format_version"
	metaFingerprint = "fingerprint"
	metaLoadedAt    = "loaded_at"
)

// Save writes ds to path, replacing any existing file.
func Save(ctx context.Context, path string, ds *dataprocessing.Dataset) error {
	if ds == nil || ds.Table == nil {
		return fmt.Errorf("snapshot: no dataset to save")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create snapshot directory", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.NewStorageError("failed to remove old snapshot", err)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return apperrors.NewStorageError("failed to open snapshot", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin snapshot transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := writeCountries(ctx, tx, ds.Table); err != nil {
		return apperrors.NewStorageError("failed to write countries", err)
	}
	if err := writeMetrics(ctx, tx, ds.Catalog); err != nil {
		return apperrors.NewStorageError("failed to write metrics", err)
	}
	if err := writeMeta(ctx, tx, ds); err != nil {
		return apperrors.NewStorageError("failed to write snapshot metadata", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit snapshot", err)
	}
	return nil
}

func writeCountries(ctx context.Context, tx *sql.Tx, t *dataprocessing.Table) error {
	cols := t.Columns()
	defs := make([]string, len(cols))
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c.Name)
		sqlType := "TEXT"
		if c.Kind == dataprocessing.Numeric {
			sqlType = "REAL"
		}
		defs[i] = quoted[i] + " " + sqlType
	}

	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+countriesTable+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return err
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+countriesTable+` (`+strings.Join(quoted, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for row := 0; row < t.Len(); row++ {
		for i, c := range cols {
			args[i] = c.Value(row)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_countries_country ON `+countriesTable+` (`+quoteIdent(dataprocessing.KeyColumn)+`)`)
	return err
}

func writeMetrics(ctx context.Context, tx *sql.Tx, cat dataprocessing.Catalog) error {
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+metricsTable+` (
		name       TEXT PRIMARY KEY,
		domain     TEXT NOT NULL,
		label      TEXT NOT NULL,
		min_value  REAL,
		max_value  REAL,
		mean_value REAL
	)`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+metricsTable+` (name, domain, label, min_value, max_value, mean_value) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range cat.Domains {
		for _, m := range d.Metrics {
			if _, err := stmt.ExecContext(ctx, m.Name, d.Name, m.Label, m.Min, m.Max, m.Mean); err != nil {
				return fmt.Errorf("metric %s: %w", m.Name, err)
			}
		}
	}
	return nil
}

func writeMeta(ctx context.Context, tx *sql.Tx, ds *dataprocessing.Dataset) error {
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+metaTable+` (name TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return err
	}
	pairs := [][2]string{
		{metaFormat, contracts.DataFormatVersion},
		{metaFingerprint, ds.Fingerprint},
		{metaLoadedAt, ds.LoadedAt.UTC().Format(time.RFC3339Nano)},
	}
	for _, kv := range pairs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO `+metaTable+` (name, value) VALUES (?, ?)`, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a snapshot written by Save. A missing file is a not-found error.
func Load(ctx context.Context, path string) (*dataprocessing.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("snapshot").WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("failed to stat snapshot", err)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open snapshot", err)
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read snapshot metadata", err)
	}
	if v := meta[metaFormat]; v != contracts.DataFormatVersion {
		return nil, apperrors.NewStorageError(
			fmt.Sprintf("unsupported snapshot format %q", v), nil)
	}

	table, err := readCountries(ctx, db)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read countries", err)
	}
	catalog, err := readMetrics(ctx, db)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read metrics", err)
	}

	loadedAt, _ := time.Parse(time.RFC3339Nano, meta[metaLoadedAt])
	return &dataprocessing.Dataset{
		Table:       table,
		Catalog:     catalog,
		Countries:   dataprocessing.CountryList(table),
		LoadedAt:    loadedAt,
		Fingerprint: meta[metaFingerprint],
	}, nil
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, value FROM `+metaTable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

type columnDef struct {
	name string
	kind dataprocessing.ColumnKind
}

func readColumnDefs(ctx context.Context, db *sql.DB) ([]columnDef, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info('`+countriesTable+`') ORDER BY cid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []columnDef
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		kind := dataprocessing.Text
		if strings.EqualFold(typ, "REAL") {
			kind = dataprocessing.Numeric
		}
		defs = append(defs, columnDef{name: name, kind: kind})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("table %s has no columns", countriesTable)
	}
	return defs, nil
}

func readCountries(ctx context.Context, db *sql.DB) (*dataprocessing.Table, error) {
	defs, err := readColumnDefs(ctx, db)
	if err != nil {
		return nil, err
	}

	quoted := make([]string, len(defs))
	for i, d := range defs {
		quoted[i] = quoteIdent(d.name)
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+strings.Join(quoted, ",")+` FROM `+countriesTable+` ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	floats := make([][]float64, len(defs))
	texts := make([][]string, len(defs))
	dest := make([]any, len(defs))
	for i, d := range defs {
		if d.kind == dataprocessing.Numeric {
			dest[i] = new(sql.NullFloat64)
		} else {
			dest[i] = new(sql.NullString)
		}
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, d := range defs {
			if d.kind == dataprocessing.Numeric {
				v := dest[i].(*sql.NullFloat64)
				if v.Valid {
					floats[i] = append(floats[i], v.Float64)
				} else {
					floats[i] = append(floats[i], math.NaN())
				}
				continue
			}
			texts[i] = append(texts[i], dest[i].(*sql.NullString).String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cols := make([]*dataprocessing.Column, len(defs))
	for i, d := range defs {
		if d.kind == dataprocessing.Numeric {
			cols[i] = dataprocessing.NewNumericColumn(d.name, nonNilFloats(floats[i]))
		} else {
			cols[i] = dataprocessing.NewTextColumn(d.name, nonNilStrings(texts[i]))
		}
	}
	return dataprocessing.NewTable("merged", cols...)
}

// readMetrics rebuilds the catalog. Every known domain is present, in catalog order,
// even when the snapshot holds none of its metrics.
func readMetrics(ctx context.Context, db *sql.DB) (dataprocessing.Catalog, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT domain, name, label, min_value, max_value, mean_value FROM `+metricsTable+` ORDER BY rowid`)
	if err != nil {
		return dataprocessing.Catalog{}, err
	}
	defer rows.Close()

	names := dataprocessing.DomainNames()
	byDomain := make(map[string][]dataprocessing.MetricInfo, len(names))
	for rows.Next() {
		var domain string
		var m dataprocessing.MetricInfo
		if err := rows.Scan(&domain, &m.Name, &m.Label, &m.Min, &m.Max, &m.Mean); err != nil {
			return dataprocessing.Catalog{}, err
		}
		byDomain[domain] = append(byDomain[domain], m)
	}
	if err := rows.Err(); err != nil {
		return dataprocessing.Catalog{}, err
	}

	cat := dataprocessing.Catalog{Domains: make([]dataprocessing.Domain, 0, len(names))}
	for _, name := range names {
		metrics := byDomain[name]
		if metrics == nil {
			metrics = []dataprocessing.MetricInfo{}
		}
		cat.Domains = append(cat.Domains, dataprocessing.Domain{Name: name, Metrics: metrics})
	}
	return cat, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func nonNilFloats(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
