package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"

	apperrors "globalinsights/internal/errors"
)

// Well-known column names
const (
	CoordinatesColumn      = "Geographic_Coordinates"
	LatitudeColumn         = "Latitude"
	LongitudeColumn        = "Longitude"
	ContinentColumn        = "Continent"
	DevelopmentLevelColumn = "Development_Level"
	GDPPerCapitaColumn     = "Real_GDP_per_Capita_USD"
	PopulationColumn       = "Total_Population"
	InternetUsersColumn    = "internet_users_total"
)

// DatasetSpec describes one thematic CSV file and how its columns are typed.
type DatasetSpec struct {
	Name string
	File string
	// Clean lists the columns parsed with CleanNumeric. Absent columns are skipped.
	Clean []string
	// CleanAll cleans every column except the key and those in Except.
	CleanAll bool
	Except   []string
}

func (s DatasetSpec) cleans(column string) bool {
	if column == KeyColumn {
		return false
	}
	if s.CleanAll {
		for _, skip := range s.Except {
			if skip == column {
				return false
			}
		}
		return true
	}
	for _, c := range s.Clean {
		if c == column {
			return true
		}
	}
	return false
}

// DefaultDatasets returns the seven input datasets in join order. Geography is the
// base of the merge.
func DefaultDatasets() []DatasetSpec {
	return []DatasetSpec{
		{
			Name: "geography",
			File: "geography_data.csv",
			Clean: []string{
				"Area_Total", "Land_Area", "Water_Area", "Land_Boundaries", "Coastline",
				"Highest_Elevation", "Lowest_Elevation", "Irrigated_Land", "Forest_Land",
				"Other_Land", "Agricultural_Land",
			},
		},
		{
			Name: "demographics",
			File: "demographics_data.csv",
			Clean: []string{
				"Total_Population", "Birth_Rate", "Death_Rate", "Net_Migration_Rate",
				"Median_Age", "Sex_Ratio", "Infant_Mortality_Rate", "Total_Fertility_Rate",
				"Population_Growth_Rate", "Total_Literacy_Rate", "Male_Literacy_Rate",
				"Female_Literacy_Rate", "Youth_Unemployment_Rate",
			},
		},
		{Name: "economy", File: "economy_data.csv", CleanAll: true, Except: []string{"Fiscal_Year"}},
		{Name: "energy", File: "energy_data.csv", CleanAll: true},
		{Name: "transportation", File: "transportation_data.csv", CleanAll: true},
		{Name: "communications", File: "communications_data.csv", CleanAll: true, Except: []string{"internet_country_code"}},
		{
			Name:  "government",
			File:  "government_and_civics_data.csv",
			Clean: []string{"Suffrage_Age"},
		},
	}
}

// LoadStats describes what a load did to one dataset.
type LoadStats struct {
	Dataset string
	Rows    int
	Columns int
	Nulled  int
}

// Loader reads the thematic CSV files from a data directory.
type Loader struct {
	dataDir string
	specs   []DatasetSpec
	logger  *slog.Logger
}

// NewLoader creates a loader for dataDir using the default dataset list.
func NewLoader(dataDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dataDir: dataDir,
		specs:   DefaultDatasets(),
		logger:  logger.With("component", "loader"),
	}
}

// Specs returns the datasets the loader reads, in join order.
func (l *Loader) Specs() []DatasetSpec { return l.specs }

// Load reads and types a single dataset.
func (l *Loader) Load(ctx context.Context, spec DatasetSpec) (*Table, LoadStats, error) {
	stats := LoadStats{Dataset: spec.Name}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	path := filepath.Join(l.dataDir, spec.File)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, stats, apperrors.NewNotFoundError(fmt.Sprintf("dataset %s (%s)", spec.Name, path))
		}
		return nil, stats, apperrors.NewStorageError(fmt.Sprintf("failed to open dataset %s", spec.Name), err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithLazyQuotes(true),
		dataframe.NaNValues([]string{"NaN", "nan"}),
	)
	if df.Err != nil {
		return nil, stats, apperrors.NewParsingError(fmt.Sprintf("failed to parse dataset %s", spec.Name), df.Err).
			WithContext("file", path)
	}

	names := df.Names()
	hasKey := false
	for _, n := range names {
		if n == KeyColumn {
			hasKey = true
			break
		}
	}
	if !hasKey {
		return nil, stats, apperrors.NewAppValidationError(
			fmt.Sprintf("dataset %s has no %s column", spec.Name, KeyColumn)).
			WithContext("file", path)
	}

	table := &Table{Name: spec.Name, index: make(map[string]int, len(names))}
	for _, name := range names {
		raw := rawColumn(df.Col(name))

		var col *Column
		switch {
		case name == KeyColumn:
			col = trimmed(raw)
		case spec.cleans(name):
			var nulled int
			col, nulled = CleanColumn(raw)
			stats.Nulled += nulled
			if nulled > 0 {
				l.logger.Debug("Nulled unparseable cells",
					slog.String("dataset", spec.Name),
					slog.String("column", name),
					slog.Int("cells", nulled))
			}
		default:
			col = InferColumn(raw)
		}
		if err := table.AddColumn(col); err != nil {
			return nil, stats, apperrors.NewParsingError(fmt.Sprintf("dataset %s", spec.Name), err)
		}
	}

	for _, name := range spec.Clean {
		if !table.Has(name) {
			l.logger.Debug("Skipping absent column",
				slog.String("dataset", spec.Name),
				slog.String("column", name))
		}
	}

	if spec.Name == "geography" {
		if err := AddCoordinates(table); err != nil {
			return nil, stats, err
		}
	}

	stats.Rows = table.Len()
	stats.Columns = table.Width()
	l.logger.Info("Loaded dataset",
		slog.String("dataset", spec.Name),
		slog.Int("rows", stats.Rows),
		slog.Int("columns", stats.Columns))
	return table, stats, nil
}

// LoadAll loads every dataset concurrently and returns the tables in join order.
// The first failure cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context) ([]*Table, []LoadStats, error) {
	tables := make([]*Table, len(l.specs))
	stats := make([]LoadStats, len(l.specs))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range l.specs {
		g.Go(func() error {
			t, s, err := l.Load(gctx, spec)
			if err != nil {
				return fmt.Errorf("load %s: %w", spec.Name, err)
			}
			tables[i], stats[i] = t, s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tables, stats, nil
}

// rawColumn copies a gota string series into a text column. gota marks "NaN" cells
// as missing; they become blanks.
func rawColumn(s series.Series) *Column {
	values := s.Records()
	missing := s.IsNaN()
	for i := range values {
		if missing[i] {
			values[i] = ""
		}
	}
	return NewTextColumn(s.Name, values)
}

func trimmed(c *Column) *Column {
	for i, v := range c.Strings {
		c.Strings[i] = strings.TrimSpace(v)
	}
	return c
}
