package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"globalinsights/internal/config"
	"globalinsights/internal/dataprocessing"
	"globalinsights/internal/infrastructure"
	"globalinsights/pkg/contracts/domain"
	"globalinsights/pkg/contracts/events"
)

// EventPublisher receives dataset lifecycle events. The websocket hub implements it.
type EventPublisher interface {
	Broadcast(messageType string, data any)
}

// Filter narrows row-level views. Empty lists do not filter.
type Filter struct {
	Continents        []string
	DevelopmentLevels []string
}

// key returns a canonical form used in cache keys
func (f Filter) key() string {
	c := append([]string(nil), f.Continents...)
	d := append([]string(nil), f.DevelopmentLevels...)
	sort.Strings(c)
	sort.Strings(d)
	return cacheKey(listKey(c), listKey(d))
}

// cacheKey joins the parts of a cache key with the unit separator.
func cacheKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}

// listKey encodes a list as one key part. Items are quoted, so names holding commas
// ("Korea, South") stay distinct and an empty list differs from [""].
func listKey(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return strings.Join(quoted, ",")
}

func (f Filter) match(t *dataprocessing.Table, row int) bool {
	if len(f.Continents) > 0 && !contains(f.Continents, t.Text(dataprocessing.ContinentColumn, row)) {
		return false
	}
	if len(f.DevelopmentLevels) > 0 && !contains(f.DevelopmentLevels, t.Text(dataprocessing.DevelopmentLevelColumn, row)) {
		return false
	}
	return true
}

// DatasetService serves queries over the current dataset. The dataset is swapped
// as a whole on reload; readers always see a complete one.
type DatasetService struct {
	loader    DatasetLoader
	publisher EventPublisher
	metrics   *infrastructure.BusinessMetrics
	analysis  config.AnalysisConfig
	logger    *slog.Logger

	mu         sync.RWMutex
	current    *dataprocessing.Dataset
	generation uint64

	cache  *expirable.LRU[string, any]
	reload singleflight.Group
}

// DatasetOption configures a DatasetService
type DatasetOption func(*DatasetService)

// WithPublisher sets the receiver of dataset events
func WithPublisher(p EventPublisher) DatasetOption {
	return func(s *DatasetService) { s.publisher = p }
}

// WithBusinessMetrics records cache lookups on m
func WithBusinessMetrics(m *infrastructure.BusinessMetrics) DatasetOption {
	return func(s *DatasetService) { s.metrics = m }
}

// WithServiceLogger sets the service logger
func WithServiceLogger(logger *slog.Logger) DatasetOption {
	return func(s *DatasetService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewDatasetService creates a service that loads through loader. Nothing is loaded
// until Reload or Install is called.
func NewDatasetService(loader DatasetLoader, cfg *config.Config, opts ...DatasetOption) *DatasetService {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &DatasetService{
		loader:   loader,
		analysis: cfg.Analysis,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "dataset_service")
	s.cache = expirable.NewLRU[string, any](cfg.Cache.MaxEntries, nil, cfg.Cache.DefaultTimeout)

	s.logger.Info("DatasetService initialized",
		slog.Int("cache_entries", cfg.Cache.MaxEntries),
		slog.Duration("cache_ttl", cfg.Cache.DefaultTimeout))
	return s
}

// Install makes ds the served dataset and drops every cached result
func (s *DatasetService) Install(ds *dataprocessing.Dataset) {
	s.mu.Lock()
	s.current = ds
	s.generation++
	s.mu.Unlock()
	s.cache.Purge()
}

// Dataset returns the served dataset
func (s *DatasetService) Dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	ds, _ := s.snapshot()
	if ds == nil {
		return nil, ErrDatasetNotLoaded
	}
	return ds, nil
}

// Loaded reports whether a dataset is being served
func (s *DatasetService) Loaded() bool {
	ds, _ := s.snapshot()
	return ds != nil
}

func (s *DatasetService) snapshot() (*dataprocessing.Dataset, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.generation
}

// Reload re-runs the loader and swaps the dataset on success. Concurrent calls share
// one run. A failed run keeps the previous dataset.
func (s *DatasetService) Reload(ctx context.Context) (domain.DatasetSummary, error) {
	return s.load(ctx, s.loader)
}

// Bootstrap performs the first load through loader instead of the service's own,
// typically a SnapshotLoader in front of the pipeline. Later Reload calls go back to
// the service loader, so input edits are always picked up. A nil loader behaves like
// Reload.
func (s *DatasetService) Bootstrap(ctx context.Context, loader DatasetLoader) (domain.DatasetSummary, error) {
	if loader == nil {
		loader = s.loader
	}
	return s.load(ctx, loader)
}

func (s *DatasetService) load(ctx context.Context, loader DatasetLoader) (domain.DatasetSummary, error) {
	if loader == nil {
		return domain.DatasetSummary{}, fmt.Errorf("%w: no dataset loader configured", ErrInvalidInput)
	}
	v, err, shared := s.reload.Do("reload", func() (any, error) {
		return s.doReload(context.WithoutCancel(ctx), loader)
	})
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Joined in-flight reload")
	}
	return v.(domain.DatasetSummary), nil
}

func (s *DatasetService) doReload(ctx context.Context, loader DatasetLoader) (domain.DatasetSummary, error) {
	start := time.Now()
	previous, _ := s.snapshot()

	ds, err := loader.Load(ctx)
	if err != nil {
		logServiceError(ctx, "dataset_service", "reload", err)
		return domain.DatasetSummary{}, fmt.Errorf("reload dataset: %w", err)
	}

	s.Install(ds)
	summary := summarize(ds)
	changed := previous == nil || previous.Fingerprint != ds.Fingerprint || ds.Fingerprint == ""

	s.logger.InfoContext(ctx, "Dataset reloaded",
		slog.Int("rows", summary.Rows),
		slog.Int("columns", summary.Columns),
		slog.Bool("changed", changed),
		slog.Duration("duration", time.Since(start)))

	if s.publisher != nil {
		s.publisher.Broadcast(string(events.MessageTypeDatasetReloaded), events.DatasetReloaded{
			Rows:        summary.Rows,
			Columns:     summary.Columns,
			Countries:   summary.Countries,
			Fingerprint: summary.Fingerprint,
			Changed:     changed,
			Duration:    time.Since(start),
		})
	}
	return summary, nil
}

// cached runs compute against the current dataset, memoising the result under the
// operation key. Keys include the dataset generation, so results computed before a
// swap are never served after it.
func cached[T any](ctx context.Context, s *DatasetService, op, args string, compute func(*dataprocessing.Dataset) (T, error)) (T, error) {
	var zero T
	ds, gen := s.snapshot()
	if ds == nil {
		return zero, ErrDatasetNotLoaded
	}

	key := cacheKey(strconv.FormatUint(gen, 10), op, args)
	if v, ok := s.cache.Get(key); ok {
		if out, ok := v.(T); ok {
			s.metrics.RecordCacheLookup(ctx, op, true)
			return out, nil
		}
	}
	s.metrics.RecordCacheLookup(ctx, op, false)

	out, err := compute(ds)
	if err != nil {
		return zero, err
	}
	s.cache.Add(key, out)
	return out, nil
}

// CacheLen returns the number of cached query results
func (s *DatasetService) CacheLen() int {
	return s.cache.Len()
}

func summarize(ds *dataprocessing.Dataset) domain.DatasetSummary {
	return domain.DatasetSummary{
		Rows:        ds.Table.Len(),
		Columns:     ds.Table.Width(),
		Countries:   len(ds.Countries),
		Metrics:     ds.Catalog.MetricCount(),
		LoadedAt:    ds.LoadedAt,
		Fingerprint: ds.Fingerprint,
	}
}

// Summary describes the served dataset
func (s *DatasetService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	return summarize(ds), nil
}

// Countries returns the sorted country list
func (s *DatasetService) Countries(ctx context.Context) ([]string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Countries, nil
}

// Country returns every merged row for the named country
func (s *DatasetService) Country(ctx context.Context, name string) ([]domain.CountryRecord, error) {
	name = strings.TrimSpace(name)
	return cached(ctx, s, "country", name, func(ds *dataprocessing.Dataset) ([]domain.CountryRecord, error) {
		var out []domain.CountryRecord
		for i := 0; i < ds.Table.Len(); i++ {
			if strings.EqualFold(ds.Table.Text(dataprocessing.KeyColumn, i), name) {
				out = append(out, ds.Table.Record(i))
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrCountryNotFound, name)
		}
		return out, nil
	})
}

// Metrics returns the metric catalog
func (s *DatasetService) Metrics(ctx context.Context) (dataprocessing.Catalog, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return dataprocessing.Catalog{}, err
	}
	return ds.Catalog, nil
}

// Domains returns the catalog domains in display order
func (s *DatasetService) Domains(ctx context.Context) ([]dataprocessing.Domain, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Catalog.Domains, nil
}

// DomainMetrics returns one domain of the catalog
func (s *DatasetService) DomainMetrics(ctx context.Context, name string) (dataprocessing.Domain, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return dataprocessing.Domain{}, err
	}
	d, ok := ds.Catalog.Domain(name)
	if !ok {
		return dataprocessing.Domain{}, fmt.Errorf("%w: %s", ErrDomainNotFound, name)
	}
	return d, nil
}

// MetricOptions flattens the catalog into picker entries labelled "<Domain>: <Label>"
func (s *DatasetService) MetricOptions(ctx context.Context) ([]domain.MetricOption, error) {
	return cached(ctx, s, "metric_options", "", func(ds *dataprocessing.Dataset) ([]domain.MetricOption, error) {
		return metricOptions(ds.Catalog), nil
	})
}

func metricOptions(cat dataprocessing.Catalog) []domain.MetricOption {
	opts := make([]domain.MetricOption, 0, cat.MetricCount())
	for _, d := range cat.Domains {
		for _, m := range d.Metrics {
			opts = append(opts, domain.MetricOption{
				Label:  d.Name + ": " + m.Label,
				Value:  m.Name,
				Domain: d.Name,
			})
		}
	}
	return opts
}

// DefaultCorrelationPair picks the initial scatter axes: GDP per capita against
// internet users when both exist, otherwise the first catalogued metrics.
func (s *DatasetService) DefaultCorrelationPair(ctx context.Context) (x, y string, err error) {
	opts, err := s.MetricOptions(ctx)
	if err != nil {
		return "", "", err
	}
	if len(opts) == 0 {
		return "", "", nil
	}

	has := func(name string) bool {
		for _, o := range opts {
			if o.Value == name {
				return true
			}
		}
		return false
	}

	x = opts[0].Value
	if has(dataprocessing.GDPPerCapitaColumn) {
		x = dataprocessing.GDPPerCapitaColumn
	}
	switch {
	case has(dataprocessing.InternetUsersColumn):
		y = dataprocessing.InternetUsersColumn
	case len(opts) > 1:
		y = opts[1].Value
	default:
		y = opts[0].Value
	}
	return x, y, nil
}

// FilterOptions lists the continents (sorted, without Other) and the development
// levels (first-seen order) present in the dataset.
func (s *DatasetService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return cached(ctx, s, "filter_options", "", func(ds *dataprocessing.Dataset) (domain.FilterOptions, error) {
		opts := domain.FilterOptions{Continents: []string{}, DevelopmentLevels: []string{}}
		if col, ok := ds.Table.Column(dataprocessing.ContinentColumn); ok && col.Kind == dataprocessing.Text {
			for _, c := range distinct(col.Strings) {
				if c != dataprocessing.OtherContinent {
					opts.Continents = append(opts.Continents, c)
				}
			}
			sort.Strings(opts.Continents)
		}
		if col, ok := ds.Table.Column(dataprocessing.DevelopmentLevelColumn); ok && col.Kind == dataprocessing.Text {
			opts.DevelopmentLevels = distinct(col.Strings)
		}
		return opts, nil
	})
}

// distinct returns the non-blank values in first-seen order
func distinct(values []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// numericMetric resolves a metric column. Unknown names are not found; text columns
// are invalid input.
func numericMetric(ds *dataprocessing.Dataset, name string) (*dataprocessing.Column, error) {
	col, ok := ds.Table.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMetricNotFound, name)
	}
	if col.Kind != dataprocessing.Numeric {
		return nil, fmt.Errorf("%w: metric %s is not numeric", ErrInvalidInput, name)
	}
	return col, nil
}
