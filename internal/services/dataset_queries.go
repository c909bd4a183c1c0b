package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"globalinsights/internal/dataprocessing"
	"globalinsights/internal/exporter"
	"globalinsights/pkg/contracts/domain"
)

// Aggregations accepted by Regional
const (
	AggregateMean   = "mean"
	AggregateSum    = "sum"
	AggregateMedian = "median"
)

// UnclassifiedLevel replaces a blank development level in the hierarchy
const UnclassifiedLevel = "Unclassified"

const (
	trendlineSamples = 100
	minBubbleSize    = 10.0
	bubbleSizeRange  = 50.0
)

// MetricValues returns one map point per filtered row. Null values are kept as null.
func (s *DatasetService) MetricValues(ctx context.Context, metric string, filter Filter) ([]domain.MetricPoint, error) {
	return cached(ctx, s, "metric_values", cacheKey(metric, filter.key()), func(ds *dataprocessing.Dataset) ([]domain.MetricPoint, error) {
		col, err := numericMetric(ds, metric)
		if err != nil {
			return nil, err
		}
		t := ds.Table
		lat, hasLat := t.Numeric(dataprocessing.LatitudeColumn)
		lon, hasLon := t.Numeric(dataprocessing.LongitudeColumn)

		points := []domain.MetricPoint{}
		for i := 0; i < t.Len(); i++ {
			if !filter.match(t, i) {
				continue
			}
			p := domain.MetricPoint{
				Country:          t.Text(dataprocessing.KeyColumn, i),
				Value:            dataprocessing.Optional(col.Floats[i]),
				Continent:        t.Text(dataprocessing.ContinentColumn, i),
				DevelopmentLevel: t.Text(dataprocessing.DevelopmentLevelColumn, i),
			}
			if hasLat {
				p.Latitude = dataprocessing.Optional(lat.Floats[i])
			}
			if hasLon {
				p.Longitude = dataprocessing.Optional(lon.Floats[i])
			}
			points = append(points, p)
		}
		return points, nil
	})
}

// Regional aggregates a metric per continent over the filtered, non-null rows and
// sorts the groups by value, highest first.
func (s *DatasetService) Regional(ctx context.Context, metric, aggregation string, filter Filter) ([]domain.RegionalValue, error) {
	if aggregation == "" {
		aggregation = AggregateMean
	}
	switch aggregation {
	case AggregateMean, AggregateSum, AggregateMedian:
	default:
		return nil, fmt.Errorf("%w: unknown aggregation %q", ErrInvalidInput, aggregation)
	}

	return cached(ctx, s, "regional", cacheKey(metric, aggregation, filter.key()), func(ds *dataprocessing.Dataset) ([]domain.RegionalValue, error) {
		col, err := numericMetric(ds, metric)
		if err != nil {
			return nil, err
		}
		t := ds.Table

		var order []string
		groups := make(map[string][]float64)
		for i := 0; i < t.Len(); i++ {
			if col.IsNull(i) || !filter.match(t, i) {
				continue
			}
			c := t.Text(dataprocessing.ContinentColumn, i)
			if _, ok := groups[c]; !ok {
				order = append(order, c)
			}
			groups[c] = append(groups[c], col.Floats[i])
		}

		out := make([]domain.RegionalValue, 0, len(order))
		for _, c := range order {
			values := groups[c]
			var v float64
			switch aggregation {
			case AggregateSum:
				v = floats.Sum(values)
			case AggregateMedian:
				sorted := append([]float64(nil), values...)
				sort.Float64s(sorted)
				v = dataprocessing.Quantile(sorted, 0.5)
			default:
				v = stat.Mean(values, nil)
			}
			out = append(out, domain.RegionalValue{Continent: c, Value: v, Countries: len(values)})
		}
		sort.SliceStable(out, func(a, b int) bool { return out[a].Value > out[b].Value })
		return out, nil
	})
}

// Compare builds the radar and heatmap views for 2..max_countries_comparison countries.
// Radar values are scaled against the global min and max of each metric. Unknown
// countries are ignored.
func (s *DatasetService) Compare(ctx context.Context, countries, metrics []string) (domain.Comparison, error) {
	maxCountries := s.analysis.MaxCountriesComparison
	switch {
	case len(metrics) == 0:
		return domain.Comparison{}, fmt.Errorf("%w: at least one metric is required", ErrInvalidInput)
	case len(countries) < 2:
		return domain.Comparison{}, fmt.Errorf("%w: at least two countries are required", ErrInvalidInput)
	case maxCountries > 0 && len(countries) > maxCountries:
		return domain.Comparison{}, fmt.Errorf("%w: at most %d countries can be compared", ErrInvalidInput, maxCountries)
	}

	args := cacheKey(listKey(countries), listKey(metrics))
	return cached(ctx, s, "compare", args, func(ds *dataprocessing.Dataset) (domain.Comparison, error) {
		cols := make([]*dataprocessing.Column, len(metrics))
		for j, m := range metrics {
			col, err := numericMetric(ds, m)
			if err != nil {
				return domain.Comparison{}, err
			}
			cols[j] = col
		}

		names, rows := firstRows(ds.Table, countries)
		if len(names) < 2 {
			return domain.Comparison{}, fmt.Errorf("%w: fewer than two known countries", ErrInvalidInput)
		}

		cmp := domain.Comparison{
			Countries: names,
			Metrics:   metrics,
			Labels:    make([]string, len(metrics)),
			Radar:     make([]domain.RadarSeries, len(names)),
			Heatmap:   make([][]float64, len(names)),
		}
		for j, m := range metrics {
			cmp.Labels[j] = dataprocessing.MetricLabel(m)
		}

		bounds := make([][2]float64, len(cols))
		for j, col := range cols {
			bounds[j] = columnBounds(col)
		}

		for i, row := range rows {
			series := domain.RadarSeries{
				Country:    names[i],
				Normalized: make([]float64, len(cols)),
				Raw:        make([]*float64, len(cols)),
			}
			heat := make([]float64, len(cols))
			for j, col := range cols {
				v := col.Floats[row]
				series.Raw[j] = dataprocessing.Optional(v)
				series.Normalized[j] = radarValue(v, bounds[j][0], bounds[j][1])
				if !math.IsNaN(v) {
					heat[j] = v
				}
			}
			cmp.Radar[i] = series
			cmp.Heatmap[i] = heat
		}
		return cmp, nil
	})
}

// firstRows maps each requested country to its first row, skipping unknown and
// repeated names.
func firstRows(t *dataprocessing.Table, countries []string) ([]string, []int) {
	index := make(map[string]int)
	for i := t.Len() - 1; i >= 0; i-- {
		if c := t.Text(dataprocessing.KeyColumn, i); c != "" {
			index[c] = i
		}
	}
	var names []string
	var rows []int
	seen := make(map[string]struct{})
	for _, c := range countries {
		row, ok := index[c]
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		names = append(names, c)
		rows = append(rows, row)
	}
	return names, rows
}

func columnBounds(col *dataprocessing.Column) [2]float64 {
	values := col.NonNull()
	if len(values) == 0 {
		return [2]float64{math.NaN(), math.NaN()}
	}
	return [2]float64{floats.Min(values), floats.Max(values)}
}

func radarValue(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case hi == lo:
		return 50
	default:
		return (v - lo) / (hi - lo) * 100
	}
}

// Correlate builds the scatter of y against x over the rows where both are present.
// Points are grouped by colorBy (Continent by default) and optionally sized by sizeBy,
// scaled onto 10..60. More than two points add a least-squares trendline and Pearson's r.
func (s *DatasetService) Correlate(ctx context.Context, x, y, colorBy, sizeBy string) (domain.Scatter, error) {
	if colorBy == "" {
		colorBy = dataprocessing.ContinentColumn
	}
	args := cacheKey(x, y, colorBy, sizeBy)
	return cached(ctx, s, "correlate", args, func(ds *dataprocessing.Dataset) (domain.Scatter, error) {
		xc, err := numericMetric(ds, x)
		if err != nil {
			return domain.Scatter{}, err
		}
		yc, err := numericMetric(ds, y)
		if err != nil {
			return domain.Scatter{}, err
		}
		group, ok := ds.Table.Column(colorBy)
		if !ok {
			return domain.Scatter{}, fmt.Errorf("%w: %s", ErrMetricNotFound, colorBy)
		}
		var size *dataprocessing.Column
		if sizeBy != "" {
			if size, err = numericMetric(ds, sizeBy); err != nil {
				return domain.Scatter{}, err
			}
		}

		sc := domain.Scatter{X: x, Y: y, ColorBy: colorBy, SizeBy: sizeBy, Points: []domain.ScatterPoint{}}
		var xs, ys, sizes []float64
		for i := 0; i < ds.Table.Len(); i++ {
			if xc.IsNull(i) || yc.IsNull(i) {
				continue
			}
			p := domain.ScatterPoint{
				Country: ds.Table.Text(dataprocessing.KeyColumn, i),
				X:       xc.Floats[i],
				Y:       yc.Floats[i],
				Group:   cellString(group, i),
				Size:    minBubbleSize,
			}
			if size != nil {
				p.RawSize = dataprocessing.Optional(size.Floats[i])
				sizes = append(sizes, size.Floats[i])
			}
			sc.Points = append(sc.Points, p)
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}

		if size != nil {
			scaleSizes(sc.Points, sizes)
		}

		if len(sc.Points) > 2 {
			if r, ok := dataprocessing.Correlation(xs, ys); ok {
				sc.R = &r
			}
			if intercept, slope, ok := dataprocessing.LinearFit(xs, ys); ok {
				sc.Trendline = trendline(intercept, slope, floats.Min(xs), floats.Max(xs))
			}
		}
		return sc, nil
	})
}

// scaleSizes maps sizes onto 10..60 across the plotted points. Null sizes and a flat
// size column give the minimum size.
func scaleSizes(points []domain.ScatterPoint, sizes []float64) {
	valid := make([]float64, 0, len(sizes))
	for _, v := range sizes {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return
	}
	lo, hi := floats.Min(valid), floats.Max(valid)
	for i, v := range sizes {
		if math.IsNaN(v) || hi == lo {
			continue
		}
		points[i].Size = (v-lo)/(hi-lo)*bubbleSizeRange + minBubbleSize
	}
}

func trendline(intercept, slope, lo, hi float64) *domain.Trendline {
	tl := &domain.Trendline{
		Intercept: intercept,
		Slope:     slope,
		X:         make([]float64, trendlineSamples),
		Y:         make([]float64, trendlineSamples),
	}
	floats.Span(tl.X, lo, hi)
	for i, x := range tl.X {
		tl.Y[i] = intercept + slope*x
	}
	return tl
}

func cellString(col *dataprocessing.Column, row int) string {
	if col.Kind == dataprocessing.Numeric {
		return exporter.FormatFloat(col.Floats[row])
	}
	return col.Strings[row]
}

// CorrelationMatrix computes the symmetric Pearson matrix of the metrics over
// pairwise complete rows. The diagonal is 1.
func (s *DatasetService) CorrelationMatrix(ctx context.Context, metrics []string) (domain.CorrelationMatrix, error) {
	if len(metrics) == 0 {
		return domain.CorrelationMatrix{}, fmt.Errorf("%w: at least one metric is required", ErrInvalidInput)
	}
	return cached(ctx, s, "correlation_matrix", listKey(metrics), func(ds *dataprocessing.Dataset) (domain.CorrelationMatrix, error) {
		cols := make([]*dataprocessing.Column, len(metrics))
		for i, m := range metrics {
			col, err := numericMetric(ds, m)
			if err != nil {
				return domain.CorrelationMatrix{}, err
			}
			cols[i] = col
		}

		n := len(metrics)
		out := domain.CorrelationMatrix{
			Metrics: metrics,
			Labels:  make([]string, n),
			Values:  make([][]*float64, n),
		}
		for i := range out.Values {
			out.Labels[i] = dataprocessing.MetricLabel(metrics[i])
			out.Values[i] = make([]*float64, n)
		}
		for i := 0; i < n; i++ {
			one := 1.0
			out.Values[i][i] = &one
			for j := i + 1; j < n; j++ {
				if r, ok := dataprocessing.Correlation(cols[i].Floats, cols[j].Floats); ok {
					out.Values[i][j] = &r
					out.Values[j][i] = &r
				}
			}
		}
		return out, nil
	})
}

// Hierarchy builds the Continent > Development_Level > Country tree over the non-null
// values of metric. Parents carry the sum of their children.
func (s *DatasetService) Hierarchy(ctx context.Context, metric string) (*domain.HierarchyNode, error) {
	return cached(ctx, s, "hierarchy", metric, func(ds *dataprocessing.Dataset) (*domain.HierarchyNode, error) {
		col, err := numericMetric(ds, metric)
		if err != nil {
			return nil, err
		}
		t := ds.Table

		root := &domain.HierarchyNode{Name: dataprocessing.MetricLabel(metric)}
		continents := make(map[string]*domain.HierarchyNode)
		levels := make(map[string]*domain.HierarchyNode)

		for i := 0; i < t.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			v := col.Floats[i]
			cName := t.Text(dataprocessing.ContinentColumn, i)
			lName := t.Text(dataprocessing.DevelopmentLevelColumn, i)
			if lName == "" {
				lName = UnclassifiedLevel
			}

			cNode, ok := continents[cName]
			if !ok {
				cNode = &domain.HierarchyNode{Name: cName}
				continents[cName] = cNode
				root.Children = append(root.Children, cNode)
			}
			lKey := cName + "\x00" + lName
			lNode, ok := levels[lKey]
			if !ok {
				lNode = &domain.HierarchyNode{Name: lName}
				levels[lKey] = lNode
				cNode.Children = append(cNode.Children, lNode)
			}
			lNode.Children = append(lNode.Children, &domain.HierarchyNode{
				Name:  t.Text(dataprocessing.KeyColumn, i),
				Value: v,
			})
			lNode.Value += v
			cNode.Value += v
			root.Value += v
		}

		sort.SliceStable(root.Children, func(a, b int) bool { return root.Children[a].Name < root.Children[b].Name })
		for _, c := range root.Children {
			sort.SliceStable(c.Children, func(a, b int) bool {
				return levelOrder(c.Children[a].Name) < levelOrder(c.Children[b].Name)
			})
		}
		return root, nil
	})
}

// levelOrder sorts development levels from low to high income, Unclassified last
func levelOrder(level string) int {
	for i, l := range dataprocessing.DevelopmentLevels {
		if l == level {
			return i
		}
	}
	return len(dataprocessing.DevelopmentLevels)
}

// StatsCards computes the headline figures. Absent columns give null.
func (s *DatasetService) StatsCards(ctx context.Context) (domain.StatsCards, error) {
	return cached(ctx, s, "stats_cards", "", func(ds *dataprocessing.Dataset) (domain.StatsCards, error) {
		cards := domain.StatsCards{TotalCountries: len(ds.Countries)}
		if col, ok := ds.Table.Numeric(dataprocessing.GDPPerCapitaColumn); ok {
			if values := col.NonNull(); len(values) > 0 {
				cards.AvgGDPPerCapita = dataprocessing.Optional(stat.Mean(values, nil))
			}
		}
		if col, ok := ds.Table.Numeric(dataprocessing.PopulationColumn); ok {
			cards.TotalPopulation = dataprocessing.Optional(floats.Sum(col.NonNull()))
		}
		if col, ok := ds.Table.Numeric(dataprocessing.InternetUsersColumn); ok {
			cards.TotalInternet = dataprocessing.Optional(floats.Sum(col.NonNull()))
		}
		cards.FormattedGDP = formatOptional(cards.AvgGDPPerCapita, "$")
		cards.FormattedPop = formatOptional(cards.TotalPopulation, "")
		cards.FormattedNetUser = formatOptional(cards.TotalInternet, "")
		return cards, nil
	})
}

func formatOptional(v *float64, prefix string) string {
	if v == nil {
		return "N/A"
	}
	return prefix + dataprocessing.FormatNumber(*v, 1)
}

// Rankings returns the top n countries by metric. n defaults to default_rankings and
// is capped at max_rankings.
func (s *DatasetService) Rankings(ctx context.Context, metric string, n int, ascending bool) ([]domain.RankedCountry, error) {
	n = s.rankingLimit(n)
	args := cacheKey(metric, strconv.Itoa(n), strconv.FormatBool(ascending))
	return cached(ctx, s, "rankings", args, func(ds *dataprocessing.Dataset) ([]domain.RankedCountry, error) {
		if _, err := numericMetric(ds, metric); err != nil {
			return nil, err
		}
		top, err := dataprocessing.TopN(ds.Table, metric, n, ascending)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out := make([]domain.RankedCountry, len(top))
		for i, r := range top {
			out[i] = domain.RankedCountry{Rank: i + 1, Country: r.Country, Value: r.Value}
		}
		return out, nil
	})
}

func (s *DatasetService) rankingLimit(n int) int {
	if n <= 0 {
		n = s.analysis.DefaultRankings
	}
	if s.analysis.MaxRankings > 0 && n > s.analysis.MaxRankings {
		n = s.analysis.MaxRankings
	}
	return n
}

// Composite ranks countries by the weighted composite index of metrics, highest first.
// Rows with a null in any metric are left out. n <= 0 keeps every row.
func (s *DatasetService) Composite(ctx context.Context, metrics []string, weights []float64, n int) ([]domain.RankedCountry, error) {
	if len(metrics) == 0 {
		return nil, fmt.Errorf("%w: at least one metric is required", ErrInvalidInput)
	}
	if s.analysis.MaxRankings > 0 && n > s.analysis.MaxRankings {
		n = s.analysis.MaxRankings
	}
	wkey := "equal"
	if weights != nil {
		ws := make([]string, len(weights))
		for i, w := range weights {
			ws[i] = strconv.FormatFloat(w, 'g', -1, 64)
		}
		wkey = listKey(ws)
	}
	args := cacheKey(listKey(metrics), wkey, strconv.Itoa(n))

	return cached(ctx, s, "composite", args, func(ds *dataprocessing.Dataset) ([]domain.RankedCountry, error) {
		columns := make([][]float64, len(metrics))
		for i, m := range metrics {
			col, err := numericMetric(ds, m)
			if err != nil {
				return nil, err
			}
			columns[i] = col.Floats
		}
		scores, err := dataprocessing.CompositeIndex(columns, weights)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		out := []domain.RankedCountry{}
		for i, v := range scores {
			if math.IsNaN(v) {
				continue
			}
			out = append(out, domain.RankedCountry{Country: ds.Table.Text(dataprocessing.KeyColumn, i), Value: v})
		}
		sort.SliceStable(out, func(a, b int) bool { return out[a].Value > out[b].Value })
		if n > 0 && len(out) > n {
			out = out[:n]
		}
		for i := range out {
			out[i].Rank = i + 1
		}
		return out, nil
	})
}

// Outliers lists the countries whose metric value is an outlier. The method defaults
// to iqr with threshold 1.5; zscore defaults to threshold 3.
func (s *DatasetService) Outliers(ctx context.Context, metric, method string, threshold float64) (domain.Outliers, error) {
	if method == "" {
		method = dataprocessing.OutliersIQR
	}
	if threshold <= 0 {
		threshold = 1.5
		if method == dataprocessing.OutliersZScore {
			threshold = 3
		}
	}
	args := cacheKey(metric, method, strconv.FormatFloat(threshold, 'g', -1, 64))
	return cached(ctx, s, "outliers", args, func(ds *dataprocessing.Dataset) (domain.Outliers, error) {
		col, err := numericMetric(ds, metric)
		if err != nil {
			return domain.Outliers{}, err
		}
		out := domain.Outliers{Metric: metric, Method: method, Threshold: threshold, Countries: []domain.RankedCountry{}}
		for i, flagged := range dataprocessing.DetectOutliers(col.Floats, method, threshold) {
			if !flagged {
				continue
			}
			out.Countries = append(out.Countries, domain.RankedCountry{
				Rank:    len(out.Countries) + 1,
				Country: ds.Table.Text(dataprocessing.KeyColumn, i),
				Value:   col.Floats[i],
			})
		}
		return out, nil
	})
}

// Stats summarises a metric
func (s *DatasetService) Stats(ctx context.Context, metric string) (domain.MetricStats, error) {
	return cached(ctx, s, "stats", metric, func(ds *dataprocessing.Dataset) (domain.MetricStats, error) {
		col, err := numericMetric(ds, metric)
		if err != nil {
			return domain.MetricStats{}, err
		}
		sum := dataprocessing.SummaryStats(col.Floats)
		return domain.MetricStats{
			Metric:   metric,
			Label:    dataprocessing.MetricLabel(metric),
			Count:    sum.Count,
			Mean:     sum.Mean,
			Median:   sum.Median,
			Std:      sum.Std,
			Min:      sum.Min,
			Max:      sum.Max,
			Q25:      sum.Q25,
			Q75:      sum.Q75,
			Skewness: sum.Skewness,
			Kurtosis: sum.Kurtosis,
		}, nil
	})
}
