package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Normalisation methods
const (
	NormalizeMinMax = "minmax"
	NormalizeZScore = "zscore"
)

// Outlier detection methods
const (
	OutliersIQR    = "iqr"
	OutliersZScore = "zscore"
)

// FormatNumber abbreviates large magnitudes with T, B, M and K suffixes and prints
// smaller ones with fixed precision. Null prints as N/A.
func FormatNumber(v float64, precision int) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return strconv.FormatFloat(v/1e12, 'f', precision, 64) + "T"
	case abs >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', precision, 64) + "B"
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', precision, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', precision, 64) + "K"
	default:
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

// PercentileRank returns the percentage of non-null values strictly below v.
func PercentileRank(values []float64, v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	valid := nonNull(values)
	if len(valid) == 0 {
		return 0
	}
	below := 0
	for _, x := range valid {
		if x < v {
			below++
		}
	}
	return float64(below) / float64(len(valid)) * 100
}

// Normalize rescales values. minmax maps onto 0..100, or 50 everywhere when the
// values are flat; zscore subtracts the mean and divides by the sample standard
// deviation. Nulls stay null.
func Normalize(values []float64, method string) ([]float64, error) {
	out := make([]float64, len(values))
	valid := nonNull(values)

	switch method {
	case NormalizeMinMax, "":
		if len(valid) == 0 {
			return fill(out, math.NaN()), nil
		}
		lo, hi := floats.Min(valid), floats.Max(valid)
		for i, v := range values {
			switch {
			case math.IsNaN(v):
				out[i] = math.NaN()
			case hi == lo:
				out[i] = 50
			default:
				out[i] = (v - lo) / (hi - lo) * 100
			}
		}
	case NormalizeZScore:
		mean, std := stat.MeanStdDev(valid, nil)
		for i, v := range values {
			if math.IsNaN(v) || len(valid) < 2 || std == 0 {
				out[i] = math.NaN()
				continue
			}
			out[i] = (v - mean) / std
		}
	default:
		return nil, fmt.Errorf("unknown normalisation method %q", method)
	}
	return out, nil
}

// CompositeIndex combines min-max normalised columns into a weighted score per row.
// Nil weights weigh every column equally. A null in any column nulls the row.
func CompositeIndex(columns [][]float64, weights []float64) ([]float64, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("composite index needs at least one metric")
	}
	if weights == nil {
		weights = make([]float64, len(columns))
		fill(weights, 1/float64(len(columns)))
	}
	if len(weights) != len(columns) {
		return nil, fmt.Errorf("number of weights (%d) must match number of metrics (%d)", len(weights), len(columns))
	}
	if math.Abs(floats.Sum(weights)-1) > 0.01 {
		return nil, fmt.Errorf("weights must sum to 1, got %.4f", floats.Sum(weights))
	}

	n := len(columns[0])
	out := make([]float64, n)
	for j, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("metric %d has %d values, expected %d", j, len(col), n)
		}
		norm, _ := Normalize(col, NormalizeMinMax)
		for i, v := range norm {
			out[i] += v * weights[j]
		}
	}
	return out, nil
}

// Ranked is one row of a ranking
type Ranked struct {
	Row     int     `json:"-"`
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// TopN orders the rows of t by metric, descending unless ascending is set, and keeps
// the first n. Nulls are excluded and ties keep table order. n <= 0 keeps all rows.
func TopN(t *Table, metric string, n int, ascending bool) ([]Ranked, error) {
	col, ok := t.Numeric(metric)
	if !ok {
		return nil, fmt.Errorf("metric %s is not a numeric column", metric)
	}

	ranked := make([]Ranked, 0, col.Len())
	for i, v := range col.Floats {
		if math.IsNaN(v) {
			continue
		}
		ranked = append(ranked, Ranked{Row: i, Country: t.Text(KeyColumn, i), Value: v})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ascending {
			return ranked[a].Value < ranked[b].Value
		}
		return ranked[a].Value > ranked[b].Value
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// GrowthRate returns the percentage change from prev to cur, or 0 when either value
// is null or prev is zero.
func GrowthRate(cur, prev float64) float64 {
	if math.IsNaN(cur) || math.IsNaN(prev) || prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// DetectOutliers flags values outside [Q1-t*IQR, Q3+t*IQR] for "iqr", or with
// |z| > t for "zscore". Nulls are never outliers and unknown methods flag nothing.
func DetectOutliers(values []float64, method string, threshold float64) []bool {
	flags := make([]bool, len(values))
	valid := nonNull(values)
	if len(valid) == 0 {
		return flags
	}

	switch method {
	case OutliersIQR:
		sorted := sortedCopy(valid)
		q1, q3 := Quantile(sorted, 0.25), Quantile(sorted, 0.75)
		iqr := q3 - q1
		lower, upper := q1-threshold*iqr, q3+threshold*iqr
		for i, v := range values {
			flags[i] = !math.IsNaN(v) && (v < lower || v > upper)
		}
	case OutliersZScore:
		if len(valid) < 2 {
			return flags
		}
		mean, std := stat.MeanStdDev(valid, nil)
		if std == 0 {
			return flags
		}
		for i, v := range values {
			flags[i] = !math.IsNaN(v) && math.Abs((v-mean)/std) > threshold
		}
	}
	return flags
}

// Summary holds descriptive statistics of a metric. Statistics that are undefined
// for the sample size are nil.
type Summary struct {
	Count    int      `json:"count"`
	Mean     *float64 `json:"mean"`
	Median   *float64 `json:"median"`
	Std      *float64 `json:"std"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Q25      *float64 `json:"q25"`
	Q75      *float64 `json:"q75"`
	Skewness *float64 `json:"skewness"`
	Kurtosis *float64 `json:"kurtosis"`
}

// SummaryStats describes the non-null values. The standard deviation is the sample
// one, skewness is the adjusted Fisher-Pearson coefficient and kurtosis is excess
// kurtosis.
func SummaryStats(values []float64) Summary {
	valid := nonNull(values)
	s := Summary{Count: len(valid)}
	if len(valid) == 0 {
		return s
	}

	sorted := sortedCopy(valid)
	s.Mean = Optional(stat.Mean(valid, nil))
	s.Median = Optional(Quantile(sorted, 0.5))
	s.Min = Optional(sorted[0])
	s.Max = Optional(sorted[len(sorted)-1])
	s.Q25 = Optional(Quantile(sorted, 0.25))
	s.Q75 = Optional(Quantile(sorted, 0.75))

	if len(valid) >= 2 {
		s.Std = Optional(stat.StdDev(valid, nil))
	}
	if len(valid) >= 3 {
		s.Skewness = Optional(stat.Skew(valid, nil))
	}
	if len(valid) >= 4 {
		s.Kurtosis = Optional(stat.ExKurtosis(valid, nil))
	}
	return s
}

// Quantile interpolates linearly between the closest ranks of sorted, which must be
// ascending and free of nulls.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Correlation returns Pearson's r over the rows where both x and y are non-null.
// It reports false with fewer than two such rows or when either side is flat.
func Correlation(x, y []float64) (float64, bool) {
	px, py := pairwise(x, y)
	if len(px) < 2 {
		return math.NaN(), false
	}
	r := stat.Correlation(px, py, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN(), false
	}
	return r, true
}

// LinearFit returns the least-squares intercept and slope of y on x over the rows
// where both are non-null.
func LinearFit(x, y []float64) (intercept, slope float64, ok bool) {
	px, py := pairwise(x, y)
	if len(px) < 2 || floats.Max(px) == floats.Min(px) {
		return math.NaN(), math.NaN(), false
	}
	intercept, slope = stat.LinearRegression(px, py, nil, false)
	return intercept, slope, true
}

// Optional converts NaN and infinities to nil, for JSON nulls.
func Optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func pairwise(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	px := make([]float64, 0, n)
	py := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		px = append(px, x[i])
		py = append(py, y[i])
	}
	return px, py
}

func nonNull(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func sortedCopy(values []float64) []float64 {
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	return out
}

func fill(dst []float64, v float64) []float64 {
	for i := range dst {
		dst[i] = v
	}
	return dst
}
