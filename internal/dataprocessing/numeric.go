package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Order matters: " sq km" must go before " km".
	unitStripper = strings.NewReplacer(
		",", "",
		"%", "",
		" sq km", "",
		" km", "",
		" bbl/day", "",
		" kW", "",
		" Mt", "",
	)

	// " m" is a unit only when it ends a token, so " million" survives.
	metreSuffix = regexp.MustCompile(` m\b`)

	multiplierPattern = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)\s*(trillion|billion|million)$`)

	multipliers = map[string]float64{
		"trillion": 1e12,
		"billion":  1e9,
		"million":  1e6,
	}
)

// CleanNumeric parses a unit-suffixed numeric string such as "$1.5 billion",
// "2,345 sq km" or "9.99%". The second result is false when the value is null:
// blank, "nan", unparseable or non-finite.
func CleanNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), false
	}

	s = unitStripper.Replace(s)
	s = metreSuffix.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)

	if m := multiplierPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return math.NaN(), false
		}
		return finite(v * multipliers[m[2]])
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return finite(v)
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

// CleanColumn converts a text column into a numeric one with CleanNumeric. It returns
// the new column and the number of non-blank cells that became null. Numeric columns
// are returned unchanged.
func CleanColumn(c *Column) (*Column, int) {
	if c.Kind == Numeric {
		return c, 0
	}
	values := make([]float64, len(c.Strings))
	nulled := 0
	for i, raw := range c.Strings {
		v, ok := CleanNumeric(raw)
		if !ok && strings.TrimSpace(raw) != "" && !strings.EqualFold(strings.TrimSpace(raw), "nan") {
			nulled++
		}
		values[i] = v
	}
	return NewNumericColumn(c.Name, values), nulled
}

// InferColumn types a raw column that no cleaning rule names: numeric when every
// non-blank cell parses as a plain float, text otherwise. A column with no values
// stays text.
func InferColumn(c *Column) *Column {
	if c.Kind == Numeric {
		return c
	}
	values := make([]float64, len(c.Strings))
	seen := false
	for i, raw := range c.Strings {
		s := strings.TrimSpace(raw)
		if s == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return c
		}
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		values[i] = v
		seen = true
	}
	if !seen {
		return c
	}
	return NewNumericColumn(c.Name, values)
}
