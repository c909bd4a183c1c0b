package dataprocessing

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MetricInfo summarises one numeric column of the merged dataset
type MetricInfo struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Domain groups related metrics
type Domain struct {
	Name    string       `json:"name"`
	Metrics []MetricInfo `json:"metrics"`
}

// Catalog lists the domains in display order. It marshals to a JSON object keyed by
// domain name, preserving that order.
type Catalog struct {
	Domains []Domain
}

type domainSpec struct {
	name    string
	metrics []string
}

var catalogDomains = []domainSpec{
	{"Geography", []string{"Area_Total", "Land_Area", "Water_Area", "Coastline",
		"Forest_Land", "Agricultural_Land", "Irrigated_Land"}},
	{"Demographics", []string{"Total_Population", "Population_Growth_Rate", "Birth_Rate",
		"Death_Rate", "Median_Age", "Infant_Mortality_Rate", "Total_Literacy_Rate"}},
	{"Economy", []string{"Real_GDP_PPP_billion_USD", "Real_GDP_per_Capita_USD",
		"Real_GDP_Growth_Rate_percent", "Unemployment_Rate_percent",
		"Exports_billion_USD", "Imports_billion_USD"}},
	{"Energy", []string{"electricity_access_percent", "carbon_dioxide_emissions_Mt",
		"petroleum_bbl_per_day", "natural_gas_cubic_meters"}},
	{"Infrastructure", []string{"roadways_km", "railways_km",
		"airports_paved_runways_count", "waterways_km"}},
	{"Communications", []string{"internet_users_total",
		"mobile_cellular_subscriptions_total", "broadband_fixed_subscriptions_total"}},
}

// BuildCatalog describes every catalogued metric present in t. Statistics ignore
// nulls and an all-null column reports zeros. Domains with no present metric are
// kept with an empty list.
func BuildCatalog(t *Table) Catalog {
	cat := Catalog{Domains: make([]Domain, 0, len(catalogDomains))}
	for _, d := range catalogDomains {
		dom := Domain{Name: d.name, Metrics: []MetricInfo{}}
		for _, name := range d.metrics {
			col, ok := t.Numeric(name)
			if !ok {
				continue
			}
			info := MetricInfo{Name: name, Label: MetricLabel(name)}
			if values := col.NonNull(); len(values) > 0 {
				info.Min = floats.Min(values)
				info.Max = floats.Max(values)
				info.Mean = stat.Mean(values, nil)
			}
			dom.Metrics = append(dom.Metrics, info)
		}
		cat.Domains = append(cat.Domains, dom)
	}
	return cat
}

// DomainNames returns the catalogued domain names in order
func DomainNames() []string {
	names := make([]string, len(catalogDomains))
	for i, d := range catalogDomains {
		names[i] = d.name
	}
	return names
}

// Domain looks a domain up by name, case-insensitively
func (c Catalog) Domain(name string) (Domain, bool) {
	for _, d := range c.Domains {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Domain{}, false
}

// Metric looks a metric up by column name
func (c Catalog) Metric(name string) (MetricInfo, string, bool) {
	for _, d := range c.Domains {
		for _, m := range d.Metrics {
			if m.Name == name {
				return m, d.Name, true
			}
		}
	}
	return MetricInfo{}, "", false
}

// MetricCount returns the number of catalogued metrics
func (c Catalog) MetricCount() int {
	n := 0
	for _, d := range c.Domains {
		n += len(d.Metrics)
	}
	return n
}

// MarshalJSON writes {"Geography":[...],"Demographics":[...],...} in catalog order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range c.Domains {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Name)
		if err != nil {
			return nil, err
		}
		metrics, err := json.Marshal(d.Metrics)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(metrics)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MetricLabel turns a column name into a display label: underscores become spaces
// and each word is title-cased, so "Real_GDP_PPP_billion_USD" reads
// "Real Gdp Ppp Billion Usd".
func MetricLabel(name string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range strings.ReplaceAll(name, "_", " ") {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
