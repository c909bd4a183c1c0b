package dataprocessing

import (
	"fmt"
	"math"
	"strings"
)

// OtherContinent is assigned to countries no lookup list matches
const OtherContinent = "Other"

type continentList struct {
	name      string
	countries []string
}

// Checked in order; the first list with an entry contained in the name wins.
var continents = []continentList{
	{"Asia", []string{
		"CHINA", "INDIA", "JAPAN", "SOUTH KOREA", "INDONESIA", "THAILAND",
		"VIETNAM", "MALAYSIA", "PHILIPPINES", "SINGAPORE", "BANGLADESH",
		"PAKISTAN", "AFGHANISTAN", "IRAN", "IRAQ", "SAUDI ARABIA", "YEMEN",
		"SYRIA", "TURKEY", "ISRAEL", "JORDAN", "LEBANON", "UAE", "KUWAIT",
		"QATAR", "BAHRAIN", "OMAN", "AZERBAIJAN", "ARMENIA", "GEORGIA",
		"KAZAKHSTAN", "UZBEKISTAN", "TURKMENISTAN", "KYRGYZSTAN", "TAJIKISTAN",
		"MONGOLIA", "MYANMAR", "BURMA", "CAMBODIA", "LAOS", "BRUNEI",
		"TIMOR-LESTE", "BHUTAN", "NEPAL", "SRI LANKA", "MALDIVES",
	}},
	{"Europe", []string{
		"UNITED KINGDOM", "GERMANY", "FRANCE", "ITALY", "SPAIN", "POLAND",
		"ROMANIA", "NETHERLANDS", "BELGIUM", "CZECH REPUBLIC", "GREECE",
		"PORTUGAL", "SWEDEN", "HUNGARY", "AUSTRIA", "BULGARIA", "DENMARK",
		"FINLAND", "SLOVAKIA", "NORWAY", "IRELAND", "CROATIA", "BOSNIA",
		"SERBIA", "SWITZERLAND", "ALBANIA", "LITHUANIA", "SLOVENIA",
		"LATVIA", "NORTH MACEDONIA", "ESTONIA", "LUXEMBOURG", "MALTA",
		"ICELAND", "MONTENEGRO", "BELARUS", "UKRAINE", "RUSSIA", "MOLDOVA",
	}},
	{"Africa", []string{
		"NIGERIA", "ETHIOPIA", "EGYPT", "CONGO", "SOUTH AFRICA", "TANZANIA",
		"KENYA", "UGANDA", "ALGERIA", "SUDAN", "MOROCCO", "ANGOLA", "GHANA",
		"MOZAMBIQUE", "MADAGASCAR", "CAMEROON", "IVORY COAST", "NIGER",
		"BURKINA FASO", "MALI", "MALAWI", "ZAMBIA", "SENEGAL", "SOMALIA",
		"CHAD", "ZIMBABWE", "GUINEA", "RWANDA", "BENIN", "BURUNDI", "TUNISIA",
		"TOGO", "SIERRA LEONE", "LIBYA", "LIBERIA", "MAURITANIA", "ERITREA",
		"GAMBIA", "BOTSWANA", "NAMIBIA", "GABON", "LESOTHO", "GUINEA-BISSAU",
		"EQUATORIAL GUINEA", "MAURITIUS", "ESWATINI", "DJIBOUTI", "COMOROS",
		"CABO VERDE", "SAO TOME", "SEYCHELLES", "CENTRAL AFRICAN REPUBLIC",
	}},
	{"North America", []string{
		"UNITED STATES", "CANADA", "MEXICO", "GUATEMALA", "CUBA",
		"HAITI", "DOMINICAN REPUBLIC", "HONDURAS", "NICARAGUA",
		"EL SALVADOR", "COSTA RICA", "PANAMA", "JAMAICA", "TRINIDAD",
		"BELIZE", "BAHAMAS", "BARBADOS", "SAINT LUCIA", "GRENADA",
		"ANTIGUA", "DOMINICA", "SAINT KITTS",
	}},
	{"South America", []string{
		"BRAZIL", "COLOMBIA", "ARGENTINA", "PERU", "VENEZUELA",
		"CHILE", "ECUADOR", "BOLIVIA", "PARAGUAY", "URUGUAY",
		"GUYANA", "SURINAME", "FRENCH GUIANA",
	}},
	{"Oceania", []string{
		"AUSTRALIA", "PAPUA NEW GUINEA", "NEW ZEALAND", "FIJI", "SOLOMON",
		"MICRONESIA", "VANUATU", "SAMOA", "KIRIBATI", "TONGA", "PALAU",
		"TUVALU", "NAURU", "MARSHALL ISLANDS",
	}},
}

// Continents returns the continent names in lookup order, without Other.
func Continents() []string {
	names := make([]string, len(continents))
	for i, c := range continents {
		names[i] = c.name
	}
	return names
}

// ClassifyContinent maps a country name to a continent by substring lookup.
// Matching is case-insensitive. Unknown and blank names are Other.
func ClassifyContinent(country string) string {
	upper := strings.ToUpper(strings.TrimSpace(country))
	if upper == "" {
		return OtherContinent
	}
	for _, c := range continents {
		for _, entry := range c.countries {
			if strings.Contains(upper, entry) {
				return c.name
			}
		}
	}
	return OtherContinent
}

// Development levels, lowest first
var DevelopmentLevels = []string{"Low Income", "Lower Middle", "Upper Middle", "High Income"}

var developmentEdges = []float64{5000, 15000, 30000}

// DevelopmentLevel bins GDP per capita into right-closed intervals
// (0,5000], (5000,15000], (15000,30000], (30000,inf). Null and non-positive
// values yield "".
func DevelopmentLevel(gdpPerCapita float64) string {
	if math.IsNaN(gdpPerCapita) || gdpPerCapita <= 0 {
		return ""
	}
	for i, edge := range developmentEdges {
		if gdpPerCapita <= edge {
			return DevelopmentLevels[i]
		}
	}
	return DevelopmentLevels[len(DevelopmentLevels)-1]
}

// IncomeThresholds are the upper bounds of the low, lower-middle and upper-middle
// income groups.
type IncomeThresholds struct {
	Low         float64
	LowerMiddle float64
	UpperMiddle float64
}

// DefaultIncomeThresholds returns 5000 / 15000 / 30000
func DefaultIncomeThresholds() IncomeThresholds {
	return IncomeThresholds{Low: 5000, LowerMiddle: 15000, UpperMiddle: 30000}
}

// CategorizeIncome classifies GDP per capita with half-open bins. A nil thresholds
// argument uses the defaults. Null values are "Unknown".
func CategorizeIncome(gdp float64, thresholds *IncomeThresholds) string {
	if math.IsNaN(gdp) {
		return "Unknown"
	}
	th := DefaultIncomeThresholds()
	if thresholds != nil {
		th = *thresholds
	}
	switch {
	case gdp < th.Low:
		return "Low Income"
	case gdp < th.LowerMiddle:
		return "Lower Middle Income"
	case gdp < th.UpperMiddle:
		return "Upper Middle Income"
	default:
		return "High Income"
	}
}

// Derive adds the Continent column, and Development_Level when GDP per capita is
// present and numeric.
func Derive(t *Table) error {
	key, ok := t.Column(KeyColumn)
	if !ok {
		return fmt.Errorf("derive: table %s has no %s column", t.Name, KeyColumn)
	}

	cont := make([]string, key.Len())
	for i, country := range key.Strings {
		cont[i] = ClassifyContinent(country)
	}
	if err := t.AddColumn(NewTextColumn(ContinentColumn, cont)); err != nil {
		return err
	}

	gdp, ok := t.Numeric(GDPPerCapitaColumn)
	if !ok {
		return nil
	}
	levels := make([]string, gdp.Len())
	for i, v := range gdp.Floats {
		levels[i] = DevelopmentLevel(v)
	}
	return t.AddColumn(NewTextColumn(DevelopmentLevelColumn, levels))
}
