package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// countryFixtures is a small seven-table dataset. France, Japan, Brazil and Kenya appear in
// every table; Atlantis only exists in geography and has no usable values.
var countryFixtures = map[string]string{
	"geography_data.csv": `Country,Area_Total,Land_Area,Water_Area,Coastline,Forest_Land,Agricultural_Land,Irrigated_Land,Geographic_Coordinates,Climate,Last_Updated
France,"643,801 sq km","640,427 sq km","3,374 sq km","4,853 km",31.2%,52.1%,"26,950 sq km","46 00 N, 2 00 E",temperate,2024
Japan,"377,915 sq km","364,485 sq km","13,430 sq km","29,751 km",68.4%,12.5%,"15,780 sq km","36 00 N, 138 00 E",varies,2024
Brazil,"8,515,770 sq km","8,358,140 sq km","157,630 sq km","7,491 km",61.9%,32.9%,"54,000 sq km","10 00 S, 55 00 W",tropical,2024
Kenya,"580,367 sq km","569,140 sq km","11,227 sq km",536 km,7.8%,48.1%,"1,030 sq km","1 00 N, 38 00 E",varies,2024
Atlantis,,,,,,,,,unknown,
`,
	"demographics_data.csv": `Country,Total_Population,Population_Growth_Rate,Birth_Rate,Death_Rate,Median_Age,Infant_Mortality_Rate,Total_Literacy_Rate
France,"68,374,591",0.34%,11.1,9.5,42.6,3.2,99%
Japan,"123,719,238",-0.4%,6.9,11.8,49.9,1.9,99%
Brazil,"218,689,757",0.6%,13.2,7,34.7,12.6,94.7%
Kenya,"58,246,378",2.08%,26,5,20,27.2,82.6%
`,
	"economy_data.csv": `Country,Real_GDP_PPP_billion_USD,Real_GDP_per_Capita_USD,Real_GDP_Growth_Rate_percent,Unemployment_Rate_percent,Exports_billion_USD,Imports_billion_USD,Fiscal_Year,Last_Updated
France,"$3,764","$55,200",2.5%,7.3%,"$1,070","$1,190",calendar year,2023
Japan,"$5,761","$46,100",1%,2.6%,$920,"$1,000",1 April - 31 March,2023
Brazil,"$3,837","$18,700",2.9%,7.9%,$340,$295,calendar year,2023
Kenya,$275,"$5,000",5.6%,5.7%,$13,$22,1 July - 30 June,2023
`,
	"energy_data.csv": `Country,electricity_access_percent,carbon_dioxide_emissions_Mt,petroleum_bbl_per_day
France,100%,290.2 Mt,"1,500,000 bbl/day"
Japan,100%,"1,060 Mt","3,400,000 bbl/day"
Brazil,99.8%,452 Mt,"2,700,000 bbl/day"
Kenya,76.5%,19 Mt,"109,000 bbl/day"
`,
	"transportation_data.csv": `Country,roadways_km,railways_km,airports_paved_runways_count
France,"1,053,215 km","29,273 km",294
Japan,"349,211 km","27,311 km",142
Brazil,"2,000,000 km","29,849 km",726
Kenya,"161,451 km","3,819 km",16
`,
	"communications_data.csv": `Country,internet_users_total,mobile_cellular_subscriptions_total,internet_country_code
France,58 million,78 million,.fr
Japan,116 million,200 million,.jp
Brazil,173 million,220 million,.br
Kenya,17 million,65 million,.ke
`,
	"government_and_civics_data.csv": `Country,Suffrage_Age,Government_Type
France,18,semi-presidential republic
Japan,18,parliamentary constitutional monarchy
Brazil,16,federal presidential republic
Kenya,18,presidential republic
`,
}

// FixtureFiles returns the fixture file names in sorted order
func FixtureFiles() []string {
	names := make([]string, 0, len(countryFixtures))
	for name := range countryFixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteCountryFixtures writes the seven country CSVs into dir and returns dir
func WriteCountryFixtures(t testing.TB, dir string) string {
	t.Helper()
	for name, content := range countryFixtures {
		WriteFile(t, filepath.Join(dir, name), content)
	}
	return dir
}

// WriteFile writes content to path, creating parent directories
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
