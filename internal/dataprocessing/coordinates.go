package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
)

var coordinatePattern = regexp.MustCompile(`(\d+)\s+(\d+)\s+([NS]),\s+(\d+)\s+(\d+)\s+([EW])`)

// ParseCoordinates reads a "DD MM N, DDD MM E" string into decimal degrees.
// South latitudes and west longitudes are negative.
func ParseCoordinates(s string) (lat, lon float64, ok bool) {
	m := coordinatePattern.FindStringSubmatch(s)
	if m == nil {
		return math.NaN(), math.NaN(), false
	}

	latDeg, _ := strconv.ParseFloat(m[1], 64)
	latMin, _ := strconv.ParseFloat(m[2], 64)
	lonDeg, _ := strconv.ParseFloat(m[4], 64)
	lonMin, _ := strconv.ParseFloat(m[5], 64)

	lat = latDeg + latMin/60
	if m[3] == "S" {
		lat = -lat
	}
	lon = lonDeg + lonMin/60
	if m[6] == "W" {
		lon = -lon
	}
	return lat, lon, true
}

// AddCoordinates derives numeric Latitude and Longitude columns from the
// Geographic_Coordinates text column. Tables without that column are left as is.
func AddCoordinates(t *Table) error {
	src, ok := t.Column(CoordinatesColumn)
	if !ok || src.Kind != Text {
		return nil
	}

	lats := make([]float64, src.Len())
	lons := make([]float64, src.Len())
	for i, s := range src.Strings {
		lats[i], lons[i], _ = ParseCoordinates(s)
	}

	if err := t.AddColumn(NewNumericColumn(LatitudeColumn, lats)); err != nil {
		return err
	}
	return t.AddColumn(NewNumericColumn(LongitudeColumn, lons))
}
