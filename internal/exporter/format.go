package exporter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var fileNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateFileName accepts bare export names: letters, digits, '_' and '-', at most
// 64 characters. Extensions are added by the writers.
func ValidateFileName(name string) error {
	if !fileNamePattern.MatchString(name) {
		return fmt.Errorf("invalid export file name %q", name)
	}
	return nil
}

// FormatFloat renders a numeric cell. NaN renders as an empty cell.
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
