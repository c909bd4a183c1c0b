package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "countries", false},
		{"dashes and underscores", "gdp_2024-report", false},
		{"max length", "a123456789b123456789c123456789d123456789e123456789f123456789abcd", false},
		{"too long", "a123456789b123456789c123456789d123456789e123456789f123456789abcde", true},
		{"empty", "", true},
		{"path separator", "../etc/passwd", true},
		{"extension", "countries.csv", true},
		{"space", "my export", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234, "1234"},
		{9.99, "9.99"},
		{1.5e9, "1500000000"},
		{-0.4, "-0.4"},
		{math.NaN(), ""},
		{math.Inf(1), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in))
	}
}
