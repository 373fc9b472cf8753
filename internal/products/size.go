package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SizeToMegabytes converts a variant size label ("1gb", "0.5gb", "750mb")
// into the megabyte count vendors expect. Unparseable sizes yield 0.
func SizeToMegabytes(size string) int {
	normalized := strings.ToLower(strings.TrimSpace(size))
	multiplier := decimal.NewFromInt(1000)
	switch {
	case strings.HasSuffix(normalized, "gb"):
		normalized = strings.TrimSuffix(normalized, "gb")
	case strings.HasSuffix(normalized, "mb"):
		normalized = strings.TrimSuffix(normalized, "mb")
		multiplier = decimal.NewFromInt(1)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(normalized))
	if err != nil || !value.IsPositive() {
		return 0
	}
	return int(value.Mul(multiplier).IntPart())
}

// SizeValue is the numeric part of a gigabyte label, used for sorting.
func SizeValue(size string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(size), "gb", ""))
}

// SizeLabel renders a size for display: "1gb" becomes "1 GB", sub-gigabyte
// sizes are shown in megabytes.
func SizeLabel(size string) string {
	normalized := strings.ToLower(strings.TrimSpace(size))
	if strings.HasSuffix(normalized, "gb") {
		value, err := decimal.NewFromString(SizeValue(normalized))
		if err == nil && value.LessThan(decimal.NewFromInt(1)) && value.IsPositive() {
			return value.Mul(decimal.NewFromInt(1000)).String() + " MB"
		}
	}
	return strings.ToUpper(strings.Replace(normalized, "gb", " GB", 1))
}
