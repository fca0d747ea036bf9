package utils

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var thousands = message.NewPrinter(language.English)

// FormatThousands renders an integer with comma thousands separators, e.g. 1,243,103
func FormatThousands(v int) string {
	return thousands.Sprintf("%d", v)
}

// FormatThousandsFloat rounds v to an integer and renders it with thousands separators
func FormatThousandsFloat(v float64) string {
	return FormatThousands(int(math.Round(v)))
}

// Clamp limits a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RoundTo rounds a float to the given number of decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// Lerp performs linear interpolation between two values
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// PaddedRange widens [min, max] by frac of its span on both sides.
// A degenerate span is widened by one unit so axis ranges never collapse.
func PaddedRange(min, max, frac float64) (float64, float64) {
	span := max - min
	if span <= 0 || math.IsNaN(span) {
		return min - 1, max + 1
	}
	return min - span*frac, max + span*frac
}
