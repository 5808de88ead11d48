package geospatial

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatDistance renders meters with thousands separators and two decimals,
// e.g. "1,234.56 meters".
func FormatDistance(meters float64) string {
	return printer.Sprintf("%.2f meters", meters)
}
