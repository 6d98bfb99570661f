// Package fields extracts scalar statement fields with an issuer profile's
// pattern cascades and the document's tables.
package fields

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountNoise = strings.NewReplacer(
	"₹", "", "$", "", "£", "", "€", "",
	"Rs.", "", "RS.", "", "rs.", "", "Rs", "", "RS", "", "rs", "", "INR", "", "inr", "",
	"`", "", ",", "", " ", "", "\u00a0", "", "\t", "",
)

// ParseAmount reads an amount such as "45,240.00", "Rs 5,882.52" or
// "1,23,456.78". Grouping style is ignored. Anything unparseable is 0.
func ParseAmount(s string) float64 {
	s = amountNoise.Replace(strings.TrimSpace(s))
	if s == "" || s == "-" || s == "." {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.Round(2).InexactFloat64()
}
