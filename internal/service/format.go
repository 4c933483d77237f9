package service

import (
	"encoding/json"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// formatPrice renders a price with thousands separators, e.g. 500000 -> "500,000"
func formatPrice(v float64) string {
	return pricePrinter.Sprintf("%d", int64(math.Round(v)))
}

func describeFilter(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<unprintable>"
	}
	return string(b)
}
