package extractor

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatRupiah renders an amount as "Rp 2.943.600.000".
func FormatRupiah(amount int64) string {
	return "Rp " + humanize.FormatInteger("#.###,", int(amount))
}

// formatWeight renders a weight without trailing zeros: 0.5, 1, 1000.
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// weightLabel is the display type of a table-derived record.
func weightLabel(w float64) string {
	return "Antam " + formatWeight(w) + "g"
}

// parseGrouped converts a thousands-grouped numeral ("2.943.600.000") to an integer.
func parseGrouped(s string) (int64, bool) {
	digits := strings.NewReplacer(".", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if digits == "" {
		return 0, false
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// parseWeight reads "0,5" or "0.5" as a decimal weight.
func parseWeight(s string) (float64, bool) {
	w, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || w <= 0 {
		return 0, false
	}

	return w, true
}

// pricePerUnit returns round(price / weight).
func pricePerUnit(price int64, weight float64) int64 {
	if weight <= 0 {
		return price
	}

	return decimal.NewFromInt(price).Div(decimal.NewFromFloat(weight)).Round(0).IntPart()
}
