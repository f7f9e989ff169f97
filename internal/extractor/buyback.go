package extractor

import (
	"regexp"
	"strings"

	"github.com/Houeta/gold-flow/internal/models"
)

const buybackLabel = "Buyback per gram"

var (
	reBuyback    = regexp.MustCompile(`(?i)(?:pembelian kembali|buyback)[^R]*Rp\s*([\d.,]+)`)
	reBuybackAlt = regexp.MustCompile(`Rp\s*(2\.8\d{2}\.\d{3})`)

	reUpdateTime = regexp.MustCompile(`(?i)Update[^:]*:\s*(\d{1,2}\s+\w+\s+\d{4}[^<]*pukul\s*[\d.:]+)`)
	reIndoDate   = regexp.MustCompile(`(?i)(\d{1,2}\s+(?:Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember)\s+\d{4})`)
)

// ExtractBuyback finds the per-gram repurchase quote. It returns nil when
// none is present or the quote falls outside the per-unit band.
func ExtractBuyback(markup string, v Validator) *models.BuybackRecord {
	for _, re := range []*regexp.Regexp{reBuyback, reBuybackAlt} {
		m := re.FindStringSubmatch(markup)
		if m == nil {
			continue
		}

		price, ok := parseGrouped(m[1])
		if !ok || !v.PerUnit.Contains(float64(price)) {
			continue
		}

		return &models.BuybackRecord{
			Label:              buybackLabel,
			SellPrice:          price,
			FormattedSellPrice: FormatRupiah(price),
		}
	}

	return nil
}

// ExtractUpdateTime returns the page's own "last updated" text, or "".
// The value is informational and never parsed into a timestamp.
func ExtractUpdateTime(markup string) string {
	if m := reUpdateTime.FindStringSubmatch(markup); m != nil {
		return strings.TrimSpace(m[1])
	}

	if m := reIndoDate.FindStringSubmatch(markup); m != nil {
		return m[1]
	}

	return ""
}
