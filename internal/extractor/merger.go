package extractor

import (
	"cmp"
	"slices"

	"github.com/Houeta/gold-flow/internal/models"
)

// Merge combines validated candidates from every strategy into one record set.
//
// Results are ordered by strategy priority before merging, so the outcome does
// not depend on the order the strategies finished in. For weighted candidates
// the first key seen wins, except that a table candidate replaces an earlier
// table candidate for the same weight when its price is higher. Unweighted
// candidates are keyed by label and dropped when their exact price is already
// present on a kept record from a strategy of equal or higher priority.
func Merge(results []StrategyResult) []models.PriceRecord {
	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b StrategyResult) int {
		return cmp.Compare(rank(a.Origin), rank(b.Origin))
	})

	var (
		weighted   []models.Candidate
		unweighted []models.Candidate
		byWeight   = make(map[float64]int)
		byLabel    = make(map[string]bool)
		prices     = make(map[int64]int) // price -> best rank of a kept record
	)

	keepPrice := func(c models.Candidate) {
		r := rank(c.Origin)
		if cur, ok := prices[c.SellPrice]; !ok || r < cur {
			prices[c.SellPrice] = r
		}
	}

	for _, res := range ordered {
		for _, c := range res.Candidates {
			c.Origin = res.Origin
			if !c.IsWeighted() {
				continue
			}

			idx, seen := byWeight[c.Weight]
			switch {
			case !seen:
				byWeight[c.Weight] = len(weighted)
				weighted = append(weighted, c)
			case c.Origin == models.OriginTable &&
				weighted[idx].Origin == models.OriginTable &&
				c.SellPrice > weighted[idx].SellPrice:
				weighted[idx] = c
			}
		}
	}

	for _, c := range weighted {
		keepPrice(c)
	}

	for _, res := range ordered {
		for _, c := range res.Candidates {
			c.Origin = res.Origin
			if c.IsWeighted() || byLabel[c.Label] {
				continue
			}
			if r, ok := prices[c.SellPrice]; ok && r <= rank(c.Origin) {
				continue
			}
			byLabel[c.Label] = true
			keepPrice(c)
			unweighted = append(unweighted, c)
		}
	}

	slices.SortStableFunc(weighted, func(a, b models.Candidate) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	records := make([]models.PriceRecord, 0, len(weighted)+len(unweighted))
	for _, c := range weighted {
		records = append(records, newRecord(c))
	}
	for _, c := range unweighted {
		records = append(records, newRecord(c))
	}

	return records
}

// newRecord derives the display fields and price per unit from a candidate.
func newRecord(c models.Candidate) models.PriceRecord {
	weight := c.Weight
	if !c.IsWeighted() {
		weight = models.UnweightedSentinel
	}

	ppu := pricePerUnit(c.SellPrice, weight)
	rec := models.PriceRecord{
		Weight:                weight,
		Unweighted:            !c.IsWeighted(),
		Label:                 c.Label,
		SellPrice:             c.SellPrice,
		FormattedSellPrice:    FormatRupiah(c.SellPrice),
		PricePerUnit:          ppu,
		FormattedPricePerUnit: FormatRupiah(ppu) + "/gram",
		OriginStrategy:        c.Origin,
	}

	if c.BuyPrice != nil {
		buy := *c.BuyPrice
		rec.BuyPrice = &buy
		rec.FormattedBuyPrice = FormatRupiah(buy)
	}

	return rec
}
