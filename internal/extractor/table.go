package extractor

import (
	"regexp"
	"slices"

	"github.com/Houeta/gold-flow/internal/models"
)

// KnownWeights are the nominal bar denominations in grams, largest first.
var KnownWeights = []float64{1000, 500, 250, 100, 50, 25, 10, 5, 2, 1, 0.5}

// reTableRow is the generic "weight [unit] ... grouped price" row pattern.
// The unit is optional; only known denominations are accepted from it.
var reTableRow = regexp.MustCompile(`(?i)(?:^|[^\d.,])(\d+(?:[.,]\d+)?)\s*(?:gram|gr|g)?\s*[^\d]*?(\d{1,3}(?:\.\d{3})+)`)

type weightPattern struct {
	weight float64
	re     *regexp.Regexp
}

// TableHeuristic pairs known weight tokens with the grouped numeral that follows them.
type TableHeuristic struct {
	validator Validator
	patterns  []weightPattern
}

func NewTableHeuristic(v Validator) *TableHeuristic {
	patterns := make([]weightPattern, 0, len(KnownWeights))
	for _, w := range KnownWeights {
		token := regexp.QuoteMeta(formatWeight(w))
		if w == 0.5 {
			token = `0[.,]5`
		}

		patterns = append(patterns, weightPattern{
			weight: w,
			// Neither side of the token may touch a digit or a separator, so "5"
			// never matches inside "25", "0,5" or "5.938.000".
			re: regexp.MustCompile(`(?:^|[^\d.,])` + token + `[^\d.,][^\d]{0,49}?(\d{1,3}(?:\.\d{3}){2,3})`),
		})
	}

	return &TableHeuristic{validator: v, patterns: patterns}
}

func (s *TableHeuristic) Origin() models.Origin {
	return models.OriginTable
}

// Extract keeps, per weight, the maximum price inside the plausibility band.
// Truncated matches on a digit run always undershoot the real number, so the
// largest valid value is taken as the price.
func (s *TableHeuristic) Extract(markup string) ([]models.Candidate, error) {
	best := make(map[float64]int64, len(KnownWeights))

	offer := func(weight float64, price int64) {
		c := models.Candidate{Weight: weight, SellPrice: price}
		if !s.validator.Accept(c) {
			return
		}
		if cur, ok := best[weight]; !ok || price > cur {
			best[weight] = price
		}
	}

	for _, m := range reTableRow.FindAllStringSubmatch(markup, -1) {
		weight, ok := parseWeight(m[1])
		if !ok || !slices.Contains(KnownWeights, weight) {
			continue
		}
		if price, ok := parseGrouped(m[2]); ok {
			offer(weight, price)
		}
	}

	for _, p := range s.patterns {
		for _, m := range p.re.FindAllStringSubmatch(markup, -1) {
			if price, ok := parseGrouped(m[1]); ok {
				offer(p.weight, price)
			}
		}
	}

	var candidates []models.Candidate
	for _, w := range KnownWeights {
		price, ok := best[w]
		if !ok {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Weight:    w,
			Label:     weightLabel(w),
			SellPrice: price,
			Origin:    models.OriginTable,
		})
	}

	return candidates, nil
}
