package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Houeta/gold-flow/internal/models"
	"github.com/PuerkitoBio/goquery"
)

// maxTextPrices caps how many positional prices the text scan returns.
const maxTextPrices = 5

var reCurrencyPrice = regexp.MustCompile(`Rp\.?\s*(\d{1,3}(?:\.\d{3})+)`)

// TextScan is the low-precision fallback over visible page text.
type TextScan struct {
	validator Validator
}

func NewTextScan(v Validator) *TextScan {
	return &TextScan{validator: v}
}

func (s *TextScan) Origin() models.Origin {
	return models.OriginText
}

func (s *TextScan) Extract(markup string) ([]models.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: markup cannot be parsed as HTML: %w", ErrStrategyParse, err)
	}

	doc.Find("script, style, noscript").Remove()
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	seen := make(map[int64]bool)
	var candidates []models.Candidate

	for _, m := range reCurrencyPrice.FindAllStringSubmatch(text, -1) {
		price, ok := parseGrouped(m[1])
		if !ok || seen[price] {
			continue
		}

		c := models.Candidate{SellPrice: price, Origin: models.OriginText}
		if !s.validator.Accept(c) {
			continue
		}

		seen[price] = true
		c.Label = fmt.Sprintf("Price #%d", len(candidates)+1)
		candidates = append(candidates, c)

		if len(candidates) == maxTextPrices {
			break
		}
	}

	return candidates, nil
}
