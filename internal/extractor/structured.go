package extractor

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Houeta/gold-flow/internal/models"
	"github.com/PuerkitoBio/goquery"
)

// currency is the only price currency accepted from structured metadata.
const currency = "IDR"

var reNameWeight = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:gram|gr|g)\b`)

// StructuredData reads schema.org Product/Offer blocks from JSON-LD scripts.
type StructuredData struct{}

func NewStructuredData() *StructuredData {
	return &StructuredData{}
}

func (s *StructuredData) Origin() models.Origin {
	return models.OriginStructured
}

func (s *StructuredData) Extract(markup string) ([]models.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: markup cannot be parsed as HTML: %w", ErrStrategyParse, err)
	}

	blocks := doc.Find(`script[type="application/ld+json"]`)
	if blocks.Length() == 0 {
		return nil, nil
	}

	var (
		candidates []models.Candidate
		parsed     int
		lastErr    error
	)

	blocks.Each(func(_ int, sel *goquery.Selection) {
		var root any
		if err := json.Unmarshal([]byte(strings.TrimSpace(sel.Text())), &root); err != nil {
			lastErr = err
			return
		}
		parsed++

		walkJSON(root, func(obj map[string]any) {
			if c, ok := offerCandidate(obj); ok {
				candidates = append(candidates, c)
			}
		})
	})

	if parsed == 0 {
		return nil, fmt.Errorf("%w: no decodable JSON-LD block: %w", ErrStrategyParse, lastErr)
	}

	return candidates, nil
}

// walkJSON calls fn for every object in the decoded tree, depth first,
// visiting object keys in sorted order so the output is deterministic.
func walkJSON(v any, fn func(map[string]any)) {
	switch node := v.(type) {
	case map[string]any:
		fn(node)
		for _, key := range slices.Sorted(maps.Keys(node)) {
			walkJSON(node[key], fn)
		}
	case []any:
		for _, child := range node {
			walkJSON(child, fn)
		}
	}
}

// offerCandidate builds a candidate from a product-like object carrying offers.
func offerCandidate(obj map[string]any) (models.Candidate, bool) {
	offers, ok := obj["offers"]
	if !ok {
		return models.Candidate{}, false
	}

	offer, ok := firstOffer(offers)
	if !ok {
		return models.Candidate{}, false
	}

	if cur, _ := offer["priceCurrency"].(string); !strings.EqualFold(cur, currency) {
		return models.Candidate{}, false
	}

	price, ok := jsonInt(offer["price"])
	if !ok {
		return models.Candidate{}, false
	}

	name, _ := obj["name"].(string)
	name = strings.TrimSpace(name)

	c := models.Candidate{
		Label:     name,
		SellPrice: price,
		Origin:    models.OriginStructured,
	}

	if w, ok := jsonWeight(obj["weight"]); ok {
		c.Weight = w
	} else if m := reNameWeight.FindStringSubmatch(name); m != nil {
		c.Weight, _ = parseWeight(m[1])
	}

	if c.IsWeighted() {
		c.Label = weightLabel(c.Weight)
	} else if c.Label == "" {
		c.Label = "Structured price"
	}

	return c, true
}

func firstOffer(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case []any:
		for _, item := range o {
			if m, ok := item.(map[string]any); ok {
				return m, true
			}
		}
	}

	return nil, false
}

// jsonInt accepts a JSON number, a plain digit string, or a grouped numeral string.
func jsonInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return int64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil && !strings.Contains(n, ",") {
			if f < 0 {
				return 0, false
			}
			return int64(f), true
		}
		return parseGrouped(n)
	}

	return 0, false
}

// jsonWeight accepts {"value": 5, "unitCode": "GRM"} or a bare number, in grams.
func jsonWeight(v any) (float64, bool) {
	switch w := v.(type) {
	case float64:
		return w, w > 0
	case string:
		return parseWeight(w)
	case map[string]any:
		if unit, _ := w["unitCode"].(string); unit != "" && !strings.EqualFold(unit, "GRM") {
			return 0, false
		}
		return jsonWeight(w["value"])
	}

	return 0, false
}
