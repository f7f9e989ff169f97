package models

import "strconv"

// Origin identifies the extraction strategy that produced a price.
type Origin string

// Extraction strategies, listed from highest to lowest confidence.
const (
	OriginStructured Origin = "structured"
	OriginEmbedded   Origin = "embedded"
	OriginTable      Origin = "table"
	OriginText       Origin = "text"
)

// UnweightedSentinel is the weight stored on records that carry no nominal weight.
const UnweightedSentinel = 1

// Candidate is an unvalidated price observation produced by a single strategy.
type Candidate struct {
	Weight          float64 // Weight is 0 for unweighted quotes.
	Label           string
	SellPrice       int64
	BuyPrice        *int64
	UpdateTimeLabel string
	Origin          Origin
}

// IsWeighted reports whether the candidate carries a nominal weight.
func (c Candidate) IsWeighted() bool {
	return c.Weight > 0
}

// PriceRecord is one merged price per nominal weight (or per label for live quotes).
type PriceRecord struct {
	Weight                float64 `json:"weight"                      validate:"gt=0"`
	Unweighted            bool    `json:"unweighted,omitempty"`
	Label                 string  `json:"label"                       validate:"required"`
	SellPrice             int64   `json:"sellPrice"                   validate:"gte=0"`
	BuyPrice              *int64  `json:"buyPrice,omitempty"`
	FormattedSellPrice    string  `json:"formattedSellPrice"`
	FormattedBuyPrice     string  `json:"formattedBuyPrice,omitempty"`
	PricePerUnit          int64   `json:"pricePerUnit"`
	FormattedPricePerUnit string  `json:"formattedPricePerUnit,omitempty"`
	OriginStrategy        Origin  `json:"originStrategy"`
}

// Key returns the identity used for merging and comparison:
// the weight for weighted records, the label for unweighted ones.
func (p PriceRecord) Key() string {
	if p.Unweighted {
		return "label:" + p.Label
	}

	return "weight:" + strconv.FormatFloat(p.Weight, 'f', -1, 64)
}

// BuybackRecord is the singleton repurchase quote.
type BuybackRecord struct {
	Label              string `json:"label"              validate:"required"`
	SellPrice          int64  `json:"sellPrice"          validate:"gte=0"`
	BuyPrice           *int64 `json:"buyPrice,omitempty"`
	FormattedSellPrice string `json:"formattedSellPrice"`
	FormattedBuyPrice  string `json:"formattedBuyPrice,omitempty"`
}
