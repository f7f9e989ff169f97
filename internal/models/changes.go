package models

// ChangeKind classifies a single detected change.
type ChangeKind string

const (
	ChangeNew     ChangeKind = "NEW"
	ChangePrice   ChangeKind = "PRICE_CHANGE"
	ChangeBuyback ChangeKind = "BUYBACK_CHANGE"
)

// Direction of a price movement.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// ChangeRecord - information about one changed price.
type ChangeRecord struct {
	Kind                  ChangeKind `json:"kind"`
	Label                 string     `json:"label"`
	Weight                *float64   `json:"weight,omitempty"`
	OldSellPrice          *int64     `json:"oldSellPrice,omitempty"`
	NewSellPrice          int64      `json:"newSellPrice"`
	OldFormattedSellPrice string     `json:"oldFormattedSellPrice,omitempty"`
	NewFormattedSellPrice string     `json:"newFormattedSellPrice"`
	Difference            *int64     `json:"difference,omitempty"`
	DifferencePercent     *float64   `json:"differencePercent,omitempty"`
	Direction             Direction  `json:"direction,omitempty"`
}

// ComparisonResult - comparison result between a new snapshot and the stored baseline.
type ComparisonResult struct {
	HasChanged  bool           `json:"hasChanged"`
	IsFirstRun  bool           `json:"isFirstRun"`
	ChangeCount int            `json:"changeCount"`
	Changes     []ChangeRecord `json:"changes"`
	Message     string         `json:"message"`
}
