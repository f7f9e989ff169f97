package models

import "time"

// Snapshot is one complete structured capture of prices at a point in time.
type Snapshot struct {
	SourceID        string         `json:"sourceId"                  validate:"required"`
	SourceURL       string         `json:"sourceUrl"`
	CapturedAt      time.Time      `json:"capturedAt"                validate:"required"`
	UpdateTimeLabel string         `json:"updateTimeLabel,omitempty"`
	Buyback         *BuybackRecord `json:"buyback,omitempty"`
	Records         []PriceRecord  `json:"records"                   validate:"dive"`
}

// State - the complete state stored in the database.
type State struct {
	PageHash string    `json:"pageHash"`
	Snapshot *Snapshot `json:"snapshot"`
}
