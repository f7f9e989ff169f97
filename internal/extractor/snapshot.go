package extractor

import (
	"slices"
	"time"

	"github.com/Houeta/gold-flow/internal/models"
)

// Meta describes where and when a snapshot was captured.
type Meta struct {
	SourceID   string
	SourceURL  string
	CapturedAt time.Time
}

// Assemble wraps merged records and metadata into a snapshot.
// The records slice is copied so later changes by the caller do not leak in.
func Assemble(
	meta Meta,
	records []models.PriceRecord,
	buyback *models.BuybackRecord,
	updateTime string,
) *models.Snapshot {
	snap := &models.Snapshot{
		SourceID:        meta.SourceID,
		SourceURL:       meta.SourceURL,
		CapturedAt:      meta.CapturedAt,
		UpdateTimeLabel: updateTime,
		Records:         slices.Clone(records),
	}

	if buyback != nil {
		bb := *buyback
		snap.Buyback = &bb
	}

	if snap.Records == nil {
		snap.Records = []models.PriceRecord{}
	}

	return snap
}
