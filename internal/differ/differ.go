// Package differ classifies the changes between two price snapshots.
package differ

import (
	"errors"
	"fmt"

	"github.com/Houeta/gold-flow/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	buybackLabel = "Harga Buyback"

	MessageFirstRun = "Pertama kali dijalankan - belum ada data sebelumnya"
	MessageNoChange = "Tidak ada perubahan harga"
)

// ErrComparisonImpossible is returned when a snapshot is missing or malformed.
var ErrComparisonImpossible = errors.New("comparison impossible")

var validate = validator.New()

// Compare diffs newSnap against the previous baseline oldSnap.
// A nil oldSnap is a first run and always reports a change.
// Records present only in oldSnap are not reported.
func Compare(newSnap, oldSnap *models.Snapshot) (*models.ComparisonResult, error) {
	if newSnap == nil {
		return nil, fmt.Errorf("%w: new snapshot is nil", ErrComparisonImpossible)
	}

	if oldSnap == nil {
		return &models.ComparisonResult{
			HasChanged: true,
			IsFirstRun: true,
			Changes:    []models.ChangeRecord{},
			Message:    MessageFirstRun,
		}, nil
	}

	if err := validate.Struct(oldSnap); err != nil {
		return nil, fmt.Errorf("%w: stored snapshot is malformed: %w", ErrComparisonImpossible, err)
	}

	oldByKey := make(map[string]models.PriceRecord, len(oldSnap.Records))
	for _, rec := range oldSnap.Records {
		oldByKey[rec.Key()] = rec
	}

	changes := []models.ChangeRecord{}
	for _, rec := range newSnap.Records {
		old, found := oldByKey[rec.Key()]
		weight := rec.Weight

		switch {
		case !found:
			changes = append(changes, models.ChangeRecord{
				Kind:                  models.ChangeNew,
				Label:                 rec.Label,
				Weight:                &weight,
				NewSellPrice:          rec.SellPrice,
				NewFormattedSellPrice: rec.FormattedSellPrice,
			})
		case old.SellPrice != rec.SellPrice:
			change := priceChange(models.ChangePrice, rec.Label, old.SellPrice, rec.SellPrice)
			change.Weight = &weight
			change.OldFormattedSellPrice = old.FormattedSellPrice
			change.NewFormattedSellPrice = rec.FormattedSellPrice
			changes = append(changes, change)
		}
	}

	if newSnap.Buyback != nil && oldSnap.Buyback != nil &&
		newSnap.Buyback.SellPrice != oldSnap.Buyback.SellPrice {
		change := priceChange(models.ChangeBuyback, buybackLabel, oldSnap.Buyback.SellPrice, newSnap.Buyback.SellPrice)
		change.OldFormattedSellPrice = oldSnap.Buyback.FormattedSellPrice
		change.NewFormattedSellPrice = newSnap.Buyback.FormattedSellPrice
		changes = append(changes, change)
	}

	return &models.ComparisonResult{
		HasChanged:  len(changes) > 0,
		IsFirstRun:  false,
		ChangeCount: len(changes),
		Changes:     changes,
		Message:     message(len(changes)),
	}, nil
}

// priceChange fills the difference, percent and direction of a price move.
// The percent is left unset when the old price is zero.
func priceChange(kind models.ChangeKind, label string, oldPrice, newPrice int64) models.ChangeRecord {
	diff := newPrice - oldPrice

	change := models.ChangeRecord{
		Kind:         kind,
		Label:        label,
		OldSellPrice: &oldPrice,
		NewSellPrice: newPrice,
		Difference:   &diff,
		Direction:    models.DirectionDown,
	}

	if diff > 0 {
		change.Direction = models.DirectionUp
	}

	if oldPrice != 0 {
		pct, _ := decimal.NewFromInt(diff).
			Div(decimal.NewFromInt(oldPrice)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			Float64()
		change.DifferencePercent = &pct
	}

	return change
}

func message(count int) string {
	if count == 0 {
		return MessageNoChange
	}

	return fmt.Sprintf("Ditemukan %d perubahan harga", count)
}
