// Package notifier formats detected price changes and delivers them downstream.
package notifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Houeta/gold-flow/internal/extractor"
	"github.com/Houeta/gold-flow/internal/models"
	"github.com/google/uuid"
)

// EventPriceUpdate is the event name of every payload.
const EventPriceUpdate = "GOLD_PRICE_UPDATE"

// wib is Western Indonesia Time, the zone the source publishes prices in.
var wib = time.FixedZone("WIB", 7*60*60)

// Payload is the document delivered to every notifier.
type Payload struct {
	ID            string                `json:"id"`
	Event         string                `json:"event"`
	Timestamp     time.Time             `json:"timestamp"`
	Source        string                `json:"source"`
	URL           string                `json:"url"`
	HasChanged    bool                  `json:"hasChanged"`
	IsFirstRun    bool                  `json:"isFirstRun"`
	ChangeCount   int                   `json:"changeCount"`
	Message       string                `json:"message"`
	Changes       []models.ChangeRecord `json:"changes"`
	CurrentPrices []models.PriceRecord  `json:"currentPrices"`
	Buyback       *models.BuybackRecord `json:"buyback,omitempty"`
	UpdateTime    string                `json:"updateTime,omitempty"`
	Summary       string                `json:"summary"`
}

// FormatPayload builds the payload for a snapshot and its comparison result.
func FormatPayload(snap *models.Snapshot, cmp *models.ComparisonResult, now time.Time) *Payload {
	changes := cmp.Changes
	if changes == nil {
		changes = []models.ChangeRecord{}
	}

	prices := snap.Records
	if prices == nil {
		prices = []models.PriceRecord{}
	}

	return &Payload{
		ID:            uuid.NewString(),
		Event:         EventPriceUpdate,
		Timestamp:     now.UTC(),
		Source:        snap.SourceID,
		URL:           snap.SourceURL,
		HasChanged:    cmp.HasChanged,
		IsFirstRun:    cmp.IsFirstRun,
		ChangeCount:   cmp.ChangeCount,
		Message:       cmp.Message,
		Changes:       changes,
		CurrentPrices: prices,
		Buyback:       snap.Buyback,
		UpdateTime:    snap.UpdateTimeLabel,
		Summary:       Summary(snap, cmp, now),
	}
}

// Summary renders a short human-readable notification text.
func Summary(snap *models.Snapshot, cmp *models.ComparisonResult, now time.Time) string {
	stamp := now.In(wib).Format("2/1/2006 15.04.05 MST")

	if cmp.IsFirstRun {
		return "🥇 Gold Price Monitor aktif! Memantau harga dari " + snap.SourceID
	}

	if !cmp.HasChanged {
		return fmt.Sprintf("✅ Tidak ada perubahan harga emas (%s)", stamp)
	}

	lines := []string{"🔔 Update Harga Emas - " + stamp}
	for _, c := range cmp.Changes {
		lines = append(lines, changeLine(c))
	}

	return strings.Join(lines, "\n")
}

func changeLine(c models.ChangeRecord) string {
	price := c.NewFormattedSellPrice
	if price == "" {
		price = extractor.FormatRupiah(c.NewSellPrice)
	}

	if c.Kind == models.ChangeNew {
		return fmt.Sprintf("🆕 %s: Jual %s", c.Label, price)
	}

	arrow := "↓"
	if c.Direction == models.DirectionUp {
		arrow = "↑"
	}

	line := fmt.Sprintf("%s %s: Jual %s", arrow, c.Label, price)
	if c.DifferencePercent != nil {
		pct := strconv.FormatFloat(*c.DifferencePercent, 'f', -1, 64)
		if *c.DifferencePercent > 0 {
			pct = "+" + pct
		}
		line += " (" + pct + "%)"
	}

	return line
}
