package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/gold-flow/internal/models"
	"github.com/Houeta/gold-flow/internal/repository"
)

var errNilSnapshot = errors.New("state has no snapshot")

const selectRecords = `SELECT weight, unweighted, label, sell_price, buy_price, formatted_sell_price,
	formatted_buy_price, price_per_unit, formatted_price_per_unit, origin_strategy
	FROM price_records ORDER BY position`

const insertRecord = `INSERT INTO price_records (position, weight, unweighted, label, sell_price, buy_price,
	formatted_sell_price, formatted_buy_price, price_per_unit, formatted_price_per_unit, origin_strategy)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// GetState implements an interface method for retrieving state from the database.
func (r *Repository) GetState(ctx context.Context) (*models.State, error) {
	const opn = "repository.sqlite.GetState"

	// 1. Page hash and snapshot metadata.
	var (
		state      models.State
		snap       models.Snapshot
		capturedAt string
	)
	err := r.db.QueryRowContext(
		ctx,
		"SELECT page_hash, source_id, source_url, captured_at, update_time_label FROM page_state WHERE id = 1",
	).Scan(&state.PageHash, &snap.SourceID, &snap.SourceURL, &capturedAt, &snap.UpdateTimeLabel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrStateNotFound
		}
		return nil, fmt.Errorf("%s: failed to get page state: %w", opn, err)
	}

	if snap.CapturedAt, err = time.Parse(time.RFC3339Nano, capturedAt); err != nil {
		return nil, fmt.Errorf("%s: failed to parse captured_at: %w", opn, err)
	}

	// 2. Optional buyback quote.
	if snap.Buyback, err = r.getBuyback(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	// 3. Price records in insertion order.
	if snap.Records, err = r.getRecords(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	state.Snapshot = &snap

	return &state, nil
}

func (r *Repository) getBuyback(ctx context.Context) (*models.BuybackRecord, error) {
	var (
		bb  models.BuybackRecord
		buy sql.NullInt64
	)

	err := r.db.QueryRowContext(
		ctx,
		"SELECT label, sell_price, buy_price, formatted_sell_price, formatted_buy_price FROM buyback WHERE id = 1",
	).Scan(&bb.Label, &bb.SellPrice, &buy, &bb.FormattedSellPrice, &bb.FormattedBuyPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // a missing buyback is a valid state
		}
		return nil, fmt.Errorf("failed to get buyback: %w", err)
	}

	bb.BuyPrice = fromNull(buy)

	return &bb, nil
}

func (r *Repository) getRecords(ctx context.Context) ([]models.PriceRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to get price records: %w", err)
	}
	defer rows.Close()

	records := []models.PriceRecord{}
	for rows.Next() {
		var (
			rec models.PriceRecord
			buy sql.NullInt64
		)
		if err = rows.Scan(
			&rec.Weight, &rec.Unweighted, &rec.Label, &rec.SellPrice, &buy, &rec.FormattedSellPrice,
			&rec.FormattedBuyPrice, &rec.PricePerUnit, &rec.FormattedPricePerUnit, &rec.OriginStrategy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		rec.BuyPrice = fromNull(buy)
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// UpdateState atomically replaces the stored state using a transaction.
func (r *Repository) UpdateState(ctx context.Context, state *models.State) error {
	const opn = "repository.sqlite.UpdateState"

	if state == nil || state.Snapshot == nil {
		return fmt.Errorf("%s: %w", opn, errNilSnapshot)
	}
	snap := state.Snapshot

	// 1. begin transaction
	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // the error after a successful commit is sql.ErrTxDone

	// 2. Update (or insert) hash of page and snapshot metadata.
	_, err = tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO page_state (id, page_hash, source_id, source_url, captured_at, update_time_label)
		VALUES (1, ?, ?, ?, ?, ?)`,
		state.PageHash, snap.SourceID, snap.SourceURL,
		snap.CapturedAt.Format(time.RFC3339Nano), snap.UpdateTimeLabel,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to update page state: %w", opn, err)
	}

	// 3. Replace the buyback quote.
	if _, err = tx.ExecContext(ctx, "DELETE FROM buyback"); err != nil {
		return fmt.Errorf("%s: failed to delete old buyback: %w", opn, err)
	}

	if bb := snap.Buyback; bb != nil {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO buyback (id, label, sell_price, buy_price, formatted_sell_price, formatted_buy_price)
			VALUES (1, ?, ?, ?, ?, ?)`,
			bb.Label, bb.SellPrice, toNull(bb.BuyPrice), bb.FormattedSellPrice, bb.FormattedBuyPrice,
		)
		if err != nil {
			return fmt.Errorf("%s: failed to insert buyback: %w", opn, err)
		}
	}

	// 4. Completely clear the records table to record the new current state.
	if _, err = tx.ExecContext(ctx, "DELETE FROM price_records"); err != nil {
		return fmt.Errorf("%s: failed to delete old price records: %w", opn, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare insert statement: %w", opn, err)
	}
	defer stmt.Close()

	// 5. Insert each record, keeping its position.
	for i, rec := range snap.Records {
		if _, err = stmt.ExecContext(
			ctx, i, rec.Weight, rec.Unweighted, rec.Label, rec.SellPrice, toNull(rec.BuyPrice),
			rec.FormattedSellPrice, rec.FormattedBuyPrice, rec.PricePerUnit, rec.FormattedPricePerUnit,
			string(rec.OriginStrategy),
		); err != nil {
			return fmt.Errorf("%s: failed to insert price record %s: %w", opn, rec.Key(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

func toNull(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNull(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}

	n := v.Int64
	return &n
}
