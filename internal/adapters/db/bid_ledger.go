package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/bid"
	"auction-ledger-service/internal/domain/shared"
)

// maxPlaceBidAttempts bounds the optimistic retry loop under contention on a
// single hot auction.
const maxPlaceBidAttempts = 3

// BidLedger is the PostgreSQL-backed bid ledger. Acceptance uses an
// optimistic concurrency check: the auction row update carries the expected
// current highest bid in its WHERE clause, so a concurrent acceptance rolls
// the whole transaction back and the attempt is retried against fresh state.
type BidLedger struct {
	conn *Connection
}

// NewBidLedger creates a new PostgreSQL bid ledger
func NewBidLedger(conn *Connection) *BidLedger {
	return &BidLedger{conn: conn}
}

// PlaceBid accepts the bid iff the auction is effectively active at now and
// amount strictly exceeds the current highest bid. The bid insert and the
// projection update commit in one transaction or not at all.
func (l *BidLedger) PlaceBid(ctx context.Context, auctionID uuid.UUID, userID string, amount shared.Money, now time.Time) (*bid.Bid, error) {
	var lastErr error
	for attempt := 0; attempt < maxPlaceBidAttempts; attempt++ {
		accepted, err := l.tryPlaceBid(ctx, auctionID, userID, amount, now)
		if err == errConcurrentUpdate {
			lastErr = err
			continue
		}
		return accepted, err
	}
	return nil, fmt.Errorf("failed to place bid after %d attempts: %w", maxPlaceBidAttempts, lastErr)
}

var errConcurrentUpdate = fmt.Errorf("auction modified concurrently")

func (l *BidLedger) tryPlaceBid(ctx context.Context, auctionID uuid.UUID, userID string, amount shared.Money, now time.Time) (*bid.Bid, error) {
	var accepted *bid.Bid

	err := l.conn.ExecuteTransaction(func(tx *sql.Tx) error {
		auctionQuery := `
			SELECT current_highest_bid, status, end_time
			FROM auctions
			WHERE id = $1
		`

		var currentHighest int64
		var status string
		var endTime time.Time
		err := tx.QueryRowContext(ctx, auctionQuery, auctionID).Scan(&currentHighest, &status, &endTime)
		if err != nil {
			if err == sql.ErrNoRows {
				return shared.ErrAuctionNotFound
			}
			return fmt.Errorf("failed to get auction for bid: %w", err)
		}

		// Effective status as of the caller's single now; a stored ACTIVE past
		// the end time rejects the bid and the lazy expiry path closes it.
		if status != string(auction.StatusActive) || !now.Before(endTime) {
			return shared.ErrAuctionClosed
		}

		if amount <= shared.Money(currentHighest) {
			return &shared.BidTooLowError{CurrentHighest: shared.Money(currentHighest)}
		}

		bidQuery := `
			INSERT INTO bids (auction_id, seq, user_id, amount, accepted_at)
			VALUES ($1, (SELECT COALESCE(MAX(seq), 0) + 1 FROM bids WHERE auction_id = $1), $2, $3, $4)
			RETURNING seq
		`

		var seq int64
		if err := tx.QueryRowContext(ctx, bidQuery, auctionID, userID, int64(amount), now).Scan(&seq); err != nil {
			return fmt.Errorf("failed to insert bid: %w", err)
		}

		// The expected highest bid in the WHERE clause is the concurrency
		// guard: zero rows affected means another transaction won the race.
		updateQuery := `
			UPDATE auctions
			SET current_highest_bid = $2, current_highest_bidder = $3, updated_at = $4
			WHERE id = $1 AND current_highest_bid = $5
		`

		result, err := tx.ExecContext(ctx, updateQuery, auctionID, int64(amount), userID, now, currentHighest)
		if err != nil {
			return fmt.Errorf("failed to update auction price: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return errConcurrentUpdate
		}

		accepted = &bid.Bid{
			Seq:       seq,
			AuctionID: auctionID,
			UserID:    userID,
			Amount:    amount,
			Timestamp: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// History retrieves all accepted bids for an auction in acceptance order
func (l *BidLedger) History(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	var exists bool
	existsQuery := `SELECT EXISTS (SELECT 1 FROM auctions WHERE id = $1)`
	if err := l.conn.GetDB().QueryRowContext(ctx, existsQuery, auctionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check auction: %w", err)
	}
	if !exists {
		return nil, shared.ErrAuctionNotFound
	}

	query := `
		SELECT seq, auction_id, user_id, amount, accepted_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY seq ASC
	`

	rows, err := l.conn.GetDB().QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bids: %w", err)
	}
	defer rows.Close()

	var bids []*bid.Bid
	for rows.Next() {
		var b bid.Bid
		var amount int64
		if err := rows.Scan(&b.Seq, &b.AuctionID, &b.UserID, &amount, &b.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		b.Amount = shared.Money(amount)
		bids = append(bids, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}
	return bids, nil
}
