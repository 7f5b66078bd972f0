package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/shared"
)

// AuctionStore is the PostgreSQL-backed auction store. Prices are stored as
// BIGINT minor units.
type AuctionStore struct {
	conn *Connection
}

// NewAuctionStore creates a new PostgreSQL auction store
func NewAuctionStore(conn *Connection) *AuctionStore {
	return &AuctionStore{conn: conn}
}

const auctionColumns = `id, item_name, item_description, category, seller_id,
		base_price, current_highest_bid, current_highest_bidder,
		start_time, end_time, status, created_at, updated_at`

// Create persists a new auction
func (s *AuctionStore) Create(ctx context.Context, a *auction.Auction) error {
	query := `
		INSERT INTO auctions (` + auctionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.conn.GetDB().ExecContext(ctx, query,
		a.ID,
		a.ItemName,
		a.ItemDescription,
		a.Category,
		a.SellerID,
		int64(a.BasePrice),
		int64(a.CurrentHighestBid),
		nullableBidder(a.CurrentHighestBidder),
		a.StartTime,
		a.EndTime,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

// GetByID retrieves an auction by ID
func (s *AuctionStore) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	a, err := scanAuction(s.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return a, nil
}

// List retrieves all auctions in creation order
func (s *AuctionStore) List(ctx context.Context) ([]*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions ORDER BY created_at ASC, id ASC`

	rows, err := s.conn.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*auction.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}
	return auctions, nil
}

// ExpireIfDue idempotently closes the auction once its end time has passed
// and returns the current record.
func (s *AuctionStore) ExpireIfDue(ctx context.Context, id uuid.UUID, now time.Time) (*auction.Auction, error) {
	query := `
		UPDATE auctions
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4 AND end_time <= $3
	`

	if _, err := s.conn.GetDB().ExecContext(ctx, query, id, auction.StatusEnded, now, auction.StatusActive); err != nil {
		return nil, fmt.Errorf("failed to expire auction: %w", err)
	}
	return s.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuction(row rowScanner) (*auction.Auction, error) {
	var a auction.Auction
	var basePrice, highestBid int64
	var bidder sql.NullString

	err := row.Scan(
		&a.ID,
		&a.ItemName,
		&a.ItemDescription,
		&a.Category,
		&a.SellerID,
		&basePrice,
		&highestBid,
		&bidder,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.BasePrice = shared.Money(basePrice)
	a.CurrentHighestBid = shared.Money(highestBid)
	if bidder.Valid {
		a.CurrentHighestBidder = bidder.String
	}
	return &a, nil
}

func nullableBidder(bidder string) sql.NullString {
	return sql.NullString{String: bidder, Valid: bidder != ""}
}
