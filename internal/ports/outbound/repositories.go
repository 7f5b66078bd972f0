package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/bid"
	"auction-ledger-service/internal/domain/shared"
)

// AuctionStore owns the durable set of auction records and their lifecycle
// state. Implementations must allocate per-auction locking so operations on
// different auctions never contend with each other.
type AuctionStore interface {
	// Create persists a new auction
	Create(ctx context.Context, a *auction.Auction) error

	// GetByID retrieves an auction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error)

	// List retrieves all auctions in creation order
	List(ctx context.Context) ([]*auction.Auction, error)

	// ExpireIfDue idempotently transitions ACTIVE->ENDED when now has passed
	// the auction's end time, and returns the current record either way.
	ExpireIfDue(ctx context.Context, id uuid.UUID, now time.Time) (*auction.Auction, error)
}

// BidLedger is the single arbiter of bid acceptance and the holder of
// per-auction bid history.
type BidLedger interface {
	// PlaceBid accepts the bid iff the auction is effectively active at now
	// and amount strictly exceeds the current highest bid. Acceptance appends
	// the bid and updates the auction's highest-bid projection as one
	// indivisible step with respect to other PlaceBid calls for the same
	// auction.
	PlaceBid(ctx context.Context, auctionID uuid.UUID, userID string, amount shared.Money, now time.Time) (*bid.Bid, error)

	// History retrieves all accepted bids for an auction in acceptance order
	History(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error)
}
