package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/bid"
	"auction-ledger-service/internal/domain/shared"
)

// AuctionService defines the interface for auction lifecycle operations
type AuctionService interface {
	// CreateAuction validates the request and creates a new active auction
	CreateAuction(ctx context.Context, req CreateAuctionRequest) (*auction.Auction, error)

	// GetAuction retrieves an auction by ID with expiry applied as of the read
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)

	// ListAuctions retrieves all auctions with expiry applied as of the read
	ListAuctions(ctx context.Context) ([]*auction.Auction, error)
}

// BidService defines the interface for bid operations
type BidService interface {
	// PlaceBid places a new bid on an auction
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*bid.Bid, error)

	// GetBidHistory retrieves bids for an auction in acceptance order
	GetBidHistory(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error)

	// TimeRemaining computes the display-only remaining window for an auction
	TimeRemaining(a *auction.Auction, now time.Time) time.Duration
}

// request to create an auction
type CreateAuctionRequest struct {
	ItemName        string       `json:"itemName"`
	ItemDescription string       `json:"itemDescription"`
	SellerID        string       `json:"sellerId"`
	BasePrice       shared.Money `json:"basePrice"`
	DurationMinutes int64        `json:"duration"`
	Category        string       `json:"category"`
}

// request to place a bid
type PlaceBidRequest struct {
	AuctionID uuid.UUID    `json:"auctionId"`
	UserID    string       `json:"userId"`
	Amount    shared.Money `json:"amount"`
}
