package auction

import (
	"time"

	"github.com/google/uuid"

	"auction-ledger-service/internal/domain/shared"
)

// Status represents the lifecycle state of an auction
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusEnded  Status = "ENDED"
)

// Auction represents a sellable item with a time-bounded bidding window and a
// tracked highest bid. CurrentHighestBid/CurrentHighestBidder are a cached
// projection of the last accepted bid; the bid ledger is the source of truth.
type Auction struct {
	ID                   uuid.UUID    `json:"auctionId"`
	ItemName             string       `json:"itemName"`
	ItemDescription      string       `json:"itemDescription"`
	Category             string       `json:"category"`
	SellerID             string       `json:"sellerId"`
	BasePrice            shared.Money `json:"basePrice"`
	CurrentHighestBid    shared.Money `json:"currentHighestBid"`
	CurrentHighestBidder string       `json:"currentHighestBidder,omitempty"`
	StartTime            time.Time    `json:"startTime"`
	EndTime              time.Time    `json:"endTime"`
	Status               Status       `json:"status"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// IsActive returns true if the stored status is active
func (a *Auction) IsActive() bool {
	return a.Status == StatusActive
}

// IsEnded returns true if the auction has ended
func (a *Auction) IsEnded() bool {
	return a.Status == StatusEnded
}

// Expired reports whether the bidding window has passed at the given time.
func (a *Auction) Expired(now time.Time) bool {
	return !now.Before(a.EndTime)
}

// EffectiveStatus computes the status as of now, independent of whether a
// sweep has already written ENDED. ENDED is terminal and never reversed.
func (a *Auction) EffectiveStatus(now time.Time) Status {
	if a.Status == StatusEnded || a.Expired(now) {
		return StatusEnded
	}
	return StatusActive
}

// CanBid returns true if a bid can be accepted at the given time
func (a *Auction) CanBid(now time.Time) bool {
	return a.EffectiveStatus(now) == StatusActive
}

// TimeRemaining returns the time left in the bidding window, floored at zero.
// Display only; acceptance decisions use EffectiveStatus against EndTime.
func (a *Auction) TimeRemaining(now time.Time) time.Duration {
	remaining := a.EndTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasBids returns true if at least one bid has ever been accepted
func (a *Auction) HasBids() bool {
	return a.CurrentHighestBidder != ""
}

// ApplyBid updates the highest-bid projection after an accepted bid. Callers
// must hold the auction's serialization lock.
func (a *Auction) ApplyBid(bidderID string, amount shared.Money, now time.Time) {
	a.CurrentHighestBid = amount
	a.CurrentHighestBidder = bidderID
	a.UpdatedAt = now
}

// Close marks the auction as ended. Idempotent; ENDED is never reversed.
func (a *Auction) Close(now time.Time) {
	if a.Status == StatusActive {
		a.Status = StatusEnded
		a.UpdatedAt = now
	}
}
