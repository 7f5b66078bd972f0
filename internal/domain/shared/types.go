package shared

import "github.com/google/uuid"

// AuctionEndResult represents the outcome of closing an auction
type AuctionEndResult struct {
	AuctionID  uuid.UUID
	WinnerID   *string
	FinalPrice *Money
	Status     string
}
