package shared

import (
	"errors"
	"fmt"
)

// Domain-specific errors
var (
	// Auction errors
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAuctionClosed   = errors.New("auction is closed")

	// Creation validation errors
	ErrItemNameRequired    = errors.New("item name is required")
	ErrDescriptionRequired = errors.New("item description is required")
	ErrCategoryRequired    = errors.New("category is required")
	ErrSellerRequired      = errors.New("seller id is required")
	ErrInvalidBasePrice    = errors.New("base price must be greater than 0")
	ErrInvalidDuration     = errors.New("duration must be greater than 0")

	// Bid validation errors
	ErrBidderRequired   = errors.New("bidder id is required")
	ErrInvalidBidAmount = errors.New("bid amount must be greater than 0")

	// Broadcasting errors
	ErrBroadcastFailed = errors.New("broadcast failed")

	// WebSocket message validation errors
	ErrMessageTypeRequired = errors.New("message type is required")
	ErrAuctionIDRequired   = errors.New("auction_id is required")
	ErrUnknownMessageType  = errors.New("unknown message type")
)

// BidTooLowError rejects a bid that does not strictly exceed the current
// highest bid. It carries the value to beat so callers can resubmit.
type BidTooLowError struct {
	CurrentHighest Money
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount must be greater than current highest bid (%s)", e.CurrentHighest)
}

// IsInvalidSpec reports whether err belongs to the creation/bid input
// validation class. These are never retried; the caller must correct input.
func IsInvalidSpec(err error) bool {
	for _, target := range []error{
		ErrItemNameRequired,
		ErrDescriptionRequired,
		ErrCategoryRequired,
		ErrSellerRequired,
		ErrInvalidBasePrice,
		ErrInvalidDuration,
		ErrBidderRequired,
		ErrInvalidBidAmount,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
