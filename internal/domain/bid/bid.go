package bid

import (
	"time"

	"github.com/google/uuid"

	"auction-ledger-service/internal/domain/shared"
)

// Bid represents an accepted monetary offer against a specific auction. Bids
// are append-only: once accepted they are never mutated or removed.
//
// Seq is allocated per auction under the auction's serialization lock and is
// strictly increasing, so it defines the total acceptance order.
type Bid struct {
	Seq       int64        `json:"bidId"`
	AuctionID uuid.UUID    `json:"auctionId"`
	UserID    string       `json:"userId"`
	Amount    shared.Money `json:"amount"`
	Timestamp time.Time    `json:"timestamp"`
}
