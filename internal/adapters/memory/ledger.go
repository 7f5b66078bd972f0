package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auction-ledger-service/internal/domain/bid"
	"auction-ledger-service/internal/domain/shared"
)

// PlaceBid accepts or rejects a bid under the target auction's lock. The
// expiry check, the strict > comparison, the append and the projection update
// all happen inside that lock, so acceptance is one indivisible step and the
// sequence numbers define the total order of acceptance.
func (s *Store) PlaceBid(ctx context.Context, auctionID uuid.UUID, userID string, amount shared.Money, now time.Time) (*bid.Bid, error) {
	e, ok := s.get(auctionID)
	if !ok {
		return nil, shared.ErrAuctionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Apply the expiry rule with the caller's single now, so a bid racing the
	// deadline is resolved against one authoritative clock read.
	if e.auction.IsActive() && e.auction.Expired(now) {
		e.auction.Close(now)
	}
	if !e.auction.IsActive() {
		return nil, shared.ErrAuctionClosed
	}

	if amount <= e.auction.CurrentHighestBid {
		return nil, &shared.BidTooLowError{CurrentHighest: e.auction.CurrentHighestBid}
	}

	accepted := &bid.Bid{
		Seq:       e.nextSeq,
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		Timestamp: now,
	}
	e.nextSeq++
	e.bids = append(e.bids, accepted)
	e.auction.ApplyBid(userID, amount, now)

	s.logger.Debug().
		Str("auction_id", auctionID.String()).
		Int64("bid_seq", accepted.Seq).
		Str("amount", amount.String()).
		Msg("Bid accepted")

	result := *accepted
	return &result, nil
}

// History retrieves all accepted bids for an auction in acceptance order
func (s *Store) History(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	e, ok := s.get(auctionID)
	if !ok {
		return nil, shared.ErrAuctionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	bids := make([]*bid.Bid, len(e.bids))
	for i, b := range e.bids {
		copied := *b
		bids[i] = &copied
	}
	return bids, nil
}
