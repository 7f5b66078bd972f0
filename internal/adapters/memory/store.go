package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/bid"
	"auction-ledger-service/internal/domain/shared"
)

// entry holds one auction together with its bid history. mu serializes every
// mutation of the highest-bid projection and every append to bids, so two
// concurrent bids for the same auction can never both be accepted as highest.
// Entries for different auctions have independent locks.
type entry struct {
	mu      sync.Mutex
	auction auction.Auction
	bids    []*bid.Bid
	nextSeq int64
}

// Store is an in-memory implementation of both the auction store and the bid
// ledger. The two share per-auction entries because the acceptance decision
// and the projection update must commit as one step.
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	order   []uuid.UUID
	logger  zerolog.Logger
}

// NewStore creates an empty in-memory store
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		entries: make(map[uuid.UUID]*entry),
		logger:  logger.With().Str("component", "memory_store").Logger(),
	}
}

func (s *Store) get(id uuid.UUID) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Create persists a new auction
func (s *Store) Create(ctx context.Context, a *auction.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[a.ID] = &entry{
		auction: *a,
		nextSeq: 1,
	}
	s.order = append(s.order, a.ID)

	s.logger.Debug().Str("auction_id", a.ID.String()).Msg("Auction stored")
	return nil
}

// GetByID retrieves a copy of an auction by ID
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	e, ok := s.get(id)
	if !ok {
		return nil, shared.ErrAuctionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.auction
	return &a, nil
}

// List retrieves copies of all auctions in creation order
func (s *Store) List(ctx context.Context) ([]*auction.Auction, error) {
	s.mu.RLock()
	ids := make([]uuid.UUID, len(s.order))
	copy(ids, s.order)
	s.mu.RUnlock()

	auctions := make([]*auction.Auction, 0, len(ids))
	for _, id := range ids {
		e, ok := s.get(id)
		if !ok {
			continue
		}
		e.mu.Lock()
		a := e.auction
		e.mu.Unlock()
		auctions = append(auctions, &a)
	}
	return auctions, nil
}

// ExpireIfDue idempotently closes the auction once its end time has passed
// and returns the current record.
func (s *Store) ExpireIfDue(ctx context.Context, id uuid.UUID, now time.Time) (*auction.Auction, error) {
	e, ok := s.get(id)
	if !ok {
		return nil, shared.ErrAuctionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.auction.IsActive() && e.auction.Expired(now) {
		e.auction.Close(now)
		s.logger.Info().
			Str("auction_id", id.String()).
			Time("end_time", e.auction.EndTime).
			Msg("Auction expired")
	}

	a := e.auction
	return &a, nil
}
