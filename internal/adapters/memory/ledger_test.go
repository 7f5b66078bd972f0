package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"auction-ledger-service/internal/domain/shared"
)

func TestPlaceBid_AcceptAndReject(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	accepted, err := store.PlaceBid(ctx, a.ID, "alice", shared.Money(1500), now)
	require.NoError(t, err)
	require.Equal(t, int64(1), accepted.Seq)
	require.Equal(t, "alice", accepted.UserID)
	require.Equal(t, shared.Money(1500), accepted.Amount)
	require.Equal(t, now, accepted.Timestamp)

	// Equal to the current highest is not enough.
	_, err = store.PlaceBid(ctx, a.ID, "bob", shared.Money(1500), now)
	var tooLow *shared.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	require.Equal(t, shared.Money(1500), tooLow.CurrentHighest)

	// Below it is rejected too.
	_, err = store.PlaceBid(ctx, a.ID, "bob", shared.Money(1200), now)
	require.ErrorAs(t, err, &tooLow)

	// A strictly higher bid goes through and gets the next seq.
	second, err := store.PlaceBid(ctx, a.ID, "bob", shared.Money(1600), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Seq)

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, shared.Money(1600), got.CurrentHighestBid)
	require.Equal(t, "bob", got.CurrentHighestBidder)
}

func TestPlaceBid_EqualToBasePriceRejected(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	// No bids yet; matching the base price still loses to the strict compare.
	_, err := store.PlaceBid(ctx, a.ID, "alice", a.BasePrice, now)
	var tooLow *shared.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	require.Equal(t, a.BasePrice, tooLow.CurrentHighest)
}

func TestPlaceBid_UnknownAuction(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	_, err := store.PlaceBid(context.Background(), uuid.New(), "alice", shared.Money(100), time.Now())
	require.ErrorIs(t, err, shared.ErrAuctionNotFound)
}

func TestPlaceBid_ClosesExpiredAuction(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	// The bid arrives after the deadline: it is rejected and the auction
	// transitions to its terminal status as a side effect.
	_, err := store.PlaceBid(ctx, a.ID, "alice", shared.Money(2000), now.Add(2*time.Hour))
	require.ErrorIs(t, err, shared.ErrAuctionClosed)

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive())
}

func TestHistory_AcceptanceOrder(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	amounts := []shared.Money{1100, 1200, 1300, 1400}
	for _, amount := range amounts {
		_, err := store.PlaceBid(ctx, a.ID, "alice", amount, now)
		require.NoError(t, err)
	}

	history, err := store.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, len(amounts))
	for i, b := range history {
		require.Equal(t, int64(i+1), b.Seq)
		require.Equal(t, amounts[i], b.Amount)
	}

	_, err = store.History(ctx, uuid.New())
	require.ErrorIs(t, err, shared.ErrAuctionNotFound)
}

func TestPlaceBid_SequentialIncreasingAllAccepted(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	const n = 50
	for i := 1; i <= n; i++ {
		_, err := store.PlaceBid(ctx, a.ID, "alice", a.BasePrice+shared.Money(i*100), now)
		require.NoError(t, err)
	}

	history, err := store.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, n)

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.BasePrice+shared.Money(n*100), got.CurrentHighestBid)
}

func TestPlaceBid_ConcurrentDistinctAmounts(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	const n = 100
	var wg sync.WaitGroup
	var acceptedCount, rejectedCount int64
	var countMu sync.Mutex

	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			_, err := store.PlaceBid(ctx, a.ID, "user", a.BasePrice+shared.Money(offset), now)
			countMu.Lock()
			defer countMu.Unlock()
			if err == nil {
				acceptedCount++
			} else {
				var tooLow *shared.BidTooLowError
				require.True(t, errors.As(err, &tooLow))
				rejectedCount++
			}
		}(i)
	}
	wg.Wait()

	// Every bid got a definite outcome and none were lost.
	require.Equal(t, int64(n), acceptedCount+rejectedCount)
	require.GreaterOrEqual(t, acceptedCount, int64(1))

	// The accepted sequence is strictly increasing in amount, so the highest
	// offered amount is always among the winners.
	history, err := store.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, int(acceptedCount))
	for i := 1; i < len(history); i++ {
		require.Greater(t, history[i].Amount, history[i-1].Amount)
		require.Equal(t, history[i-1].Seq+1, history[i].Seq)
	}
	require.Equal(t, a.BasePrice+shared.Money(n), history[len(history)-1].Amount)

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.BasePrice+shared.Money(n), got.CurrentHighestBid)
}

func TestPlaceBid_EqualConcurrentBidsOneWins(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	amount := a.BasePrice + shared.Money(500)
	results := make(chan error, 2)
	for _, user := range []string{"alice", "bob"} {
		go func(u string) {
			_, err := store.PlaceBid(ctx, a.ID, u, amount, now)
			results <- err
		}(user)
	}

	first, second := <-results, <-results
	if first == nil {
		var tooLow *shared.BidTooLowError
		require.ErrorAs(t, second, &tooLow)
	} else {
		require.NoError(t, second)
		var tooLow *shared.BidTooLowError
		require.ErrorAs(t, first, &tooLow)
	}

	history, err := store.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, amount, history[0].Amount)
}

func TestPlaceBid_AuctionsIndependent(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	first := newTestAuction(now, time.Hour)
	second := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	_, err := store.PlaceBid(ctx, first.ID, "alice", shared.Money(5000), now)
	require.NoError(t, err)

	// The other auction's projection and seq counter are untouched.
	b, err := store.PlaceBid(ctx, second.ID, "bob", shared.Money(1100), now)
	require.NoError(t, err)
	require.Equal(t, int64(1), b.Seq)

	got, err := store.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, shared.Money(1100), got.CurrentHighestBid)
	require.Equal(t, "bob", got.CurrentHighestBidder)
}
