package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/shared"
)

func newTestAuction(now time.Time, duration time.Duration) *auction.Auction {
	return &auction.Auction{
		ID:                uuid.New(),
		ItemName:          "Vintage camera",
		ItemDescription:   "Working 35mm rangefinder",
		Category:          "photography",
		SellerID:          "seller-1",
		BasePrice:         shared.Money(1000),
		CurrentHighestBid: shared.Money(1000),
		StartTime:         now,
		EndTime:           now.Add(duration),
		Status:            auction.StatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, a.BasePrice, got.CurrentHighestBid)
	require.Empty(t, got.CurrentHighestBidder)
	require.Equal(t, auction.StatusActive, got.Status)

	_, err = store.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, shared.ErrAuctionNotFound)
}

func TestStore_ListCreationOrder(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	first := newTestAuction(now, time.Hour)
	second := newTestAuction(now, time.Hour)
	third := newTestAuction(now, time.Hour)
	for _, a := range []*auction.Auction{first, second, third} {
		require.NoError(t, store.Create(ctx, a))
	}

	listed, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, first.ID, listed[0].ID)
	require.Equal(t, second.ID, listed[1].ID)
	require.Equal(t, third.ID, listed[2].ID)
}

func TestStore_ExpireIfDue(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	// Before the deadline: no transition.
	got, err := store.ExpireIfDue(ctx, a.ID, now.Add(30*time.Minute))
	require.NoError(t, err)
	require.Equal(t, auction.StatusActive, got.Status)

	// At the deadline the auction closes.
	got, err = store.ExpireIfDue(ctx, a.ID, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, auction.StatusEnded, got.Status)

	// Idempotent: repeated calls keep the terminal status.
	for i := 0; i < 3; i++ {
		got, err = store.ExpireIfDue(ctx, a.ID, now.Add(2*time.Hour))
		require.NoError(t, err)
		require.Equal(t, auction.StatusEnded, got.Status)
	}

	_, err = store.ExpireIfDue(ctx, uuid.New(), now)
	require.ErrorIs(t, err, shared.ErrAuctionNotFound)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewStore(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()

	a := newTestAuction(now, time.Hour)
	require.NoError(t, store.Create(ctx, a))

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	got.CurrentHighestBid = shared.Money(999999)

	fresh, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, shared.Money(1000), fresh.CurrentHighestBid)
}
