package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

func TestStoreRollsBackEveryWriteInFailedUnitOfWork(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	key := entities.NewListingKey("0xabc", "1")
	now := time.Now().UTC()

	require.NoError(t, store.SaveListing(ctx, entities.NewListing(key, "0xseller", decimal.NewFromInt(3), now)))
	require.NoError(t, store.CreditProceeds(ctx, "0xseller", decimal.NewFromInt(5)))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.ClearListing(ctx, key))
		require.NoError(t, store.CreditProceeds(ctx, "0xseller", decimal.NewFromInt(3)))
		require.NoError(t, store.CreditProceeds(ctx, "0xnew", decimal.NewFromInt(1)))
		require.NoError(t, store.ResetProceeds(ctx, "0xseller"))
		require.NoError(t, store.SaveListing(ctx, entities.NewListing(entities.NewListingKey("0xabc", "2"), "0xseller", decimal.NewFromInt(9), now)))
		require.NoError(t, store.AppendOutbox(ctx, ports.MarketEvent{
			EventID:    "evt-1",
			EventType:  ports.EventItemBought,
			OccurredAt: now,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	listing, err := store.GetListing(ctx, key)
	require.NoError(t, err)
	require.True(t, listing.Price.Equal(decimal.NewFromInt(3)))

	other, err := store.GetListing(ctx, entities.NewListingKey("0xabc", "2"))
	require.NoError(t, err)
	require.False(t, other.Active())

	seller, err := store.GetProceeds(ctx, "0xseller")
	require.NoError(t, err)
	require.True(t, seller.Balance.Equal(decimal.NewFromInt(5)))

	newcomer, err := store.GetProceeds(ctx, "0xnew")
	require.NoError(t, err)
	require.True(t, newcomer.Balance.IsZero())

	require.Empty(t, store.OutboxEvents())
}

func TestStoreNestedUnitOfWorkJoinsOuter(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	boom := errors.New("outer failed")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		inner := store.WithinTx(ctx, func(ctx context.Context) error {
			return store.CreditProceeds(ctx, "0xseller", decimal.NewFromInt(2))
		})
		require.NoError(t, inner)
		return boom
	})
	require.ErrorIs(t, err, boom)

	account, err := store.GetProceeds(ctx, "0xseller")
	require.NoError(t, err)
	require.True(t, account.Balance.IsZero())
}

func TestStoreOutboxPendingAndSent(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.AppendOutbox(ctx, ports.MarketEvent{
			EventID:    id,
			EventType:  ports.EventItemListed,
			OccurredAt: time.Now(),
		}))
	}
	require.Error(t, store.AppendOutbox(ctx, ports.MarketEvent{EventID: "a", EventType: ports.EventItemListed}))

	pending, err := store.ListPendingOutbox(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "a", pending[0].OutboxID)

	require.NoError(t, store.MarkOutboxSent(ctx, "a", time.Now()))
	require.Error(t, store.MarkOutboxSent(ctx, "missing", time.Now()))

	pending, err = store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "b", pending[0].OutboxID)
}
