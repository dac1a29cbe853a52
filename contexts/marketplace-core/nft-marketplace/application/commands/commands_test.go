package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"nftmarket/contexts/marketplace-core/nft-marketplace/adapters/memory"
	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
)

type failingRegistry struct {
	*memory.Registry
	ownerErr error
}

func (r failingRegistry) OwnerOf(ctx context.Context, collection string, assetID string) (string, error) {
	if r.ownerErr != nil {
		return "", r.ownerErr
	}
	return r.Registry.OwnerOf(ctx, collection, assetID)
}

func TestListItemRejectsBlankInput(t *testing.T) {
	store := memory.NewStore(nil)
	useCase := ListItemUseCase{
		Ledger:      store,
		Tx:          store,
		Registry:    memory.NewRegistry(nil),
		Serializer:  application.NewSerializer(),
		IDGenerator: store,
	}

	_, err := useCase.Execute(context.Background(), ListItemCommand{AssetID: "1", Price: decimal.NewFromInt(1), Caller: "0xa"})
	require.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
	_, err = useCase.Execute(context.Background(), ListItemCommand{Collection: "0xc", AssetID: "1", Price: decimal.NewFromInt(1), Caller: "  "})
	require.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestListItemSurfacesRegistryErrors(t *testing.T) {
	store := memory.NewStore(nil)
	registryDown := errors.New("registry unavailable")
	useCase := ListItemUseCase{
		Ledger:      store,
		Tx:          store,
		Registry:    failingRegistry{Registry: memory.NewRegistry(nil), ownerErr: registryDown},
		IDGenerator: store,
	}

	_, err := useCase.Execute(context.Background(), ListItemCommand{
		Collection: "0xc",
		AssetID:    "1",
		Price:      decimal.NewFromInt(1),
		Caller:     "0xa",
	})
	require.ErrorIs(t, err, registryDown)
	require.Empty(t, store.OutboxEvents())
}

func TestListItemOfUnmintedAssetIsNotFound(t *testing.T) {
	store := memory.NewStore(nil)
	useCase := ListItemUseCase{
		Ledger:      store,
		Registry:    memory.NewRegistry(nil),
		IDGenerator: store,
	}

	_, err := useCase.Execute(context.Background(), ListItemCommand{
		Collection: "0xc",
		AssetID:    "404",
		Price:      decimal.NewFromInt(1),
		Caller:     "0xa",
	})
	require.ErrorIs(t, err, domainerrors.ErrAssetNotFound)
}

func TestBuyItemRejectsNegativePayment(t *testing.T) {
	store := memory.NewStore(nil)
	useCase := BuyItemUseCase{Ledger: store, Tx: store, Registry: memory.NewRegistry(nil), IDGenerator: store}

	_, err := useCase.Execute(context.Background(), BuyItemCommand{
		Collection: "0xc",
		AssetID:    "1",
		Payment:    decimal.NewFromInt(-1),
		Buyer:      "0xb",
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestUpdateListingKeepsSellerSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	registry := memory.NewRegistry(nil)
	assetID, err := registry.Mint(ctx, "0xc", "0xa")
	require.NoError(t, err)

	key := entities.NewListingKey("0xc", assetID)
	listed := entities.NewListing(key, "0xa", decimal.NewFromInt(1), store.Now())
	require.NoError(t, store.SaveListing(ctx, listed))

	useCase := UpdateListingUseCase{Ledger: store, Tx: store, Registry: registry, IDGenerator: store}
	result, err := useCase.Execute(ctx, UpdateListingCommand{
		Collection: "0xC",
		AssetID:    assetID,
		NewPrice:   decimal.NewFromInt(4),
		Caller:     "0xA",
	})
	require.NoError(t, err)
	require.Equal(t, "0xa", result.Listing.Seller)
	require.Equal(t, listed.ListedAt, result.Listing.ListedAt)
	require.True(t, result.Listing.Price.Equal(decimal.NewFromInt(4)))
}

func TestCancelListingChecksLiveOwnerNotSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	registry := memory.NewRegistry(nil)
	assetID, err := registry.Mint(ctx, "0xc", "0xa")
	require.NoError(t, err)
	require.NoError(t, store.SaveListing(ctx, entities.NewListing(entities.NewListingKey("0xc", assetID), "0xa", decimal.NewFromInt(1), store.Now())))

	// ownership moved outside the marketplace
	require.NoError(t, registry.TransferFrom(ctx, "0xc", "0xa", "0xa", "0xb", assetID))

	useCase := CancelListingUseCase{Ledger: store, Tx: store, Registry: registry, IDGenerator: store}
	_, err = useCase.Execute(ctx, CancelListingCommand{Collection: "0xc", AssetID: assetID, Caller: "0xa"})
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)

	_, err = useCase.Execute(ctx, CancelListingCommand{Collection: "0xc", AssetID: assetID, Caller: "0xb"})
	require.NoError(t, err)
}
