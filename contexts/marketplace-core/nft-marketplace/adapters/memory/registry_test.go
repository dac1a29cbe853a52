package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
)

func TestRegistryMintAssignsSequentialIDsPerCollection(t *testing.T) {
	registry := NewRegistry(nil)
	ctx := context.Background()

	first, err := registry.Mint(ctx, "0xA", "0xalice")
	require.NoError(t, err)
	second, err := registry.Mint(ctx, "0xa", "0xbob")
	require.NoError(t, err)
	other, err := registry.Mint(ctx, "0xb", "0xbob")
	require.NoError(t, err)

	require.Equal(t, "0", first)
	require.Equal(t, "1", second)
	require.Equal(t, "0", other)

	owner, err := registry.OwnerOf(ctx, "0xa", "1")
	require.NoError(t, err)
	require.Equal(t, "0xbob", owner)

	_, err = registry.OwnerOf(ctx, "0xa", "9")
	require.ErrorIs(t, err, domainerrors.ErrAssetNotFound)
}

func TestRegistryTransferRequiresAuthorization(t *testing.T) {
	registry := NewRegistry(nil)
	ctx := context.Background()
	id, err := registry.Mint(ctx, "0xa", "0xalice")
	require.NoError(t, err)

	err = registry.TransferFrom(ctx, "0xa", "0xmarket", "0xalice", "0xbob", id)
	require.ErrorIs(t, err, domainerrors.ErrRegistryTransferRejected)

	err = registry.Approve(ctx, "0xa", "0xbob", "0xmarket", id)
	require.ErrorIs(t, err, domainerrors.ErrRegistryTransferRejected)

	require.NoError(t, registry.Approve(ctx, "0xa", "0xalice", "0xmarket", id))
	approved, err := registry.GetApproved(ctx, "0xa", id)
	require.NoError(t, err)
	require.Equal(t, "0xmarket", approved)

	err = registry.TransferFrom(ctx, "0xa", "0xmarket", "0xcarol", "0xbob", id)
	require.ErrorIs(t, err, domainerrors.ErrRegistryTransferRejected)

	require.NoError(t, registry.TransferFrom(ctx, "0xa", "0xmarket", "0xalice", "0xbob", id))
	owner, err := registry.OwnerOf(ctx, "0xa", id)
	require.NoError(t, err)
	require.Equal(t, "0xbob", owner)

	approved, err = registry.GetApproved(ctx, "0xa", id)
	require.NoError(t, err)
	require.Empty(t, approved)
}

func TestRegistryOperatorApproval(t *testing.T) {
	registry := NewRegistry(nil)
	ctx := context.Background()
	id, err := registry.Mint(ctx, "0xa", "0xalice")
	require.NoError(t, err)

	require.NoError(t, registry.SetApprovalForAll(ctx, "0xa", "0xalice", "0xmarket", true))
	ok, err := registry.IsApprovedForAll(ctx, "0xA", "0xALICE", "0xmarket")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, registry.TransferFrom(ctx, "0xa", "0xmarket", "0xalice", "0xbob", id))

	require.NoError(t, registry.SetApprovalForAll(ctx, "0xa", "0xalice", "0xmarket", false))
	ok, err = registry.IsApprovedForAll(ctx, "0xa", "0xalice", "0xmarket")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegistryHookFailureRevertsTransfer(t *testing.T) {
	registry := NewRegistry(nil)
	ctx := context.Background()
	id, err := registry.Mint(ctx, "0xa", "0xalice")
	require.NoError(t, err)
	require.NoError(t, registry.Approve(ctx, "0xa", "0xalice", "0xmarket", id))

	refused := errors.New("receiver refused")
	registry.SetTransferHook(func(ctx context.Context, collection string, _ string, _ string, assetID string) error {
		owner, err := registry.OwnerOf(ctx, collection, assetID)
		require.NoError(t, err)
		require.Equal(t, "0xbob", owner)
		return refused
	})

	err = registry.TransferFrom(ctx, "0xa", "0xmarket", "0xalice", "0xbob", id)
	require.ErrorIs(t, err, refused)

	owner, err := registry.OwnerOf(ctx, "0xa", id)
	require.NoError(t, err)
	require.Equal(t, "0xalice", owner)
	approved, err := registry.GetApproved(ctx, "0xa", id)
	require.NoError(t, err)
	require.Equal(t, "0xmarket", approved)
}
