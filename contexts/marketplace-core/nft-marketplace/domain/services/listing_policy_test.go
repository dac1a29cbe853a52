package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
)

func TestRequirePositivePrice(t *testing.T) {
	assert.ErrorIs(t, RequirePositivePrice(decimal.Zero), domainerrors.ErrPriceMustBeAboveZero)
	assert.ErrorIs(t, RequirePositivePrice(decimal.NewFromInt(-1)), domainerrors.ErrPriceMustBeAboveZero)
	assert.NoError(t, RequirePositivePrice(decimal.RequireFromString("0.001")))
}

func TestListingStateGuards(t *testing.T) {
	key := entities.NewListingKey("0xCollection", "7")
	unlisted := entities.Unlisted(key)
	listed := entities.NewListing(key, "0xSeller", decimal.NewFromInt(1), time.Now())

	require.NoError(t, RequireUnlisted(unlisted))
	require.ErrorIs(t, RequireUnlisted(listed), domainerrors.ErrAlreadyListed)
	require.NoError(t, RequireListed(listed))
	require.ErrorIs(t, RequireListed(unlisted), domainerrors.ErrNotListed)
}

func TestRequireOwnerNormalizesAddresses(t *testing.T) {
	assert.NoError(t, RequireOwner("0xABC", " 0xabc "))
	assert.ErrorIs(t, RequireOwner("0xabc", "0xdef"), domainerrors.ErrNotOwner)
	assert.ErrorIs(t, RequireOwner("", ""), domainerrors.ErrNotOwner)
}

func TestRequireApproval(t *testing.T) {
	assert.NoError(t, RequireApproval("0xMarket", false, "0xmarket"))
	assert.NoError(t, RequireApproval("", true, "0xmarket"))
	assert.ErrorIs(t, RequireApproval("", false, "0xmarket"), domainerrors.ErrNotApprovedForMarketplace)
	assert.ErrorIs(t, RequireApproval("0xother", false, "0xmarket"), domainerrors.ErrNotApprovedForMarketplace)
}

func TestRequirePaymentCoversAcceptsOverpayment(t *testing.T) {
	listing := entities.NewListing(entities.NewListingKey("c", "1"), "s", decimal.RequireFromString("0.1"), time.Now())

	assert.ErrorIs(t, RequirePaymentCovers(listing, decimal.RequireFromString("0.01")), domainerrors.ErrPriceNotMet)
	assert.NoError(t, RequirePaymentCovers(listing, decimal.RequireFromString("0.1")))
	assert.NoError(t, RequirePaymentCovers(listing, decimal.RequireFromString("5")))
}

func TestRequireProceeds(t *testing.T) {
	assert.ErrorIs(t, RequireProceeds(entities.ProceedsAccount{Seller: "s"}), domainerrors.ErrNoProceeds)
	assert.NoError(t, RequireProceeds(entities.ProceedsAccount{Seller: "s", Balance: decimal.NewFromInt(2)}))
}
