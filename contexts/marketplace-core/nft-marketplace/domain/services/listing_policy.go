package services

import (
	"github.com/shopspring/decimal"

	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
)

// The guards below encode the listing state machine:
//
//	Unlisted -> Listed   (list)
//	Listed   -> Listed   (update)
//	Listed   -> Unlisted (cancel, buy)
//
// Any other transition is rejected with NotListed or AlreadyListed.

func RequirePositivePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return domainerrors.ErrPriceMustBeAboveZero
	}
	return nil
}

func RequireUnlisted(listing entities.Listing) error {
	if listing.Active() {
		return domainerrors.ErrAlreadyListed
	}
	return nil
}

func RequireListed(listing entities.Listing) error {
	if !listing.Active() {
		return domainerrors.ErrNotListed
	}
	return nil
}

func RequireOwner(owner string, caller string) error {
	if entities.NormalizeAddress(owner) == "" ||
		entities.NormalizeAddress(owner) != entities.NormalizeAddress(caller) {
		return domainerrors.ErrNotOwner
	}
	return nil
}

// RequireApproval accepts either a single-asset approval naming the
// marketplace or a blanket operator approval from the owner.
func RequireApproval(approved string, operatorApproved bool, marketplace string) error {
	if operatorApproved {
		return nil
	}
	if entities.NormalizeAddress(approved) != "" &&
		entities.NormalizeAddress(approved) == entities.NormalizeAddress(marketplace) {
		return nil
	}
	return domainerrors.ErrNotApprovedForMarketplace
}

// RequirePaymentCovers rejects underpayment. Overpayment is accepted and is
// not refunded.
func RequirePaymentCovers(listing entities.Listing, payment decimal.Decimal) error {
	if payment.LessThan(listing.Price) {
		return domainerrors.ErrPriceNotMet
	}
	return nil
}

func RequireProceeds(account entities.ProceedsAccount) error {
	if !account.HasFunds() {
		return domainerrors.ErrNoProceeds
	}
	return nil
}
