package queries

import (
	"context"
	"log/slog"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

type GetListingQuery struct {
	Collection string
	AssetID    string
}

type GetListingResult struct {
	Listing entities.Listing
}

type GetListingUseCase struct {
	Ledger     ports.LedgerRepository
	Serializer *application.Serializer
	Logger     *slog.Logger
}

// Execute never fails for an unknown key: the zero-price listing is returned.
// It waits for any running ledger operation so it never observes writes that
// may still be rolled back.
func (u GetListingUseCase) Execute(ctx context.Context, query GetListingQuery) (GetListingResult, error) {
	logger := application.ResolveLogger(u.Logger)
	key := entities.NewListingKey(query.Collection, query.AssetID)
	if key.IsZero() {
		return GetListingResult{}, domainerrors.ErrInvalidRequest
	}

	var listing entities.Listing
	err := u.Serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		listing, err = u.Ledger.GetListing(ctx, key)
		return err
	})
	if err != nil {
		logger.Error("get listing failed",
			"event", "get_listing_failed",
			"module", application.ModuleName,
			"layer", "application",
			"collection", key.Collection,
			"asset_id", key.AssetID,
			"error", err.Error(),
		)
		return GetListingResult{}, err
	}
	return GetListingResult{Listing: listing}, nil
}
