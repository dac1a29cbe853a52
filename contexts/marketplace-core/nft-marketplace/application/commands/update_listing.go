package commands

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/services"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

type UpdateListingCommand struct {
	Collection string
	AssetID    string
	NewPrice   decimal.Decimal
	Caller     string
}

type UpdateListingResult struct {
	Listing entities.Listing
}

type UpdateListingUseCase struct {
	Ledger      ports.LedgerRepository
	Tx          ports.UnitOfWork
	Registry    ports.AssetRegistry
	Serializer  *application.Serializer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute reprices an active listing. A zero or negative price is rejected so
// that a zero price keeps meaning "unlisted". Updates are announced with the
// same ItemListed event as new listings.
func (u UpdateListingUseCase) Execute(ctx context.Context, cmd UpdateListingCommand) (UpdateListingResult, error) {
	logger := application.ResolveLogger(u.Logger)
	key := entities.NewListingKey(cmd.Collection, cmd.AssetID)
	caller := entities.NormalizeAddress(cmd.Caller)
	if err := validateKeyAndCaller(key, caller); err != nil {
		return UpdateListingResult{}, err
	}

	var updated entities.Listing
	err := u.runtime().execute(ctx, func(ctx context.Context) error {
		listing, err := u.Ledger.GetListing(ctx, key)
		if err != nil {
			return err
		}
		if err := services.RequireListed(listing); err != nil {
			return err
		}
		if err := checkOwner(ctx, u.Registry, key, caller); err != nil {
			return err
		}
		if err := services.RequirePositivePrice(cmd.NewPrice); err != nil {
			return err
		}

		now := u.runtime().now()
		updated = listing.WithPrice(cmd.NewPrice, now)
		if err := u.Ledger.SaveListing(ctx, updated); err != nil {
			return err
		}
		return u.runtime().appendEvent(ctx, ports.EventItemListed, caller, key, cmd.NewPrice, now)
	})
	if err != nil {
		logger.Warn("update listing rejected",
			"event", "update_listing_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"collection", key.Collection,
			"asset_id", key.AssetID,
			"caller", caller,
			"error", err.Error(),
		)
		return UpdateListingResult{}, err
	}

	logger.Info("listing repriced",
		"event", "nft_marketplace_item_repriced",
		"module", application.ModuleName,
		"layer", "application",
		"collection", key.Collection,
		"asset_id", key.AssetID,
		"caller", caller,
		"price", updated.Price.String(),
	)
	return UpdateListingResult{Listing: updated}, nil
}

func (u UpdateListingUseCase) runtime() ledgerRuntime {
	return ledgerRuntime{
		Ledger:      u.Ledger,
		Tx:          u.Tx,
		Serializer:  u.Serializer,
		Clock:       u.Clock,
		IDGenerator: u.IDGenerator,
	}
}
