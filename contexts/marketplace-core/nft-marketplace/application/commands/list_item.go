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

type ListItemCommand struct {
	Collection string
	AssetID    string
	Price      decimal.Decimal
	Caller     string
}

type ListItemResult struct {
	Listing entities.Listing
}

type ListItemUseCase struct {
	Ledger      ports.LedgerRepository
	Tx          ports.UnitOfWork
	Registry    ports.AssetRegistry
	Serializer  *application.Serializer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Marketplace string
	Logger      *slog.Logger
}

// Execute checks, in order: positive price, no active listing, caller owns
// the asset, marketplace approved to move it. The asset stays with the seller;
// only the approval is required.
func (u ListItemUseCase) Execute(ctx context.Context, cmd ListItemCommand) (ListItemResult, error) {
	logger := application.ResolveLogger(u.Logger)
	key := entities.NewListingKey(cmd.Collection, cmd.AssetID)
	caller := entities.NormalizeAddress(cmd.Caller)
	if err := validateKeyAndCaller(key, caller); err != nil {
		return ListItemResult{}, err
	}

	logger.Info("list item started",
		"event", "list_item_started",
		"module", application.ModuleName,
		"layer", "application",
		"collection", key.Collection,
		"asset_id", key.AssetID,
		"seller", caller,
	)

	var listing entities.Listing
	err := u.runtime().execute(ctx, func(ctx context.Context) error {
		if err := services.RequirePositivePrice(cmd.Price); err != nil {
			return err
		}
		existing, err := u.Ledger.GetListing(ctx, key)
		if err != nil {
			return err
		}
		if err := services.RequireUnlisted(existing); err != nil {
			return err
		}
		if err := checkOwner(ctx, u.Registry, key, caller); err != nil {
			return err
		}
		if err := u.checkApproval(ctx, key, caller); err != nil {
			return err
		}

		now := u.runtime().now()
		listing = entities.NewListing(key, caller, cmd.Price, now)
		if err := u.Ledger.SaveListing(ctx, listing); err != nil {
			return err
		}
		return u.runtime().appendEvent(ctx, ports.EventItemListed, caller, key, cmd.Price, now)
	})
	if err != nil {
		logger.Warn("list item rejected",
			"event", "list_item_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"collection", key.Collection,
			"asset_id", key.AssetID,
			"seller", caller,
			"error", err.Error(),
		)
		return ListItemResult{}, err
	}

	logger.Info("item listed",
		"event", "nft_marketplace_item_listed",
		"module", application.ModuleName,
		"layer", "application",
		"collection", key.Collection,
		"asset_id", key.AssetID,
		"seller", caller,
		"price", listing.Price.String(),
	)
	return ListItemResult{Listing: listing}, nil
}

func (u ListItemUseCase) checkApproval(ctx context.Context, key entities.ListingKey, owner string) error {
	marketplace := resolveMarketplace(u.Marketplace)
	approved, err := u.Registry.GetApproved(ctx, key.Collection, key.AssetID)
	if err != nil {
		return err
	}
	if services.RequireApproval(approved, false, marketplace) == nil {
		return nil
	}
	operator, err := u.Registry.IsApprovedForAll(ctx, key.Collection, owner, marketplace)
	if err != nil {
		return err
	}
	return services.RequireApproval(approved, operator, marketplace)
}

func (u ListItemUseCase) runtime() ledgerRuntime {
	return ledgerRuntime{
		Ledger:      u.Ledger,
		Tx:          u.Tx,
		Serializer:  u.Serializer,
		Clock:       u.Clock,
		IDGenerator: u.IDGenerator,
	}
}
