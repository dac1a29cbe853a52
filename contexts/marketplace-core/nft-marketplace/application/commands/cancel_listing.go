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

type CancelListingCommand struct {
	Collection string
	AssetID    string
	Caller     string
}

type CancelListingResult struct {
	Canceled entities.Listing
}

type CancelListingUseCase struct {
	Ledger      ports.LedgerRepository
	Tx          ports.UnitOfWork
	Registry    ports.AssetRegistry
	Serializer  *application.Serializer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CancelListingUseCase) Execute(ctx context.Context, cmd CancelListingCommand) (CancelListingResult, error) {
	logger := application.ResolveLogger(u.Logger)
	key := entities.NewListingKey(cmd.Collection, cmd.AssetID)
	caller := entities.NormalizeAddress(cmd.Caller)
	if err := validateKeyAndCaller(key, caller); err != nil {
		return CancelListingResult{}, err
	}

	var canceled entities.Listing
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

		if err := u.Ledger.ClearListing(ctx, key); err != nil {
			return err
		}
		canceled = listing
		return u.runtime().appendEvent(ctx, ports.EventItemCanceled, caller, key, decimal.Zero, u.runtime().now())
	})
	if err != nil {
		logger.Warn("cancel listing rejected",
			"event", "cancel_listing_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"collection", key.Collection,
			"asset_id", key.AssetID,
			"caller", caller,
			"error", err.Error(),
		)
		return CancelListingResult{}, err
	}

	logger.Info("listing canceled",
		"event", "nft_marketplace_item_canceled",
		"module", application.ModuleName,
		"layer", "application",
		"collection", key.Collection,
		"asset_id", key.AssetID,
		"caller", caller,
	)
	return CancelListingResult{Canceled: canceled}, nil
}

func (u CancelListingUseCase) runtime() ledgerRuntime {
	return ledgerRuntime{
		Ledger:      u.Ledger,
		Tx:          u.Tx,
		Serializer:  u.Serializer,
		Clock:       u.Clock,
		IDGenerator: u.IDGenerator,
	}
}
