package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/services"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

type BuyItemCommand struct {
	Collection string
	AssetID    string
	Payment    decimal.Decimal
	Buyer      string
}

type BuyItemResult struct {
	// Listing is the listing as it was when the sale matched it.
	Listing  entities.Listing
	Buyer    string
	Credited decimal.Decimal
}

type BuyItemUseCase struct {
	Ledger      ports.LedgerRepository
	Tx          ports.UnitOfWork
	Registry    ports.AssetRegistry
	Serializer  *application.Serializer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Marketplace string
	Logger      *slog.Logger
}

// Execute settles a purchase in this order:
// 1) listing must be active and payment must cover its price
// 2) listing cleared, seller credited with the full payment, event recorded
// 3) registry transfers the asset seller -> buyer.
// Step 3 runs last so a callback from the registry sees the listing gone. If
// the transfer fails, steps 2 and 3 roll back together.
func (u BuyItemUseCase) Execute(ctx context.Context, cmd BuyItemCommand) (BuyItemResult, error) {
	logger := application.ResolveLogger(u.Logger)
	key := entities.NewListingKey(cmd.Collection, cmd.AssetID)
	buyer := entities.NormalizeAddress(cmd.Buyer)
	if err := validateKeyAndCaller(key, buyer); err != nil {
		return BuyItemResult{}, err
	}
	if cmd.Payment.IsNegative() {
		return BuyItemResult{}, domainerrors.ErrInvalidRequest
	}

	logger.Info("buy item started",
		"event", "buy_item_started",
		"module", application.ModuleName,
		"layer", "application",
		"collection", key.Collection,
		"asset_id", key.AssetID,
		"buyer", buyer,
		"payment", cmd.Payment.String(),
	)

	var sold entities.Listing
	err := u.runtime().execute(ctx, func(ctx context.Context) error {
		listing, err := u.Ledger.GetListing(ctx, key)
		if err != nil {
			return err
		}
		if err := services.RequireListed(listing); err != nil {
			return err
		}
		if err := services.RequirePaymentCovers(listing, cmd.Payment); err != nil {
			return err
		}

		now := u.runtime().now()
		if err := u.Ledger.ClearListing(ctx, key); err != nil {
			return err
		}
		if err := u.Ledger.CreditProceeds(ctx, listing.Seller, cmd.Payment); err != nil {
			return err
		}
		if err := u.runtime().appendEvent(ctx, ports.EventItemBought, buyer, key, listing.Price, now); err != nil {
			return err
		}

		if err := u.Registry.TransferFrom(
			ctx,
			key.Collection,
			resolveMarketplace(u.Marketplace),
			listing.Seller,
			buyer,
			key.AssetID,
		); err != nil {
			return errors.Join(domainerrors.ErrAssetTransferFailed, err)
		}
		sold = listing
		return nil
	})
	if err != nil {
		logger.Warn("buy item rejected",
			"event", "buy_item_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"collection", key.Collection,
			"asset_id", key.AssetID,
			"buyer", buyer,
			"error", err.Error(),
		)
		return BuyItemResult{}, err
	}

	logger.Info("item bought",
		"event", "nft_marketplace_item_bought",
		"module", application.ModuleName,
		"layer", "application",
		"collection", key.Collection,
		"asset_id", key.AssetID,
		"buyer", buyer,
		"seller", sold.Seller,
		"price", sold.Price.String(),
		"credited", cmd.Payment.String(),
	)
	return BuyItemResult{
		Listing:  sold,
		Buyer:    buyer,
		Credited: cmd.Payment,
	}, nil
}

func (u BuyItemUseCase) runtime() ledgerRuntime {
	return ledgerRuntime{
		Ledger:      u.Ledger,
		Tx:          u.Tx,
		Serializer:  u.Serializer,
		Clock:       u.Clock,
		IDGenerator: u.IDGenerator,
	}
}
