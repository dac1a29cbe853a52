package queries

import (
	"context"
	"log/slog"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ListListingsQuery struct {
	Collection string
	Seller     string
	Cursor     string
	Limit      int
}

type ListListingsResult struct {
	Items      []entities.Listing
	NextCursor string
}

type ListListingsUseCase struct {
	Ledger     ports.LedgerRepository
	Serializer *application.Serializer
	Logger     *slog.Logger
}

func (u ListListingsUseCase) Execute(ctx context.Context, query ListListingsQuery) (ListListingsResult, error) {
	logger := application.ResolveLogger(u.Logger)
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	filter := ports.ListingFilter{
		Collection: entities.NormalizeAddress(query.Collection),
		Seller:     entities.NormalizeAddress(query.Seller),
		Cursor:     query.Cursor,
		Limit:      limit,
	}
	var (
		items      []entities.Listing
		nextCursor string
	)
	err := u.Serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		items, nextCursor, err = u.Ledger.ListListings(ctx, filter)
		return err
	})
	if err != nil {
		logger.Error("list listings failed",
			"event", "list_listings_failed",
			"module", application.ModuleName,
			"layer", "application",
			"collection", filter.Collection,
			"seller", filter.Seller,
			"error", err.Error(),
		)
		return ListListingsResult{}, err
	}

	logger.Debug("list listings completed",
		"event", "list_listings_completed",
		"module", application.ModuleName,
		"layer", "application",
		"items_count", len(items),
		"has_next_cursor", nextCursor != "",
	)
	return ListListingsResult{Items: items, NextCursor: nextCursor}, nil
}
