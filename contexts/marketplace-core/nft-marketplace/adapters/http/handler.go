package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/application/commands"
	"nftmarket/contexts/marketplace-core/nft-marketplace/application/queries"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	httptransport "nftmarket/contexts/marketplace-core/nft-marketplace/transport/http"
)

type Handler struct {
	ListItem         commands.ListItemUseCase
	BuyItem          commands.BuyItemUseCase
	CancelListing    commands.CancelListingUseCase
	UpdateListing    commands.UpdateListingUseCase
	WithdrawProceeds commands.WithdrawProceedsUseCase
	GetListing       queries.GetListingUseCase
	GetProceeds      queries.GetProceedsUseCase
	ListListings     queries.ListListingsUseCase
	Logger           *slog.Logger
}

// ListItemHandler godoc
// @Summary List an asset for sale
// @Description Creates a fixed-price listing. The caller must own the asset and have approved the marketplace.
// @Tags nft-marketplace
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller address"
// @Param request body httptransport.ListItemRequest true "Listing payload"
// @Success 201 {object} httptransport.ListingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings [post]
func (h Handler) ListItemHandler(
	ctx context.Context,
	caller string,
	req httptransport.ListItemRequest,
) (httptransport.ListingResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	price, err := parseAmount(req.Price)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}

	result, err := h.ListItem.Execute(ctx, commands.ListItemCommand{
		Collection: req.Collection,
		AssetID:    req.AssetID,
		Price:      price,
		Caller:     caller,
	})
	if err != nil {
		logger.Warn("list item request failed",
			"event", "http_list_item_failed",
			"module", application.ModuleName,
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Item: mapListing(result.Listing)}, nil
}

// GetListingHandler godoc
// @Summary Get a listing
// @Description Returns the listing for an asset. Unlisted assets return price "0" and listed=false.
// @Tags nft-marketplace
// @Produce json
// @Param collection path string true "Collection address"
// @Param asset_id path string true "Asset id"
// @Success 200 {object} httptransport.ListingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings/{collection}/{asset_id} [get]
func (h Handler) GetListingHandler(ctx context.Context, collection string, assetID string) (httptransport.ListingResponse, error) {
	result, err := h.GetListing.Execute(ctx, queries.GetListingQuery{
		Collection: collection,
		AssetID:    assetID,
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Item: mapListing(result.Listing)}, nil
}

// ListListingsHandler godoc
// @Summary Browse active listings
// @Description Returns active listings filtered by collection or seller with cursor pagination.
// @Tags nft-marketplace
// @Produce json
// @Param collection query string false "Collection filter"
// @Param seller query string false "Seller filter"
// @Param cursor query string false "Cursor token"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} httptransport.ListListingsResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings [get]
func (h Handler) ListListingsHandler(
	ctx context.Context,
	req httptransport.ListListingsRequest,
) (httptransport.ListListingsResponse, error) {
	result, err := h.ListListings.Execute(ctx, queries.ListListingsQuery{
		Collection: req.Collection,
		Seller:     req.Seller,
		Cursor:     req.Cursor,
		Limit:      req.Limit,
	})
	if err != nil {
		return httptransport.ListListingsResponse{}, err
	}
	items := make([]httptransport.ListingDTO, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, mapListing(listing))
	}
	return httptransport.ListListingsResponse{
		Items:      items,
		NextCursor: result.NextCursor,
	}, nil
}

// UpdateListingHandler godoc
// @Summary Reprice a listing
// @Tags nft-marketplace
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller address"
// @Param collection path string true "Collection address"
// @Param asset_id path string true "Asset id"
// @Param request body httptransport.UpdateListingRequest true "New price"
// @Success 200 {object} httptransport.ListingResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings/{collection}/{asset_id} [patch]
func (h Handler) UpdateListingHandler(
	ctx context.Context,
	caller string,
	collection string,
	assetID string,
	req httptransport.UpdateListingRequest,
) (httptransport.ListingResponse, error) {
	price, err := parseAmount(req.NewPrice)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	result, err := h.UpdateListing.Execute(ctx, commands.UpdateListingCommand{
		Collection: collection,
		AssetID:    assetID,
		NewPrice:   price,
		Caller:     caller,
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Item: mapListing(result.Listing)}, nil
}

// CancelListingHandler godoc
// @Summary Cancel a listing
// @Tags nft-marketplace
// @Produce json
// @Param X-User-Id header string true "Caller address"
// @Param collection path string true "Collection address"
// @Param asset_id path string true "Asset id"
// @Success 200 {object} httptransport.CancelListingResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings/{collection}/{asset_id} [delete]
func (h Handler) CancelListingHandler(
	ctx context.Context,
	caller string,
	collection string,
	assetID string,
) (httptransport.CancelListingResponse, error) {
	result, err := h.CancelListing.Execute(ctx, commands.CancelListingCommand{
		Collection: collection,
		AssetID:    assetID,
		Caller:     caller,
	})
	if err != nil {
		return httptransport.CancelListingResponse{}, err
	}
	return httptransport.CancelListingResponse{
		Collection: result.Canceled.Key.Collection,
		AssetID:    result.Canceled.Key.AssetID,
		Canceled:   true,
	}, nil
}

// BuyItemHandler godoc
// @Summary Buy a listed asset
// @Description Pays at least the listing price. The full payment is credited to the seller.
// @Tags nft-marketplace
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Buyer address"
// @Param collection path string true "Collection address"
// @Param asset_id path string true "Asset id"
// @Param request body httptransport.BuyItemRequest true "Payment"
// @Success 200 {object} httptransport.BuyItemResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 402 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 502 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/listings/{collection}/{asset_id}/buy [post]
func (h Handler) BuyItemHandler(
	ctx context.Context,
	buyer string,
	collection string,
	assetID string,
	req httptransport.BuyItemRequest,
) (httptransport.BuyItemResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	payment, err := parseAmount(req.Payment)
	if err != nil {
		return httptransport.BuyItemResponse{}, err
	}

	result, err := h.BuyItem.Execute(ctx, commands.BuyItemCommand{
		Collection: collection,
		AssetID:    assetID,
		Payment:    payment,
		Buyer:      buyer,
	})
	if err != nil {
		logger.Warn("buy item request failed",
			"event", "http_buy_item_failed",
			"module", application.ModuleName,
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.BuyItemResponse{}, err
	}
	return httptransport.BuyItemResponse{
		Collection: result.Listing.Key.Collection,
		AssetID:    result.Listing.Key.AssetID,
		Seller:     result.Listing.Seller,
		Buyer:      result.Buyer,
		Price:      result.Listing.Price.String(),
		Credited:   result.Credited.String(),
	}, nil
}

// GetProceedsHandler godoc
// @Summary Get pending proceeds
// @Tags nft-marketplace
// @Produce json
// @Param seller path string true "Seller address"
// @Success 200 {object} httptransport.ProceedsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/proceeds/{seller} [get]
func (h Handler) GetProceedsHandler(ctx context.Context, seller string) (httptransport.ProceedsResponse, error) {
	result, err := h.GetProceeds.Execute(ctx, queries.GetProceedsQuery{Seller: seller})
	if err != nil {
		return httptransport.ProceedsResponse{}, err
	}
	return httptransport.ProceedsResponse{
		Seller:  result.Account.Seller,
		Balance: result.Account.Balance.String(),
	}, nil
}

// WithdrawProceedsHandler godoc
// @Summary Withdraw pending proceeds
// @Tags nft-marketplace
// @Produce json
// @Param X-User-Id header string true "Payee address"
// @Success 200 {object} httptransport.WithdrawProceedsResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 502 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/marketplace/proceeds/withdraw [post]
func (h Handler) WithdrawProceedsHandler(ctx context.Context, caller string) (httptransport.WithdrawProceedsResponse, error) {
	result, err := h.WithdrawProceeds.Execute(ctx, commands.WithdrawProceedsCommand{Caller: caller})
	if err != nil {
		return httptransport.WithdrawProceedsResponse{}, err
	}
	return httptransport.WithdrawProceedsResponse{
		Payee:  result.Payee,
		Amount: result.Amount.String(),
	}, nil
}

const amountScale = 18

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, domainerrors.ErrInvalidRequest
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domainerrors.ErrInvalidRequest
	}
	// Ledger columns hold 18 fractional digits; anything finer would be
	// rounded on store.
	if !amount.Truncate(amountScale).Equal(amount) {
		return decimal.Zero, domainerrors.ErrInvalidRequest
	}
	return amount, nil
}

func mapListing(listing entities.Listing) httptransport.ListingDTO {
	dto := httptransport.ListingDTO{
		Collection: listing.Key.Collection,
		AssetID:    listing.Key.AssetID,
		Seller:     listing.Seller,
		Price:      listing.Price.String(),
		Listed:     listing.Active(),
	}
	if !listing.ListedAt.IsZero() {
		dto.ListedAt = listing.ListedAt.UTC().Format(time.RFC3339)
	}
	if !listing.UpdatedAt.IsZero() {
		dto.UpdatedAt = listing.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
