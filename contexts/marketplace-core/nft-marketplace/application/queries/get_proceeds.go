package queries

import (
	"context"
	"log/slog"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

type GetProceedsQuery struct {
	Seller string
}

type GetProceedsResult struct {
	Account entities.ProceedsAccount
}

type GetProceedsUseCase struct {
	Ledger     ports.LedgerRepository
	Serializer *application.Serializer
	Logger     *slog.Logger
}

func (u GetProceedsUseCase) Execute(ctx context.Context, query GetProceedsQuery) (GetProceedsResult, error) {
	logger := application.ResolveLogger(u.Logger)
	seller := entities.NormalizeAddress(query.Seller)
	if seller == "" {
		return GetProceedsResult{}, domainerrors.ErrInvalidRequest
	}

	var account entities.ProceedsAccount
	err := u.Serializer.Do(ctx, func(ctx context.Context) error {
		var err error
		account, err = u.Ledger.GetProceeds(ctx, seller)
		return err
	})
	if err != nil {
		logger.Error("get proceeds failed",
			"event", "get_proceeds_failed",
			"module", application.ModuleName,
			"layer", "application",
			"seller", seller,
			"error", err.Error(),
		)
		return GetProceedsResult{}, err
	}
	return GetProceedsResult{Account: account}, nil
}
