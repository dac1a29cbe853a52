package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/services"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

type WithdrawProceedsCommand struct {
	Caller string
}

type WithdrawProceedsResult struct {
	Payee  string
	Amount decimal.Decimal
}

type WithdrawProceedsUseCase struct {
	Ledger      ports.LedgerRepository
	Tx          ports.UnitOfWork
	Funds       ports.FundsTransfer
	Serializer  *application.Serializer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute zeroes the caller's balance before paying it out. A failed payout
// returns ErrTransferFailed and the zeroing is rolled back with it.
func (u WithdrawProceedsUseCase) Execute(ctx context.Context, cmd WithdrawProceedsCommand) (WithdrawProceedsResult, error) {
	logger := application.ResolveLogger(u.Logger)
	payee := entities.NormalizeAddress(cmd.Caller)
	if strings.TrimSpace(payee) == "" {
		return WithdrawProceedsResult{}, domainerrors.ErrInvalidRequest
	}

	var amount decimal.Decimal
	err := u.runtime().execute(ctx, func(ctx context.Context) error {
		account, err := u.Ledger.GetProceeds(ctx, payee)
		if err != nil {
			return err
		}
		if err := services.RequireProceeds(account); err != nil {
			return err
		}

		if err := u.Ledger.ResetProceeds(ctx, payee); err != nil {
			return err
		}
		if err := u.runtime().appendEvent(
			ctx,
			ports.EventProceedsWithdrawn,
			payee,
			entities.ListingKey{},
			account.Balance,
			u.runtime().now(),
		); err != nil {
			return err
		}

		if err := u.Funds.Payout(ctx, payee, account.Balance); err != nil {
			return errors.Join(domainerrors.ErrTransferFailed, err)
		}
		amount = account.Balance
		return nil
	})
	if err != nil {
		logger.Warn("withdraw proceeds rejected",
			"event", "withdraw_proceeds_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"payee", payee,
			"error", err.Error(),
		)
		return WithdrawProceedsResult{}, err
	}

	logger.Info("proceeds withdrawn",
		"event", "nft_marketplace_proceeds_withdrawn",
		"module", application.ModuleName,
		"layer", "application",
		"payee", payee,
		"amount", amount.String(),
	)
	return WithdrawProceedsResult{Payee: payee, Amount: amount}, nil
}

func (u WithdrawProceedsUseCase) runtime() ledgerRuntime {
	return ledgerRuntime{
		Ledger:      u.Ledger,
		Tx:          u.Tx,
		Serializer:  u.Serializer,
		Clock:       u.Clock,
		IDGenerator: u.IDGenerator,
	}
}
