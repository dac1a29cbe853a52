package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
)

var ErrPayoutRejected = errors.New("payout rejected by wallet")

// PayoutHook runs after a payout has been credited. A non-nil error reverts
// the credit.
type PayoutHook func(ctx context.Context, to string, amount decimal.Decimal) error

// Wallet simulates the settlement side: it credits payouts to per-address
// balances.
type Wallet struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	failWith error
	hook     PayoutHook
	logger   *slog.Logger
}

func NewWallet(logger *slog.Logger) *Wallet {
	return &Wallet{
		balances: make(map[string]decimal.Decimal),
		logger:   application.ResolveLogger(logger),
	}
}

// FailPayouts makes every later Payout return err. Pass nil to recover.
func (w *Wallet) FailPayouts(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failWith = err
}

func (w *Wallet) SetPayoutHook(hook PayoutHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hook = hook
}

func (w *Wallet) Balance(address string) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[entities.NormalizeAddress(address)]
}

func (w *Wallet) Payout(ctx context.Context, to string, amount decimal.Decimal) error {
	to = entities.NormalizeAddress(to)
	if to == "" || !amount.IsPositive() {
		return ErrPayoutRejected
	}

	w.mu.Lock()
	if w.failWith != nil {
		err := w.failWith
		w.mu.Unlock()
		return err
	}
	w.balances[to] = w.balances[to].Add(amount)
	hook := w.hook
	w.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, to, amount); err != nil {
			w.mu.Lock()
			w.balances[to] = w.balances[to].Sub(amount)
			w.mu.Unlock()
			return err
		}
	}

	w.logger.Info("payout credited",
		"event", "memory_wallet_payout",
		"module", application.ModuleName,
		"layer", "adapter",
		"to", to,
		"amount", amount.String(),
	)
	return nil
}
