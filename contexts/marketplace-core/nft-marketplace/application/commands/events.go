package commands

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/services"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

const defaultMarketplaceAddress = "nft-marketplace"

// ledgerRuntime bundles the collaborators shared by every mutating use case.
type ledgerRuntime struct {
	Ledger      ports.LedgerRepository
	Tx          ports.UnitOfWork
	Serializer  *application.Serializer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
}

// execute runs fn serialized against other ledger operations and inside one
// unit of work. Any error from fn rolls back every write fn made.
func (r ledgerRuntime) execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.Serializer.Do(ctx, func(ctx context.Context) error {
		if r.Tx == nil {
			return fn(ctx)
		}
		return r.Tx.WithinTx(ctx, fn)
	})
}

func (r ledgerRuntime) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}

func (r ledgerRuntime) appendEvent(
	ctx context.Context,
	eventType ports.EventType,
	actor string,
	key entities.ListingKey,
	amount decimal.Decimal,
	now time.Time,
) error {
	eventID, err := r.IDGenerator.NewID(ctx)
	if err != nil {
		return err
	}
	partitionKey := key.PartitionKey()
	if key.IsZero() {
		partitionKey = actor
	}
	return r.Ledger.AppendOutbox(ctx, ports.MarketEvent{
		EventID:      eventID,
		EventType:    eventType,
		Actor:        actor,
		Collection:   key.Collection,
		AssetID:      key.AssetID,
		Amount:       amount,
		PartitionKey: partitionKey,
		OccurredAt:   now,
	})
}

func resolveMarketplace(address string) string {
	if value := entities.NormalizeAddress(address); value != "" {
		return value
	}
	return defaultMarketplaceAddress
}

func validateKeyAndCaller(key entities.ListingKey, caller string) error {
	if key.IsZero() || strings.TrimSpace(caller) == "" {
		return domainerrors.ErrInvalidRequest
	}
	return nil
}

// checkOwner asks the registry for the live owner of key and compares it to
// caller. The listing's seller field is a snapshot and is never trusted here.
func checkOwner(ctx context.Context, registry ports.AssetRegistry, key entities.ListingKey, caller string) error {
	owner, err := registry.OwnerOf(ctx, key.Collection, key.AssetID)
	if err != nil {
		return err
	}
	return services.RequireOwner(owner, caller)
}
