package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	contractsv1 "nftmarket/contracts/gen/events/v1"
)

// ListingFilter defines read-side filtering/pagination for active listings.
type ListingFilter struct {
	Collection string
	Seller     string
	Cursor     string
	Limit      int
}

// LedgerRepository owns listing and proceeds state. Reads of unknown keys
// return the zero-price listing or a zero balance rather than an error.
type LedgerRepository interface {
	GetListing(ctx context.Context, key entities.ListingKey) (entities.Listing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]entities.Listing, string, error)
	SaveListing(ctx context.Context, listing entities.Listing) error
	ClearListing(ctx context.Context, key entities.ListingKey) error

	GetProceeds(ctx context.Context, seller string) (entities.ProceedsAccount, error)
	CreditProceeds(ctx context.Context, seller string, amount decimal.Decimal) error
	ResetProceeds(ctx context.Context, seller string) error

	AppendOutbox(ctx context.Context, event MarketEvent) error
}

// UnitOfWork runs fn so that every repository write made through the ctx it
// receives commits or rolls back together. A ctx that already carries a unit
// of work joins it instead of opening a nested one.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AssetRegistry is the external system of record for asset ownership.
type AssetRegistry interface {
	OwnerOf(ctx context.Context, collection string, assetID string) (string, error)
	GetApproved(ctx context.Context, collection string, assetID string) (string, error)
	IsApprovedForAll(ctx context.Context, collection string, owner string, operator string) (bool, error)
	// TransferFrom moves assetID from -> to on behalf of operator. It fails when
	// operator lacks approval or from is not the current owner.
	TransferFrom(ctx context.Context, collection string, operator string, from string, to string, assetID string) error
}

// FundsTransfer pays out withdrawn proceeds.
type FundsTransfer interface {
	Payout(ctx context.Context, to string, amount decimal.Decimal) error
}

type EventType string

const (
	EventItemListed        EventType = "marketplace.item_listed"
	EventItemBought        EventType = "marketplace.item_bought"
	EventItemCanceled      EventType = "marketplace.item_canceled"
	EventProceedsWithdrawn EventType = "marketplace.proceeds_withdrawn"
)

// MarketEvent is the ledger event persisted to the outbox alongside the state
// change that produced it. Actor is the seller for listed/canceled, the buyer
// for bought and the payee for withdrawals.
type MarketEvent struct {
	EventID      string
	EventType    EventType
	Actor        string
	Collection   string
	AssetID      string
	Amount       decimal.Decimal
	PartitionKey string
	OccurredAt   time.Time
}

// Clock allows deterministic testing of timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

var ErrInvalidEnvelope = contractsv1.ErrInvalidEnvelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
