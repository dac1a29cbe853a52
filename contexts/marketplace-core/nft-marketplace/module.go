package nftmarketplace

import (
	"log/slog"

	httpadapter "nftmarket/contexts/marketplace-core/nft-marketplace/adapters/http"
	"nftmarket/contexts/marketplace-core/nft-marketplace/adapters/memory"
	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/application/commands"
	"nftmarket/contexts/marketplace-core/nft-marketplace/application/queries"
	"nftmarket/contexts/marketplace-core/nft-marketplace/application/workers"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

// Module is the composition surface of the marketplace ledger.
// Runtime wiring consumes Handler and Outbox; the memory adapters are exposed
// for tests and local tooling and are nil when wired against other adapters.
type Module struct {
	Handler  httpadapter.Handler
	Outbox   ports.OutboxRepository
	Store    *memory.Store
	Registry *memory.Registry
	Wallet   *memory.Wallet

	serializer *application.Serializer
}

type Dependencies struct {
	Ledger      ports.LedgerRepository
	Tx          ports.UnitOfWork
	Outbox      ports.OutboxRepository
	Registry    ports.AssetRegistry
	Funds       ports.FundsTransfer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	// Marketplace is the operator address the registry must have approved.
	Marketplace string
	Logger      *slog.Logger
}

// NewModule wires the ledger use cases against explicit ports. Every mutating
// use case shares one serializer so the ledger has a single writer, and reads
// go through it too so they only see finished operations.
func NewModule(deps Dependencies) Module {
	serializer := application.NewSerializer()

	listItem := commands.ListItemUseCase{
		Ledger:      deps.Ledger,
		Tx:          deps.Tx,
		Registry:    deps.Registry,
		Serializer:  serializer,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Marketplace: deps.Marketplace,
		Logger:      deps.Logger,
	}
	buyItem := commands.BuyItemUseCase{
		Ledger:      deps.Ledger,
		Tx:          deps.Tx,
		Registry:    deps.Registry,
		Serializer:  serializer,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Marketplace: deps.Marketplace,
		Logger:      deps.Logger,
	}
	cancelListing := commands.CancelListingUseCase{
		Ledger:      deps.Ledger,
		Tx:          deps.Tx,
		Registry:    deps.Registry,
		Serializer:  serializer,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	updateListing := commands.UpdateListingUseCase{
		Ledger:      deps.Ledger,
		Tx:          deps.Tx,
		Registry:    deps.Registry,
		Serializer:  serializer,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	withdrawProceeds := commands.WithdrawProceedsUseCase{
		Ledger:      deps.Ledger,
		Tx:          deps.Tx,
		Funds:       deps.Funds,
		Serializer:  serializer,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}

	handler := httpadapter.Handler{
		ListItem:         listItem,
		BuyItem:          buyItem,
		CancelListing:    cancelListing,
		UpdateListing:    updateListing,
		WithdrawProceeds: withdrawProceeds,
		GetListing:       queries.GetListingUseCase{Ledger: deps.Ledger, Serializer: serializer, Logger: deps.Logger},
		GetProceeds:      queries.GetProceedsUseCase{Ledger: deps.Ledger, Serializer: serializer, Logger: deps.Logger},
		ListListings:     queries.ListListingsUseCase{Ledger: deps.Ledger, Serializer: serializer, Logger: deps.Logger},
		Logger:           deps.Logger,
	}

	return Module{Handler: handler, Outbox: deps.Outbox, serializer: serializer}
}

// NewInMemoryModule wires the ledger against the memory store, registry and
// wallet. It backs local runs, the mint-and-list tool and tests.
func NewInMemoryModule(marketplace string, logger *slog.Logger) Module {
	store := memory.NewStore(logger)
	registry := memory.NewRegistry(logger)
	wallet := memory.NewWallet(logger)
	module := NewModule(Dependencies{
		Ledger:      store,
		Tx:          store,
		Outbox:      store,
		Registry:    registry,
		Funds:       wallet,
		Clock:       store,
		IDGenerator: store,
		Marketplace: marketplace,
		Logger:      logger,
	})
	module.Store = store
	module.Registry = registry
	module.Wallet = wallet
	return module
}

// OutboxRelay builds a relay draining this module's outbox into publisher.
func (m Module) OutboxRelay(publisher ports.EventPublisher, topic string, batchSize int, logger *slog.Logger) workers.OutboxRelay {
	return workers.OutboxRelay{
		Outbox:     m.Outbox,
		Publisher:  publisher,
		Serializer: m.serializer,
		Topic:      topic,
		BatchSize:  batchSize,
		Logger:     logger,
	}
}
