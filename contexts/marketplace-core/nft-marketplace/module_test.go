package nftmarketplace_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	nftmarketplace "nftmarket/contexts/marketplace-core/nft-marketplace"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
	httptransport "nftmarket/contexts/marketplace-core/nft-marketplace/transport/http"
)

const (
	testMarketplace = "0xMarket"
	testCollection  = "0xBasicNft"
	deployer        = "0xdeployer"
	player          = "0xplayer"
)

func newApprovedFixture(t *testing.T) (nftmarketplace.Module, string) {
	t.Helper()
	module := nftmarketplace.NewInMemoryModule(testMarketplace, nil)
	ctx := context.Background()
	assetID, err := module.Registry.Mint(ctx, testCollection, deployer)
	require.NoError(t, err)
	require.NoError(t, module.Registry.Approve(ctx, testCollection, deployer, testMarketplace, assetID))
	return module, assetID
}

func listAt(t *testing.T, module nftmarketplace.Module, assetID string, price string) {
	t.Helper()
	_, err := module.Handler.ListItemHandler(context.Background(), deployer, httptransport.ListItemRequest{
		Collection: testCollection,
		AssetID:    assetID,
		Price:      price,
	})
	require.NoError(t, err)
}

func outboxTypes(module nftmarketplace.Module) []string {
	events := module.Store.OutboxEvents()
	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.EventType)
	}
	return types
}

func requireListedAt(t *testing.T, module nftmarketplace.Module, assetID string, seller string, price string) {
	t.Helper()
	got, err := module.Handler.GetListingHandler(context.Background(), testCollection, assetID)
	require.NoError(t, err)
	require.True(t, got.Item.Listed)
	require.Equal(t, seller, got.Item.Seller)
	require.Equal(t, price, got.Item.Price)
}

func decodeOutbox(t *testing.T, message ports.OutboxMessage) (ports.EventEnvelope, ports.EventData) {
	t.Helper()
	var envelope ports.EventEnvelope
	require.NoError(t, json.Unmarshal(message.Payload, &envelope))
	data, err := ports.DecodeEventData(envelope)
	require.NoError(t, err)
	return envelope, data
}

func TestListItemRequiresMarketplaceApproval(t *testing.T) {
	module := nftmarketplace.NewInMemoryModule(testMarketplace, nil)
	assetID, err := module.Registry.Mint(context.Background(), testCollection, deployer)
	require.NoError(t, err)

	_, err = module.Handler.ListItemHandler(context.Background(), deployer, httptransport.ListItemRequest{
		Collection: testCollection,
		AssetID:    assetID,
		Price:      "0.1",
	})
	require.ErrorIs(t, err, domainerrors.ErrNotApprovedForMarketplace)
	require.Empty(t, module.Store.OutboxEvents())
}

func TestListItemAcceptsOperatorApproval(t *testing.T) {
	module := nftmarketplace.NewInMemoryModule(testMarketplace, nil)
	ctx := context.Background()
	assetID, err := module.Registry.Mint(ctx, testCollection, deployer)
	require.NoError(t, err)
	require.NoError(t, module.Registry.SetApprovalForAll(ctx, testCollection, deployer, testMarketplace, true))

	listAt(t, module, assetID, "1")
}

func TestListItemChecksPriceBeforeOwnership(t *testing.T) {
	module, assetID := newApprovedFixture(t)

	_, err := module.Handler.ListItemHandler(context.Background(), player, httptransport.ListItemRequest{
		Collection: testCollection,
		AssetID:    assetID,
		Price:      "0",
	})
	require.ErrorIs(t, err, domainerrors.ErrPriceMustBeAboveZero)

	_, err = module.Handler.ListItemHandler(context.Background(), player, httptransport.ListItemRequest{
		Collection: testCollection,
		AssetID:    assetID,
		Price:      "0.1",
	})
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)
}

func TestListItemRejectsDuplicateListing(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	listAt(t, module, assetID, "0.1")

	_, err := module.Handler.ListItemHandler(context.Background(), deployer, httptransport.ListItemRequest{
		Collection: testCollection,
		AssetID:    assetID,
		Price:      "0.2",
	})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyListed)

	requireListedAt(t, module, assetID, deployer, "0.1")
	require.Equal(t, []string{string(ports.EventItemListed)}, outboxTypes(module))
}

func TestListItemRecordsListingAndEvent(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	listAt(t, module, assetID, "0.1")

	got, err := module.Handler.GetListingHandler(context.Background(), testCollection, assetID)
	require.NoError(t, err)
	require.True(t, got.Item.Listed)
	require.Equal(t, "0.1", got.Item.Price)
	require.Equal(t, deployer, got.Item.Seller)
	require.Equal(t, "0xbasicnft", got.Item.Collection)

	events := module.Store.OutboxEvents()
	require.Len(t, events, 1)
	envelope, data := decodeOutbox(t, events[0])
	require.Equal(t, string(ports.EventItemListed), envelope.EventType)
	require.Equal(t, "0xbasicnft:"+assetID, envelope.PartitionKey)
	require.Equal(t, deployer, data.Seller)
	require.Equal(t, "0.1", data.Price)
}

func TestGetListingOfUnknownAssetIsZero(t *testing.T) {
	module := nftmarketplace.NewInMemoryModule(testMarketplace, nil)

	got, err := module.Handler.GetListingHandler(context.Background(), "0xnothing", "42")
	require.NoError(t, err)
	require.False(t, got.Item.Listed)
	require.Equal(t, "0", got.Item.Price)

	proceeds, err := module.Handler.GetProceedsHandler(context.Background(), "0xnobody")
	require.NoError(t, err)
	require.Equal(t, "0", proceeds.Balance)
}

func TestBuyItemSettlesSale(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	listAt(t, module, assetID, "0.1")
	ctx := context.Background()

	_, err := module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.05"})
	require.ErrorIs(t, err, domainerrors.ErrPriceNotMet)

	bought, err := module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.2"})
	require.NoError(t, err)
	require.Equal(t, "0.1", bought.Price)
	require.Equal(t, "0.2", bought.Credited)
	require.Equal(t, deployer, bought.Seller)

	owner, err := module.Registry.OwnerOf(ctx, testCollection, assetID)
	require.NoError(t, err)
	require.Equal(t, player, owner)

	listing, err := module.Handler.GetListingHandler(ctx, testCollection, assetID)
	require.NoError(t, err)
	require.False(t, listing.Item.Listed)

	proceeds, err := module.Handler.GetProceedsHandler(ctx, deployer)
	require.NoError(t, err)
	require.Equal(t, "0.2", proceeds.Balance)

	require.Equal(t, []string{string(ports.EventItemListed), string(ports.EventItemBought)}, outboxTypes(module))
	_, data := decodeOutbox(t, module.Store.OutboxEvents()[1])
	require.Equal(t, player, data.Buyer)
	require.Equal(t, "0.1", data.Price)

	_, err = module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.2"})
	require.ErrorIs(t, err, domainerrors.ErrNotListed)
}

func TestBuyItemRollsBackWhenRegistryRejectsTransfer(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	listAt(t, module, assetID, "0.1")
	ctx := context.Background()
	require.NoError(t, module.Registry.Approve(ctx, testCollection, deployer, "", assetID))

	_, err := module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.1"})
	require.ErrorIs(t, err, domainerrors.ErrAssetTransferFailed)
	require.ErrorIs(t, err, domainerrors.ErrRegistryTransferRejected)

	listing, err := module.Handler.GetListingHandler(ctx, testCollection, assetID)
	require.NoError(t, err)
	require.True(t, listing.Item.Listed)
	proceeds, err := module.Handler.GetProceedsHandler(ctx, deployer)
	require.NoError(t, err)
	require.Equal(t, "0", proceeds.Balance)
	require.Equal(t, []string{string(ports.EventItemListed)}, outboxTypes(module))
}

func TestBuyItemReentrantCallSeesClearedListing(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	listAt(t, module, assetID, "0.1")

	var reentryErr error
	module.Registry.SetTransferHook(func(ctx context.Context, collection string, _ string, _ string, id string) error {
		_, reentryErr = module.Handler.BuyItemHandler(ctx, "0xattacker", collection, id, httptransport.BuyItemRequest{Payment: "0.1"})
		return nil
	})

	_, err := module.Handler.BuyItemHandler(context.Background(), player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.1"})
	require.NoError(t, err)
	require.ErrorIs(t, reentryErr, domainerrors.ErrNotListed)

	proceeds, err := module.Handler.GetProceedsHandler(context.Background(), deployer)
	require.NoError(t, err)
	require.Equal(t, "0.1", proceeds.Balance)
}

func TestReadersWaitForRunningBuyToFinish(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	listAt(t, module, assetID, "0.1")

	type snapshot struct {
		listed   bool
		proceeds string
		err      error
	}
	seen := make(chan snapshot, 1)
	module.Registry.SetTransferHook(func(context.Context, string, string, string, string) error {
		started := make(chan struct{})
		go func() {
			close(started)
			ctx := context.Background()
			listing, err := module.Handler.GetListingHandler(ctx, testCollection, assetID)
			if err != nil {
				seen <- snapshot{err: err}
				return
			}
			proceeds, err := module.Handler.GetProceedsHandler(ctx, deployer)
			seen <- snapshot{listed: listing.Item.Listed, proceeds: proceeds.Balance, err: err}
		}()
		<-started
		time.Sleep(20 * time.Millisecond)
		return errors.New("receiver rejected asset")
	})

	_, err := module.Handler.BuyItemHandler(context.Background(), player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.1"})
	require.ErrorIs(t, err, domainerrors.ErrAssetTransferFailed)

	select {
	case got := <-seen:
		require.NoError(t, got.err)
		require.True(t, got.listed)
		require.Equal(t, "0", got.proceeds)
	case <-time.After(2 * time.Second):
		t.Fatal("reader never finished")
	}
}

func TestConcurrentBuyersOnlyOneWins(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	listAt(t, module, assetID, "1")

	buyers := []string{"0xb1", "0xb2", "0xb3", "0xb4", "0xb5", "0xb6", "0xb7", "0xb8"}
	errs := make([]error, len(buyers))
	var wg sync.WaitGroup
	for i, buyer := range buyers {
		wg.Add(1)
		go func(i int, buyer string) {
			defer wg.Done()
			_, errs[i] = module.Handler.BuyItemHandler(context.Background(), buyer, testCollection, assetID, httptransport.BuyItemRequest{Payment: "1"})
		}(i, buyer)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, domainerrors.ErrNotListed)
	}
	require.Equal(t, 1, wins)

	proceeds, err := module.Handler.GetProceedsHandler(context.Background(), deployer)
	require.NoError(t, err)
	require.Equal(t, "1", proceeds.Balance)
}

func TestCancelListing(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	ctx := context.Background()

	_, err := module.Handler.CancelListingHandler(ctx, deployer, testCollection, assetID)
	require.ErrorIs(t, err, domainerrors.ErrNotListed)

	listAt(t, module, assetID, "0.1")
	_, err = module.Handler.CancelListingHandler(ctx, player, testCollection, assetID)
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)
	requireListedAt(t, module, assetID, deployer, "0.1")
	require.Equal(t, []string{string(ports.EventItemListed)}, outboxTypes(module))

	canceled, err := module.Handler.CancelListingHandler(ctx, deployer, testCollection, assetID)
	require.NoError(t, err)
	require.True(t, canceled.Canceled)

	listing, err := module.Handler.GetListingHandler(ctx, testCollection, assetID)
	require.NoError(t, err)
	require.False(t, listing.Item.Listed)
	require.Equal(t, []string{string(ports.EventItemListed), string(ports.EventItemCanceled)}, outboxTypes(module))

	_, err = module.Handler.CancelListingHandler(ctx, deployer, testCollection, assetID)
	require.ErrorIs(t, err, domainerrors.ErrNotListed)
	require.Len(t, module.Store.OutboxEvents(), 2)

	// a canceled asset can be listed again
	listAt(t, module, assetID, "0.3")
}

func TestUpdateListing(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	ctx := context.Background()
	update := func(caller string, price string) (httptransport.ListingResponse, error) {
		return module.Handler.UpdateListingHandler(ctx, caller, testCollection, assetID, httptransport.UpdateListingRequest{NewPrice: price})
	}

	_, err := update(deployer, "0.2")
	require.ErrorIs(t, err, domainerrors.ErrNotListed)

	listAt(t, module, assetID, "0.1")
	_, err = update(player, "0.2")
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)
	_, err = update(deployer, "0")
	require.ErrorIs(t, err, domainerrors.ErrPriceMustBeAboveZero)
	requireListedAt(t, module, assetID, deployer, "0.1")
	require.Len(t, module.Store.OutboxEvents(), 1)

	updated, err := update(deployer, "0.2")
	require.NoError(t, err)
	require.Equal(t, "0.2", updated.Item.Price)
	require.Equal(t, []string{string(ports.EventItemListed), string(ports.EventItemListed)}, outboxTypes(module))

	_, err = module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.1"})
	require.ErrorIs(t, err, domainerrors.ErrPriceNotMet)

	bought, err := module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.2"})
	require.NoError(t, err)
	require.Equal(t, "0.2", bought.Price)

	owner, err := module.Registry.OwnerOf(ctx, testCollection, assetID)
	require.NoError(t, err)
	require.Equal(t, player, owner)
	proceeds, err := module.Handler.GetProceedsHandler(ctx, deployer)
	require.NoError(t, err)
	require.Equal(t, "0.2", proceeds.Balance)
}

func TestWithdrawProceeds(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	ctx := context.Background()

	_, err := module.Handler.WithdrawProceedsHandler(ctx, deployer)
	require.ErrorIs(t, err, domainerrors.ErrNoProceeds)

	listAt(t, module, assetID, "0.1")
	_, err = module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.1"})
	require.NoError(t, err)

	withdrawn, err := module.Handler.WithdrawProceedsHandler(ctx, deployer)
	require.NoError(t, err)
	require.Equal(t, "0.1", withdrawn.Amount)
	require.True(t, decimal.RequireFromString("0.1").Equal(module.Wallet.Balance(deployer)))

	proceeds, err := module.Handler.GetProceedsHandler(ctx, deployer)
	require.NoError(t, err)
	require.Equal(t, "0", proceeds.Balance)

	_, err = module.Handler.WithdrawProceedsHandler(ctx, deployer)
	require.ErrorIs(t, err, domainerrors.ErrNoProceeds)
	require.Equal(t, string(ports.EventProceedsWithdrawn), outboxTypes(module)[2])
}

func TestWithdrawProceedsRestoresBalanceWhenPayoutFails(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	ctx := context.Background()
	listAt(t, module, assetID, "0.1")
	_, err := module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.1"})
	require.NoError(t, err)

	module.Wallet.FailPayouts(errors.New("wallet offline"))
	_, err = module.Handler.WithdrawProceedsHandler(ctx, deployer)
	require.ErrorIs(t, err, domainerrors.ErrTransferFailed)

	proceeds, err := module.Handler.GetProceedsHandler(ctx, deployer)
	require.NoError(t, err)
	require.Equal(t, "0.1", proceeds.Balance)
	require.Len(t, module.Store.OutboxEvents(), 2)

	module.Wallet.FailPayouts(nil)
	_, err = module.Handler.WithdrawProceedsHandler(ctx, deployer)
	require.NoError(t, err)
}

func TestWithdrawProceedsReentrantCallSeesZeroBalance(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	ctx := context.Background()
	listAt(t, module, assetID, "0.1")
	_, err := module.Handler.BuyItemHandler(ctx, player, testCollection, assetID, httptransport.BuyItemRequest{Payment: "0.1"})
	require.NoError(t, err)

	var reentryErr error
	module.Wallet.SetPayoutHook(func(ctx context.Context, to string, _ decimal.Decimal) error {
		_, reentryErr = module.Handler.WithdrawProceedsHandler(ctx, to)
		return nil
	})

	_, err = module.Handler.WithdrawProceedsHandler(ctx, deployer)
	require.NoError(t, err)
	require.ErrorIs(t, reentryErr, domainerrors.ErrNoProceeds)
	require.True(t, decimal.RequireFromString("0.1").Equal(module.Wallet.Balance(deployer)))
}

func TestListListingsFiltersActiveBySeller(t *testing.T) {
	module, first := newApprovedFixture(t)
	ctx := context.Background()
	second, err := module.Registry.Mint(ctx, testCollection, player)
	require.NoError(t, err)
	require.NoError(t, module.Registry.SetApprovalForAll(ctx, testCollection, player, testMarketplace, true))

	listAt(t, module, first, "0.1")
	_, err = module.Handler.ListItemHandler(ctx, player, httptransport.ListItemRequest{
		Collection: testCollection,
		AssetID:    second,
		Price:      "2",
	})
	require.NoError(t, err)

	all, err := module.Handler.ListListingsHandler(ctx, httptransport.ListListingsRequest{Collection: testCollection})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)

	mine, err := module.Handler.ListListingsHandler(ctx, httptransport.ListListingsRequest{Seller: player})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	require.Equal(t, second, mine.Items[0].AssetID)

	page, err := module.Handler.ListListingsHandler(ctx, httptransport.ListListingsRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotEmpty(t, page.NextCursor)
}

type capturePublisher struct {
	topics    []string
	envelopes []ports.EventEnvelope
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	p.envelopes = append(p.envelopes, event)
	return nil
}

func TestOutboxRelayDrainsModuleOutbox(t *testing.T) {
	module, assetID := newApprovedFixture(t)
	listAt(t, module, assetID, "0.1")
	_, err := module.Handler.CancelListingHandler(context.Background(), deployer, testCollection, assetID)
	require.NoError(t, err)

	publisher := &capturePublisher{}
	relay := module.OutboxRelay(publisher, "ledger", 10, nil)
	sent, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sent)
	require.Equal(t, []string{"ledger", "ledger"}, publisher.topics)
	require.Equal(t, string(ports.EventItemCanceled), publisher.envelopes[1].EventType)

	sent, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
}
