package memory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

// Store is the in-memory ledger used by local runtime and tests. Writes made
// inside WithinTx land in place, are journaled and are undone if the unit of
// work fails. Readers that must not see them serialize with the writers.
type Store struct {
	mu          sync.RWMutex
	listings    map[entities.ListingKey]entities.Listing
	proceeds    map[string]decimal.Decimal
	outbox      map[string]ports.OutboxMessage
	outboxOrder []string
	outboxSent  map[string]time.Time
	sequence    uint64
	logger      *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		listings:    make(map[entities.ListingKey]entities.Listing),
		proceeds:    make(map[string]decimal.Decimal),
		outbox:      make(map[string]ports.OutboxMessage),
		outboxOrder: make([]string, 0),
		outboxSent:  make(map[string]time.Time),
		logger:      application.ResolveLogger(logger),
	}
}

type txKey struct{}

// journal holds undo steps in write order. It is only touched with s.mu held.
type journal struct {
	store *Store
	undo  []func()
}

func (s *Store) journalFrom(ctx context.Context) *journal {
	j, ok := ctx.Value(txKey{}).(*journal)
	if !ok || j.store != s {
		return nil
	}
	return j
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.journalFrom(ctx) != nil {
		return fn(ctx)
	}

	j := &journal{store: s}
	if err := fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		s.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		s.mu.Unlock()
		s.logger.Debug("memory unit of work rolled back",
			"event", "memory_tx_rolled_back",
			"module", application.ModuleName,
			"layer", "adapter",
			"undo_steps", len(j.undo),
		)
		return err
	}
	return nil
}

// record must be called with s.mu held.
func (s *Store) record(ctx context.Context, undo func()) {
	if j := s.journalFrom(ctx); j != nil {
		j.undo = append(j.undo, undo)
	}
}

func (s *Store) GetListing(_ context.Context, key entities.ListingKey) (entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[key]
	if !ok {
		return entities.Unlisted(key), nil
	}
	return listing, nil
}

func (s *Store) ListListings(_ context.Context, filter ports.ListingFilter) ([]entities.Listing, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]entities.Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		if !listing.Active() {
			continue
		}
		if filter.Collection != "" && listing.Key.Collection != filter.Collection {
			continue
		}
		if filter.Seller != "" && listing.Seller != filter.Seller {
			continue
		}
		filtered = append(filtered, listing)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].ListedAt.Equal(filtered[j].ListedAt) {
			return filtered[i].Key.PartitionKey() < filtered[j].Key.PartitionKey()
		}
		return filtered[i].ListedAt.After(filtered[j].ListedAt)
	})

	start := decodeCursor(filter.Cursor)
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 {
		end = start + 20
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	page := append([]entities.Listing(nil), filtered[start:end]...)
	nextCursor := ""
	if end < len(filtered) {
		nextCursor = encodeCursor(end)
	}
	return page, nextCursor, nil
}

func (s *Store) SaveListing(ctx context.Context, listing entities.Listing) error {
	if listing.Key.IsZero() {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listing.Key
	prior, existed := s.listings[key]
	s.record(ctx, func() {
		if existed {
			s.listings[key] = prior
			return
		}
		delete(s.listings, key)
	})
	s.listings[key] = listing
	return nil
}

func (s *Store) ClearListing(ctx context.Context, key entities.ListingKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior, existed := s.listings[key]
	if !existed {
		return nil
	}
	s.record(ctx, func() { s.listings[key] = prior })
	delete(s.listings, key)
	return nil
}

func (s *Store) GetProceeds(_ context.Context, seller string) (entities.ProceedsAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return entities.ProceedsAccount{Seller: seller, Balance: s.proceeds[seller]}, nil
}

func (s *Store) CreditProceeds(ctx context.Context, seller string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restoreBalanceOnUndo(ctx, seller)
	s.proceeds[seller] = s.proceeds[seller].Add(amount)
	return nil
}

func (s *Store) ResetProceeds(ctx context.Context, seller string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proceeds[seller]; !ok {
		return nil
	}
	s.restoreBalanceOnUndo(ctx, seller)
	s.proceeds[seller] = decimal.Zero
	return nil
}

func (s *Store) restoreBalanceOnUndo(ctx context.Context, seller string) {
	prior, existed := s.proceeds[seller]
	s.record(ctx, func() {
		if existed {
			s.proceeds[seller] = prior
			return
		}
		delete(s.proceeds, seller)
	})
}

func (s *Store) AppendOutbox(ctx context.Context, event ports.MarketEvent) error {
	envelope, err := ports.BuildEnvelope(event)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.outbox[event.EventID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.outbox[event.EventID] = ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    string(event.EventType),
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	s.outboxOrder = append(s.outboxOrder, event.EventID)
	s.record(ctx, func() {
		delete(s.outbox, event.EventID)
		for i := len(s.outboxOrder) - 1; i >= 0; i-- {
			if s.outboxOrder[i] == event.EventID {
				s.outboxOrder = append(s.outboxOrder[:i], s.outboxOrder[i+1:]...)
				break
			}
		}
	})

	s.logger.Debug("ledger event appended to memory outbox",
		"event", "memory_append_outbox",
		"module", application.ModuleName,
		"layer", "adapter",
		"event_id", event.EventID,
		"event_type", string(event.EventType),
		"partition_key", event.PartitionKey,
	)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		if msg, ok := s.outbox[id]; ok {
			messages = append(messages, msg)
		}
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("nftm-%d", value), nil
}

// OutboxEvents returns every outbox row in append order, sent or not.
func (s *Store) OutboxEvents() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.OutboxMessage, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		if evt, ok := s.outbox[id]; ok {
			events = append(events, evt)
		}
	}
	return events
}

func decodeCursor(cursor string) int {
	if strings.TrimSpace(cursor) == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	index, err := strconv.Atoi(string(raw))
	if err != nil || index < 0 {
		return 0
	}
	return index
}

func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}
