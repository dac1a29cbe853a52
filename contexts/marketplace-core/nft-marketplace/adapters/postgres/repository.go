package postgresadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

type txKey struct{}

// Repository is the gorm-backed ledger. It implements LedgerRepository,
// UnitOfWork and OutboxRepository over one database handle.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// WithinTx opens a transaction and hands fn a ctx carrying it. A ctx that
// already carries one of this repository's transactions is reused as-is.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := r.txFrom(ctx); ok {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (r *Repository) txFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := r.txFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// GetListing locks the row FOR UPDATE when called inside a unit of work.
func (r *Repository) GetListing(ctx context.Context, key entities.ListingKey) (entities.Listing, error) {
	query := r.conn(ctx)
	if _, inTx := r.txFrom(ctx); inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row listingModel
	err := query.
		Where("collection = ? AND asset_id = ?", key.Collection, key.AssetID).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Unlisted(key), nil
		}
		return entities.Listing{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListListings(ctx context.Context, filter ports.ListingFilter) ([]entities.Listing, string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	tx := r.conn(ctx).Model(&listingModel{}).Where("price > 0")
	if filter.Collection != "" {
		tx = tx.Where("collection = ?", filter.Collection)
	}
	if filter.Seller != "" {
		tx = tx.Where("seller = ?", filter.Seller)
	}
	tx = tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "listed_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "collection"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "asset_id"}})

	offset := decodeCursor(filter.Cursor)
	var rows []listingModel
	if err := tx.Offset(offset).Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = encodeCursor(offset + limit)
		rows = rows[:limit]
	}

	items := make([]entities.Listing, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nextCursor, nil
}

func (r *Repository) SaveListing(ctx context.Context, listing entities.Listing) error {
	row := listingModelFromEntity(listing)
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "asset_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"seller", "price", "listed_at", "updated_at"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ClearListing(ctx context.Context, key entities.ListingKey) error {
	return r.conn(ctx).
		Where("collection = ? AND asset_id = ?", key.Collection, key.AssetID).
		Delete(&listingModel{}).
		Error
}

func (r *Repository) GetProceeds(ctx context.Context, seller string) (entities.ProceedsAccount, error) {
	query := r.conn(ctx)
	if _, inTx := r.txFrom(ctx); inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row proceedsModel
	err := query.Where("seller = ?", seller).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ProceedsAccount{Seller: seller, Balance: decimal.Zero}, nil
		}
		return entities.ProceedsAccount{}, err
	}
	return entities.ProceedsAccount{Seller: row.Seller, Balance: row.Balance}, nil
}

func (r *Repository) CreditProceeds(ctx context.Context, seller string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	row := proceedsModel{
		Seller:    seller,
		Balance:   amount,
		UpdatedAt: time.Now().UTC(),
	}
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "seller"}},
			DoUpdates: clause.Assignments(map[string]any{
				"balance":    gorm.Expr("marketplace_proceeds.balance + EXCLUDED.balance"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ResetProceeds(ctx context.Context, seller string) error {
	return r.conn(ctx).
		Model(&proceedsModel{}).
		Where("seller = ?", seller).
		Updates(map[string]any{
			"balance":    decimal.Zero,
			"updated_at": time.Now().UTC(),
		}).
		Error
}

func (r *Repository) AppendOutbox(ctx context.Context, event ports.MarketEvent) error {
	envelope, err := ports.BuildEnvelope(event)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	row := outboxModel{
		OutboxID:     event.EventID,
		EventType:    string(event.EventType),
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			r.logger.Error("duplicate outbox event id",
				"event", "nft_marketplace_outbox_duplicate",
				"module", "marketplace-core/nft-marketplace",
				"layer", "adapter",
				"event_id", event.EventID,
				"constraint", constraintName(err),
			)
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	return nil
}

type listingModel struct {
	Collection string          `gorm:"column:collection;primaryKey"`
	AssetID    string          `gorm:"column:asset_id;primaryKey"`
	Seller     string          `gorm:"column:seller"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(78,18)"`
	ListedAt   time.Time       `gorm:"column:listed_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (listingModel) TableName() string {
	return "marketplace_listings"
}

func listingModelFromEntity(listing entities.Listing) listingModel {
	return listingModel{
		Collection: listing.Key.Collection,
		AssetID:    listing.Key.AssetID,
		Seller:     listing.Seller,
		Price:      listing.Price,
		ListedAt:   listing.ListedAt.UTC(),
		UpdatedAt:  listing.UpdatedAt.UTC(),
	}
}

func (m listingModel) toEntity() entities.Listing {
	return entities.Listing{
		Key: entities.ListingKey{
			Collection: m.Collection,
			AssetID:    m.AssetID,
		},
		Seller:    m.Seller,
		Price:     m.Price,
		ListedAt:  m.ListedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type proceedsModel struct {
	Seller    string          `gorm:"column:seller;primaryKey"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(78,18)"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (proceedsModel) TableName() string {
	return "marketplace_proceeds"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "marketplace_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
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
