package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ListingKey identifies one listing slot: a single asset inside a collection.
type ListingKey struct {
	Collection string
	AssetID    string
}

func NewListingKey(collection string, assetID string) ListingKey {
	return ListingKey{
		Collection: NormalizeAddress(collection),
		AssetID:    strings.TrimSpace(assetID),
	}
}

func (k ListingKey) IsZero() bool {
	return k.Collection == "" || k.AssetID == ""
}

// PartitionKey keeps every event for one asset on the same partition.
func (k ListingKey) PartitionKey() string {
	return k.Collection + ":" + k.AssetID
}

// Listing is a fixed-price offer. A zero price is the absence sentinel: the
// repository returns a zero-price Listing for keys that were never listed or
// were cleared by a cancel or a sale.
type Listing struct {
	Key       ListingKey
	Seller    string
	Price     decimal.Decimal
	ListedAt  time.Time
	UpdatedAt time.Time
}

func (l Listing) Active() bool {
	return l.Price.IsPositive()
}

// Unlisted returns the absence sentinel for key.
func Unlisted(key ListingKey) Listing {
	return Listing{Key: key, Price: decimal.Zero}
}

func NewListing(key ListingKey, seller string, price decimal.Decimal, now time.Time) Listing {
	return Listing{
		Key:       key,
		Seller:    NormalizeAddress(seller),
		Price:     price,
		ListedAt:  now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// WithPrice returns a copy repriced at now. The seller snapshot is kept.
func (l Listing) WithPrice(price decimal.Decimal, now time.Time) Listing {
	l.Price = price
	l.UpdatedAt = now.UTC()
	return l
}

// NormalizeAddress trims and lower-cases an account or collection address.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
