// Package nftmarketplace contains the marketplace ledger: fixed-price
// listings of registry assets, sale matching and seller proceeds.
//
// Ownership lives in an external asset registry reached through
// ports.AssetRegistry. The ledger only records listings and proceeds, and
// emits its events through a transactional outbox.
package nftmarketplace
