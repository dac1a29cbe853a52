package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	nftmarketplace "nftmarket/contexts/marketplace-core/nft-marketplace"
	httptransport "nftmarket/contexts/marketplace-core/nft-marketplace/transport/http"
	"nftmarket/internal/app/bootstrap"
)

// Developer helper: mint an asset, approve the marketplace and list it,
// all against the in-memory stack. Prints the resulting listing as JSON.
func main() {
	collection := flag.String("collection", "0xbasicnft", "Collection address")
	owner := flag.String("owner", "0xdeployer", "Minter and seller address")
	price := flag.String("price", "0.001", "Listing price")
	marketplace := flag.String("marketplace", "nft-marketplace", "Marketplace address")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	ctx := context.Background()
	logger := bootstrap.NewLogger(*logLevel)
	module := nftmarketplace.NewInMemoryModule(*marketplace, logger)

	log.Println("minting asset")
	assetID, err := module.Registry.Mint(ctx, *collection, *owner)
	if err != nil {
		log.Fatalf("mint failed: %v", err)
	}

	log.Println("approving marketplace")
	if err := module.Registry.Approve(ctx, *collection, *owner, *marketplace, assetID); err != nil {
		log.Fatalf("approve failed: %v", err)
	}

	log.Println("listing asset")
	resp, err := module.Handler.ListItemHandler(ctx, *owner, httptransport.ListItemRequest{
		Collection: *collection,
		AssetID:    assetID,
		Price:      *price,
	})
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		log.Fatalf("encode listing failed: %v", err)
	}
}
