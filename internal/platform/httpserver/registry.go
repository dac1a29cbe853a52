package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	httptransport "nftmarket/contexts/marketplace-core/nft-marketplace/transport/http"
)

// registerRegistryRoutes exposes the in-memory asset registry so a running
// API can mint and approve the assets its listings refer to.
func (s *Server) registerRegistryRoutes() {
	if s.marketplace.Registry == nil {
		return
	}
	s.mux.HandleFunc("POST /v1/registry/{collection}/mint", s.throttled(s.handleMintAsset))
	s.mux.HandleFunc("POST /v1/registry/{collection}/approval-for-all", s.throttled(s.handleApprovalForAll))
	s.mux.HandleFunc("GET /v1/registry/{collection}/{asset_id}", s.handleGetAsset)
	s.mux.HandleFunc("POST /v1/registry/{collection}/{asset_id}/approve", s.throttled(s.handleApproveAsset))
}

func (s *Server) handleMintAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.MintAssetRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	to := req.To
	if to == "" {
		to = caller
	}

	collection := entities.NormalizeAddress(r.PathValue("collection"))
	assetID, err := s.marketplace.Registry.Mint(r.Context(), collection, to)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, httptransport.AssetResponse{
		Collection: collection,
		AssetID:    assetID,
		Owner:      entities.NormalizeAddress(to),
	})
}

func (s *Server) handleApproveAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.ApproveAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	collection := r.PathValue("collection")
	assetID := r.PathValue("asset_id")
	if err := s.marketplace.Registry.Approve(r.Context(), collection, caller, req.Approved, assetID); err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	s.writeAsset(w, r, collection, assetID)
}

func (s *Server) handleApprovalForAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.ApprovalForAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	collection := r.PathValue("collection")
	if err := s.marketplace.Registry.SetApprovalForAll(r.Context(), collection, caller, req.Operator, req.Approved); err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, httptransport.ApprovalForAllResponse{
		Collection: entities.NormalizeAddress(collection),
		Owner:      entities.NormalizeAddress(caller),
		Operator:   entities.NormalizeAddress(req.Operator),
		Approved:   req.Approved,
	})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	s.writeAsset(w, r, r.PathValue("collection"), r.PathValue("asset_id"))
}

func (s *Server) writeAsset(w http.ResponseWriter, r *http.Request, collection string, assetID string) {
	owner, err := s.marketplace.Registry.OwnerOf(r.Context(), collection, assetID)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	approved, err := s.marketplace.Registry.GetApproved(r.Context(), collection, assetID)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	key := entities.NewListingKey(collection, assetID)
	writeJSON(w, http.StatusOK, httptransport.AssetResponse{
		Collection: key.Collection,
		AssetID:    key.AssetID,
		Owner:      owner,
		Approved:   approved,
	})
}

// decodeOptionalJSON accepts an empty body as the zero request.
func decodeOptionalJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
