package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	nftmarketplace "nftmarket/contexts/marketplace-core/nft-marketplace"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
	httptransport "nftmarket/contexts/marketplace-core/nft-marketplace/transport/http"
	"nftmarket/internal/platform/eventstream"
	"nftmarket/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "nftmarket/internal/platform/httpserver/docs"
)

const callerHeader = "X-User-Id"

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	marketplace nftmarketplace.Module
	metrics     *metrics.Metrics
	events      *eventstream.Hub
	limiter     *callerLimiter
	httpServer  *http.Server
}

// New wires the marketplace routes. metrics and events may be nil, in which
// case /metrics and the event stream are not mounted.
func New(
	marketplace nftmarketplace.Module,
	metricsRegistry *metrics.Metrics,
	events *eventstream.Hub,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		marketplace: marketplace,
		metrics:     metricsRegistry,
		events:      events,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed mux, instrumented when metrics are configured.
func (s *Server) Handler() http.Handler {
	if s.metrics == nil {
		return s.mux
	}
	return s.metrics.InstrumentHandler(s.mux)
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	if s.events != nil {
		s.mux.Handle("GET /v1/marketplace/events/stream", s.events)
	}

	s.mux.HandleFunc("POST /v1/marketplace/listings", s.throttled(s.handleListItem))
	s.mux.HandleFunc("GET /v1/marketplace/listings", s.handleListListings)
	s.mux.HandleFunc("GET /v1/marketplace/listings/{collection}/{asset_id}", s.handleGetListing)
	s.mux.HandleFunc("PATCH /v1/marketplace/listings/{collection}/{asset_id}", s.throttled(s.handleUpdateListing))
	s.mux.HandleFunc("DELETE /v1/marketplace/listings/{collection}/{asset_id}", s.throttled(s.handleCancelListing))
	s.mux.HandleFunc("POST /v1/marketplace/listings/{collection}/{asset_id}/buy", s.throttled(s.handleBuyItem))

	s.mux.HandleFunc("GET /v1/marketplace/proceeds/{seller}", s.handleGetProceeds)
	s.mux.HandleFunc("POST /v1/marketplace/proceeds/withdraw", s.throttled(s.handleWithdrawProceeds))

	s.registerRegistryRoutes()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.ListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.marketplace.Handler.ListItemHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := httptransport.ListListingsRequest{
		Collection: query.Get("collection"),
		Seller:     query.Get("seller"),
		Cursor:     query.Get("cursor"),
	}
	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeMarketplaceError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		req.Limit = limit
	}

	resp, err := s.marketplace.Handler.ListListingsHandler(r.Context(), req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.GetListingHandler(
		r.Context(),
		r.PathValue("collection"),
		r.PathValue("asset_id"),
	)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.marketplace.Handler.UpdateListingHandler(
		r.Context(),
		caller,
		r.PathValue("collection"),
		r.PathValue("asset_id"),
		req,
	)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.marketplace.Handler.CancelListingHandler(
		r.Context(),
		caller,
		r.PathValue("collection"),
		r.PathValue("asset_id"),
	)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	buyer, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req httptransport.BuyItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.marketplace.Handler.BuyItemHandler(
		r.Context(),
		buyer,
		r.PathValue("collection"),
		r.PathValue("asset_id"),
		req,
	)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProceeds(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.GetProceedsHandler(r.Context(), r.PathValue("seller"))
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdrawProceeds(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.marketplace.Handler.WithdrawProceedsHandler(r.Context(), caller)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get(callerHeader))
	if caller == "" {
		writeMarketplaceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return caller, true
}

func writeMarketplaceDomainError(w http.ResponseWriter, err error) {
	// Failed external transfers are joined with their cause, so they are
	// matched before any cause they may wrap.
	switch {
	case errors.Is(err, domainerrors.ErrAssetTransferFailed):
		writeMarketplaceError(w, http.StatusBadGateway, "asset_transfer_failed", err.Error())
	case errors.Is(err, domainerrors.ErrTransferFailed):
		writeMarketplaceError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	case errors.Is(err, domainerrors.ErrPriceMustBeAboveZero):
		writeMarketplaceError(w, http.StatusBadRequest, "price_must_be_above_zero", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidRequest):
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrNotOwner):
		writeMarketplaceError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, domainerrors.ErrNotApprovedForMarketplace):
		writeMarketplaceError(w, http.StatusForbidden, "not_approved_for_marketplace", err.Error())
	case errors.Is(err, domainerrors.ErrNotListed):
		writeMarketplaceError(w, http.StatusNotFound, "not_listed", err.Error())
	case errors.Is(err, domainerrors.ErrAssetNotFound):
		writeMarketplaceError(w, http.StatusNotFound, "asset_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyListed):
		writeMarketplaceError(w, http.StatusConflict, "already_listed", err.Error())
	case errors.Is(err, domainerrors.ErrNoProceeds):
		writeMarketplaceError(w, http.StatusConflict, "no_proceeds", err.Error())
	case errors.Is(err, domainerrors.ErrPriceNotMet):
		writeMarketplaceError(w, http.StatusPaymentRequired, "price_not_met", err.Error())
	case errors.Is(err, domainerrors.ErrRegistryTransferRejected):
		writeMarketplaceError(w, http.StatusForbidden, "registry_rejected", err.Error())
	default:
		writeMarketplaceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMarketplaceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, httptransport.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
