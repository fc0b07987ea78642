package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
	usecase "github.com/scraplot/auction-service/internal/usecase/auction"
	auctiondto "github.com/scraplot/auction-service/internal/usecase/dto/auction"
)

// Handler contains HTTP request handlers
type Handler struct {
	auctionUC   usecase.AuctionUsecase
	leaderboard domain.LeaderboardStore
	ws          *WSHandler
}

func NewHandler(auctionUC usecase.AuctionUsecase, leaderboard domain.LeaderboardStore, ws *WSHandler) *Handler {
	return &Handler{
		auctionUC:   auctionUC,
		leaderboard: leaderboard,
		ws:          ws,
	}
}

// SetupRoutes configures all HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auctions", h.CreateAuction).Methods("POST")
	api.HandleFunc("/auctions", h.GetAuctions).Methods("GET")
	api.HandleFunc("/auctions/{id}", h.GetAuction).Methods("GET")
	api.HandleFunc("/auctions/{id}/publish", h.PublishAuction).Methods("POST")
	api.HandleFunc("/auctions/{id}/cancel", h.CancelAuction).Methods("POST")
	api.HandleFunc("/auctions/{id}/close", h.CloseAuction).Methods("POST")
	api.HandleFunc("/auctions/{id}/bids", h.PlaceBid).Methods("POST")
	api.HandleFunc("/auctions/{id}/bids", h.GetBidHistory).Methods("GET")
	api.HandleFunc("/auctions/{id}/analytics", h.GetAnalytics).Methods("GET")
	api.HandleFunc("/auctions/{id}/leaderboard", h.GetLeaderboard).Methods("GET")
	api.HandleFunc("/auctions/{id}/seller-approval", h.AcceptBidSeller).Methods("POST")
	api.HandleFunc("/auctions/{id}/admin-approval", h.AcceptBidAdmin).Methods("POST")
	api.HandleFunc("/auctions/{id}/token-payment", h.MarkTokenReceived).Methods("POST")
	api.HandleFunc("/bidders/{id}/bids", h.GetBidderHistory).Methods("GET")
	api.HandleFunc("/sellers/{id}/statistics", h.GetSellerStatistics).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/auctions/{id}/bids", h.AdminCreateBid).Methods("POST")
	admin.HandleFunc("/bids/{id}", h.AdminUpdateBid).Methods("PUT")
	admin.HandleFunc("/bids/{id}", h.AdminDeleteBid).Methods("DELETE")

	if h.ws != nil {
		router.HandleFunc("/ws/auctions/{id}", h.ws.HandleAuctionFeed)
		router.HandleFunc("/ws/feed", h.ws.HandleGlobalFeed)
	}

	router.Use(loggingMiddleware)

	return router
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "auction-service",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

type createAuctionRequest struct {
	MaterialID           string           `json:"material_id"`
	SellerID             string           `json:"seller_id"`
	Title                string           `json:"title"`
	StartingPrice        decimal.Decimal  `json:"starting_price"`
	EndTime              time.Time        `json:"end_time"`
	ScheduledPublishDate *time.Time       `json:"scheduled_publish_date,omitempty"`
	TokenAmount          *decimal.Decimal `json:"token_amount,omitempty"`
	PublishNow           bool             `json:"publish_now"`
}

func (h *Handler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	auction, err := h.auctionUC.CreateAuction(&auctiondto.CreateAuctionInput{
		MaterialID:           req.MaterialID,
		SellerID:             req.SellerID,
		Title:                req.Title,
		StartingPrice:        req.StartingPrice,
		EndTime:              req.EndTime,
		ScheduledPublishDate: req.ScheduledPublishDate,
		TokenAmount:          req.TokenAmount,
		PublishNow:           req.PublishNow,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, auction)
}

func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["id"]

	auction, err := h.auctionUC.GetAuctionByID(auctionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, auction)
}

func (h *Handler) GetAuctions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := &auctiondto.GetAuctionsInput{
		SellerID:   query.Get("seller_id"),
		MaterialID: query.Get("material_id"),
		Page:       parseInt32(query.Get("page"), 1),
		Limit:      parseInt32(query.Get("limit"), 20),
	}
	for _, status := range query["status"] {
		input.Statuses = append(input.Statuses, domain.AuctionStatus(status))
	}
	if from := query.Get("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			input.DateFrom = t
		}
	}
	if to := query.Get("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			input.DateTo = t
		}
	}

	output, err := h.auctionUC.GetAuctions(input)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, output)
}

func (h *Handler) PublishAuction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.auctionUC.PublishAuction)
}

func (h *Handler) CancelAuction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.auctionUC.CancelAuction)
}

func (h *Handler) CloseAuction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.auctionUC.CloseAuction)
}

func (h *Handler) AcceptBidSeller(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.auctionUC.AcceptBidSeller)
}

func (h *Handler) MarkTokenReceived(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.auctionUC.MarkTokenReceived)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(string) error) {
	auctionID := mux.Vars(r)["id"]

	if err := op(auctionID); err != nil {
		respondDomainError(w, err)
		return
	}

	auction, err := h.auctionUC.GetAuctionByID(auctionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, auction)
}

func (h *Handler) AcceptBidAdmin(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["id"]

	settlement, err := h.auctionUC.AcceptBidAdmin(auctionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, settlement)
}

type placeBidRequest struct {
	BidderID string          `json:"bidder_id"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["id"]

	var req placeBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BidderID == "" {
		respondError(w, http.StatusBadRequest, "bidder_id is required")
		return
	}

	bid, err := h.auctionUC.PlaceBid(r.Context(), auctionID, req.BidderID, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, bid)
}

func (h *Handler) GetBidHistory(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["id"]

	bids, err := h.auctionUC.GetBidHistory(auctionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"auction_id": auctionID,
		"bids":       bids,
	})
}

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["id"]

	analytics, err := h.auctionUC.GetAnalytics(auctionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, analytics)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["id"]
	limit := int64(parseInt32(r.URL.Query().Get("limit"), 10))

	entries, err := h.leaderboard.TopBidders(r.Context(), auctionID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read leaderboard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"auction_id": auctionID,
		"entries":    entries,
	})
}

func (h *Handler) GetBidderHistory(w http.ResponseWriter, r *http.Request) {
	bidderID := mux.Vars(r)["id"]
	query := r.URL.Query()

	history, err := h.auctionUC.GetBidderHistory(bidderID,
		parseInt32(query.Get("page"), 1),
		parseInt32(query.Get("limit"), 20),
	)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (h *Handler) GetSellerStatistics(w http.ResponseWriter, r *http.Request) {
	sellerID := mux.Vars(r)["id"]
	query := r.URL.Query()

	var dateFrom, dateTo time.Time
	if from := query.Get("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			dateFrom = t
		}
	}
	if to := query.Get("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			dateTo = t
		}
	}

	stats, err := h.auctionUC.GetSellerStatistics(sellerID, dateFrom, dateTo)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

type adminBidRequest struct {
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

func (h *Handler) AdminCreateBid(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["id"]

	var req adminBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := &auctiondto.AdminCreateBidInput{
		ActorID:   actorID(r),
		AuctionID: auctionID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
	}
	if req.Timestamp != nil {
		input.Timestamp = *req.Timestamp
	}

	bid, err := h.auctionUC.AdminCreateBid(r.Context(), input)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, bid)
}

func (h *Handler) AdminUpdateBid(w http.ResponseWriter, r *http.Request) {
	bidID := mux.Vars(r)["id"]

	var req adminBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bid, err := h.auctionUC.AdminUpdateBid(r.Context(), &auctiondto.AdminUpdateBidInput{
		ActorID: actorID(r),
		BidID:   bidID,
		Amount:  req.Amount,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bid)
}

func (h *Handler) AdminDeleteBid(w http.ResponseWriter, r *http.Request) {
	bidID := mux.Vars(r)["id"]

	err := h.auctionUC.AdminDeleteBid(r.Context(), &auctiondto.AdminDeleteBidInput{
		ActorID: actorID(r),
		BidID:   bidID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// actorID reads the authenticated caller set by the gateway. Role checks
// happen in the usecase against the verification service.
func actorID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func parseInt32(raw string, fallback int32) int32 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondDomainError maps usecase errors onto HTTP statuses. Validation
// rejections carry the current bid so clients can render "outbid by X"
// without a second round trip; contention timeouts are retryable.
func respondDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.StateConflictError
	var contentionErr *domain.ContentionTimeoutError

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":       validationErr.Reason,
			"current_bid": validationErr.CurrentBid,
		})
	case errors.As(err, &conflictErr):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":       conflictErr.Reason,
			"status":      conflictErr.Status,
			"current_bid": conflictErr.CurrentBid,
		})
	case errors.As(err, &contentionErr):
		w.Header().Set("Retry-After", "1")
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":     "auction busy, retry",
			"retryable": true,
		})
	case errors.Is(err, domain.ErrAuctionNotFound), errors.Is(err, domain.ErrBidNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("request failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.RequestURI,
			"duration", time.Since(start).String(),
		)
	})
}
