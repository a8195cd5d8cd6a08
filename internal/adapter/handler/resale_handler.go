package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/services"
)

// ResaleHandler serves ticket ownership and the resale marketplace.
type ResaleHandler struct {
	resale *services.ResaleService
	logger *slog.Logger
}

func NewResaleHandler(resale *services.ResaleService, logger *slog.Logger) *ResaleHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ResaleHandler{resale: resale, logger: logger}
}

func (h *ResaleHandler) MyTickets(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tickets, err := h.resale.MyTickets(r.Context(), caller.UserID())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newTicketResponses(tickets))
}

func (h *ResaleHandler) ListTicket(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ticketID, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req resellRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ticket, err := h.resale.List(r.Context(), ticketID, req.ResellPrice, caller.UserID())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newTicketResponse(ticket))
}

func (h *ResaleHandler) DelistTicket(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ticketID, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ticket, err := h.resale.Delist(r.Context(), ticketID, caller.UserID())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newTicketResponse(ticket))
}

func (h *ResaleHandler) Marketplace(w http.ResponseWriter, r *http.Request) {
	filter, err := listingFilter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	listings, err := h.resale.Marketplace(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newListingResponses(listings))
}

func (h *ResaleHandler) MyListings(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	listings, err := h.resale.MyListings(r.Context(), caller.UserID())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newListingResponses(listings))
}

func (h *ResaleHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	customer, err := customerFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req purchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	transfer, err := h.resale.Purchase(r.Context(), req.TicketID, customer.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newTransferResponse(transfer))
}

func listingFilter(r *http.Request) (domain.ListingFilter, error) {
	var filter domain.ListingFilter
	q := r.URL.Query()

	if v := q.Get("event_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid event_id: %w", domain.ErrInvalidInput)
		}
		filter.EventID = &id
	}

	for key, dst := range map[string]**decimal.Decimal{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}

		price, err := decimal.NewFromString(v)
		if err != nil {
			return filter, fmt.Errorf("invalid %s: %w", key, domain.ErrInvalidInput)
		}
		*dst = &price
	}

	return filter, nil
}
