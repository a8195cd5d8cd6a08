package handler

import (
	"log/slog"
	"net/http"

	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/services"
)

type CartHandler struct {
	carts  *services.CartService
	logger *slog.Logger
}

func NewCartHandler(carts *services.CartService, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CartHandler{carts: carts, logger: logger}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customer, err := customerFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	cart, err := h.carts.Get(r.Context(), customer.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customer, err := customerFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req addCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.carts.AddPrimaryItem(r.Context(), customer.ID, req.TicketTypeID, req.Quantity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCartItemResponse(item))
}

func (h *CartHandler) AddResaleItem(w http.ResponseWriter, r *http.Request) {
	customer, err := customerFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req addResaleItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.carts.AddResaleItem(r.Context(), customer.ID, req.TicketID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCartItemResponse(item))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customer, err := customerFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	itemID, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.carts.RemoveItem(r.Context(), customer.ID, itemID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout sends confirmations to the address carried in the caller's token.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customer, err := customerFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.carts.Checkout(r.Context(), customer.ID, domain.BuyerContact{
		Email: customer.Email,
		Name:  customer.Name,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCheckoutResponse(result))
}
