package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/services"
)

type statusChange func(ctx context.Context, caller domain.Principal, eventID uuid.UUID) (*domain.Event, error)

// EventHandler serves event lifecycle and ticket type routes.
type EventHandler struct {
	events      *services.EventService
	ticketTypes *services.TicketTypeService
	logger      *slog.Logger
}

func NewEventHandler(events *services.EventService, ticketTypes *services.TicketTypeService, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventHandler{events: events, ticketTypes: ticketTypes, logger: logger}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	event, ticketType, err := h.events.Create(r.Context(), caller, services.CreateEventInput{
		LocationID:          req.LocationID,
		VenueName:           req.VenueName,
		Name:                req.Name,
		Description:         req.Description,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		MinimumAge:          req.MinimumAge,
		Categories:          req.Categories,
		TotalTickets:        req.TotalTickets,
		StandardTicketPrice: *req.StandardTicketPrice,
		Currency:            req.Currency,
		TicketSalesStart:    req.TicketSalesStart,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"event":       newEventResponse(event),
		"ticket_type": newTicketTypeResponse(ticketType),
	})
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(event))
}

func (h *EventHandler) AuthorizeEvent(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.events.Authorize)
}

func (h *EventHandler) RejectEvent(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.events.Reject)
}

func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.events.Cancel)
}

func (h *EventHandler) changeStatus(w http.ResponseWriter, r *http.Request, change statusChange) {
	caller, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	event, err := change(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(event))
}

func (h *EventHandler) CreateTicketType(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req createTicketTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ticketType, err := h.ticketTypes.Create(r.Context(), caller, services.CreateTicketTypeInput{
		EventID:       req.EventID,
		Description:   req.Description,
		MaxCount:      req.MaxCount,
		Price:         *req.Price,
		Currency:      req.Currency,
		AvailableFrom: req.AvailableFrom,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTicketTypeResponse(ticketType))
}

func (h *EventHandler) DeleteTicketType(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.ticketTypes.Delete(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) ListTicketTypes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ticketTypes, err := h.ticketTypes.ListByEvent(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]ticketTypeResponse, 0, len(ticketTypes))
	for i := range ticketTypes {
		out = append(out, newTicketTypeResponse(&ticketTypes[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *EventHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	remaining, err := h.ticketTypes.Availability(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ticket_type_id": id, "remaining": remaining})
}
