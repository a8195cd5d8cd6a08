package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type createEventRequest struct {
	LocationID          uuid.UUID        `json:"location_id"`
	VenueName           string           `json:"venue_name" validate:"required,max=200"`
	Name                string           `json:"name" validate:"required,max=200"`
	Description         string           `json:"description" validate:"max=5000"`
	StartDate           time.Time        `json:"start_date" validate:"required"`
	EndDate             time.Time        `json:"end_date" validate:"required"`
	MinimumAge          int              `json:"minimum_age" validate:"gte=0"`
	Categories          []string         `json:"categories" validate:"dive,required"`
	TotalTickets        int              `json:"total_tickets" validate:"required,gt=0"`
	StandardTicketPrice *decimal.Decimal `json:"standard_ticket_price" validate:"required"`
	Currency            string           `json:"currency" validate:"omitempty,len=3"`
	TicketSalesStart    time.Time        `json:"ticket_sales_start"`
}

type createTicketTypeRequest struct {
	EventID       uuid.UUID        `json:"event_id" validate:"required"`
	Description   string           `json:"description" validate:"required,max=200"`
	MaxCount      int              `json:"max_count" validate:"required,gt=0"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	Currency      string           `json:"currency" validate:"omitempty,len=3"`
	AvailableFrom time.Time        `json:"available_from"`
}

type addCartItemRequest struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gte=1"`
}

type addResaleItemRequest struct {
	TicketID uuid.UUID `json:"ticket_id" validate:"required"`
}

type resellRequest struct {
	ResellPrice *decimal.Decimal `json:"resell_price"`
}

type purchaseRequest struct {
	TicketID uuid.UUID `json:"ticket_id" validate:"required"`
}

type eventResponse struct {
	ID          uuid.UUID `json:"id"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	LocationID  uuid.UUID `json:"location_id"`
	VenueName   string    `json:"venue_name"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	MinimumAge  int       `json:"minimum_age"`
	Categories  []string  `json:"categories"`
	Status      string    `json:"status"`
}

func newEventResponse(e *domain.Event) eventResponse {
	categories := e.Categories
	if categories == nil {
		categories = []string{}
	}

	return eventResponse{
		ID:          e.ID,
		OrganizerID: e.OrganizerID,
		LocationID:  e.LocationID,
		VenueName:   e.VenueName,
		Name:        e.Name,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		MinimumAge:  e.MinimumAge,
		Categories:  categories,
		Status:      string(e.Status),
	}
}

type ticketTypeResponse struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	Description   string    `json:"description"`
	MaxCount      int       `json:"max_count"`
	Remaining     int       `json:"remaining"`
	Price         string    `json:"price"`
	Currency      string    `json:"currency"`
	AvailableFrom time.Time `json:"available_from"`
}

func newTicketTypeResponse(t *domain.TicketType) ticketTypeResponse {
	return ticketTypeResponse{
		ID:            t.ID,
		EventID:       t.EventID,
		Description:   t.Description,
		MaxCount:      t.MaxCount,
		Remaining:     t.Remaining(),
		Price:         t.Price.StringFixed(2),
		Currency:      t.Currency,
		AvailableFrom: t.AvailableFrom,
	}
}

type ticketResponse struct {
	ID           uuid.UUID  `json:"id"`
	TicketTypeID uuid.UUID  `json:"ticket_type_id"`
	OwnerID      *uuid.UUID `json:"owner_id"`
	Seat         *string    `json:"seat"`
	ResellPrice  *string    `json:"resell_price"`
}

func newTicketResponse(t *domain.Ticket) ticketResponse {
	resp := ticketResponse{
		ID:           t.ID,
		TicketTypeID: t.TypeID,
		OwnerID:      t.OwnerID,
		Seat:         t.Seat,
	}
	if t.ResellPrice != nil {
		price := t.ResellPrice.StringFixed(2)
		resp.ResellPrice = &price
	}

	return resp
}

func newTicketResponses(tickets []domain.Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, newTicketResponse(&tickets[i]))
	}

	return out
}

type transferResponse struct {
	Ticket   ticketResponse `json:"ticket"`
	SellerID uuid.UUID      `json:"seller_id"`
	Price    string         `json:"price"`
}

func newTransferResponse(t *domain.Transfer) transferResponse {
	return transferResponse{
		Ticket:   newTicketResponse(&t.Ticket),
		SellerID: t.SellerID,
		Price:    t.Price.StringFixed(2),
	}
}

type listingResponse struct {
	TicketID              uuid.UUID `json:"ticket_id"`
	EventID               uuid.UUID `json:"event_id"`
	OwnerID               uuid.UUID `json:"owner_id"`
	ResellPrice           string    `json:"resell_price"`
	OriginalPrice         string    `json:"original_price"`
	Currency              string    `json:"currency"`
	TicketTypeDescription string    `json:"ticket_type"`
	EventName             string    `json:"event_name"`
	EventDate             time.Time `json:"event_date"`
	Seat                  *string   `json:"seat"`
}

func newListingResponses(listings []domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingResponse{
			TicketID:              l.TicketID,
			EventID:               l.EventID,
			OwnerID:               l.OwnerID,
			ResellPrice:           l.ResellPrice.StringFixed(2),
			OriginalPrice:         l.OriginalPrice.StringFixed(2),
			Currency:              l.Currency,
			TicketTypeDescription: l.TicketTypeDescription,
			EventName:             l.EventName,
			EventDate:             l.EventDate,
			Seat:                  l.Seat,
		})
	}

	return out
}

type cartItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	Kind         string     `json:"kind"`
	TicketTypeID *uuid.UUID `json:"ticket_type_id,omitempty"`
	TicketID     *uuid.UUID `json:"ticket_id,omitempty"`
	Quantity     int        `json:"quantity"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newCartItemResponse(i *domain.CartItem) cartItemResponse {
	kind := "primary"
	if i.IsResale() {
		kind = "resale"
	}

	return cartItemResponse{
		ID:           i.ID,
		Kind:         kind,
		TicketTypeID: i.TicketTypeID,
		TicketID:     i.TicketID,
		Quantity:     i.Quantity,
		CreatedAt:    i.CreatedAt,
	}
}

type cartResponse struct {
	ID         uuid.UUID          `json:"id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	Items      []cartItemResponse `json:"items"`
}

func newCartResponse(c *domain.ShoppingCart) cartResponse {
	items := make([]cartItemResponse, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, newCartItemResponse(&c.Items[i]))
	}

	return cartResponse{ID: c.ID, CustomerID: c.CustomerID, Items: items}
}

type checkoutResponse struct {
	Tickets   []ticketResponse   `json:"tickets"`
	Transfers []transferResponse `json:"transfers"`
}

func newCheckoutResponse(r *domain.CheckoutResult) checkoutResponse {
	transfers := make([]transferResponse, 0, len(r.Transfers))
	for i := range r.Transfers {
		transfers = append(transfers, newTransferResponse(&r.Transfers[i]))
	}

	return checkoutResponse{
		Tickets:   newTicketResponses(r.Issued),
		Transfers: transfers,
	}
}
