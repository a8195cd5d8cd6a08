package domain

import (
	"time"

	"github.com/google/uuid"
)

type ShoppingCart struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Items      []CartItem
}

// CartItem references either a ticket type (primary sale) or a single
// issued ticket (resale purchase), never both.
type CartItem struct {
	ID           uuid.UUID
	CartID       uuid.UUID
	TicketTypeID *uuid.UUID
	TicketID     *uuid.UUID
	Quantity     int
	CreatedAt    time.Time
}

func (i *CartItem) IsResale() bool {
	return i.TicketID != nil
}

func NewPrimaryItem(cartID, ticketTypeID uuid.UUID, quantity int) CartItem {
	return CartItem{
		ID:           uuid.New(),
		CartID:       cartID,
		TicketTypeID: &ticketTypeID,
		Quantity:     quantity,
		CreatedAt:    time.Now(),
	}
}

func NewResaleItem(cartID, ticketID uuid.UUID) CartItem {
	return CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		TicketID:  &ticketID,
		Quantity:  1,
		CreatedAt: time.Now(),
	}
}

// BuyerContact is where confirmations for a checkout are sent.
type BuyerContact struct {
	Email string
	Name  string
}

type CheckoutResult struct {
	CustomerID uuid.UUID
	Issued     []Ticket
	Transfers  []Transfer
}

func (r *CheckoutResult) Tickets() []Ticket {
	tickets := make([]Ticket, 0, len(r.Issued)+len(r.Transfers))
	tickets = append(tickets, r.Issued...)
	for _, t := range r.Transfers {
		tickets = append(tickets, t.Ticket)
	}

	return tickets
}
