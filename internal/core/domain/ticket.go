package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ticket struct {
	ID          uuid.UUID
	TypeID      uuid.UUID
	OwnerID     *uuid.UUID
	Seat        *string
	ResellPrice *decimal.Decimal
}

func (t *Ticket) IsListed() bool {
	return t.ResellPrice != nil
}

func (t *Ticket) OwnedBy(userID uuid.UUID) bool {
	return t.OwnerID != nil && *t.OwnerID == userID
}

// Transfer is the outcome of a resale purchase: the seller and the price
// the ticket was listed at when ownership moved.
type Transfer struct {
	Ticket   Ticket
	SellerID uuid.UUID
	Price    decimal.Decimal
}

// Listing is a read model row of the resale marketplace.
type Listing struct {
	TicketID              uuid.UUID
	EventID               uuid.UUID
	OwnerID               uuid.UUID
	ResellPrice           decimal.Decimal
	OriginalPrice         decimal.Decimal
	Currency              string
	TicketTypeDescription string
	EventName             string
	EventDate             time.Time
	Seat                  *string
}

type ListingFilter struct {
	EventID  *uuid.UUID
	OwnerID  *uuid.UUID
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}
