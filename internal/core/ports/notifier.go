package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

// TicketConfirmation carries what a buyer needs to find their ticket.
type TicketConfirmation struct {
	To        domain.BuyerContact
	TicketID  uuid.UUID
	EventName string
	EventDate time.Time
	Venue     string
	Seat      *string
	Resale    bool
}

type Notifier interface {
	SendTicketConfirmation(ctx context.Context, confirmation TicketConfirmation) error
}

// AvailabilityCache holds remaining capacity per ticket type.
type AvailabilityCache interface {
	GetRemaining(ctx context.Context, typeID uuid.UUID) (int, bool, error)
	SetRemaining(ctx context.Context, typeID uuid.UUID, remaining int) error
	Invalidate(ctx context.Context, typeIDs ...uuid.UUID) error
}
