package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultTicketTypeDescription = "Standard Ticket"
	DefaultCurrency              = "USD"
)

type TicketType struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	Description   string
	MaxCount      int
	IssuedCount   int
	Price         decimal.Decimal
	Currency      string
	AvailableFrom time.Time
}

func (t *TicketType) Remaining() int {
	if t.IssuedCount >= t.MaxCount {
		return 0
	}

	return t.MaxCount - t.IssuedCount
}

func (t *TicketType) SalesOpen(now time.Time) bool {
	return !now.Before(t.AvailableFrom)
}

// SaleTarget is a ticket type together with the lifecycle status of its
// event, read under a shared lock on the event row.
type SaleTarget struct {
	TicketType  TicketType
	EventStatus EventStatus
}
