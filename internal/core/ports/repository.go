package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

// TxManager runs fn inside a transaction carried by the context passed to
// fn. Nested calls join the outer transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	// GetForUpdate reads the event and holds a row lock until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	UpdateStatus(ctx context.Context, eventID uuid.UUID, status domain.EventStatus) error
	CountOwnedTickets(ctx context.Context, eventID uuid.UUID) (int, error)
}

type TicketTypeRepository interface {
	Create(ctx context.Context, ticketType *domain.TicketType) error
	GetByID(ctx context.Context, typeID uuid.UUID) (*domain.TicketType, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.TicketType, error)
	// GetForSale reads the type with its event status while holding a
	// shared lock on the event row.
	GetForSale(ctx context.Context, typeID uuid.UUID) (*domain.SaleTarget, error)
	// Reserve atomically adds quantity to the issued count if it stays
	// within max_count and returns the remaining capacity. It fails with
	// *domain.InsufficientInventoryError otherwise.
	Reserve(ctx context.Context, typeID uuid.UUID, quantity int) (int, error)
	// Delete removes the type only while no ticket has been issued.
	Delete(ctx context.Context, typeID uuid.UUID) error
}

type TicketRepository interface {
	CreateBatch(ctx context.Context, tickets []domain.Ticket) error
	GetByID(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Ticket, error)
	// SetResellPrice updates the price only when ownerID still owns the
	// ticket. A nil price delists it.
	SetResellPrice(ctx context.Context, ticketID, ownerID uuid.UUID, price *decimal.Decimal) (*domain.Ticket, error)
	// Transfer moves a listed ticket to buyerID and clears its price in one
	// conditional update. It fails with domain.ErrAlreadySold when the
	// ticket is no longer listed.
	Transfer(ctx context.Context, ticketID, buyerID uuid.UUID) (*domain.Transfer, error)
	ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
}

type CartRepository interface {
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error)
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error)
	// GetByCustomerForUpdate locks the cart row until the surrounding
	// transaction ends, so only one checkout consumes a cart at a time.
	GetByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error)
	// ListItems returns the cart lines in insertion order.
	ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error)
	FindResaleItem(ctx context.Context, cartID, ticketID uuid.UUID) (*domain.CartItem, error)
	// AddItem inserts a line. A primary line for a type already in the cart
	// is merged into the existing line and item is overwritten with the
	// merged row. A resale ticket already in the cart fails with
	// ErrDuplicateCartItem.
	AddItem(ctx context.Context, item *domain.CartItem) error
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
	// ClearItems deletes exactly the given lines or fails with ErrCartChanged.
	ClearItems(ctx context.Context, cartID uuid.UUID, itemIDs []uuid.UUID) error
}
