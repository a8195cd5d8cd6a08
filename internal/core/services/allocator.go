package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
	"github.com/srgjo27/ticket_marketplace/internal/platform/metrics"
)

// Allocator issues new tickets against a ticket type's capacity.
//
// Capacity is reserved with a single conditional increment of the type's
// issued count, executed in the same transaction that inserts the tickets.
// Concurrent allocators against one type serialize on that row, so the
// number of tickets ever created never exceeds max_count.
type Allocator struct {
	tx          ports.TxManager
	ticketTypes ports.TicketTypeRepository
	tickets     ports.TicketRepository
	cache       ports.AvailabilityCache
	retry       retryPolicy
	now         func() time.Time
	logger      *slog.Logger
}

type AllocatorOption func(*Allocator)

// WithMaxAttempts bounds how many times a conflicting allocation is retried.
func WithMaxAttempts(n int) AllocatorOption {
	return func(a *Allocator) {
		if n > 0 {
			a.retry.maxAttempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) AllocatorOption {
	return func(a *Allocator) {
		a.retry.baseDelay = d
	}
}

func WithClock(now func() time.Time) AllocatorOption {
	return func(a *Allocator) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAllocator(
	tx ports.TxManager,
	ticketTypes ports.TicketTypeRepository,
	tickets ports.TicketRepository,
	cache ports.AvailabilityCache,
	logger *slog.Logger,
	opts ...AllocatorOption,
) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Allocator{
		tx:          tx,
		ticketTypes: ticketTypes,
		tickets:     tickets,
		cache:       cache,
		retry:       defaultRetryPolicy(),
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Allocate creates exactly quantity tickets of typeID owned by buyerID, or
// none at all.
func (a *Allocator) Allocate(ctx context.Context, typeID uuid.UUID, quantity int, buyerID uuid.UUID) ([]domain.Ticket, error) {
	var issued []domain.Ticket

	err := a.retry.run(ctx, "allocate", func(ctx context.Context) error {
		return a.tx.WithTx(ctx, func(txCtx context.Context) error {
			tickets, err := a.allocate(txCtx, typeID, quantity, buyerID)
			if err != nil {
				return err
			}

			issued = tickets
			return nil
		})
	})
	if err != nil {
		metrics.TrackAllocation(allocationStatus(err), 0)
		a.logger.Warn("allocation failed",
			"ticket_type_id", typeID,
			"quantity", quantity,
			"buyer_id", buyerID,
			"error", err,
		)
		return nil, err
	}

	metrics.TrackAllocation("success", len(issued))
	a.invalidate(ctx, typeID)

	return issued, nil
}

// allocate runs inside the caller's transaction and never retries; a
// conflict aborts the transaction, so the retry belongs to whoever owns it.
func (a *Allocator) allocate(ctx context.Context, typeID uuid.UUID, quantity int, buyerID uuid.UUID) ([]domain.Ticket, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	target, err := a.ticketTypes.GetForSale(ctx, typeID)
	if err != nil {
		return nil, err
	}

	if target.EventStatus != domain.EventCreated {
		return nil, domain.ErrEventNotOnSale
	}

	if !target.TicketType.SalesOpen(a.now()) {
		return nil, domain.ErrSalesNotOpen
	}

	if _, err := a.ticketTypes.Reserve(ctx, typeID, quantity); err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, quantity)
	for i := range tickets {
		owner := buyerID
		tickets[i] = domain.Ticket{
			ID:      uuid.New(),
			TypeID:  typeID,
			OwnerID: &owner,
		}
	}

	if err := a.tickets.CreateBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("failed to issue tickets for type %s: %w", typeID, err)
	}

	return tickets, nil
}

func (a *Allocator) invalidate(ctx context.Context, typeIDs ...uuid.UUID) {
	if a.cache == nil || len(typeIDs) == 0 {
		return
	}

	if err := a.cache.Invalidate(ctx, typeIDs...); err != nil {
		a.logger.Warn("failed to invalidate availability cache", "ticket_type_ids", typeIDs, "error", err)
	}
}

func allocationStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientInventory):
		return "sold_out"
	case errors.Is(err, domain.ErrAllocationContention):
		return "contention"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidStateTransition):
		return "rejected"
	}

	return "error"
}
