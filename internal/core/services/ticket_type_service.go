package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
)

type CreateTicketTypeInput struct {
	EventID       uuid.UUID
	Description   string
	MaxCount      int
	Price         decimal.Decimal
	Currency      string
	AvailableFrom time.Time
}

// TicketTypeService manages the capacity descriptors of an event. A type's
// capacity is fixed once created.
type TicketTypeService struct {
	events      ports.EventRepository
	ticketTypes ports.TicketTypeRepository
	cache       ports.AvailabilityCache
	logger      *slog.Logger
}

func NewTicketTypeService(events ports.EventRepository, ticketTypes ports.TicketTypeRepository, cache ports.AvailabilityCache, logger *slog.Logger) *TicketTypeService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TicketTypeService{
		events:      events,
		ticketTypes: ticketTypes,
		cache:       cache,
		logger:      logger,
	}
}

func (s *TicketTypeService) Create(ctx context.Context, caller domain.Principal, in CreateTicketTypeInput) (*domain.TicketType, error) {
	organizer, err := requireOrganizer(caller)
	if err != nil {
		return nil, err
	}

	if in.MaxCount < 1 {
		return nil, fmt.Errorf("max count must be positive: %w", domain.ErrInvalidInput)
	}

	if in.Price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	event, err := s.events.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(organizer, event); err != nil {
		return nil, err
	}

	if event.Status == domain.EventCancelled || event.Status == domain.EventRejected {
		return nil, fmt.Errorf("event is %s: %w", event.Status, domain.ErrInvalidStateTransition)
	}

	currency := in.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	ticketType := &domain.TicketType{
		ID:            uuid.New(),
		EventID:       event.ID,
		Description:   in.Description,
		MaxCount:      in.MaxCount,
		Price:         in.Price,
		Currency:      currency,
		AvailableFrom: in.AvailableFrom,
	}

	if err := s.ticketTypes.Create(ctx, ticketType); err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}

	return ticketType, nil
}

// Delete removes a ticket type that has never sold a ticket.
func (s *TicketTypeService) Delete(ctx context.Context, caller domain.Principal, typeID uuid.UUID) error {
	organizer, err := requireOrganizer(caller)
	if err != nil {
		return err
	}

	ticketType, err := s.ticketTypes.GetByID(ctx, typeID)
	if err != nil {
		return err
	}

	event, err := s.events.GetByID(ctx, ticketType.EventID)
	if err != nil {
		return err
	}

	if err := requireOwner(organizer, event); err != nil {
		return err
	}

	if err := s.ticketTypes.Delete(ctx, typeID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, typeID); err != nil {
			s.logger.Warn("failed to invalidate availability cache", "ticket_type_id", typeID, "error", err)
		}
	}

	return nil
}

func (s *TicketTypeService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.TicketType, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	return s.ticketTypes.ListByEvent(ctx, eventID)
}

// Availability reports remaining capacity. The figure is advisory: it may
// be stale by the cache TTL and is never used to decide an allocation.
func (s *TicketTypeService) Availability(ctx context.Context, typeID uuid.UUID) (int, error) {
	if s.cache != nil {
		remaining, ok, err := s.cache.GetRemaining(ctx, typeID)
		if err != nil {
			s.logger.Warn("availability cache read failed", "ticket_type_id", typeID, "error", err)
		} else if ok {
			return remaining, nil
		}
	}

	ticketType, err := s.ticketTypes.GetByID(ctx, typeID)
	if err != nil {
		return 0, err
	}

	remaining := ticketType.Remaining()

	if s.cache != nil {
		if err := s.cache.SetRemaining(ctx, typeID, remaining); err != nil {
			s.logger.Warn("availability cache write failed", "ticket_type_id", typeID, "error", err)
		}
	}

	return remaining, nil
}
