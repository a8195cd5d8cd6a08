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

type CreateEventInput struct {
	LocationID          uuid.UUID
	VenueName           string
	Name                string
	Description         string
	StartDate           time.Time
	EndDate             time.Time
	MinimumAge          int
	Categories          []string
	TotalTickets        int
	StandardTicketPrice decimal.Decimal
	Currency            string
	TicketSalesStart    time.Time
}

type EventService struct {
	tx          ports.TxManager
	events      ports.EventRepository
	ticketTypes ports.TicketTypeRepository
	logger      *slog.Logger
}

func NewEventService(tx ports.TxManager, events ports.EventRepository, ticketTypes ports.TicketTypeRepository, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventService{
		tx:          tx,
		events:      events,
		ticketTypes: ticketTypes,
		logger:      logger,
	}
}

// Create stores a pending event together with its standard ticket type.
func (s *EventService) Create(ctx context.Context, caller domain.Principal, in CreateEventInput) (*domain.Event, *domain.TicketType, error) {
	organizer, err := requireOrganizer(caller)
	if err != nil {
		return nil, nil, err
	}

	if !in.StartDate.Before(in.EndDate) {
		return nil, nil, domain.ErrInvalidTimeWindow
	}

	if in.TotalTickets < 1 {
		return nil, nil, fmt.Errorf("total tickets must be positive: %w", domain.ErrInvalidInput)
	}

	if in.StandardTicketPrice.IsNegative() {
		return nil, nil, domain.ErrInvalidPrice
	}

	currency := in.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	event := &domain.Event{
		ID:          uuid.New(),
		OrganizerID: organizer.ID,
		LocationID:  in.LocationID,
		VenueName:   in.VenueName,
		Name:        in.Name,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		MinimumAge:  in.MinimumAge,
		Categories:  in.Categories,
		Status:      domain.EventPending,
	}

	ticketType := &domain.TicketType{
		ID:            uuid.New(),
		EventID:       event.ID,
		Description:   domain.DefaultTicketTypeDescription,
		MaxCount:      in.TotalTickets,
		Price:         in.StandardTicketPrice,
		Currency:      currency,
		AvailableFrom: in.TicketSalesStart,
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Create(txCtx, event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}

		if err := s.ticketTypes.Create(txCtx, ticketType); err != nil {
			return fmt.Errorf("failed to create standard ticket type: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("event created", "event_id", event.ID, "organizer_id", organizer.ID)

	return event, ticketType, nil
}

func (s *EventService) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return s.events.GetByID(ctx, eventID)
}

func (s *EventService) Authorize(ctx context.Context, caller domain.Principal, eventID uuid.UUID) (*domain.Event, error) {
	if err := requireAdministrator(caller); err != nil {
		return nil, err
	}

	return s.transition(ctx, eventID, domain.EventCreated, nil)
}

func (s *EventService) Reject(ctx context.Context, caller domain.Principal, eventID uuid.UUID) (*domain.Event, error) {
	if err := requireAdministrator(caller); err != nil {
		return nil, err
	}

	return s.transition(ctx, eventID, domain.EventRejected, nil)
}

// Cancel moves a created event to cancelled as long as no ticket of any of
// its types has an owner. The event row stays locked during the check so
// no allocation can slip in between.
func (s *EventService) Cancel(ctx context.Context, caller domain.Principal, eventID uuid.UUID) (*domain.Event, error) {
	organizer, err := requireOrganizer(caller)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, eventID, domain.EventCancelled, func(txCtx context.Context, event *domain.Event) error {
		if err := requireOwner(organizer, event); err != nil {
			return err
		}

		if !event.Status.CanTransition(domain.EventCancelled) {
			return &domain.StateTransitionError{From: event.Status, To: domain.EventCancelled}
		}

		sold, err := s.events.CountOwnedTickets(txCtx, event.ID)
		if err != nil {
			return fmt.Errorf("failed to count sold tickets: %w", err)
		}

		if sold > 0 {
			return &domain.SoldTicketsExistError{EventID: event.ID, Count: sold}
		}

		return nil
	})
}

func (s *EventService) transition(
	ctx context.Context,
	eventID uuid.UUID,
	next domain.EventStatus,
	guard func(ctx context.Context, event *domain.Event) error,
) (*domain.Event, error) {
	var (
		updated  *domain.Event
		previous domain.EventStatus
	)

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.events.GetForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}

		if guard != nil {
			if err := guard(txCtx, event); err != nil {
				return err
			}
		}

		previous = event.Status
		if err := event.Transition(next); err != nil {
			return err
		}

		if err := s.events.UpdateStatus(txCtx, eventID, next); err != nil {
			return fmt.Errorf("failed to update event status: %w", err)
		}

		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("event status changed", "event_id", eventID, "from", previous, "to", next)

	return updated, nil
}
