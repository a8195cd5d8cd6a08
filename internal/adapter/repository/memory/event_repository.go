package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type EventRepository struct {
	store *Store
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.store.do(ctx, func(st *state) error {
		e := *event
		e.Categories = slices.Clone(event.Categories)
		st.events[event.ID] = e
		return nil
	})
}

func (r *EventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	var event domain.Event

	err := r.store.do(ctx, func(st *state) error {
		e, ok := st.events[eventID]
		if !ok {
			return domain.ErrEventNotFound
		}

		event = e
		event.Categories = slices.Clone(e.Categories)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func (r *EventRepository) GetForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return r.GetByID(ctx, eventID)
}

func (r *EventRepository) UpdateStatus(ctx context.Context, eventID uuid.UUID, status domain.EventStatus) error {
	return r.store.do(ctx, func(st *state) error {
		e, ok := st.events[eventID]
		if !ok {
			return domain.ErrEventNotFound
		}

		e.Status = status
		st.events[eventID] = e
		return nil
	})
}

func (r *EventRepository) CountOwnedTickets(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int

	err := r.store.do(ctx, func(st *state) error {
		for _, t := range st.tickets {
			tt, ok := st.ticketTypes[t.TypeID]
			if ok && tt.EventID == eventID && t.OwnerID != nil {
				count++
			}
		}
		return nil
	})

	return count, err
}
