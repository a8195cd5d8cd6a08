package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type TicketTypeRepository struct {
	store *Store
}

func (r *TicketTypeRepository) Create(ctx context.Context, ticketType *domain.TicketType) error {
	return r.store.do(ctx, func(st *state) error {
		if _, ok := st.events[ticketType.EventID]; !ok {
			return domain.ErrEventNotFound
		}

		st.ticketTypes[ticketType.ID] = *ticketType
		return nil
	})
}

func (r *TicketTypeRepository) GetByID(ctx context.Context, typeID uuid.UUID) (*domain.TicketType, error) {
	var ticketType domain.TicketType

	err := r.store.do(ctx, func(st *state) error {
		tt, ok := st.ticketTypes[typeID]
		if !ok {
			return domain.ErrTicketTypeNotFound
		}

		ticketType = tt
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ticketType, nil
}

func (r *TicketTypeRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.TicketType, error) {
	var types []domain.TicketType

	err := r.store.do(ctx, func(st *state) error {
		for _, tt := range st.ticketTypes {
			if tt.EventID == eventID {
				types = append(types, tt)
			}
		}
		return nil
	})

	slices.SortFunc(types, func(a, b domain.TicketType) int {
		if c := a.AvailableFrom.Compare(b.AvailableFrom); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return types, err
}

func (r *TicketTypeRepository) GetForSale(ctx context.Context, typeID uuid.UUID) (*domain.SaleTarget, error) {
	var target domain.SaleTarget

	err := r.store.do(ctx, func(st *state) error {
		tt, ok := st.ticketTypes[typeID]
		if !ok {
			return domain.ErrTicketTypeNotFound
		}

		event, ok := st.events[tt.EventID]
		if !ok {
			return domain.ErrEventNotFound
		}

		target = domain.SaleTarget{TicketType: tt, EventStatus: event.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &target, nil
}

func (r *TicketTypeRepository) Reserve(ctx context.Context, typeID uuid.UUID, quantity int) (int, error) {
	var remaining int

	err := r.store.do(ctx, func(st *state) error {
		tt, ok := st.ticketTypes[typeID]
		if !ok {
			return domain.ErrTicketTypeNotFound
		}

		if tt.IssuedCount+quantity > tt.MaxCount {
			return &domain.InsufficientInventoryError{
				TicketTypeID: typeID,
				Requested:    quantity,
				Remaining:    tt.Remaining(),
			}
		}

		tt.IssuedCount += quantity
		st.ticketTypes[typeID] = tt
		remaining = tt.Remaining()
		return nil
	})

	return remaining, err
}

func (r *TicketTypeRepository) Delete(ctx context.Context, typeID uuid.UUID) error {
	return r.store.do(ctx, func(st *state) error {
		tt, ok := st.ticketTypes[typeID]
		if !ok {
			return domain.ErrTicketTypeNotFound
		}

		if tt.IssuedCount > 0 {
			return domain.ErrTicketsExist
		}

		delete(st.ticketTypes, typeID)
		return nil
	})
}
