package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type TicketRepository struct {
	store *Store
}

func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	return r.store.do(ctx, func(st *state) error {
		for _, t := range tickets {
			if _, ok := st.ticketTypes[t.TypeID]; !ok {
				return domain.ErrTicketTypeNotFound
			}
		}

		for _, t := range tickets {
			st.tickets[t.ID] = t
			st.ticketSeq[t.ID] = st.next()
		}
		return nil
	})
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
	var ticket domain.Ticket

	err := r.store.do(ctx, func(st *state) error {
		t, ok := st.tickets[ticketID]
		if !ok {
			return domain.ErrTicketNotFound
		}

		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ticket, nil
}

func (r *TicketRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	var order []int64

	err := r.store.do(ctx, func(st *state) error {
		for id, t := range st.tickets {
			if t.OwnedBy(ownerID) {
				tickets = append(tickets, t)
				order = append(order, st.ticketSeq[id])
			}
		}
		return nil
	})

	idx := make([]int, len(tickets))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int { return cmp.Compare(order[a], order[b]) })

	sorted := make([]domain.Ticket, len(tickets))
	for i, j := range idx {
		sorted[i] = tickets[j]
	}

	return sorted, err
}

func (r *TicketRepository) SetResellPrice(ctx context.Context, ticketID, ownerID uuid.UUID, price *decimal.Decimal) (*domain.Ticket, error) {
	var ticket domain.Ticket

	err := r.store.do(ctx, func(st *state) error {
		t, ok := st.tickets[ticketID]
		if !ok {
			return domain.ErrTicketNotFound
		}

		if !t.OwnedBy(ownerID) {
			return domain.ErrUnauthorized
		}

		t.ResellPrice = nil
		if price != nil {
			p := *price
			t.ResellPrice = &p
		}

		st.tickets[ticketID] = t
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ticket, nil
}

func (r *TicketRepository) Transfer(ctx context.Context, ticketID, buyerID uuid.UUID) (*domain.Transfer, error) {
	var transfer domain.Transfer

	err := r.store.do(ctx, func(st *state) error {
		t, ok := st.tickets[ticketID]
		if !ok {
			return domain.ErrTicketNotFound
		}

		if !t.IsListed() || t.OwnerID == nil || *t.OwnerID == buyerID {
			return domain.ErrAlreadySold
		}

		transfer.SellerID = *t.OwnerID
		transfer.Price = *t.ResellPrice

		buyer := buyerID
		t.OwnerID = &buyer
		t.ResellPrice = nil
		st.tickets[ticketID] = t

		transfer.Ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &transfer, nil
}

func (r *TicketRepository) ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	var listings []domain.Listing

	err := r.store.do(ctx, func(st *state) error {
		for _, t := range st.tickets {
			if !t.IsListed() || t.OwnerID == nil {
				continue
			}

			tt, ok := st.ticketTypes[t.TypeID]
			if !ok {
				continue
			}

			event := st.events[tt.EventID]

			if filter.EventID != nil && *filter.EventID != tt.EventID {
				continue
			}
			if filter.OwnerID != nil && *filter.OwnerID != *t.OwnerID {
				continue
			}
			if filter.MinPrice != nil && t.ResellPrice.LessThan(*filter.MinPrice) {
				continue
			}
			if filter.MaxPrice != nil && t.ResellPrice.GreaterThan(*filter.MaxPrice) {
				continue
			}

			listings = append(listings, domain.Listing{
				TicketID:              t.ID,
				EventID:               tt.EventID,
				OwnerID:               *t.OwnerID,
				ResellPrice:           *t.ResellPrice,
				OriginalPrice:         tt.Price,
				Currency:              tt.Currency,
				TicketTypeDescription: tt.Description,
				EventName:             event.Name,
				EventDate:             event.StartDate,
				Seat:                  t.Seat,
			})
		}
		return nil
	})

	slices.SortFunc(listings, func(a, b domain.Listing) int {
		if c := a.ResellPrice.Cmp(b.ResellPrice); c != 0 {
			return c
		}
		return cmp.Compare(a.TicketID.String(), b.TicketID.String())
	})

	return listings, err
}
