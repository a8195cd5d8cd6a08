package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

type CartRepository struct {
	store *Store
}

func (r *CartRepository) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	var cart domain.ShoppingCart

	err := r.store.do(ctx, func(st *state) error {
		if cartID, ok := st.cartOwners[customerID]; ok {
			cart = st.carts[cartID]
			return nil
		}

		cart = domain.ShoppingCart{ID: uuid.New(), CustomerID: customerID}
		st.carts[cart.ID] = cart
		st.cartOwners[customerID] = cart.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *CartRepository) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	var cart domain.ShoppingCart

	err := r.store.do(ctx, func(st *state) error {
		cartID, ok := st.cartOwners[customerID]
		if !ok {
			return domain.ErrCartNotFound
		}

		cart = st.carts[cartID]
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

// GetByCustomerForUpdate needs no row lock here: the store already runs
// whole transactions one at a time.
func (r *CartRepository) GetByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*domain.ShoppingCart, error) {
	return r.GetByCustomer(ctx, customerID)
}

func (r *CartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	var items []domain.CartItem
	seq := make(map[uuid.UUID]int64)

	err := r.store.do(ctx, func(st *state) error {
		for id, item := range st.items {
			if item.CartID == cartID {
				items = append(items, item)
				seq[id] = st.itemSeq[id]
			}
		}
		return nil
	})

	slices.SortFunc(items, func(a, b domain.CartItem) int {
		return cmp.Compare(seq[a.ID], seq[b.ID])
	})

	return items, err
}

func (r *CartRepository) FindResaleItem(ctx context.Context, cartID, ticketID uuid.UUID) (*domain.CartItem, error) {
	return r.find(ctx, func(item domain.CartItem) bool {
		return item.CartID == cartID && item.TicketID != nil && *item.TicketID == ticketID
	})
}

func (r *CartRepository) find(ctx context.Context, match func(domain.CartItem) bool) (*domain.CartItem, error) {
	var found *domain.CartItem

	err := r.store.do(ctx, func(st *state) error {
		for _, item := range st.items {
			if match(item) {
				found = &item
				return nil
			}
		}
		return domain.ErrCartItemNotFound
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func (r *CartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	return r.store.do(ctx, func(st *state) error {
		if _, ok := st.carts[item.CartID]; !ok {
			return domain.ErrCartNotFound
		}

		for id, existing := range st.items {
			if existing.CartID != item.CartID {
				continue
			}

			switch {
			case item.IsResale() && existing.IsResale() && *existing.TicketID == *item.TicketID:
				return domain.ErrDuplicateCartItem
			case !item.IsResale() && !existing.IsResale() && *existing.TicketTypeID == *item.TicketTypeID:
				existing.Quantity += item.Quantity
				st.items[id] = existing
				*item = existing
				return nil
			}
		}

		st.items[item.ID] = *item
		st.itemSeq[item.ID] = st.next()
		return nil
	})
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.store.do(ctx, func(st *state) error {
		item, ok := st.items[itemID]
		if !ok || item.CartID != cartID {
			return domain.ErrCartItemNotFound
		}

		delete(st.items, itemID)
		delete(st.itemSeq, itemID)
		return nil
	})
}

func (r *CartRepository) ClearItems(ctx context.Context, cartID uuid.UUID, itemIDs []uuid.UUID) error {
	return r.store.do(ctx, func(st *state) error {
		for _, id := range itemIDs {
			if item, ok := st.items[id]; !ok || item.CartID != cartID {
				return domain.ErrCartChanged
			}
		}

		for _, id := range itemIDs {
			delete(st.items, id)
			delete(st.itemSeq, id)
		}
		return nil
	})
}
