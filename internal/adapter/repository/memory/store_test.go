package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/adapter/repository/memory"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedType(t *testing.T, store *memory.Store, maxCount int) domain.TicketType {
	t.Helper()
	ctx := context.Background()

	event := &domain.Event{
		ID:        uuid.New(),
		Name:      "Opening Night",
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(26 * time.Hour),
		Status:    domain.EventCreated,
	}
	require.NoError(t, store.Events().Create(ctx, event))

	tt := domain.TicketType{ID: uuid.New(), EventID: event.ID, MaxCount: maxCount}
	require.NoError(t, store.TicketTypes().Create(ctx, &tt))

	return tt
}

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	store := memory.NewStore()
	tt := seedType(t, store, 5)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(txCtx context.Context) error {
		_, err := store.TicketTypes().Reserve(txCtx, tt.ID, 3)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.TicketTypes().GetByID(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.IssuedCount)
}

func TestStore_NestedTxJoinsOuter(t *testing.T) {
	store := memory.NewStore()
	tt := seedType(t, store, 5)
	ctx := context.Background()

	err := store.WithTx(ctx, func(outer context.Context) error {
		return store.WithTx(outer, func(inner context.Context) error {
			_, err := store.TicketTypes().Reserve(inner, tt.ID, 2)
			return err
		})
	})
	require.NoError(t, err)

	got, err := store.TicketTypes().GetByID(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.IssuedCount)
}

func TestTicketTypeRepository_ReserveNeverExceedsCapacity(t *testing.T) {
	store := memory.NewStore()
	tt := seedType(t, store, 2)
	ctx := context.Background()

	remaining, err := store.TicketTypes().Reserve(ctx, tt.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	_, err = store.TicketTypes().Reserve(ctx, tt.ID, 1)

	var inv *domain.InsufficientInventoryError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 1, inv.Requested)
	assert.Equal(t, 0, inv.Remaining)
}

func TestTicketRepository_TransferRequiresListing(t *testing.T) {
	store := memory.NewStore()
	tt := seedType(t, store, 2)
	ctx := context.Background()

	seller := uuid.New()
	ticket := domain.Ticket{ID: uuid.New(), TypeID: tt.ID, OwnerID: &seller}
	require.NoError(t, store.Tickets().CreateBatch(ctx, []domain.Ticket{ticket}))

	_, err := store.Tickets().Transfer(ctx, ticket.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAlreadySold)

	_, err = store.Tickets().Transfer(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestCartRepository_AddItemMergesPrimaryLines(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	carts := store.Carts()
	typeID := uuid.New()

	cart, err := carts.GetOrCreate(ctx, uuid.New())
	require.NoError(t, err)

	first := domain.NewPrimaryItem(cart.ID, typeID, 2)
	require.NoError(t, carts.AddItem(ctx, &first))

	second := domain.NewPrimaryItem(cart.ID, typeID, 3)
	require.NoError(t, carts.AddItem(ctx, &second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	ticketID := uuid.New()
	resale := domain.NewResaleItem(cart.ID, ticketID)
	require.NoError(t, carts.AddItem(ctx, &resale))

	again := domain.NewResaleItem(cart.ID, ticketID)
	assert.ErrorIs(t, carts.AddItem(ctx, &again), domain.ErrDuplicateCartItem)

	items, err := carts.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, resale.ID, items[1].ID)
}

func TestCartRepository_ClearItemsRejectsMissingLines(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	carts := store.Carts()

	cart, err := carts.GetOrCreate(ctx, uuid.New())
	require.NoError(t, err)

	item := domain.NewPrimaryItem(cart.ID, uuid.New(), 1)
	require.NoError(t, carts.AddItem(ctx, &item))

	err = carts.ClearItems(ctx, cart.ID, []uuid.UUID{item.ID, uuid.New()})
	assert.ErrorIs(t, err, domain.ErrCartChanged)
	assert.ErrorIs(t, err, domain.ErrAllocationContention)

	items, err := carts.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, carts.ClearItems(ctx, cart.ID, []uuid.UUID{item.ID}))

	items, err = carts.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
